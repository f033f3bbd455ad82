package access

import (
	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the role tags used in request bindings:
// "boardrole" accepts any real role and "inviterole" only viewer or editor.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("boardrole", func(fl validator.FieldLevel) bool {
		r, ok := fl.Field().Interface().(Role)
		return ok && r.IsValid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("inviterole", inviteRole)
}

// inviteRole accepts a Role or its string name.
func inviteRole(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case Role:
		return v.IsInviteRole()
	case string:
		r, err := ParseRole(v)
		return err == nil && r.IsInviteRole()
	}
	return false
}
