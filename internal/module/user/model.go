package user

import (
	"time"

	"github.com/google/uuid"
)

// User is an account provisioned by the external identity provider. This
// service only reads it.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null;default:''"`
	AvatarURL string    `json:"avatarUrl,omitempty" gorm:"column:avatar_url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// Summary is the public projection of a user embedded in other responses.
type Summary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ToSummary projects u. A nil user yields the zero summary.
func (u *User) ToSummary() Summary {
	if u == nil {
		return Summary{}
	}
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}
