package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_invites_token"}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil", nil, "", false},
		{"plain error", errors.New("boom"), "", false},
		{"other code", &pgconn.PgError{Code: "23503"}, "", false},
		{"any constraint", dup, "", true},
		{"matching constraint", dup, "idx_invites_token", true},
		{"other constraint", dup, "idx_invites_pending", false},
		{"wrapped", fmt.Errorf("create invite: %w", dup), "idx_invites_token", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err, tt.constraint))
		})
	}
}
