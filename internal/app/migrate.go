package app

import (
	"fmt"

	"github.com/flowspace/server/internal/module/board"
	"github.com/flowspace/server/internal/module/card"
	"github.com/flowspace/server/internal/module/invite"
	"github.com/flowspace/server/internal/module/note"
	"github.com/flowspace/server/internal/module/user"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&user.User{},
		&board.Board{},
		&board.Member{},
		&card.Card{},
		&note.Note{},
		&invite.Invite{},
	}
}

// Migrate creates or updates the schema. The pending-invite partial index
// is created by the invite model's gorm tags.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
