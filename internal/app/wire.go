//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/flowspace/server/internal/shared/config"
)

// InitializeApp builds the App graph using Wire.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}
