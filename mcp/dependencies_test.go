package mcp

import (
	"github.com/ludo-technologies/variscan/internal/config"
)

func NewTestDependencies(cfg *config.Config, path string) *Dependencies {
	return NewDependencies(cfg, path, nil)
}
