// Package api provides factory implementations for dependency injection
package api

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ssargent/actfast/pkg/storage"
)

// storeDirName is the pebble directory inside the data directory
const storeDirName = "results"

// DefaultStoreOpener is the default implementation of ResultStoreOpener
type DefaultStoreOpener struct{}

// NewStoreOpener creates a new store opener
func NewStoreOpener() ResultStoreOpener {
	return &DefaultStoreOpener{}
}

// OpenStore opens the pebble result store under dataDir
func (o *DefaultStoreOpener) OpenStore(dataDir string) (ClosableResultStore, error) {
	s, err := storage.NewResultStore(filepath.Join(dataDir, storeDirName))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, store IResultStore, config ServerConfig, logger *zap.Logger) error {
	return StartServer(ctx, store, config, logger)
}
