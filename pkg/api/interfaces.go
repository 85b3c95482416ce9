// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"go.uber.org/zap"
)

// ResultStoreOpener opens the result store used by the server and CLI
type ResultStoreOpener interface {
	// OpenStore opens or creates the store under dataDir
	OpenStore(dataDir string) (ClosableResultStore, error)
}

// ClosableResultStore is a result store that owns resources
type ClosableResultStore interface {
	IResultStore
	Close() error
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled
	StartServer(ctx context.Context, store IResultStore, config ServerConfig, logger *zap.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
