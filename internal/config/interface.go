package config

import "context"

// Loader is the interface for a format-specific settings loader.
type Loader interface {
	// Load reads the given files or directories and returns the merged model.
	// Settings absent from every file keep their Defaults value.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
