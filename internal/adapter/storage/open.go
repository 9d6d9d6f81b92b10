// Package storage picks a user repository backend from a URL.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aegis/userkit/internal/adapter/jsonfile"
	"github.com/aegis/userkit/internal/adapter/postgres"
	"github.com/aegis/userkit/internal/adapter/sqlite"
	"github.com/aegis/userkit/internal/port"
)

var ErrUnsupportedStorage = errors.New("unsupported storage")

// Open returns a repository for url:
//
//	file://users.json     JSON file
//	sqlite://users.db     SQLite database (sqlite://:memory: for in-memory)
//	postgres://host/db    PostgreSQL, the URL is passed to the driver as is
func Open(url string) (port.UserRepository, error) {
	scheme, path, ok := strings.Cut(url, "://")
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStorage, url)
	}
	switch scheme {
	case "file":
		repo, err := jsonfile.New(path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "sqlite":
		repo, err := sqlite.New(path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres", "postgresql":
		repo, err := postgres.New(url, false)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedStorage, scheme)
}
