// Package resource loads named fixture payloads from interchangeable
// backends: the embedded bundle, a directory, SQLite, S3 and Postgres.
//
// A resource name never carries an extension; backends append
// constants.FixtureExtension where they key by file name.
package resource

import (
	"context"
	"errors"
	"strings"

	"github.com/nvandessel/glucosim/internal/constants"
)

// Driver identifies a concrete resource backend.
type Driver string

const (
	DriverEmbedded Driver = "embedded" // fixtures compiled into the binary (default)
	DriverDir      Driver = "dir"      // JSON files in a local directory
	DriverSQLite   Driver = "sqlite"   // resources table in a SQLite database
	DriverS3       Driver = "s3"       // objects in an S3 / MinIO bucket
	DriverPostgres Driver = "postgres" // resources table in Postgres
	DriverMemory   Driver = "memory"   // in-memory map (tests)
)

// ErrNotFound is returned when a named resource does not exist.
var ErrNotFound = errors.New("resource: not found")

// Loader returns the raw bytes of a named resource.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Driver() Driver
}

// Lister is implemented by loaders that can enumerate their resources.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Writer is implemented by loaders that accept new resources.
type Writer interface {
	Put(ctx context.Context, name string, data []byte) error
}

// fileName maps a resource name onto its file or object name.
func fileName(name string) string {
	return name + constants.FixtureExtension
}

// resourceName strips the fixture extension from a file or object name.
// ok is false when the name is not a fixture file.
func resourceName(file string) (string, bool) {
	if !strings.HasSuffix(file, constants.FixtureExtension) {
		return "", false
	}
	return strings.TrimSuffix(file, constants.FixtureExtension), true
}

// validName rejects names that could escape a backend's namespace.
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
