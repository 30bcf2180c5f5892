package database

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// Dialect hides the differences between the supported SQL drivers.
// Repositories write queries with ? placeholders and let the dialect adapt them.
type Dialect interface {
	DriverName() string
	DSN(config DialectConfig) string

	// RewriteQuery adapts ? placeholders to the driver's bind syntax
	RewriteQuery(query string) string

	// SupportsLastInsertId is false for drivers that need INSERT ... RETURNING id
	SupportsLastInsertId() bool

	// ConfigureConnection sizes the pool and turns on driver settings
	ConfigureConnection(db *sql.DB) error

	// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint
	IsUniqueViolation(err error) bool

	MigrationsSubdir() string
	CreateMigrationsTableQuery() string
}

// DialectConfig locates the database: a file path for SQLite, a URL otherwise
type DialectConfig struct {
	Path string
	URL  string
}

// numberedPlaceholders rewrites ? placeholders as $1, $2, ...
func numberedPlaceholders(query string) string {
	rewritten, err := sq.Dollar.ReplacePlaceholders(query)
	if err != nil {
		return query
	}
	return rewritten
}
