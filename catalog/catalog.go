// Package catalog lists the databases of a PostgreSQL server that are
// candidates for a backup run.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

const ListDatabasesQuery = "SELECT datname FROM pg_database WHERE NOT datistemplate ORDER BY datname;"

// ErrNoDatabases indicates that nothing is left to dump after applying the
// exclusion list. An empty backup run is treated as a failure, not a no-op.
var ErrNoDatabases = errors.New("no databases left to dump after applying the exclusion list")

type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{
		db,
	}
}

// ListDatabases returns all non-template databases in catalog order, minus
// any name present in exclude (exact match).
func (c *Catalog) ListDatabases(exclude []string) ([]string, error) {
	rows, err := c.db.Query(ListDatabasesQuery)

	if err != nil {
		return nil, fmt.Errorf("fail to run query %s, error: %v", ListDatabasesQuery, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("fail to close database rows", slog.Any("error", err), slog.Any("query", ListDatabasesQuery))
		}
	}()

	var databases []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("fail to scan database rows, query: %s, error: %v", ListDatabasesQuery, err)
		}

		if slices.Contains(exclude, name) {
			slog.Debug("excluding database from backup", slog.String("database", name))
			continue
		}

		databases = append(databases, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fail to iterate database rows, query: %s, error: %v", ListDatabasesQuery, err)
	}

	if len(databases) == 0 {
		return nil, ErrNoDatabases
	}

	return databases, nil
}
