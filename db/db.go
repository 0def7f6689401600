// Package db opens the application database: Postgres when
// DATABASE_URL is set, an embedded sqlite file otherwise (demo mode).
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects using the DSN, or falls back to a local sqlite file
// when the DSN is empty.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open("marketboard.db")
	}

	conn, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}
