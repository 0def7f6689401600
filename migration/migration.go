// Package migration is a minimal named-migration registry. Migrations
// register themselves from init() and run once, in name order, recorded
// in the schema_migrations table.
package migration

import (
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Func applies one migration.
type Func func(db *gorm.DB) error

type appliedMigration struct {
	Name      string `gorm:"primaryKey;size:100"`
	AppliedAt time.Time
}

func (appliedMigration) TableName() string {
	return "schema_migrations"
}

var registry = map[string]Func{}

// Register adds a migration under a unique name. Names sort
// chronologically (date-prefixed), which fixes the run order.
func Register(name string, fn Func) error {
	if _, exists := registry[name]; exists {
		return fmt.Errorf("migration %q registered twice", name)
	}
	registry[name] = fn
	return nil
}

// RunAll applies every registered migration that has not run yet.
func RunAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var applied appliedMigration
		err := db.Where("name = ?", name).First(&applied).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("check migration %s: %w", name, err)
		}

		log.Printf("migration: applying %s", name)
		if err := registry[name](db); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		record := appliedMigration{Name: name, AppliedAt: time.Now()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
	}
	return nil
}
