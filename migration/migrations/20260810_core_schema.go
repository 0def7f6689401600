package migrations

import (
	"log"

	"gorm.io/gorm"

	"marketboard/migration"
	"marketboard/models"
)

func init() {
	if err := migration.Register("20260810_core_schema", Migration20260810CoreSchema); err != nil {
		log.Fatalf("Failed to register migration 20260810_core_schema: %v", err)
	}
}

// Migration20260810CoreSchema creates the base tables: users, markets,
// agents, bets.
func Migration20260810CoreSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Market{},
		&models.Agent{},
		&models.Bet{},
	)
}
