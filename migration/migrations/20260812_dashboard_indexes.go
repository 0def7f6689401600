package migrations

import (
	"log"

	"gorm.io/gorm"

	"marketboard/migration"
)

func init() {
	if err := migration.Register("20260812_dashboard_indexes", Migration20260812DashboardIndexes); err != nil {
		log.Fatalf("Failed to register migration 20260812_dashboard_indexes: %v", err)
	}
}

// Migration20260812DashboardIndexes adds the indexes the dashboard
// listing queries lean on.
func Migration20260812DashboardIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_markets_resolved_category ON markets(is_resolved, category)",
		"CREATE INDEX IF NOT EXISTS idx_markets_resolution_time ON markets(resolution_date_time)",
		"CREATE INDEX IF NOT EXISTS idx_agents_reputation ON agents(reputation DESC)",
		"CREATE INDEX IF NOT EXISTS idx_bets_market_placed ON bets(market_id, placed_at)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
