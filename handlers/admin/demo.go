package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"marketboard/middleware"
	"marketboard/seed"
	"marketboard/setup"
)

// ResetDemoHandler handles POST /v0/admin/reset-demo: wipes all market
// data and reseeds a fresh demo set. Admin token required.
func ResetDemoHandler(db *gorm.DB, econ setup.EconomicConfig, jwtSecret []byte, adminPassword string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		if err := seed.Wipe(db); err != nil {
			http.Error(w, "Failed to wipe demo data", http.StatusInternalServerError)
			return
		}
		if err := seed.Run(db, econ, adminPassword, seed.DefaultOptions()); err != nil {
			http.Error(w, "Failed to reseed demo data", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Demo data reset",
		})
	}
}

// DeleteMarketHandler handles DELETE /v0/admin/markets/{marketId}.
func DeleteMarketHandler(db *gorm.DB, jwtSecret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		marketID, err := strconv.ParseInt(mux.Vars(r)["marketId"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		// Bets first, market second; no FK cascade in sqlite demo mode.
		if err := db.Exec("DELETE FROM bets WHERE market_id = ?", marketID).Error; err != nil {
			http.Error(w, "Failed to delete bets", http.StatusInternalServerError)
			return
		}
		result := db.Exec("DELETE FROM markets WHERE id = ?", marketID)
		if result.Error != nil {
			http.Error(w, "Failed to delete market", http.StatusInternalServerError)
			return
		}
		if result.RowsAffected == 0 {
			http.Error(w, "Market not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"deleted": marketID,
		})
	}
}
