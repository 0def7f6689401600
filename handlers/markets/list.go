package markets

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"marketboard/models"
)

// ListMarketsHandler handles GET /v0/markets. Optional query params:
// category, resolved (true/false), page, pageSize.
func ListMarketsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := db.Model(&models.Market{})

		if category := r.URL.Query().Get("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		if resolved := r.URL.Query().Get("resolved"); resolved != "" {
			query = query.Where("is_resolved = ?", resolved == "true")
		}

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
				page = parsed
			}
		}
		pageSize := 50
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
				pageSize = parsed
			}
		}

		var total int64
		query.Count(&total)

		var results []models.Market
		result := query.Order("resolution_date_time ASC").
			Limit(pageSize).
			Offset((page - 1) * pageSize).
			Find(&results)
		if result.Error != nil {
			http.Error(w, "Failed to fetch markets", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"markets":  results,
			"total":    total,
			"page":     page,
			"pageSize": pageSize,
		})
	}
}

// GetMarketHandler handles GET /v0/markets/{marketId}.
func GetMarketHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		market, ok := loadMarket(w, r, db)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(market)
	}
}
