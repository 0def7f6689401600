package agents

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"marketboard/models"
)

// LeaderboardEntry is one ranked row of the agent leaderboard panel.
type LeaderboardEntry struct {
	Rank               int64   `json:"rank"`
	AgentID            int64   `json:"agentId"`
	AgentName          string  `json:"agentName"`
	PersonalEmoji      string  `json:"personalEmoji,omitempty"`
	Reputation         float64 `json:"reputation"`
	TotalPredictions   int64   `json:"totalPredictions"`
	CorrectPredictions int64   `json:"correctPredictions"`
	TotalWagered       int64   `json:"totalWagered"`
	TotalWon           int64   `json:"totalWon"`
}

// LeaderboardHandler handles GET /v0/leaderboard
func LeaderboardHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortBy := r.URL.Query().Get("sort")

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

		var orderBy string
		switch sortBy {
		case "predictions":
			orderBy = "total_predictions DESC"
		case "wagered":
			orderBy = "total_wagered DESC"
		case "won":
			orderBy = "total_won DESC"
		default:
			orderBy = "reputation DESC"
		}

		offset := (page - 1) * pageSize

		var ranked []models.Agent
		result := db.Where("is_active = ?", true).
			Order(orderBy).
			Limit(pageSize).
			Offset(offset).
			Find(&ranked)
		if result.Error != nil {
			http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
			return
		}

		entries := make([]LeaderboardEntry, len(ranked))
		for i, agent := range ranked {
			entries[i] = LeaderboardEntry{
				Rank:               int64(offset + i + 1),
				AgentID:            agent.ID,
				AgentName:          agent.Name,
				PersonalEmoji:      agent.PersonalEmoji,
				Reputation:         agent.Reputation,
				TotalPredictions:   agent.TotalPredictions,
				CorrectPredictions: agent.CorrectPredictions,
				TotalWagered:       agent.TotalWagered,
				TotalWon:           agent.TotalWon,
			}
		}

		var totalAgents int64
		db.Model(&models.Agent{}).Where("is_active = ?", true).Count(&totalAgents)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"entries":  entries,
			"total":    totalAgents,
			"page":     page,
			"pageSize": pageSize,
		})
	}
}
