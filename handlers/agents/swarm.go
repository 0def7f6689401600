package agents

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"marketboard/models"
)

// SwarmConsensus is the aggregated view of every agent position on a
// market, the number behind the dashboard's consensus gauge.
type SwarmConsensus struct {
	MarketID             int64             `json:"marketId"`
	ConsensusProbability float64           `json:"consensusProbability"`
	TotalAgents          int               `json:"totalAgents"`
	TotalBets            int               `json:"totalBets"`
	TotalWagered         int64             `json:"totalWagered"`
	AverageConfidence    float64           `json:"averageConfidence"`
	Breakdown            SwarmBreakdown    `json:"breakdown"`
	TopPredictors        []AgentPrediction `json:"topPredictors"`
}

// SwarmBreakdown shows the split between YES and NO positions.
type SwarmBreakdown struct {
	YesCount  int     `json:"yesCount"`
	NoCount   int     `json:"noCount"`
	YesWeight float64 `json:"yesWeight"`
	NoWeight  float64 `json:"noWeight"`
	YesAmount int64   `json:"yesAmount"`
	NoAmount  int64   `json:"noAmount"`
}

// AgentPrediction is a single agent's position for display.
type AgentPrediction struct {
	AgentName  string  `json:"agentName"`
	Outcome    string  `json:"outcome"`
	Amount     int64   `json:"amount"`
	Confidence float64 `json:"confidence"`
	Reputation float64 `json:"reputation"`
	Weight     float64 `json:"weight"`
}

// GetSwarmConsensusHandler handles GET /v0/markets/{marketId}/swarm
func GetSwarmConsensusHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := strconv.ParseInt(mux.Vars(r)["marketId"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		var market models.Market
		if result := db.First(&market, marketID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				http.Error(w, "Market not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		var bets []models.Bet
		result := db.Where("market_id = ? AND username LIKE ?", marketID, "agent:%").Find(&bets)
		if result.Error != nil {
			http.Error(w, "Failed to fetch agent bets", http.StatusInternalServerError)
			return
		}

		names := make([]string, 0, len(bets))
		for _, bet := range bets {
			names = append(names, strings.TrimPrefix(bet.Username, "agent:"))
		}

		agentMap := make(map[string]models.Agent)
		if len(names) > 0 {
			var swarmAgents []models.Agent
			db.Where("name IN ?", names).Find(&swarmAgents)
			for _, agent := range swarmAgents {
				agentMap[agent.Name] = agent
			}
		}

		consensus := calculateSwarmConsensus(bets, agentMap)
		consensus.MarketID = marketID

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(consensus)
	}
}

// calculateSwarmConsensus computes the reputation-weighted consensus
// probability from agent positions. Each bet contributes its agent's
// weight scaled by the bet's confidence to the side it backs.
func calculateSwarmConsensus(bets []models.Bet, agents map[string]models.Agent) SwarmConsensus {
	consensus := SwarmConsensus{ConsensusProbability: 0.5}
	if len(bets) == 0 {
		return consensus
	}

	seen := make(map[string]bool)
	var confidenceSum float64

	for _, bet := range bets {
		name := strings.TrimPrefix(bet.Username, "agent:")
		agent, known := agents[name]

		weight := 0.5 // unknown agents count at neutral reputation
		reputation := 0.5
		if known {
			weight = agent.CalculateWeight()
			reputation = agent.Reputation
		}

		confidence := bet.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 0.5
		}
		weighted := weight * confidence

		if bet.Outcome == "yes" {
			consensus.Breakdown.YesCount++
			consensus.Breakdown.YesWeight += weighted
			consensus.Breakdown.YesAmount += bet.Amount
		} else {
			consensus.Breakdown.NoCount++
			consensus.Breakdown.NoWeight += weighted
			consensus.Breakdown.NoAmount += bet.Amount
		}

		consensus.TotalBets++
		consensus.TotalWagered += bet.Amount
		confidenceSum += confidence
		seen[name] = true

		consensus.TopPredictors = append(consensus.TopPredictors, AgentPrediction{
			AgentName:  name,
			Outcome:    bet.Outcome,
			Amount:     bet.Amount,
			Confidence: confidence,
			Reputation: reputation,
			Weight:     weighted,
		})
	}

	consensus.TotalAgents = len(seen)
	consensus.AverageConfidence = confidenceSum / float64(len(bets))

	totalWeight := consensus.Breakdown.YesWeight + consensus.Breakdown.NoWeight
	if totalWeight > 0 {
		consensus.ConsensusProbability = consensus.Breakdown.YesWeight / totalWeight
	}

	sort.Slice(consensus.TopPredictors, func(i, j int) bool {
		return consensus.TopPredictors[i].Weight > consensus.TopPredictors[j].Weight
	})
	if len(consensus.TopPredictors) > 10 {
		consensus.TopPredictors = consensus.TopPredictors[:10]
	}

	return consensus
}
