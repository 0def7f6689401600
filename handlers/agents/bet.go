package agents

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"marketboard/handlers/math/probabilities/lmsr"
	"marketboard/middleware"
	"marketboard/models"
	"marketboard/setup"
)

// BetRequest is the request body for placing an agent bet
type BetRequest struct {
	MarketID   int64   `json:"marketId"`
	Amount     int64   `json:"amount"`
	Outcome    string  `json:"outcome"`    // "yes" or "no"
	Confidence float64 `json:"confidence"` // 0-1, how confident the agent is
}

// BetResponse is returned after placing a bet
type BetResponse struct {
	Success     bool                `json:"success"`
	Bet         models.Bet          `json:"bet"`
	Simulation  lmsr.BetSimulation  `json:"simulation"`
	NewBalance  int64               `json:"newBalance"`
	MarketState MarketStateResponse `json:"marketState"`
}

// MarketStateResponse is the post-trade market state for display.
type MarketStateResponse struct {
	PriceYes    float64 `json:"priceYes"`
	PriceNo     float64 `json:"priceNo"`
	TotalVolume int64   `json:"totalVolume"`
}

// PlaceBetHandler handles POST /v0/agents/bet. The trade is priced with
// the exact LMSR cost function, never the display approximation.
func PlaceBetHandler(db *gorm.DB, econ setup.EconomicConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, httpErr := middleware.ValidateAgentAPIKey(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req BetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.MarketID <= 0 {
			http.Error(w, "Market ID is required", http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}
		if req.Outcome != "yes" && req.Outcome != "no" {
			http.Error(w, "Outcome must be 'yes' or 'no'", http.StatusBadRequest)
			return
		}
		if req.Confidence < 0 || req.Confidence > 1 {
			http.Error(w, "Confidence must be between 0 and 1", http.StatusBadRequest)
			return
		}
		if agent.AccountBalance < req.Amount {
			http.Error(w, "Insufficient balance", http.StatusBadRequest)
			return
		}

		var market models.Market
		if result := db.First(&market, req.MarketID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				http.Error(w, "Market not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if market.IsResolved {
			http.Error(w, "Market is already resolved", http.StatusBadRequest)
			return
		}

		maker, err := lmsr.NewMarketMaker(market.Liquidity(econ.LiquidityB))
		if err != nil {
			http.Error(w, "Market liquidity is misconfigured", http.StatusUnprocessableEntity)
			return
		}

		sim := maker.SimulateBet(market.QYes, market.QNo, float64(req.Amount), req.Outcome)

		bet := models.Bet{
			Username:       "agent:" + agent.Name,
			MarketID:       req.MarketID,
			Amount:         req.Amount,
			Outcome:        req.Outcome,
			PlacedAt:       time.Now(),
			Confidence:     req.Confidence,
			SharesReceived: sim.SharesReceived,
			AveragePrice:   sim.AveragePrice,
			ProbabilityAt:  sim.NewPriceYes,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			agent.AccountBalance -= req.Amount
			agent.TotalPredictions++
			agent.TotalWagered += req.Amount
			if result := tx.Save(agent); result.Error != nil {
				return result.Error
			}

			if result := tx.Create(&bet); result.Error != nil {
				return result.Error
			}

			if req.Outcome == "yes" {
				market.QYes += sim.SharesReceived
			} else {
				market.QNo += sim.SharesReceived
			}
			market.CurrentProbability = sim.NewPriceYes
			market.TotalBets++
			market.TotalVolume += req.Amount
			return tx.Save(&market).Error
		})
		if err != nil {
			http.Error(w, "Failed to place bet", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(BetResponse{
			Success:    true,
			Bet:        bet,
			Simulation: sim,
			NewBalance: agent.AccountBalance,
			MarketState: MarketStateResponse{
				PriceYes:    market.CurrentProbability,
				PriceNo:     1 - market.CurrentProbability,
				TotalVolume: market.TotalVolume,
			},
		})
	}
}

// GetAgentBetsHandler handles GET /v0/agents/bets
func GetAgentBetsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, httpErr := middleware.ValidateAgentAPIKey(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var bets []models.Bet
		result := db.Where("username = ?", "agent:"+agent.Name).
			Order("placed_at DESC").
			Find(&bets)
		if result.Error != nil {
			http.Error(w, "Failed to fetch bets", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"bets":    bets,
			"count":   len(bets),
		})
	}
}
