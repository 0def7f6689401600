package markets

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"marketboard/handlers/math/probabilities/lmsr"
	"marketboard/models"
	"marketboard/setup"
)

// CostCurveResponse is the payload behind the dashboard's impact chart.
// The client does its own coordinate scaling and path construction.
type CostCurveResponse struct {
	MarketID           int64             `json:"marketId"`
	CurrentProbability float64           `json:"currentProbability"`
	LiquidityB         float64           `json:"liquidityB"`
	MaxOperatorLoss    float64           `json:"maxOperatorLoss"`
	Points             []lmsr.CurvePoint `json:"points"`
}

// QuoteResponse is a single cost-to-move figure for calculator strips.
type QuoteResponse struct {
	MarketID           int64   `json:"marketId"`
	CurrentProbability float64 `json:"currentProbability"`
	TargetProbability  float64 `json:"targetProbability"`
	LiquidityB         float64 `json:"liquidityB"`
	Cost               float64 `json:"cost"`
}

func loadMarket(w http.ResponseWriter, r *http.Request, db *gorm.DB) (*models.Market, bool) {
	marketID, err := strconv.ParseInt(mux.Vars(r)["marketId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid market ID", http.StatusBadRequest)
		return nil, false
	}

	var market models.Market
	if result := db.First(&market, marketID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Market not found", http.StatusNotFound)
			return nil, false
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return nil, false
	}
	return &market, true
}

// writeEngineError maps pricing failures to a body the dashboard can
// render as an explicit error state; it must never guess a curve.
func writeEngineError(w http.ResponseWriter, err error) {
	var paramErr *lmsr.InvalidParameterError
	if errors.As(err, &paramErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": paramErr.Error(),
			"param": paramErr.Param,
		})
		return
	}
	http.Error(w, "Pricing failed", http.StatusInternalServerError)
}

// CostCurveHandler handles GET /v0/markets/{marketId}/costcurve.
// Optional query params: steps (2-500) and window (probability span).
func CostCurveHandler(db *gorm.DB, econ setup.EconomicConfig) http.HandlerFunc {
	pricer := lmsr.NewPricer(econ.ImpactScale)

	return func(w http.ResponseWriter, r *http.Request) {
		market, ok := loadMarket(w, r, db)
		if !ok {
			return
		}

		opts := lmsr.CurveOptions{Window: econ.CurveWindow, Steps: econ.CurveSteps}
		if s := r.URL.Query().Get("steps"); s != "" {
			steps, err := strconv.Atoi(s)
			if err != nil || steps < 2 || steps > 500 {
				http.Error(w, "steps must be an integer between 2 and 500", http.StatusBadRequest)
				return
			}
			opts.Steps = steps
		}
		if ws := r.URL.Query().Get("window"); ws != "" {
			window, err := strconv.ParseFloat(ws, 64)
			if err != nil || window <= 0 || window > 1 {
				http.Error(w, "window must be a probability span in (0, 1]", http.StatusBadRequest)
				return
			}
			opts.Window = window
		}

		b := market.Liquidity(econ.LiquidityB)
		points, err := pricer.MoveCostCurve(market.CurrentProbability, b, opts)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CostCurveResponse{
			MarketID:           market.ID,
			CurrentProbability: lmsr.ClampProbability(market.CurrentProbability),
			LiquidityB:         b,
			MaxOperatorLoss:    b * math.Ln2,
			Points:             points,
		})
	}
}

// QuoteHandler handles GET /v0/markets/{marketId}/quote?target=0.55.
func QuoteHandler(db *gorm.DB, econ setup.EconomicConfig) http.HandlerFunc {
	pricer := lmsr.NewPricer(econ.ImpactScale)

	return func(w http.ResponseWriter, r *http.Request) {
		market, ok := loadMarket(w, r, db)
		if !ok {
			return
		}

		target, err := strconv.ParseFloat(r.URL.Query().Get("target"), 64)
		if err != nil {
			http.Error(w, "target query parameter required", http.StatusBadRequest)
			return
		}

		b := market.Liquidity(econ.LiquidityB)
		cost, err := pricer.MoveCost(market.CurrentProbability, target, b)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(QuoteResponse{
			MarketID:           market.ID,
			CurrentProbability: lmsr.ClampProbability(market.CurrentProbability),
			TargetProbability:  lmsr.ClampProbability(target),
			LiquidityB:         b,
			Cost:               cost,
		})
	}
}
