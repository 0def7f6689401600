package markets

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"marketboard/handlers/math/probabilities/lmsr"
	"marketboard/middleware"
	"marketboard/models"
	"marketboard/security"
	"marketboard/setup"
)

// CreateMarketRequest is the request body for creating a market.
type CreateMarketRequest struct {
	QuestionTitle      string    `json:"questionTitle"`
	Description        string    `json:"description"`
	ResolutionDateTime time.Time `json:"resolutionDateTime"`
	YesLabel           string    `json:"yesLabel,omitempty"`
	NoLabel            string    `json:"noLabel,omitempty"`
	Category           string    `json:"category,omitempty"`
	// InitialProbability overrides the configured default when in (0,1).
	InitialProbability float64 `json:"initialProbability,omitempty"`
	// LiquidityB overrides the configured default when positive.
	LiquidityB float64 `json:"liquidityB,omitempty"`
}

// CreateMarketResponse is returned after creating a market.
type CreateMarketResponse struct {
	Success bool          `json:"success"`
	Market  models.Market `json:"market"`
}

// CreateMarketHandler handles POST /v0/markets. Requires an operator
// session token.
func CreateMarketHandler(db *gorm.DB, econ setup.EconomicConfig, jwtSecret []byte) http.HandlerFunc {
	securityService := security.NewService()

	return func(w http.ResponseWriter, r *http.Request) {
		user, httpErr := middleware.ValidateTokenAndGetUser(r, db, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req CreateMarketRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		if req.ResolutionDateTime.Before(time.Now().Add(time.Hour)) {
			http.Error(w, "Resolution time must be at least 1 hour in the future", http.StatusBadRequest)
			return
		}
		if req.LiquidityB < 0 {
			http.Error(w, "Liquidity must be positive", http.StatusBadRequest)
			return
		}

		sanitized, err := securityService.SanitizeMarket(security.MarketInput{
			Title:       req.QuestionTitle,
			Description: req.Description,
			YesLabel:    req.YesLabel,
			NoLabel:     req.NoLabel,
		})
		if err != nil {
			http.Error(w, "Invalid market data: "+err.Error(), http.StatusBadRequest)
			return
		}

		yesLabel := sanitized.YesLabel
		noLabel := sanitized.NoLabel
		if yesLabel == "" {
			yesLabel = "YES"
		}
		if noLabel == "" {
			noLabel = "NO"
		}
		category := req.Category
		if category == "" {
			category = "general"
		}

		initial := econ.InitialProbability
		if req.InitialProbability > 0 && req.InitialProbability < 1 {
			initial = req.InitialProbability
		}
		initial = lmsr.ClampProbability(initial)

		b := econ.LiquidityB
		if req.LiquidityB > 0 {
			b = req.LiquidityB
		}
		maker, err := lmsr.NewMarketMaker(b)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		qYes, qNo := maker.SharesForProbability(initial)

		newMarket := models.Market{
			ExternalID:         uuid.NewString(),
			QuestionTitle:      sanitized.Title,
			Description:        sanitized.Description,
			DescriptionHTML:    sanitized.DescriptionHTML,
			ResolutionDateTime: req.ResolutionDateTime,
			YesLabel:           yesLabel,
			NoLabel:            noLabel,
			Category:           category,
			CreatorUsername:    user.Username,
			InitialProbability: initial,
			CurrentProbability: initial,
			QYes:               qYes,
			QNo:                qNo,
			LiquidityB:         req.LiquidityB,
		}

		if result := db.Create(&newMarket); result.Error != nil {
			http.Error(w, "Error creating market: "+result.Error.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateMarketResponse{
			Success: true,
			Market:  newMarket,
		})
	}
}
