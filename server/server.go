// Package server wires the HTTP API: routes, CORS, rate limiting.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"marketboard/handlers/admin"
	"marketboard/handlers/agents"
	"marketboard/handlers/markets"
	"marketboard/handlers/users"
	"marketboard/middleware"
	"marketboard/setup"
)

// Deps bundles what the handlers need.
type Deps struct {
	DB            *gorm.DB
	Config        setup.Config
	JWTSecret     []byte
	AdminPassword string
}

// NewRouter builds the full route table.
func NewRouter(d Deps) *mux.Router {
	econ := d.Config.Economics

	r := mux.NewRouter()

	// Dashboard surface
	r.HandleFunc("/v0/markets", markets.ListMarketsHandler(d.DB)).Methods(http.MethodGet)
	r.HandleFunc("/v0/markets", markets.CreateMarketHandler(d.DB, econ, d.JWTSecret)).Methods(http.MethodPost)
	r.HandleFunc("/v0/markets/{marketId}", markets.GetMarketHandler(d.DB)).Methods(http.MethodGet)
	r.HandleFunc("/v0/markets/{marketId}/costcurve", markets.CostCurveHandler(d.DB, econ)).Methods(http.MethodGet)
	r.HandleFunc("/v0/markets/{marketId}/quote", markets.QuoteHandler(d.DB, econ)).Methods(http.MethodGet)
	r.HandleFunc("/v0/markets/{marketId}/swarm", agents.GetSwarmConsensusHandler(d.DB)).Methods(http.MethodGet)
	r.HandleFunc("/v0/leaderboard", agents.LeaderboardHandler(d.DB)).Methods(http.MethodGet)

	// Agent surface
	r.HandleFunc("/v0/agents/register", agents.RegisterHandler(d.DB, econ)).Methods(http.MethodPost)
	r.HandleFunc("/v0/agents/me", agents.MeHandler(d.DB)).Methods(http.MethodGet)
	r.HandleFunc("/v0/agents/bet", agents.PlaceBetHandler(d.DB, econ)).Methods(http.MethodPost)
	r.HandleFunc("/v0/agents/bets", agents.GetAgentBetsHandler(d.DB)).Methods(http.MethodGet)

	// Operator surface
	r.HandleFunc("/v0/login", users.LoginHandler(d.DB, d.JWTSecret)).Methods(http.MethodPost)
	r.HandleFunc("/v0/admin/reset-demo", admin.ResetDemoHandler(d.DB, econ, d.JWTSecret, d.AdminPassword)).Methods(http.MethodPost)
	r.HandleFunc("/v0/admin/markets/{marketId}", admin.DeleteMarketHandler(d.DB, d.JWTSecret)).Methods(http.MethodDelete)

	return r
}

// ListenAndServe starts the API with CORS and rate limiting applied.
func ListenAndServe(d Deps) error {
	limiter := middleware.NewRateLimiter(d.Config.Server.RateLimit, d.Config.Server.RateBurst)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{d.Config.Server.CORSOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Agent-API-Key"},
	})

	handler := c.Handler(limiter.Middleware(NewRouter(d)))
	addr := fmt.Sprintf(":%d", d.Config.Server.Port)
	log.Printf("server: listening on %s", addr)
	return http.ListenAndServe(addr, handler)
}
