package agents

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"marketboard/middleware"
	"marketboard/models"
	"marketboard/setup"
)

// RegisterRequest is the request body for agent registration
type RegisterRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	FrameworkType string `json:"frameworkType,omitempty"`
	PersonalEmoji string `json:"personalEmoji,omitempty"`
}

// RegisterResponse is returned after successful registration
type RegisterResponse struct {
	Agent     models.AgentPublic `json:"agent"`
	APIKey    string             `json:"apiKey"`
	Important string             `json:"important"`
}

// RegisterHandler handles POST /v0/agents/register
func RegisterHandler(db *gorm.DB, econ setup.EconomicConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if len(req.Name) < 3 || len(req.Name) > 50 {
			http.Error(w, "Agent name must be 3-50 characters", http.StatusBadRequest)
			return
		}
		if len(req.Description) > 500 {
			http.Error(w, "Description must be 500 characters or less", http.StatusBadRequest)
			return
		}

		var existing models.Agent
		if db.Where("name = ?", req.Name).First(&existing).Error == nil {
			http.Error(w, "Agent name already taken", http.StatusConflict)
			return
		}

		apiKey, err := models.GenerateAPIKey()
		if err != nil {
			http.Error(w, "Failed to generate API key", http.StatusInternalServerError)
			return
		}

		agent := models.Agent{
			Name:           req.Name,
			Description:    req.Description,
			APIKey:         apiKey,
			FrameworkType:  req.FrameworkType,
			PersonalEmoji:  req.PersonalEmoji,
			Reputation:     0.5, // Start neutral
			AccountBalance: econ.AgentStartingBalance,
			IsActive:       true,
		}

		if result := db.Create(&agent); result.Error != nil {
			http.Error(w, "Failed to create agent", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisterResponse{
			Agent:     agent.ToPublic(),
			APIKey:    apiKey,
			Important: "Save your API key. It is required for all agent requests and cannot be recovered.",
		})
	}
}

// MeHandler handles GET /v0/agents/me
func MeHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, httpErr := middleware.ValidateAgentAPIKey(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"agent":          agent.ToPublic(),
			"accountBalance": agent.AccountBalance,
		})
	}
}
