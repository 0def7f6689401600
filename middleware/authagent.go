package middleware

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"marketboard/models"
)

const agentKeyPrefix = "board_sk_"

// ValidateAgentAPIKey validates an agent's API key and returns the agent.
// The key is read from the X-Agent-API-Key header, or from the
// Authorization header with an "Agent" or "Bearer" scheme.
func ValidateAgentAPIKey(r *http.Request, db *gorm.DB) (*models.Agent, *HTTPError) {
	apiKey := r.Header.Get("X-Agent-API-Key")

	if apiKey == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Agent ") {
			apiKey = strings.TrimPrefix(authHeader, "Agent ")
		} else if strings.HasPrefix(authHeader, "Bearer "+agentKeyPrefix) {
			apiKey = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if apiKey == "" {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Agent API key required. Use X-Agent-API-Key header or 'Agent <key>' in Authorization header",
		}
	}

	if !strings.HasPrefix(apiKey, agentKeyPrefix) {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid API key format",
		}
	}

	var agent models.Agent
	result := db.Where("api_key = ?", apiKey).First(&agent)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &HTTPError{
				StatusCode: http.StatusUnauthorized,
				Message:    "Invalid agent API key",
			}
		}
		return nil, &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Database error validating agent",
		}
	}

	if !agent.IsActive {
		return nil, &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Agent account is deactivated",
		}
	}

	return &agent, nil
}
