package models

import (
	"crypto/rand"
	"encoding/hex"
	"gorm.io/gorm"
)

// Agent is a simulated trader that participates in markets through the
// API. Agents authenticate with an API key, never a session.
type Agent struct {
	gorm.Model
	ID          int64  `json:"id" gorm:"primary_key"`
	Name        string `json:"name" gorm:"unique;not null;size:50"`
	Description string `json:"description" gorm:"size:500"`

	// Authentication
	APIKey string `json:"apiKey,omitempty" gorm:"unique;not null"`

	// Reputation System
	Reputation         float64 `json:"reputation" gorm:"default:0.5"`
	TotalPredictions   int64   `json:"totalPredictions" gorm:"default:0"`
	CorrectPredictions int64   `json:"correctPredictions" gorm:"default:0"`
	TotalWagered       int64   `json:"totalWagered" gorm:"default:0"`
	TotalWon           int64   `json:"totalWon" gorm:"default:0"`

	// Status
	IsActive bool `json:"isActive" gorm:"default:true"`

	// Profile
	FrameworkType string `json:"frameworkType,omitempty" gorm:"size:50"`
	PersonalEmoji string `json:"personalEmoji,omitempty" gorm:"size:10"`

	// Virtual balance for the agent
	AccountBalance int64 `json:"accountBalance" gorm:"default:10000"`
}

// AgentPublic is the public-facing agent profile
type AgentPublic struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Reputation         float64 `json:"reputation"`
	TotalPredictions   int64   `json:"totalPredictions"`
	CorrectPredictions int64   `json:"correctPredictions"`
	IsActive           bool    `json:"isActive"`
	FrameworkType      string  `json:"frameworkType,omitempty"`
	PersonalEmoji      string  `json:"personalEmoji,omitempty"`
}

// ToPublic converts Agent to AgentPublic (hides sensitive fields)
func (a *Agent) ToPublic() AgentPublic {
	return AgentPublic{
		ID:                 a.ID,
		Name:               a.Name,
		Description:        a.Description,
		Reputation:         a.Reputation,
		TotalPredictions:   a.TotalPredictions,
		CorrectPredictions: a.CorrectPredictions,
		IsActive:           a.IsActive,
		FrameworkType:      a.FrameworkType,
		PersonalEmoji:      a.PersonalEmoji,
	}
}

// GenerateAPIKey creates a secure random API key for an agent
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "board_sk_" + hex.EncodeToString(bytes), nil
}

// UpdateReputation recalculates the agent's reputation from its resolved
// prediction history. Bayesian smoothing toward 0.5 with a prior strength
// of 10 keeps the score from swinging wildly on a handful of predictions.
func (a *Agent) UpdateReputation() {
	if a.TotalPredictions == 0 {
		a.Reputation = 0.5
		return
	}

	accuracy := float64(a.CorrectPredictions) / float64(a.TotalPredictions)

	priorStrength := 10.0
	a.Reputation = (accuracy*float64(a.TotalPredictions) + 0.5*priorStrength) /
		(float64(a.TotalPredictions) + priorStrength)
}

// CalculateWeight returns the consensus-vote weight for this agent,
// reputation scaled by an experience factor capped at 10x.
func (a *Agent) CalculateWeight() float64 {
	experienceFactor := 1.0
	if a.TotalPredictions > 0 {
		experienceFactor = minFloat(10.0, 1.0+float64(a.TotalPredictions)/100.0)
	}
	return a.Reputation * experienceFactor
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
