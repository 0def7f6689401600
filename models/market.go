package models

import (
	"time"

	"gorm.io/gorm"
)

type Market struct {
	gorm.Model
	ID                 int64     `json:"id" gorm:"primary_key"`
	ExternalID         string    `json:"externalId" gorm:"uniqueIndex;size:36"`
	QuestionTitle      string    `json:"questionTitle" gorm:"not null"`
	Description        string    `json:"description"`
	DescriptionHTML    string    `json:"descriptionHtml"`
	OutcomeType        string    `json:"outcomeType" gorm:"default:BINARY"`
	ResolutionDateTime time.Time `json:"resolutionDateTime" gorm:"not null"`
	IsResolved         bool      `json:"isResolved"`
	ResolutionResult   string    `json:"resolutionResult"`
	YesLabel           string    `json:"yesLabel" gorm:"default:YES"`
	NoLabel            string    `json:"noLabel" gorm:"default:NO"`
	CreatorUsername    string    `json:"creatorUsername" gorm:"not null"`
	Category           string    `json:"category" gorm:"default:general;index"`

	// LMSR state. QYes/QNo are outstanding shares; CurrentProbability is
	// denormalized from them so the dashboard can list markets without
	// recomputing prices.
	InitialProbability float64 `json:"initialProbability" gorm:"not null"`
	CurrentProbability float64 `json:"currentProbability"`
	QYes               float64 `json:"qYes"`
	QNo                float64 `json:"qNo"`

	// LiquidityB overrides the configured default when positive.
	LiquidityB float64 `json:"liquidityB"`

	// Engagement stats for the dashboard listing.
	TotalBets   int64 `json:"totalBets" gorm:"default:0"`
	TotalVolume int64 `json:"totalVolume" gorm:"default:0"`
}

// Liquidity returns the market's effective liquidity parameter, falling
// back to the given default when no override is set. A corrupt negative
// override is returned as-is so the pricing engine rejects it loudly
// instead of pricing against a silently substituted default.
func (m *Market) Liquidity(fallback float64) float64 {
	if m.LiquidityB != 0 {
		return m.LiquidityB
	}
	return fallback
}
