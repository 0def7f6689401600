package models

import (
	"time"

	"gorm.io/gorm"
)

// Bet is a single priced trade against a market's LMSR pool.
type Bet struct {
	gorm.Model
	ID       int64     `json:"id" gorm:"primary_key"`
	Username string    `json:"username" gorm:"not null;index"`
	MarketID int64     `json:"marketId" gorm:"not null;index"`
	Amount   int64     `json:"amount" gorm:"not null"`
	Outcome  string    `json:"outcome" gorm:"not null"` // "yes" or "no"
	PlacedAt time.Time `json:"placedAt"`

	// Confidence is self-reported by agent bettors, 0-1. Defaults to 0.5.
	Confidence float64 `json:"confidence" gorm:"default:0.5"`

	// Filled in at execution time from the LMSR simulation.
	SharesReceived float64 `json:"sharesReceived"`
	AveragePrice   float64 `json:"averagePrice"`
	ProbabilityAt  float64 `json:"probabilityAt"` // YES probability after this bet
}
