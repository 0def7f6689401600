// Package seed populates a fresh database with demo markets, agents and
// bets so the dashboard has something to render in mock-data mode.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"marketboard/handlers/math/probabilities/lmsr"
	"marketboard/models"
	"marketboard/setup"
)

// Options controls how much demo data gets generated.
type Options struct {
	Markets       int
	Agents        int
	BetsPerMarket int
	// RandomSeed makes generation reproducible when non-zero.
	RandomSeed int64
}

// DefaultOptions sizes the demo data for a comfortable dashboard.
func DefaultOptions() Options {
	return Options{Markets: 12, Agents: 8, BetsPerMarket: 6}
}

var categories = []string{"politics", "crypto", "sports", "tech", "science"}

// Run generates demo data inside a single transaction. The admin user
// "admin" with the given password is created as market creator and
// dashboard login.
func Run(db *gorm.DB, econ setup.EconomicConfig, adminPassword string, opts Options) error {
	if opts.RandomSeed != 0 {
		gofakeit.Seed(opts.RandomSeed)
	} else {
		gofakeit.Seed(time.Now().UnixNano())
	}

	maker, err := lmsr.NewMarketMaker(econ.LiquidityB)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Username:    "admin",
			DisplayName: "Administrator",
			UserType:    "ADMIN",
		}
		if err := admin.SetPassword(adminPassword); err != nil {
			return err
		}
		if err := tx.FirstOrCreate(&admin, models.User{Username: "admin"}).Error; err != nil {
			return err
		}

		agents := make([]models.Agent, 0, opts.Agents)
		for i := 0; i < opts.Agents; i++ {
			key, err := models.GenerateAPIKey()
			if err != nil {
				return err
			}
			agent := models.Agent{
				Name: fmt.Sprintf("%s-%s-%d",
					strings.ToLower(gofakeit.HackerAdjective()),
					strings.ToLower(gofakeit.HackerNoun()),
					i+10),
				Description:    gofakeit.HackerPhrase(),
				APIKey:         key,
				FrameworkType:  "demo",
				Reputation:     float64(gofakeit.Number(30, 95)) / 100,
				AccountBalance: econ.AgentStartingBalance,
				IsActive:       true,
			}
			if err := tx.Create(&agent).Error; err != nil {
				return err
			}
			agents = append(agents, agent)
		}

		for i := 0; i < opts.Markets; i++ {
			initial := lmsr.ClampProbability(float64(gofakeit.Number(15, 85)) / 100)
			qYes, qNo := maker.SharesForProbability(initial)

			market := models.Market{
				ExternalID: uuid.NewString(),
				QuestionTitle: fmt.Sprintf("Will %s %s before %s?",
					gofakeit.Company(),
					gofakeit.HackerVerb(),
					time.Now().AddDate(0, 0, 30+i).Format("Jan 2")),
				Description:        gofakeit.Sentence(12),
				ResolutionDateTime: time.Now().AddDate(0, 0, 30+i),
				CreatorUsername:    admin.Username,
				Category:           categories[i%len(categories)],
				InitialProbability: initial,
				CurrentProbability: initial,
				QYes:               qYes,
				QNo:                qNo,
			}
			if err := tx.Create(&market).Error; err != nil {
				return err
			}

			if len(agents) == 0 {
				continue
			}
			for j := 0; j < opts.BetsPerMarket; j++ {
				agent := agents[(i+j)%len(agents)]
				amount := int64(gofakeit.Number(50, 800))
				outcome := "yes"
				if gofakeit.Number(0, 1) == 0 {
					outcome = "no"
				}

				sim := maker.SimulateBet(market.QYes, market.QNo, float64(amount), outcome)
				bet := models.Bet{
					Username:       "agent:" + agent.Name,
					MarketID:       market.ID,
					Amount:         amount,
					Outcome:        outcome,
					PlacedAt:       time.Now().Add(-time.Duration(gofakeit.Number(1, 72)) * time.Hour),
					Confidence:     float64(gofakeit.Number(40, 95)) / 100,
					SharesReceived: sim.SharesReceived,
					AveragePrice:   sim.AveragePrice,
					ProbabilityAt:  sim.NewPriceYes,
				}
				if err := tx.Create(&bet).Error; err != nil {
					return err
				}

				if outcome == "yes" {
					market.QYes += sim.SharesReceived
				} else {
					market.QNo += sim.SharesReceived
				}
				market.CurrentProbability = sim.NewPriceYes
				market.TotalBets++
				market.TotalVolume += amount
			}
			if err := tx.Save(&market).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Wipe removes all demo data. Used by the admin reset endpoint before a
// reseed.
func Wipe(db *gorm.DB) error {
	for _, table := range []string{"bets", "markets", "agents"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the database has no markets yet.
func IsEmpty(db *gorm.DB) bool {
	var count int64
	db.Model(&models.Market{}).Count(&count)
	return count == 0
}
