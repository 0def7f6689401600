package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"marketboard/handlers/math/probabilities/lmsr"
	"marketboard/models"
	"marketboard/setup"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Market{}, &models.Agent{}, &models.Bet{}))
	return db
}

func TestRunSeedsConsistentMarkets(t *testing.T) {
	db := testDB(t)
	econ := setup.Defaults().Economics
	opts := Options{Markets: 4, Agents: 3, BetsPerMarket: 5, RandomSeed: 11}

	require.True(t, IsEmpty(db))
	require.NoError(t, Run(db, econ, "demo-password", opts))
	assert.False(t, IsEmpty(db))

	var markets []models.Market
	require.NoError(t, db.Find(&markets).Error)
	require.Len(t, markets, opts.Markets)

	maker, err := lmsr.NewMarketMaker(econ.LiquidityB)
	require.NoError(t, err)

	for _, m := range markets {
		assert.GreaterOrEqual(t, m.CurrentProbability, lmsr.MinProbability)
		assert.LessOrEqual(t, m.CurrentProbability, lmsr.MaxProbability)
		assert.EqualValues(t, opts.BetsPerMarket, m.TotalBets)
		assert.Positive(t, m.TotalVolume)
		// Stored probability matches the LMSR price of the stored shares.
		assert.InDelta(t, maker.PriceYes(m.QYes, m.QNo), m.CurrentProbability, 1e-9)
	}

	var agentCount, betCount int64
	db.Model(&models.Agent{}).Count(&agentCount)
	db.Model(&models.Bet{}).Count(&betCount)
	assert.EqualValues(t, opts.Agents, agentCount)
	assert.EqualValues(t, opts.Markets*opts.BetsPerMarket, betCount)

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.True(t, admin.CheckPassword("demo-password"))
}

func TestWipe(t *testing.T) {
	db := testDB(t)
	require.NoError(t, Run(db, setup.Defaults().Economics, "demo-password", Options{Markets: 2, Agents: 2, BetsPerMarket: 1, RandomSeed: 7}))

	require.NoError(t, Wipe(db))

	assert.True(t, IsEmpty(db))
	var agentCount int64
	db.Model(&models.Agent{}).Count(&agentCount)
	assert.Zero(t, agentCount)
}
