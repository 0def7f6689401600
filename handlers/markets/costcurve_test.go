package markets

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"marketboard/models"
	"marketboard/setup"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Market{}, &models.Bet{}))
	return db
}

func testMarket(t *testing.T, db *gorm.DB, probability, liquidity float64) *models.Market {
	t.Helper()
	market := &models.Market{
		ExternalID:         uuid.NewString(),
		QuestionTitle:      "Will the test pass?",
		ResolutionDateTime: time.Now().Add(48 * time.Hour),
		CreatorUsername:    "operator",
		InitialProbability: probability,
		CurrentProbability: probability,
		LiquidityB:         liquidity,
	}
	require.NoError(t, db.Create(market).Error)
	return market
}

func testRouter(db *gorm.DB, econ setup.EconomicConfig) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v0/markets/{marketId}/costcurve", CostCurveHandler(db, econ)).Methods(http.MethodGet)
	r.HandleFunc("/v0/markets/{marketId}/quote", QuoteHandler(db, econ)).Methods(http.MethodGet)
	r.HandleFunc("/v0/markets/{marketId}", GetMarketHandler(db)).Methods(http.MethodGet)
	r.HandleFunc("/v0/markets", ListMarketsHandler(db)).Methods(http.MethodGet)
	return r
}

func get(t *testing.T, router *mux.Router, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestCostCurveHandler(t *testing.T) {
	db := testDB(t)
	econ := setup.Defaults().Economics
	market := testMarket(t, db, 0.5, 0)
	router := testRouter(db, econ)

	w := get(t, router, "/v0/markets/1/costcurve")
	require.Equal(t, http.StatusOK, w.Code)

	var resp CostCurveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, market.ID, resp.MarketID)
	assert.Equal(t, 0.5, resp.CurrentProbability)
	assert.Equal(t, econ.LiquidityB, resp.LiquidityB)
	assert.Positive(t, resp.MaxOperatorLoss)
	require.Len(t, resp.Points, econ.CurveSteps)

	for i := 1; i < len(resp.Points); i++ {
		assert.Greater(t, resp.Points[i].TargetProb, resp.Points[i-1].TargetProb)
	}
}

func TestCostCurveHandlerQueryOverrides(t *testing.T) {
	db := testDB(t)
	testMarket(t, db, 0.5, 0)
	router := testRouter(db, setup.Defaults().Economics)

	w := get(t, router, "/v0/markets/1/costcurve?steps=10&window=0.2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp CostCurveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Points, 10)
	assert.InDelta(t, 0.4, resp.Points[0].TargetProb, 1e-9)
	assert.InDelta(t, 0.6, resp.Points[9].TargetProb, 1e-9)
}

func TestCostCurveHandlerBadRequests(t *testing.T) {
	db := testDB(t)
	testMarket(t, db, 0.5, 0)
	router := testRouter(db, setup.Defaults().Economics)

	cases := []struct {
		name string
		url  string
		code int
	}{
		{"unknown market", "/v0/markets/999/costcurve", http.StatusNotFound},
		{"non-numeric id", "/v0/markets/abc/costcurve", http.StatusBadRequest},
		{"steps too small", "/v0/markets/1/costcurve?steps=1", http.StatusBadRequest},
		{"steps too large", "/v0/markets/1/costcurve?steps=1000", http.StatusBadRequest},
		{"window out of range", "/v0/markets/1/costcurve?window=1.5", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, get(t, router, tc.url).Code)
		})
	}
}

func TestCostCurveHandlerSurfacesEngineError(t *testing.T) {
	db := testDB(t)
	market := testMarket(t, db, 0.5, 0)
	// Corrupt liquidity below the create handler's validation path. The
	// engine must reject it so the dashboard renders an error state
	// instead of a fake curve.
	require.NoError(t, db.Model(market).UpdateColumn("liquidity_b", -5).Error)

	router := testRouter(db, setup.Defaults().Economics)

	w := get(t, router, "/v0/markets/1/costcurve")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "liquidity", body["param"])

	w = get(t, router, "/v0/markets/1/quote?target=0.6")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestQuoteHandler(t *testing.T) {
	db := testDB(t)
	testMarket(t, db, 0.5, 142.5)
	router := testRouter(db, setup.Defaults().Economics)

	w := get(t, router, "/v0/markets/1/quote?target=0.55")
	require.Equal(t, http.StatusOK, w.Code)

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 142.5, resp.LiquidityB)
	assert.Equal(t, 0.55, resp.TargetProbability)
	assert.Positive(t, resp.Cost)

	// Symmetric move from the other side quotes the same cost.
	market2 := testMarket(t, db, 0.55, 142.5)
	w2 := get(t, router, "/v0/markets/"+strconv.FormatInt(market2.ID, 10)+"/quote?target=0.5")
	require.Equal(t, http.StatusOK, w2.Code)

	var resp2 QuoteResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp2))
	assert.InDelta(t, resp.Cost, resp2.Cost, 1e-9)

	// No-op target quotes zero.
	w3 := get(t, router, "/v0/markets/1/quote?target=0.5")
	var resp3 QuoteResponse
	require.NoError(t, json.Unmarshal(w3.Body.Bytes(), &resp3))
	assert.Zero(t, resp3.Cost)
}

func TestQuoteHandlerClampsWildTarget(t *testing.T) {
	db := testDB(t)
	testMarket(t, db, 0.5, 0)
	router := testRouter(db, setup.Defaults().Economics)

	w := get(t, router, "/v0/markets/1/quote?target=0.001")
	require.Equal(t, http.StatusOK, w.Code)

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.01, resp.TargetProbability)
	assert.Positive(t, resp.Cost)
}

func TestQuoteHandlerRequiresTarget(t *testing.T) {
	db := testDB(t)
	testMarket(t, db, 0.5, 0)
	router := testRouter(db, setup.Defaults().Economics)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/v0/markets/1/quote").Code)
}

func TestListMarketsHandler(t *testing.T) {
	db := testDB(t)
	testMarket(t, db, 0.5, 0)
	m := testMarket(t, db, 0.7, 0)
	require.NoError(t, db.Model(m).Updates(map[string]interface{}{"category": "crypto", "is_resolved": true}).Error)

	router := testRouter(db, setup.Defaults().Economics)

	w := get(t, router, "/v0/markets")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Markets []models.Market `json:"markets"`
		Total   int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Markets, 2)
	assert.EqualValues(t, 2, resp.Total)

	w = get(t, router, "/v0/markets?category=crypto&resolved=true")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Markets, 1)
	assert.Equal(t, "crypto", resp.Markets[0].Category)
}
