package markets

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"marketboard/middleware"
	"marketboard/models"
	"marketboard/setup"
)

var testSecret = []byte("test-secret")

func operatorToken(t *testing.T, db *gorm.DB) string {
	t.Helper()
	user := &models.User{Username: "operator", UserType: "ADMIN"}
	require.NoError(t, user.SetPassword("hunter22"))
	require.NoError(t, db.Create(user).Error)

	token, err := middleware.IssueToken(user, testSecret)
	require.NoError(t, err)
	return token
}

func postMarket(t *testing.T, db *gorm.DB, token string, req CreateMarketRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v0/markets", bytes.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	CreateMarketHandler(db, setup.Defaults().Economics, testSecret)(w, r)
	return w
}

func TestCreateMarketHandler(t *testing.T) {
	db := testDB(t)
	token := operatorToken(t, db)

	w := postMarket(t, db, token, CreateMarketRequest{
		QuestionTitle:      "Will the rollout finish on time?",
		Description:        "Resolves **YES** on the announced date.",
		ResolutionDateTime: time.Now().Add(72 * time.Hour),
		Category:           "tech",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateMarketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "operator", resp.Market.CreatorUsername)
	assert.NotEmpty(t, resp.Market.ExternalID)
	assert.Equal(t, 0.5, resp.Market.InitialProbability)
	assert.Equal(t, 0.5, resp.Market.CurrentProbability)
	assert.Equal(t, "YES", resp.Market.YesLabel)
	assert.Contains(t, resp.Market.DescriptionHTML, "<strong>YES</strong>")
	// Even odds need no seed shares on either side.
	assert.Zero(t, resp.Market.QYes)
	assert.Zero(t, resp.Market.QNo)
}

func TestCreateMarketHandlerSeedsSkewedProbability(t *testing.T) {
	db := testDB(t)
	token := operatorToken(t, db)

	w := postMarket(t, db, token, CreateMarketRequest{
		QuestionTitle:      "Will it rain tomorrow?",
		ResolutionDateTime: time.Now().Add(72 * time.Hour),
		InitialProbability: 0.7,
		LiquidityB:         200,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateMarketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 0.7, resp.Market.InitialProbability)
	assert.Equal(t, 200.0, resp.Market.LiquidityB)
	assert.Positive(t, resp.Market.QYes)
	assert.Zero(t, resp.Market.QNo)
}

func TestCreateMarketHandlerRejections(t *testing.T) {
	db := testDB(t)
	token := operatorToken(t, db)
	future := time.Now().Add(72 * time.Hour)

	cases := []struct {
		name  string
		token string
		req   CreateMarketRequest
		code  int
	}{
		{"no token", "", CreateMarketRequest{QuestionTitle: "x", ResolutionDateTime: future}, http.StatusUnauthorized},
		{"missing title", token, CreateMarketRequest{ResolutionDateTime: future}, http.StatusBadRequest},
		{"past resolution", token, CreateMarketRequest{QuestionTitle: "x", ResolutionDateTime: time.Now()}, http.StatusBadRequest},
		{"negative liquidity", token, CreateMarketRequest{QuestionTitle: "x", ResolutionDateTime: future, LiquidityB: -1}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, postMarket(t, db, tc.token, tc.req).Code)
		})
	}
}
