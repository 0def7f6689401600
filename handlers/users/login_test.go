package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"marketboard/middleware"
	"marketboard/models"
)

var testSecret = []byte("test-secret")

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	user := &models.User{Username: "operator", UserType: "ADMIN"}
	require.NoError(t, user.SetPassword("hunter22"))
	require.NoError(t, db.Create(user).Error)
	return db
}

func login(t *testing.T, db *gorm.DB, req LoginRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	LoginHandler(db, testSecret)(w, httptest.NewRequest(http.MethodPost, "/v0/login", bytes.NewReader(body)))
	return w
}

func TestLoginHandlerIssuesUsableToken(t *testing.T) {
	db := testDB(t)

	w := login(t, db, LoginRequest{Username: "operator", Password: "hunter22"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "operator", resp.Username)
	assert.Equal(t, "ADMIN", resp.UserType)
	require.NotEmpty(t, resp.Token)

	r := httptest.NewRequest(http.MethodGet, "/v0/markets", nil)
	r.Header.Set("Authorization", "Bearer "+resp.Token)
	user, httpErr := middleware.ValidateTokenAndGetUser(r, db, testSecret)
	require.Nil(t, httpErr)
	assert.Equal(t, "operator", user.Username)
}

func TestLoginHandlerRejections(t *testing.T) {
	db := testDB(t)

	cases := []struct {
		name string
		req  LoginRequest
		code int
	}{
		{"wrong password", LoginRequest{Username: "operator", Password: "nope"}, http.StatusUnauthorized},
		{"unknown user", LoginRequest{Username: "ghost", Password: "hunter22"}, http.StatusUnauthorized},
		{"empty credentials", LoginRequest{}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, login(t, db, tc.req).Code)
		})
	}
}
