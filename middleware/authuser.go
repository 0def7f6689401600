package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"marketboard/models"
)

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 24 * time.Hour

// UserClaims are the JWT claims carried by a dashboard session token.
type UserClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the given user.
func IssueToken(user *models.User, secret []byte) (string, error) {
	claims := UserClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			Subject:   user.Username,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateTokenAndGetUser checks the request's bearer token and loads
// the matching user.
func ValidateTokenAndGetUser(r *http.Request, db *gorm.DB, secret []byte) (*models.User, *HTTPError) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Bearer token required",
		}
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid or expired token",
		}
	}

	var user models.User
	if result := db.Where("username = ?", claims.Username).First(&user); result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &HTTPError{
				StatusCode: http.StatusUnauthorized,
				Message:    "Unknown user",
			}
		}
		return nil, &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Database error validating user",
		}
	}

	return &user, nil
}

// ValidateAdmin requires a valid token belonging to an ADMIN user.
func ValidateAdmin(r *http.Request, db *gorm.DB, secret []byte) (*models.User, *HTTPError) {
	user, httpErr := ValidateTokenAndGetUser(r, db, secret)
	if httpErr != nil {
		return nil, httpErr
	}
	if user.UserType != "ADMIN" {
		return nil, &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Admin access required",
		}
	}
	return user, nil
}
