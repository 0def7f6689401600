package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"marketboard/middleware"
	"marketboard/models"
)

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token on success.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserType string `json:"userType"`
}

// LoginHandler handles POST /v0/login
func LoginHandler(db *gorm.DB, jwtSecret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "Username and password required", http.StatusBadRequest)
			return
		}

		var user models.User
		if result := db.Where("username = ?", req.Username).First(&user); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if !user.CheckPassword(req.Password) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := middleware.IssueToken(&user, jwtSecret)
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(LoginResponse{
			Token:    token,
			Username: user.Username,
			UserType: user.UserType,
		})
	}
}
