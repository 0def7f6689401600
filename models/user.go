package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is a dashboard operator account. Agents are not users; they are
// authenticated separately by API key.
type User struct {
	gorm.Model
	ID             int64  `json:"id" gorm:"primary_key"`
	Username       string `json:"username" gorm:"unique;not null;size:30"`
	DisplayName    string `json:"displayName" gorm:"size:50"`
	Password       string `json:"-" gorm:"not null"`
	UserType       string `json:"userType" gorm:"default:USER"` // "USER" or "ADMIN"
	PersonalEmoji  string `json:"personalEmoji,omitempty" gorm:"size:10"`
	Description    string `json:"description,omitempty" gorm:"size:500"`
	AccountBalance int64  `json:"accountBalance" gorm:"default:0"`
}

// SetPassword hashes and stores the given plaintext password.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}
