package devserver

import (
	"fmt"
	"unicode"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"golang.org/x/crypto/bcrypt"
)

// account is a user as the backend stores it
type account struct {
	adminapi.User
	PasswordHash string `json:"-"` // never serialize
}

// canUseAdminPanel reports whether the account may log in to the admin panel
func (a *account) canUseAdminPanel() bool {
	return a.Status == adminapi.UserActive && (a.Role == adminapi.RoleAdmin || a.Role == adminapi.RoleEditor)
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
