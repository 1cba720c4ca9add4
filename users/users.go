package users

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
)

// RoleType is the role a dashboard user holds
type RoleType string

const (
	RoleAdmin      RoleType = "admin"      // Manages customers, technicians, services and invoices
	RoleTechnician RoleType = "technician" // Works scheduled jobs and sees their customers
	RoleCustomer   RoleType = "customer"   // Sees their own schedules and invoices
)

// MinPasswordLength matches the login form rule of the dashboard
const MinPasswordLength = 6

// User is the profile record returned by the backend and cached in the token store
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           RoleType  `json:"role"`
	Phone          *string   `json:"phone,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Specialization *string   `json:"specialization,omitempty"` // technicians only
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	PasswordHash string `json:"-"` // only populated by backend-side repositories
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	Role           RoleType `json:"role"`
	Phone          *string  `json:"phone,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Specialization *string  `json:"specialization,omitempty"`
}

// RegisteredProfile is what the backend returns for a successful registration.
// No tokens are issued; the user still has to log in.
type RegisteredProfile struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  RoleType `json:"role"`
}

func ParseRole(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%q: %w", s, dasherrors.ErrInvalidRole)
	}
	return r, nil
}

func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleCustomer:
		return true
	}
	return false
}

// HasRole reports whether the user holds any of the given roles
func (u *User) HasRole(roles ...RoleType) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// DisplayName falls back to the email when no name is set
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Email
}

// ValidateCredentials checks the shape of login input before it is sent anywhere
func ValidateCredentials(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// Validate checks a registration request. Self-registration is limited to
// customers and technicians; admins are provisioned by the backend.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if err := ValidateCredentials(r.Email, r.Password); err != nil {
		return err
	}
	if r.Role != RoleCustomer && r.Role != RoleTechnician {
		return fmt.Errorf("role %q cannot self-register: %w", r.Role, dasherrors.ErrInvalidRole)
	}
	return nil
}

// ValidatePasswordStrength checks if password meets backend security requirements:
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
