// Package user defines the user domain entity
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an account in the system
type User struct {
	id                  uuid.UUID
	email               string
	fullName            string
	passwordHash        string
	avatarURL           string
	role                Role
	provider            AuthProvider
	providerID          string
	languagePreference  string
	dietaryRestrictions []DietaryRestriction
	cuisinePreferences  []string
	spiceLevel          SpiceLevel
	isActive            bool
	emailVerified       bool
	lastLoginAt         *time.Time
	createdAt           time.Time
	updatedAt           time.Time
}

// Role represents the role of a user. Route authorization checks
// against the exact set a route declares; there is no implicit
// hierarchy between roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleChef  Role = "CHEF"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored role string to a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(s)) {
	case RoleChef:
		return RoleChef
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// AuthProvider identifies how the account authenticates
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// DietaryRestriction represents dietary restrictions
type DietaryRestriction string

const (
	DietaryRestrictionVegetarian DietaryRestriction = "vegetarian"
	DietaryRestrictionVegan      DietaryRestriction = "vegan"
	DietaryRestrictionGlutenFree DietaryRestriction = "gluten_free"
	DietaryRestrictionDairyFree  DietaryRestriction = "dairy_free"
	DietaryRestrictionHalal      DietaryRestriction = "halal"
)

// SpiceLevel represents a user's spice tolerance
type SpiceLevel string

const (
	SpiceLevelMild   SpiceLevel = "mild"
	SpiceLevelMedium SpiceLevel = "medium"
	SpiceLevelHot    SpiceLevel = "hot"
)

// Domain errors
var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidName     = errors.New("name must be between 2 and 100 characters")
	ErrInvalidPassword = errors.New("password must be at least 6 characters")
	ErrWrongPassword   = errors.New("Invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserDisabled    = errors.New("user account is disabled")
	ErrEmailTaken      = errors.New("email already registered")
)

// NewUser creates a new local account with a bcrypt-hashed password.
// A bcryptCost below bcrypt.MinCost falls back to bcrypt.DefaultCost.
func NewUser(email, fullName, password string, bcryptCost int) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(fullName); err != nil {
		return nil, err
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	now := time.Now()
	return &User{
		id:                 uuid.New(),
		email:              strings.ToLower(email),
		fullName:           fullName,
		passwordHash:       string(hash),
		role:               RoleUser,
		provider:           ProviderLocal,
		languagePreference: "vi",
		spiceLevel:         SpiceLevelMedium,
		isActive:           true,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// NewGoogleUser creates a new account from Google OAuth2 profile data
func NewGoogleUser(email, fullName, avatarURL, providerID string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		id:                 uuid.New(),
		email:              strings.ToLower(email),
		fullName:           fullName,
		avatarURL:          avatarURL,
		role:               RoleUser,
		provider:           ProviderGoogle,
		providerID:         providerID,
		languagePreference: "vi",
		spiceLevel:         SpiceLevelMedium,
		isActive:           true,
		emailVerified:      true,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// Reconstruct rebuilds a user from persisted state. Used by repositories.
func Reconstruct(
	id uuid.UUID,
	email, fullName, passwordHash, avatarURL string,
	role Role,
	provider AuthProvider,
	providerID, languagePreference string,
	dietaryRestrictions []DietaryRestriction,
	cuisinePreferences []string,
	spiceLevel SpiceLevel,
	isActive, emailVerified bool,
	lastLoginAt *time.Time,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:                  id,
		email:               email,
		fullName:            fullName,
		passwordHash:        passwordHash,
		avatarURL:           avatarURL,
		role:                role,
		provider:            provider,
		providerID:          providerID,
		languagePreference:  languagePreference,
		dietaryRestrictions: dietaryRestrictions,
		cuisinePreferences:  cuisinePreferences,
		spiceLevel:          spiceLevel,
		isActive:            isActive,
		emailVerified:       emailVerified,
		lastLoginAt:         lastLoginAt,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// RecordLogin stamps the last successful login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.lastLoginAt = &now
	u.updatedAt = now
}

// LinkGoogle converts the account to a Google-backed one, refreshing
// the profile fields Google owns. Returns true when anything changed.
func (u *User) LinkGoogle(fullName, avatarURL, providerID string) bool {
	changed := false
	if fullName != "" && u.fullName != fullName {
		u.fullName = fullName
		changed = true
	}
	if avatarURL != "" && u.avatarURL != avatarURL {
		u.avatarURL = avatarURL
		changed = true
	}
	if u.provider != ProviderGoogle {
		u.provider = ProviderGoogle
		u.providerID = providerID
		changed = true
	}
	if changed {
		u.updatedAt = time.Now()
	}
	return changed
}

// PromoteTo changes the user's role
func (u *User) PromoteTo(role Role) {
	u.role = role
	u.updatedAt = time.Now()
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now()
}

// UpdatePreferences replaces the user's cooking preferences
func (u *User) UpdatePreferences(restrictions []DietaryRestriction, cuisines []string, spice SpiceLevel) {
	u.dietaryRestrictions = restrictions
	u.cuisinePreferences = cuisines
	if spice != "" {
		u.spiceLevel = spice
	}
	u.updatedAt = time.Now()
}

// Accessors

func (u *User) ID() uuid.UUID                             { return u.id }
func (u *User) Email() string                             { return u.email }
func (u *User) FullName() string                          { return u.fullName }
func (u *User) PasswordHash() string                      { return u.passwordHash }
func (u *User) AvatarURL() string                         { return u.avatarURL }
func (u *User) Role() Role                                { return u.role }
func (u *User) Provider() AuthProvider                    { return u.provider }
func (u *User) ProviderID() string                        { return u.providerID }
func (u *User) LanguagePreference() string                { return u.languagePreference }
func (u *User) DietaryRestrictions() []DietaryRestriction { return u.dietaryRestrictions }
func (u *User) CuisinePreferences() []string              { return u.cuisinePreferences }
func (u *User) SpiceLevel() SpiceLevel                    { return u.spiceLevel }
func (u *User) IsActive() bool                            { return u.isActive }
func (u *User) EmailVerified() bool                       { return u.emailVerified }
func (u *User) LastLoginAt() *time.Time                   { return u.lastLoginAt }
func (u *User) CreatedAt() time.Time                      { return u.createdAt }
func (u *User) UpdatedAt() time.Time                      { return u.updatedAt }

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 100 {
		return ErrInvalidName
	}
	return nil
}
