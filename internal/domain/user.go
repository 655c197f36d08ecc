package domain

import "time"

// XPPerLevel is the experience needed to advance one level.
const XPPerLevel = 100

// Account is the identity part of a profile.
type Account struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile is the signed-in user as returned by GET /auth/me/.
type Profile struct {
	User             Account           `json:"user"`
	ExperiencePoints int               `json:"experience_points"`
	CurrentLevel     int               `json:"current_level"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	ModuleProgress   []ModuleProgress  `json:"module_progress,omitempty"`
	Achievements     []UserAchievement `json:"achievements,omitempty"`
	Streaks          []Streak          `json:"streaks,omitempty"`
	ActiveMissions   []MissionProgress `json:"active_missions,omitempty"`
}

// Level mirrors the backend rule: one level per XPPerLevel points, starting at 1.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// Credentials is the body of POST /token/.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is the response of POST /token/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RegisterInput is the body of POST /auth/register/.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=150"`
}

// Credentials returns the login pair for a successful registration.
func (in RegisterInput) Credentials() Credentials {
	return Credentials{Username: in.Username, Password: in.Password}
}

// ProfileUpdate is the body of PATCH /auth/me/. Nil fields are left unchanged.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty" validate:"required_without_all=Email,omitempty,min=1,max=150"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// Achievement is a badge definition.
type Achievement struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	XPReward    int    `json:"xp_reward"`
}

// UserAchievement is an achievement earned by the user.
type UserAchievement struct {
	Achievement Achievement `json:"achievement"`
	UnlockedAt  time.Time   `json:"unlocked_at"`
}
