package domain

import "time"

// ModuleState is the lock state of a module for the signed-in user.
type ModuleState string

const (
	ModuleLocked    ModuleState = "locked"
	ModuleUnlocked  ModuleState = "unlocked"
	ModuleCompleted ModuleState = "completed"
)

// MissionState is the progress state of a mission.
type MissionState string

const (
	MissionActive    MissionState = "active"
	MissionCompleted MissionState = "completed"
	MissionFailed    MissionState = "failed"
)

// Module is one growth area the user can unlock with XP.
type Module struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Order       int         `json:"order"`
	XPRequired  int         `json:"xp_required"`
	State       ModuleState `json:"state"`
}

// Open reports whether the module's missions are available.
func (m Module) Open() bool {
	return m.State == ModuleUnlocked || m.State == ModuleCompleted
}

// Mission belongs to a module and rewards XP once completed. IDs are UUIDs.
type Mission struct {
	ID            string    `json:"id"`
	Module        Module    `json:"module"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	XPReward      int       `json:"xp_reward"`
	RequiredLevel int       `json:"required_level"`
	CreatedAt     time.Time `json:"created_at"`
}

// MissionProgress is the user's state on one mission.
type MissionProgress struct {
	Mission     Mission      `json:"mission"`
	State       MissionState `json:"state"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// ModuleProgress is the user's state on one module.
type ModuleProgress struct {
	Module           Module      `json:"module"`
	State            ModuleState `json:"state"`
	ExperiencePoints int         `json:"experience_points"`
	LastActivity     *time.Time  `json:"last_activity,omitempty"`
}

// Streak counts consecutive activity days on a module.
type Streak struct {
	Module        Module     `json:"module"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
}

// ModuleDetail is the lazily fetched decoration of a module.
type ModuleDetail struct {
	Progress ModuleProgress    `json:"progress"`
	Missions []MissionProgress `json:"missions"`
	Streak   Streak            `json:"streak"`
}

// ProgressOverview summarizes the user's progression. CurrentStreaks is keyed
// by module id.
type ProgressOverview struct {
	TotalXP            int            `json:"total_xp"`
	Level              int            `json:"level"`
	ModulesUnlocked    int            `json:"modules_unlocked"`
	MissionsCompleted  int            `json:"missions_completed"`
	AchievementsEarned int            `json:"achievements_earned"`
	CurrentStreaks     map[string]int `json:"current_streaks"`
}
