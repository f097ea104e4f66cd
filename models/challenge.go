package models

import (
	"time"
)

// Challenge status values. Transitions only move forward:
// pending → accepted → in-progress → completed, with cancelled as the
// alternate terminal state (challenger cancel, sweeper expiry, admin
// override). No back-edges.
const (
	ChallengeStatusPending    = "pending"
	ChallengeStatusAccepted   = "accepted"
	ChallengeStatusInProgress = "in-progress"
	ChallengeStatusCompleted  = "completed"
	ChallengeStatusCancelled  = "cancelled"
)

// PlayerCounts lists the supported challenge tiers.
var PlayerCounts = []int{2, 4, 8, 50}

// Challenge is a wagered match between a challenger and the users who
// accept. MatchFee and TotalPot are derived by the pot calculator at
// creation and recomputed once at final join; they are never mutated
// independently.
type Challenge struct {
	ID           string `json:"id" gorm:"primaryKey;type:uuid"`
	GameID       string `json:"game_id" gorm:"type:uuid;not null;index"`
	ChallengerID string `json:"challenger_id" gorm:"type:uuid;not null;index"`

	BetAmount   int64 `json:"bet_amount" gorm:"not null"`
	PlayerCount int   `json:"player_count" gorm:"not null"`

	// MaxParticipants is the roster capacity: PlayerCount minus the
	// challenger, who stakes at creation and never occupies a slot.
	MaxParticipants int `json:"max_participants" gorm:"not null"`

	Status string `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`

	ScheduledMatchTime time.Time `json:"scheduled_match_time" gorm:"not null;index"`
	// MatchDurationMins stays 0 for 50-player challenges until the roster
	// fills, then is finalized exactly once.
	MatchDurationMins int       `json:"match_duration_mins"`
	ExpiresAt         time.Time `json:"expires_at" gorm:"not null;index"`
	ExtendedHours     int       `json:"extended_hours" gorm:"default:0"`

	MatchFee int64 `json:"match_fee" gorm:"not null"`
	TotalPot int64 `json:"total_pot" gorm:"not null"`

	// SettingsVersion pins the tier policy the fee/pot were computed
	// under, so later settings changes never touch existing records.
	SettingsVersion uint `json:"settings_version"`

	IsAdminAuthored bool `json:"is_admin_authored" gorm:"default:false"`

	AdminRoomCode      string     `json:"admin_room_code,omitempty"`
	RoomCodeProvidedBy string     `json:"room_code_provided_by,omitempty"`
	RoomCodeProvidedAt *time.Time `json:"room_code_provided_at,omitempty"`

	// WinnerIDs is comma-joined for list views; the set is validated
	// against the roster at settlement.
	WinnerIDs           string     `json:"winner_ids,omitempty"`
	WinnerScreenshotURL string     `json:"winner_screenshot_url,omitempty"`
	ResolutionNotes     string     `json:"resolution_notes,omitempty"`
	ResolvedBy          string     `json:"resolved_by,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`

	ChallengerProofURL string `json:"challenger_proof_url,omitempty"`

	CancelReason string     `json:"cancel_reason,omitempty"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Game         Game                   `json:"game,omitempty" gorm:"foreignKey:GameID"`
	Participants []ChallengeParticipant `json:"participants,omitempty" gorm:"foreignKey:ChallengeID"`
}

// ChallengeParticipant is one roster slot. The unique index on
// (challenge_id, user_id) backs the no-duplicate-join guarantee.
type ChallengeParticipant struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	ChallengeID string `json:"challenge_id" gorm:"type:uuid;not null;uniqueIndex:idx_challenge_participant"`
	UserID      string `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_challenge_participant;index"`

	JoinedAt           time.Time `json:"joined_at" gorm:"not null"`
	ProofScreenshotURL string    `json:"proof_screenshot_url,omitempty"`
}

// IsTerminal reports whether the challenge can no longer change status.
func (c *Challenge) IsTerminal() bool {
	return c.Status == ChallengeStatusCompleted || c.Status == ChallengeStatusCancelled
}

// IsExpired reports whether the join window has passed.
func (c *Challenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// RosterFull reports whether every slot is taken.
func (c *Challenge) RosterFull(rosterLen int) bool {
	return rosterLen >= c.MaxParticipants
}

// FilledCount is the number of staked players once the roster holds
// rosterLen joiners: the joiners plus the challenger.
func (c *Challenge) FilledCount(rosterLen int) int {
	return rosterLen + 1
}

// IsPlayer reports whether userID is the challenger or on the roster.
func (c *Challenge) IsPlayer(userID string, roster []ChallengeParticipant) bool {
	if userID == c.ChallengerID {
		return true
	}
	for _, p := range roster {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
