package models

import "time"

// Game is a supported title users can challenge each other on
// (e.g., Ludo King, Free Fire, PUBG).
type Game struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid"`
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`

	LogoURL string `json:"logo_url,omitempty"`

	// DefaultDurationMins is used when a challenge is created without an
	// explicit match duration. 50-player challenges ignore it — their
	// duration is computed when the roster fills.
	DefaultDurationMins int `json:"default_duration_mins" gorm:"default:30"`

	// Per-game bet bounds in minor units; 0 falls back to platform bounds.
	MinBet int64 `json:"min_bet" gorm:"default:0"`
	MaxBet int64 `json:"max_bet" gorm:"default:0"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
