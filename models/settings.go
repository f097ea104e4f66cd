package models

import "time"

// PlatformSettings is the mutable business config. Rows are append-only:
// every admin change inserts a new row, and the highest ID is the current
// version. Challenges pin the version they were priced under, so edits
// only affect challenges created afterwards.
type PlatformSettings struct {
	ID uint `json:"version" gorm:"primaryKey;autoIncrement"`

	// Bet bounds in minor units, overridable per game.
	MinBet int64 `json:"min_bet" gorm:"not null;default:1000"`
	MaxBet int64 `json:"max_bet" gorm:"not null;default:5000000"`

	// Scheduling window and collision separation.
	MinLeadMinutes    int `json:"min_lead_minutes" gorm:"not null;default:30"`
	MaxLeadDays       int `json:"max_lead_days" gorm:"not null;default:7"`
	SeparationMinutes int `json:"separation_minutes" gorm:"not null;default:30"`

	// Cap on total hours a challenger may extend the join window.
	MaxExtensionHours int `json:"max_extension_hours" gorm:"not null;default:24"`

	// 50-player match duration, finalized at roster fill:
	// base minutes plus one per-seat increment per staked player.
	BaseDuration50Mins   int `json:"base_duration_50_mins" gorm:"not null;default:20"`
	PerSeatDuration50Sec int `json:"per_seat_duration_50_sec" gorm:"not null;default:30"`

	// bKash receive number shown to users for manual deposits.
	BkashNumber string `json:"bkash_number"`

	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Tiers []TierPolicy `json:"tiers,omitempty" gorm:"foreignKey:SettingsID"`
}

// TierPolicy is the per-player-count pot policy. Multipliers are decimal
// strings so the numeric policy survives round-tripping exactly.
//
// For most tiers the winner pool is PayoutMultiplier × bet. When
// PayoutPotShare is set (the 50-player tier) the pool is instead that
// share of the collected stakes (bet × staked player count) and
// PayoutMultiplier is ignored. The shipped 50-player numbers — fee shown
// 5×, payout 60% of the pot — do not follow the fee=payout pattern of
// the other tiers; they are kept exactly as the business runs them.
type TierPolicy struct {
	ID         uint `json:"-" gorm:"primaryKey;autoIncrement"`
	SettingsID uint `json:"-" gorm:"not null;index"`

	PlayerCount      int    `json:"player_count" gorm:"not null"`
	FeeMultiplier    string `json:"fee_multiplier" gorm:"type:varchar(16);not null"`
	PayoutMultiplier string `json:"payout_multiplier" gorm:"type:varchar(16);not null"`
	PayoutPotShare   string `json:"payout_pot_share,omitempty" gorm:"type:varchar(16)"`

	// MultiWinner marks tiers where the admin may declare several
	// winners and the pool splits evenly (the 4-player tier).
	MultiWinner bool `json:"multi_winner" gorm:"not null;default:false"`
}
