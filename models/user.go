package models

import (
	"time"

	"gorm.io/gorm"
)

// PlatformUserID is the system account that collects retained fees.
// Seeded at boot; never exposed through the API.
const PlatformUserID = "00000000-0000-0000-0000-000000000001"

// User holds the wallet balance and lifetime counters for a player.
// Balance is in minor currency units (poisha) and is mutated only by the
// wallet ledger — challenge code never writes it directly.
type User struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	Name    string `gorm:"index" json:"name"`
	Phone   string `gorm:"type:varchar(20);index" json:"phone,omitempty"`
	Balance int64  `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	Wins    int64  `gorm:"not null;default:0" json:"wins"`
	Losses  int64  `gorm:"not null;default:0" json:"losses"`
	IsAdmin bool   `gorm:"not null;default:false" json:"is_admin"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
