package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Talha3818/gaming-site-sub000/models"

	"gorm.io/gorm"
)

// SettingsService serves the versioned platform config. The highest row
// is current; updates insert a new row so in-flight challenges keep the
// figures they were priced under.
type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// defaultTiers is the shipped pot policy. The 50-player figures (fee
// shown 5×, payout 60% of collected stakes) are intentionally not
// derived from each other; see models.TierPolicy.
func defaultTiers() []models.TierPolicy {
	return []models.TierPolicy{
		{PlayerCount: 2, FeeMultiplier: "1.5", PayoutMultiplier: "1.5"},
		{PlayerCount: 4, FeeMultiplier: "3", PayoutMultiplier: "3", MultiWinner: true},
		{PlayerCount: 8, FeeMultiplier: "4", PayoutMultiplier: "4"},
		{PlayerCount: 50, FeeMultiplier: "5", PayoutMultiplier: "0", PayoutPotShare: "0.6"},
	}
}

// Seed inserts the initial settings row and the platform fee account if
// the tables are empty.
func (s *SettingsService) Seed(ctx context.Context) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.PlatformSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		settings := models.PlatformSettings{
			MinBet:               1000,    // ৳10
			MaxBet:               5000000, // ৳50,000
			MinLeadMinutes:       30,
			MaxLeadDays:          7,
			SeparationMinutes:    30,
			MaxExtensionHours:    24,
			BaseDuration50Mins:   20,
			PerSeatDuration50Sec: 30,
			Tiers:                defaultTiers(),
		}
		if err := s.DB.WithContext(ctx).Create(&settings).Error; err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
		log.Printf("[SETTINGS] Seeded platform settings version %d", settings.ID)
	}

	var platform models.User
	err := s.DB.WithContext(ctx).First(&platform, "id = ?", models.PlatformUserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		platform = models.User{ID: models.PlatformUserID, Name: "Platform", IsAdmin: true}
		if err := s.DB.WithContext(ctx).Create(&platform).Error; err != nil {
			return fmt.Errorf("seed platform account: %w", err)
		}
		log.Println("[SETTINGS] Seeded platform fee account")
	} else if err != nil {
		return err
	}
	return nil
}

// Current returns the latest settings row with its tier policy.
func (s *SettingsService) Current(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := s.DB.WithContext(ctx).
		Preload("Tiers").
		Order("id DESC").
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("platform settings: %w", ErrNotFound)
		}
		return nil, err
	}
	return &settings, nil
}

// Update inserts a new settings version. Tier rows omitted from the
// update carry over from the current version.
func (s *SettingsService) Update(ctx context.Context, adminID string, next models.PlatformSettings) (*models.PlatformSettings, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if next.MinBet <= 0 || next.MaxBet < next.MinBet {
		return nil, fmt.Errorf("%w: bet bounds out of order", ErrValidation)
	}
	if next.MinLeadMinutes <= 0 || next.MaxLeadDays <= 0 || next.MaxExtensionHours <= 0 {
		return nil, fmt.Errorf("%w: scheduling bounds must be positive", ErrValidation)
	}

	if len(next.Tiers) == 0 {
		for _, t := range current.Tiers {
			t.ID = 0
			t.SettingsID = 0
			next.Tiers = append(next.Tiers, t)
		}
	}
	next.ID = 0
	next.UpdatedBy = adminID

	if err := s.DB.WithContext(ctx).Create(&next).Error; err != nil {
		return nil, err
	}
	log.Printf("[SETTINGS] Version %d created by %s", next.ID, adminID)
	return &next, nil
}
