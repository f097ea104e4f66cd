package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GameService is the admin-managed catalog of titles challenges can be
// created for.
type GameService struct {
	DB *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db}
}

type GameInput struct {
	Name                string
	LogoURL             string
	DefaultDurationMins int
	MinBet              int64
	MaxBet              int64
}

func (s *GameService) CreateGame(ctx context.Context, in GameInput) (*models.Game, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: game name required", ErrValidation)
	}
	if in.MinBet < 0 || in.MaxBet < 0 || (in.MaxBet > 0 && in.MaxBet < in.MinBet) {
		return nil, fmt.Errorf("%w: bet bounds out of order", ErrValidation)
	}
	game := &models.Game{
		ID:                  uuid.NewString(),
		Name:                in.Name,
		Slug:                slug.Make(in.Name),
		LogoURL:             in.LogoURL,
		DefaultDurationMins: in.DefaultDurationMins,
		MinBet:              in.MinBet,
		MaxBet:              in.MaxBet,
		IsActive:            true,
	}
	if game.DefaultDurationMins <= 0 {
		game.DefaultDurationMins = 30
	}
	if err := s.DB.WithContext(ctx).Create(game).Error; err != nil {
		return nil, err
	}
	return game, nil
}

func (s *GameService) UpdateGame(ctx context.Context, gameID string, in GameInput, active *bool) (*models.Game, error) {
	var game models.Game
	if err := s.DB.WithContext(ctx).First(&game, "id = ?", gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != "" && in.Name != game.Name {
		updates["name"] = in.Name
		updates["slug"] = slug.Make(in.Name)
	}
	if in.LogoURL != "" {
		updates["logo_url"] = in.LogoURL
	}
	if in.DefaultDurationMins > 0 {
		updates["default_duration_mins"] = in.DefaultDurationMins
	}
	if in.MinBet >= 0 {
		updates["min_bet"] = in.MinBet
	}
	if in.MaxBet >= 0 {
		updates["max_bet"] = in.MaxBet
	}
	if active != nil {
		updates["is_active"] = *active
	}

	if err := s.DB.WithContext(ctx).Model(&game).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// ListGames returns the catalog; activeOnly hides disabled titles from
// non-admin views.
func (s *GameService) ListGames(ctx context.Context, activeOnly bool) ([]models.Game, error) {
	q := s.DB.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = true")
	}
	var games []models.Game
	err := q.Find(&games).Error
	return games, err
}

// GetGameBySlug resolves a catalog entry by its URL slug.
func (s *GameService) GetGameBySlug(ctx context.Context, gameSlug string) (*models.Game, error) {
	var game models.Game
	if err := s.DB.WithContext(ctx).First(&game, "slug = ?", gameSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %s: %w", gameSlug, ErrNotFound)
		}
		return nil, err
	}
	return &game, nil
}
