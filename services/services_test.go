package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			fmt.Println("Failed to connect to database:", err)
		} else if err := db.AutoMigrate(
			&models.User{},
			&models.Game{},
			&models.Challenge{},
			&models.ChallengeParticipant{},
			&models.WalletTransaction{},
			&models.PlatformSettings{},
			&models.TierPolicy{},
			&models.DepositRequest{},
			&models.WithdrawalRequest{},
		); err != nil {
			fmt.Println("Failed to migrate database:", err)
		} else {
			testDB = db
		}
	}
	os.Exit(m.Run())
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return testDB
}

type testStack struct {
	Ledger     *WalletLedger
	Settings   *SettingsService
	Challenges *ChallengeService
	Admin      *AdminService
	Payments   *PaymentsService
	Games      *GameService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := requireDB(t)
	settings := NewSettingsService(db)
	require.NoError(t, settings.Seed(context.Background()))
	ledger := NewWalletLedger(db)
	challenges := NewChallengeService(db, ledger, settings)
	return &testStack{
		Ledger:     ledger,
		Settings:   settings,
		Challenges: challenges,
		Admin:      NewAdminService(db, ledger, settings, challenges),
		Payments:   NewPaymentsService(db, ledger, settings),
		Games:      NewGameService(db),
	}
}

func seedUser(t *testing.T, balance int64) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Name: "player", Balance: balance}
	require.NoError(t, testDB.Create(u).Error)
	return u
}

func seedGame(t *testing.T) *models.Game {
	t.Helper()
	g := &models.Game{
		ID:                  uuid.NewString(),
		Name:                "Game " + uuid.NewString(),
		Slug:                uuid.NewString(),
		DefaultDurationMins: 30,
		IsActive:            true,
	}
	require.NoError(t, testDB.Create(g).Error)
	return g
}

// createPending makes a pending challenge scheduled safely inside the
// lead window.
func createPending(t *testing.T, s *testStack, challengerID, gameID string, bet int64, playerCount int) *models.Challenge {
	t.Helper()
	ch, err := s.Challenges.CreateChallenge(context.Background(), CreateChallengeInput{
		CreatorID:          challengerID,
		GameID:             gameID,
		BetAmount:          bet,
		ScheduledMatchTime: time.Now().Add(2 * time.Hour),
		PlayerCount:        playerCount,
	})
	require.NoError(t, err)
	return ch
}

func balanceOf(t *testing.T, userID string) int64 {
	t.Helper()
	var u models.User
	require.NoError(t, testDB.First(&u, "id = ?", userID).Error)
	return u.Balance
}
