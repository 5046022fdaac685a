package store

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/samborkent/uuidv7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmulatorStore connects to the Firestore emulator. The client picks up
// FIRESTORE_EMULATOR_HOST by itself.
func newEmulatorStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "demo-bingo-hall")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewStore(client)
}

func seedUser(t *testing.T, s *Store, points int64) *User {
	t.Helper()
	u := &User{ID: uuidv7.New().String(), Email: uuidv7.New().String() + "@hall.et", Role: "user", Points: points}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func countDocs(t *testing.T, s *Store, collection, field, value string) int {
	t.Helper()
	docs, err := s.client.Collection(collection).Where(field, "==", value).Documents(context.Background()).GetAll()
	require.NoError(t, err)
	return len(docs)
}

func TestEnterGameChargesAndRecords(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 120)

	session, err := s.EnterGame(ctx, Entry{
		UserID:  u.ID,
		Cost:    50,
		Session: GameSession{SelectedCartelas: []int{1, 2}, BetAmount: 10, Percentage: 80},
	})
	require.NoError(t, err)
	assert.Equal(t, u.Email, session.UserEmail)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), got.Points)
	assert.Equal(t, 1, countDocs(t, s, SessionsCollection, "userId", u.ID))
	assert.Equal(t, 1, countDocs(t, s, PlaysCollection, "sessionId", session.ID))
}

func TestEnterGameShortOfPointsWritesNothing(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 49)

	_, err := s.EnterGame(ctx, Entry{
		UserID:  u.ID,
		Cost:    50,
		Session: GameSession{SelectedCartelas: []int{1}, BetAmount: 10},
	})
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(49), got.Points)
	assert.Zero(t, countDocs(t, s, SessionsCollection, "userId", u.ID))
	assert.Zero(t, countDocs(t, s, PlaysCollection, "userId", u.ID))
}

func TestAdjustPointsNeverBelowZero(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 30)

	balance, err := s.AdjustPoints(ctx, u.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	_, err = s.AdjustPoints(ctx, u.ID, -51)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Points)
}

func TestHasGame(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	sessionID := uuidv7.New().String()

	played, err := s.HasGame(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, s.SaveGame(ctx, &Game{RoundID: uuidv7.New().String(), SessionID: sessionID, Marked: []int{}}))
	played, err = s.HasGame(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, played)
}
