package play

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvbf/bingo-hall/pkg/auth"
	joinCode "github.com/nvbf/bingo-hall/pkg/joinCode"
	"github.com/nvbf/bingo-hall/repos/drawlog"
	"github.com/nvbf/bingo-hall/repos/store"
)

type fakeGameStore struct {
	mu       sync.Mutex
	sessions map[string]*store.GameSession
	cartelas map[int]*store.Cartela
	games    []*store.Game
	saveErr  error
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{
		sessions: map[string]*store.GameSession{
			"s1": {ID: "s1", UserID: "u1", UserEmail: "p@hall.et", SelectedCartelas: []int{1, 2}, BonusType: "OnlyCorner", Speed: 2000},
			"s2": {ID: "s2", UserID: "u2", SelectedCartelas: []int{1}},
		},
		cartelas: map[int]*store.Cartela{1: testCartela(1), 2: testCartela(2)},
	}
}

func (f *fakeGameStore) GetSession(ctx context.Context, id string) (*store.GameSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (f *fakeGameStore) GetCartelas(ctx context.Context, numbers []int) ([]*store.Cartela, error) {
	var out []*store.Cartela
	for _, n := range numbers {
		c, ok := f.cartelas[n]
		if !ok {
			return nil, store.ErrNotFound
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeGameStore) HasGame(ctx context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGameStore) SaveGame(ctx context.Context, g *store.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.games = append(f.games, g)
	return nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	records []drawlog.DrawRecord
}

func (p *recordingPublisher) Publish(ctx context.Context, r drawlog.DrawRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r)
	return nil
}

var (
	owner = auth.Identity{UID: "u1", Email: "p@hall.et", Role: auth.RoleUser}
	other = auth.Identity{UID: "u9", Role: auth.RoleUser}
	admin = auth.Identity{UID: "a1", Role: auth.RoleAdmin}
)

func newTestManager(s GameStore, p drawlog.Publisher) *Manager {
	return NewManager(s, p, rand.New(rand.NewPCG(3, 4)), 4*time.Second)
}

func TestCreateRound(t *testing.T) {
	m := newTestManager(newFakeGameStore(), nil)
	defer m.Close(context.Background())

	r, err := m.Create(context.Background(), owner, CreateRoundRequest{SessionID: "s1"})
	require.NoError(t, err)
	snap := r.Snapshot()
	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, []int{1, 2}, snap.Cards)
	assert.Equal(t, 2000, snap.DelayMS)
	assert.Equal(t, "OnlyCorner", snap.Bonus)
	assert.Equal(t, 75, snap.Remaining)
	assert.Equal(t, StatusIdle, snap.Status)

	roundID, _, err := joinCode.Decode(r.Code())
	require.NoError(t, err)
	assert.Equal(t, r.ID(), roundID)

	_, err = m.Create(context.Background(), owner, CreateRoundRequest{SessionID: "s1"})
	assert.ErrorIs(t, err, ErrRoundExists)
}

func TestCreateRoundOptions(t *testing.T) {
	m := newTestManager(newFakeGameStore(), nil)
	defer m.Close(context.Background())
	ctx := context.Background()

	r, err := m.Create(ctx, owner, CreateRoundRequest{SessionID: "s1", Pool: PoolCards, Patterns: "lines", DelayMS: 1500})
	require.NoError(t, err)
	assert.Equal(t, 24, r.Snapshot().Remaining)
	assert.Equal(t, 1500*time.Millisecond, r.Delay())

	_, err = m.Create(ctx, admin, CreateRoundRequest{SessionID: "s2", Pool: "half"})
	assert.ErrorIs(t, err, ErrBadOption)
	_, err = m.Create(ctx, admin, CreateRoundRequest{SessionID: "s2", Patterns: "stars"})
	assert.ErrorIs(t, err, ErrBadOption)
	_, err = m.Create(ctx, admin, CreateRoundRequest{SessionID: "s2", DelayMS: 9000})
	assert.ErrorIs(t, err, ErrInvalidDelay)
	_, err = m.Create(ctx, admin, CreateRoundRequest{SessionID: "s2", Patterns: "fullhouse"})
	assert.NoError(t, err)
	_, err = m.Create(ctx, admin, CreateRoundRequest{SessionID: "nope"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateRoundChecksOwner(t *testing.T) {
	m := newTestManager(newFakeGameStore(), nil)
	defer m.Close(context.Background())

	_, err := m.Create(context.Background(), other, CreateRoundRequest{SessionID: "s1"})
	assert.ErrorIs(t, err, ErrNotYourRound)

	r, err := m.Create(context.Background(), admin, CreateRoundRequest{SessionID: "s1"})
	require.NoError(t, err)

	_, err = m.Get(other, r.ID())
	assert.ErrorIs(t, err, ErrNotYourRound)
	got, err := m.Get(owner, r.ID())
	require.NoError(t, err)
	assert.Same(t, r, got)
	_, err = m.Get(owner, "missing")
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestByCode(t *testing.T) {
	m := newTestManager(newFakeGameStore(), nil)
	defer m.Close(context.Background())

	r, err := m.Create(context.Background(), owner, CreateRoundRequest{SessionID: "s1"})
	require.NoError(t, err)

	got, err := m.ByCode(r.Code())
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = m.ByCode(joinCode.Encode(r.ID(), "guessed"))
	assert.ErrorIs(t, err, ErrRoundNotFound)
	_, err = m.ByCode("%%%")
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestEndSavesGame(t *testing.T) {
	fake := newFakeGameStore()
	pub := &recordingPublisher{}
	m := newTestManager(fake, pub)

	r, err := m.Create(context.Background(), owner, CreateRoundRequest{SessionID: "s1"})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := r.DrawNext()
		require.NoError(t, err)
	}

	game, err := m.End(context.Background(), owner, r.ID())
	require.NoError(t, err)
	assert.Len(t, game.Marked, 5)
	require.Len(t, fake.games, 1)
	assert.Equal(t, r.ID(), fake.games[0].RoundID)
	assert.Equal(t, "p@hall.et", fake.games[0].UserEmail)
	assert.Equal(t, 0, m.Len())

	require.Len(t, pub.records, 5)
	assert.Equal(t, r.ID(), pub.records[0].RoundID)
	assert.Equal(t, "s1", pub.records[0].SessionID)
	assert.Equal(t, 5, pub.records[4].Sequence)

	_, err = m.End(context.Background(), owner, r.ID())
	assert.ErrorIs(t, err, ErrRoundNotFound)

	_, err = m.Create(context.Background(), owner, CreateRoundRequest{SessionID: "s1"})
	assert.ErrorIs(t, err, ErrSessionPlayed)
	_, err = m.Create(context.Background(), admin, CreateRoundRequest{SessionID: "s1"})
	assert.ErrorIs(t, err, ErrSessionPlayed)
	assert.Len(t, fake.games, 1)
	assert.Equal(t, 0, m.Len())
}

func TestEndReportsSaveFailure(t *testing.T) {
	fake := newFakeGameStore()
	fake.saveErr = errors.New("firestore down")
	m := newTestManager(fake, nil)

	r, err := m.Create(context.Background(), owner, CreateRoundRequest{SessionID: "s1"})
	require.NoError(t, err)
	game, err := m.End(context.Background(), owner, r.ID())
	assert.Error(t, err)
	assert.NotNil(t, game)
}

func TestManagerClose(t *testing.T) {
	fake := newFakeGameStore()
	m := newTestManager(fake, nil)

	_, err := m.Create(context.Background(), owner, CreateRoundRequest{SessionID: "s1"})
	require.NoError(t, err)
	_, err = m.Create(context.Background(), admin, CreateRoundRequest{SessionID: "s2"})
	require.NoError(t, err)

	m.Close(context.Background())
	assert.Equal(t, 0, m.Len())
	assert.Len(t, fake.games, 2)

	_, err = NewManager(fake, nil, nil, 4*time.Second).Create(context.Background(), owner, CreateRoundRequest{SessionID: "s1"})
	assert.ErrorIs(t, err, ErrSessionPlayed)
}
