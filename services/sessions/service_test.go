package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvbf/bingo-hall/pkg/accounting"
	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/repos/store"
)

// fakeStore charges points the way the Firestore transaction does.
type fakeStore struct {
	mu       sync.Mutex
	cards    map[int]bool
	points   map[string]int64
	sessions []*store.GameSession
}

func newFakeStore(points int64, cards ...int) *fakeStore {
	f := &fakeStore{cards: map[int]bool{}, points: map[string]int64{"u1": points}}
	for _, n := range cards {
		f.cards[n] = true
	}
	return f
}

func (f *fakeStore) GetCartelas(ctx context.Context, numbers []int) ([]*store.Cartela, error) {
	var out []*store.Cartela
	for _, n := range numbers {
		if !f.cards[n] {
			return nil, store.ErrNotFound
		}
		out = append(out, &store.Cartela{Number: n})
	}
	return out, nil
}

func (f *fakeStore) EnterGame(ctx context.Context, e store.Entry) (*store.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	left, err := store.Debit(f.points[e.UserID], e.Cost)
	if err != nil {
		return nil, err
	}
	f.points[e.UserID] = left
	s := e.Session
	s.ID = "s" + string(rune('0'+len(f.sessions)))
	s.UserID = e.UserID
	s.EntryCost = e.Cost
	f.sessions = append(f.sessions, &s)
	return &s, nil
}

func (f *fakeStore) ListSessionsByEmail(ctx context.Context, email string) ([]*store.GameSession, error) {
	var out []*store.GameSession
	for _, s := range f.sessions {
		if s.UserEmail == email {
			out = append(out, s)
		}
	}
	return out, nil
}

var player = auth.Identity{UID: "u1", Email: "p@hall.et", Role: auth.RoleUser}

func TestEnter(t *testing.T) {
	fake := newFakeStore(120, 1, 2, 3)
	s := NewSessionService(fake, 50, 4*time.Second)

	session, err := s.Enter(context.Background(), player, EnterRequest{
		SelectedCartelas: []int{1, 3},
		BetAmount:        decimal.NewFromInt(20),
		Percentage:       75,
		BonusType:        "5 CALL",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(70), fake.points["u1"])
	assert.Equal(t, 40.0, session.TotalAmount)
	assert.Equal(t, 30.0, session.WinAmount)
	assert.Equal(t, 10.0, session.JackpotAmount)
	assert.Equal(t, 4000, session.Speed)
	assert.Equal(t, "Person", session.GameType)
	assert.Equal(t, "p@hall.et", session.UserEmail)
	assert.Equal(t, int64(50), session.EntryCost)
}

func TestEnterDefaultsToFullPayout(t *testing.T) {
	s := NewSessionService(newFakeStore(50, 1), 50, 0)
	session, err := s.Enter(context.Background(), player, EnterRequest{
		SelectedCartelas: []int{1},
		BetAmount:        decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 100, session.Percentage)
	assert.Equal(t, session.TotalAmount, session.WinAmount)
	assert.Equal(t, "None", session.BonusType)
}

func TestEnterInsufficientPoints(t *testing.T) {
	fake := newFakeStore(49, 1)
	s := NewSessionService(fake, 50, 0)
	_, err := s.Enter(context.Background(), player, EnterRequest{
		SelectedCartelas: []int{1},
		BetAmount:        decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, store.ErrInsufficientPoints)
	assert.Equal(t, int64(49), fake.points["u1"])
	assert.Empty(t, fake.sessions)
}

func TestEnterValidation(t *testing.T) {
	s := NewSessionService(newFakeStore(500, 1, 2), 50, 0)
	ten := decimal.NewFromInt(10)

	cases := []struct {
		name string
		req  EnterRequest
		want error
	}{
		{"no cards", EnterRequest{BetAmount: ten}, accounting.ErrNoCards},
		{"duplicate", EnterRequest{SelectedCartelas: []int{1, 1}, BetAmount: ten}, ErrDuplicateCard},
		{"bet step", EnterRequest{SelectedCartelas: []int{1}, BetAmount: decimal.NewFromInt(15)}, accounting.ErrInvalidBet},
		{"percent", EnterRequest{SelectedCartelas: []int{1}, BetAmount: ten, Percentage: 10}, accounting.ErrInvalidPercentage},
		{"bonus", EnterRequest{SelectedCartelas: []int{1}, BetAmount: ten, BonusType: "99 CALL"}, ErrInvalidBonus},
		{"game type", EnterRequest{SelectedCartelas: []int{1}, BetAmount: ten, GameType: "Star"}, ErrInvalidGameType},
		{"speed", EnterRequest{SelectedCartelas: []int{1}, BetAmount: ten, Speed: 500}, ErrInvalidSpeed},
		{"missing card", EnterRequest{SelectedCartelas: []int{9}, BetAmount: ten}, store.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Enter(context.Background(), player, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestQuote(t *testing.T) {
	s := NewSessionService(newFakeStore(0), 50, 0)
	q, err := s.Quote(decimal.NewFromInt(10), 3, accounting.Pricing{Percentage: 80})
	require.NoError(t, err)
	assert.Equal(t, accounting.PricingPercentage, q.Pricing)
	assert.Equal(t, "30.00", q.TotalAmount)
	assert.Equal(t, "24.00", q.WinAmount)
	assert.Equal(t, "6.00", q.JackpotAmount)
	assert.Equal(t, "20.00", q.NextBet)
	assert.Equal(t, "10.00", q.PreviousBet)

	q, err = s.Quote(decimal.NewFromInt(50), 1, accounting.Pricing{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPercentage, q.Percentage)
	assert.Equal(t, "50.00", q.NextBet)
	assert.Equal(t, "40.00", q.PreviousBet)

	_, err = s.Quote(decimal.NewFromInt(60), 3, accounting.Pricing{Percentage: 80})
	assert.ErrorIs(t, err, accounting.ErrInvalidBet)
}

func TestQuoteCommission(t *testing.T) {
	s := NewSessionService(newFakeStore(0), 50, 0)
	q, err := s.Quote(decimal.NewFromInt(20), 4, accounting.Pricing{
		Mode: accounting.PricingCommission,
		Rate: decimal.RequireFromString("0.25"),
	})
	require.NoError(t, err)
	assert.Equal(t, accounting.PricingCommission, q.Pricing)
	assert.Equal(t, "0.25", q.CommissionRate)
	assert.Zero(t, q.Percentage)
	assert.Equal(t, "80.00", q.TotalAmount)
	assert.Equal(t, "60.00", q.WinAmount)
	assert.Equal(t, "20.00", q.JackpotAmount)

	_, err = s.Quote(decimal.NewFromInt(20), 4, accounting.Pricing{Mode: "raffle"})
	assert.ErrorIs(t, err, accounting.ErrUnknownPricing)
}

func TestEnterCommission(t *testing.T) {
	s := NewSessionService(newFakeStore(100, 1, 2), 50, 0)
	session, err := s.Enter(context.Background(), player, EnterRequest{
		SelectedCartelas: []int{1, 2},
		BetAmount:        decimal.NewFromInt(10),
		Pricing:          accounting.PricingCommission,
		CommissionRate:   decimal.RequireFromString("0.1"),
	})
	require.NoError(t, err)
	assert.Equal(t, accounting.PricingCommission, session.Pricing)
	assert.Equal(t, 0.1, session.CommissionRate)
	assert.Zero(t, session.Percentage)
	assert.Equal(t, 20.0, session.TotalAmount)
	assert.Equal(t, 18.0, session.WinAmount)
	assert.Equal(t, 2.0, session.JackpotAmount)

	_, err = s.Enter(context.Background(), player, EnterRequest{
		SelectedCartelas: []int{1},
		BetAmount:        decimal.NewFromInt(10),
		Pricing:          accounting.PricingCommission,
		CommissionRate:   decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, accounting.ErrInvalidCommission)
}
