package play

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samborkent/uuidv7"

	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/bingo"
	joinCode "github.com/nvbf/bingo-hall/pkg/joinCode"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/drawlog"
	"github.com/nvbf/bingo-hall/repos/store"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	ErrNotYourRound  = errors.New("round belongs to another user")
	ErrBadOption     = errors.New("invalid round option")
	ErrRoundExists   = errors.New("session already has a running round")
	ErrSessionPlayed = errors.New("session has already been played")
)

const (
	PoolFull  = "full"
	PoolCards = "cards"
)

type GameStore interface {
	GetSession(ctx context.Context, id string) (*store.GameSession, error)
	GetCartelas(ctx context.Context, numbers []int) ([]*store.Cartela, error)
	SaveGame(ctx context.Context, g *store.Game) error
	HasGame(ctx context.Context, sessionID string) (bool, error)
}

type CreateRoundRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Pool      string `json:"pool"`
	Patterns  string `json:"patterns"`
	DelayMS   int    `json:"delayMs"`
}

// Manager owns every live round of the process.
type Manager struct {
	mu        sync.Mutex
	rounds    map[string]*Round
	bySession map[string]string
	owners    map[string]string

	store        GameStore
	publisher    drawlog.Publisher
	source       bingo.Source
	defaultDelay time.Duration
}

// NewManager shares src between every round, behind a lock.
func NewManager(s GameStore, publisher drawlog.Publisher, src bingo.Source, defaultDelay time.Duration) *Manager {
	if publisher == nil {
		publisher = drawlog.Noop{}
	}
	if src == nil {
		src = bingo.CryptoSource()
	}
	return &Manager{
		rounds:       map[string]*Round{},
		bySession:    map[string]string{},
		owners:       map[string]string{},
		store:        s,
		publisher:    publisher,
		source:       bingo.Locked(src),
		defaultDelay: defaultDelay,
	}
}

// Create loads the session and its cartelas and opens a new idle round.
func (m *Manager) Create(ctx context.Context, who auth.Identity, req CreateRoundRequest) (*Round, error) {
	pool := req.Pool
	if pool == "" {
		pool = PoolFull
	}
	if pool != PoolFull && pool != PoolCards {
		return nil, fmt.Errorf("%w: pool %q", ErrBadOption, req.Pool)
	}
	patterns, err := bingo.PatternSet(req.Patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadOption, err)
	}

	session, err := m.store.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != who.UID && who.Role != auth.RoleAdmin {
		return nil, ErrNotYourRound
	}

	m.mu.Lock()
	_, running := m.bySession[session.ID]
	m.mu.Unlock()
	if running {
		return nil, ErrRoundExists
	}
	// One paid entry buys one round.
	played, err := m.store.HasGame(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if played {
		return nil, ErrSessionPlayed
	}

	bonus, err := bingo.ParseBonus(session.BonusType)
	if err != nil {
		logger.Warnf("session %s has unreadable bonus %q, playing without: %v", session.ID, session.BonusType, err)
		bonus = bingo.Bonus{Kind: bingo.NoBonus}
	}

	cartelas, err := m.store.GetCartelas(ctx, session.SelectedCartelas)
	if err != nil {
		return nil, err
	}
	cards := make([]LoadedCard, 0, len(cartelas))
	for _, c := range cartelas {
		card, err := c.Card()
		if err != nil {
			return nil, fmt.Errorf("cartela %d: %w", c.Number, err)
		}
		cards = append(cards, LoadedCard{Number: c.Number, Card: card})
	}

	delay := m.defaultDelay
	switch {
	case req.DelayMS > 0:
		delay = time.Duration(req.DelayMS) * time.Millisecond
	case session.Speed > 0:
		delay = time.Duration(session.Speed) * time.Millisecond
	}

	id := uuidv7.New().String()
	code, nonce := joinCode.GenerateCode(id)
	round, err := NewRound(RoundConfig{
		ID:        id,
		SessionID: session.ID,
		UserEmail: session.UserEmail,
		Code:      code,
		Nonce:     nonce,
		Cards:     cards,
		Patterns:  patterns,
		Bonus:     bonus,
		Delay:     delay,
		CardPool:  pool == PoolCards,
		Source:    m.source,
		Publisher: m.publisher,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, running := m.bySession[session.ID]; running {
		round.Close()
		return nil, ErrRoundExists
	}
	m.rounds[id] = round
	m.bySession[session.ID] = id
	m.owners[id] = session.UserID
	logger.Infof("round %s opened for session %s with %d cards", id, session.ID, len(cards))
	return round, nil
}

// Get returns the round if who may control it.
func (m *Manager) Get(who auth.Identity, id string) (*Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	round, ok := m.rounds[id]
	if !ok {
		return nil, ErrRoundNotFound
	}
	if m.owners[id] != who.UID && who.Role != auth.RoleAdmin {
		return nil, ErrNotYourRound
	}
	return round, nil
}

// ByCode resolves a join code. It needs no identity: the code is the secret.
func (m *Manager) ByCode(code string) (*Round, error) {
	id, nonce, err := joinCode.Decode(code)
	if err != nil {
		return nil, ErrRoundNotFound
	}
	m.mu.Lock()
	round, ok := m.rounds[id]
	m.mu.Unlock()
	if !ok || !round.matches(nonce) {
		return nil, ErrRoundNotFound
	}
	return round, nil
}

// End closes the round and stores its outcome in the games collection.
func (m *Manager) End(ctx context.Context, who auth.Identity, id string) (*store.Game, error) {
	round, err := m.Get(who, id)
	if err != nil {
		return nil, err
	}
	m.forget(round)

	game := round.Close()
	if err := m.store.SaveGame(ctx, game); err != nil {
		logger.Errorf("round %s: failed to save game: %v", id, err)
		return game, err
	}
	return game, nil
}

func (m *Manager) forget(round *Round) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rounds, round.ID())
	delete(m.bySession, round.SessionID())
	delete(m.owners, round.ID())
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rounds)
}

// Close ends every round, saving what it can before ctx runs out.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	rounds := make([]*Round, 0, len(m.rounds))
	for _, r := range m.rounds {
		rounds = append(rounds, r)
	}
	m.rounds = map[string]*Round{}
	m.bySession = map[string]string{}
	m.owners = map[string]string{}
	m.mu.Unlock()

	for _, r := range rounds {
		game := r.Close()
		if err := m.store.SaveGame(ctx, game); err != nil {
			logger.Errorf("round %s: failed to save game on shutdown: %v", r.ID(), err)
		}
	}
	logger.Infof("closed %d rounds", len(rounds))
}
