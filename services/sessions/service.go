package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nvbf/bingo-hall/pkg/accounting"
	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/bingo"
	"github.com/nvbf/bingo-hall/pkg/config"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/store"
)

var (
	ErrDuplicateCard   = errors.New("card selected twice")
	ErrInvalidSpeed    = errors.New("speed must be between 1000 and 6000 ms")
	ErrInvalidGameType = errors.New("unknown game type")
	ErrInvalidBonus    = errors.New("invalid bonus")
)

// DefaultPercentage is the payout share used when the request names none.
const DefaultPercentage = 100

// GameTypes are the display shapes a session can be played under.
var GameTypes = []string{"Person", "Heart", "H", "T", "P"}

type SessionStore interface {
	GetCartelas(ctx context.Context, numbers []int) ([]*store.Cartela, error)
	EnterGame(ctx context.Context, e store.Entry) (*store.GameSession, error)
	ListSessionsByEmail(ctx context.Context, email string) ([]*store.GameSession, error)
}

type SessionService struct {
	store        SessionStore
	entryCost    int64
	rules        accounting.BetRules
	defaultSpeed time.Duration
}

func NewSessionService(s SessionStore, entryCost int64, defaultSpeed time.Duration) *SessionService {
	if defaultSpeed == 0 {
		defaultSpeed = 4 * time.Second
	}
	return &SessionService{
		store:        s,
		entryCost:    entryCost,
		rules:        accounting.DefaultBetRules(),
		defaultSpeed: defaultSpeed,
	}
}

// pricing fills in the defaults of a requested pricing rule.
func pricing(mode string, percent int, rate decimal.Decimal) accounting.Pricing {
	if mode == "" {
		mode = accounting.PricingPercentage
	}
	p := accounting.Pricing{Mode: mode}
	switch mode {
	case accounting.PricingPercentage:
		p.Percentage = percent
		if p.Percentage == 0 {
			p.Percentage = DefaultPercentage
		}
	case accounting.PricingCommission:
		p.Rate = rate
	}
	return p
}

func (s *SessionService) Quote(bet decimal.Decimal, cards int, p accounting.Pricing) (Quote, error) {
	p = pricing(p.Mode, p.Percentage, p.Rate)
	if err := s.rules.Validate(bet); err != nil {
		return Quote{}, err
	}
	f, err := p.Figures(bet, cards)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{
		BetAmount:     bet.StringFixed(2),
		Cards:         cards,
		Pricing:       p.Mode,
		Percentage:    p.Percentage,
		TotalAmount:   f.TotalAmount.StringFixed(2),
		WinAmount:     f.WinAmount.StringFixed(2),
		JackpotAmount: f.JackpotAmount.StringFixed(2),
		NextBet:       s.rules.Increment(bet).StringFixed(2),
		PreviousBet:   s.rules.Decrement(bet).StringFixed(2),
	}
	if p.Mode == accounting.PricingCommission {
		q.CommissionRate = p.Rate.String()
	}
	return q, nil
}

func validGameType(t string) bool {
	for _, g := range GameTypes {
		if g == t {
			return true
		}
	}
	return false
}

// Enter validates the request, prices it and charges the caller the entry
// cost in one step.
func (s *SessionService) Enter(ctx context.Context, who auth.Identity, req EnterRequest) (*store.GameSession, error) {
	if len(req.SelectedCartelas) == 0 {
		return nil, accounting.ErrNoCards
	}
	seen := make(map[int]bool, len(req.SelectedCartelas))
	for _, n := range req.SelectedCartelas {
		if seen[n] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCard, n)
		}
		seen[n] = true
	}

	if err := s.rules.Validate(req.BetAmount); err != nil {
		return nil, err
	}
	price := pricing(req.Pricing, req.Percentage, req.CommissionRate)
	figures, err := price.Figures(req.BetAmount, len(req.SelectedCartelas))
	if err != nil {
		return nil, err
	}

	bonusType := req.BonusType
	if bonusType == "" {
		bonusType = "None"
	}
	if _, err := bingo.ParseBonus(bonusType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBonus, err)
	}
	if req.BonusAmount.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount", ErrInvalidBonus)
	}

	gameType := req.GameType
	if gameType == "" {
		gameType = GameTypes[0]
	}
	if !validGameType(gameType) {
		return nil, ErrInvalidGameType
	}

	speed := time.Duration(req.Speed) * time.Millisecond
	if req.Speed == 0 {
		speed = s.defaultSpeed
	}
	if speed < config.MinDrawDelay || speed > config.MaxDrawDelay {
		return nil, ErrInvalidSpeed
	}

	if _, err := s.store.GetCartelas(ctx, req.SelectedCartelas); err != nil {
		return nil, err
	}

	session, err := s.store.EnterGame(ctx, store.Entry{
		UserID: who.UID,
		Cost:   s.entryCost,
		Session: store.GameSession{
			UserEmail:        who.Email,
			SelectedCartelas: req.SelectedCartelas,
			BetAmount:        req.BetAmount.InexactFloat64(),
			Percentage:       price.Percentage,
			Pricing:          price.Mode,
			CommissionRate:   price.Rate.InexactFloat64(),
			TotalAmount:      figures.TotalAmount.InexactFloat64(),
			WinAmount:        figures.WinAmount.InexactFloat64(),
			JackpotAmount:    figures.JackpotAmount.InexactFloat64(),
			BonusType:        bonusType,
			BonusAmount:      req.BonusAmount.InexactFloat64(),
			GameType:         gameType,
			Speed:            int(speed / time.Millisecond),
			BingoPageID:      req.BingoPageID,
		},
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("session %s entered by %s with %d cards", session.ID, who.UID, len(req.SelectedCartelas))
	return session, nil
}

func (s *SessionService) List(ctx context.Context, who auth.Identity) ([]*store.GameSession, error) {
	return s.store.ListSessionsByEmail(ctx, who.Email)
}
