package accounting

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNoCards           = errors.New("at least one cartela must be selected")
	ErrInvalidBet        = errors.New("invalid bet amount")
	ErrInvalidPercentage = errors.New("payout percentage must be between 20 and 100")
	ErrInvalidCommission = errors.New("commission rate must be in [0, 1)")
	ErrUnknownPricing    = errors.New("pricing must be percentage or commission")
)

const (
	PricingPercentage = "percentage"
	PricingCommission = "commission"
)

const (
	MinPercentage = 20
	MaxPercentage = 100
)

var hundred = decimal.NewFromInt(100)

// Figures are the money amounts of one session, rounded to cents.
type Figures struct {
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	WinAmount     decimal.Decimal `json:"winAmount"`
	JackpotAmount decimal.Decimal `json:"jackpotAmount"`
}

// ByPercentage pays percent of the stakes to the winner and pools the rest.
func ByPercentage(bet decimal.Decimal, cards, percent int) (Figures, error) {
	if cards < 1 {
		return Figures{}, ErrNoCards
	}
	if !bet.IsPositive() {
		return Figures{}, ErrInvalidBet
	}
	if percent < MinPercentage || percent > MaxPercentage {
		return Figures{}, ErrInvalidPercentage
	}
	total := bet.Mul(decimal.NewFromInt(int64(cards)))
	p := decimal.NewFromInt(int64(percent))
	return Figures{
		TotalAmount:   total.Round(2),
		WinAmount:     total.Mul(p).Div(hundred).Round(2),
		JackpotAmount: total.Mul(hundred.Sub(p)).Div(hundred).Round(2),
	}, nil
}

// ByCommission keeps rate of the stakes for the house.
func ByCommission(bet decimal.Decimal, cards int, rate decimal.Decimal) (Figures, error) {
	if cards < 1 {
		return Figures{}, ErrNoCards
	}
	if !bet.IsPositive() {
		return Figures{}, ErrInvalidBet
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Figures{}, ErrInvalidCommission
	}
	total := bet.Mul(decimal.NewFromInt(int64(cards)))
	cut := total.Mul(rate)
	return Figures{
		TotalAmount:   total.Round(2),
		WinAmount:     total.Sub(cut).Round(2),
		JackpotAmount: cut.Round(2),
	}, nil
}

// Pricing names the rule that splits a session's stakes.
type Pricing struct {
	Mode       string
	Percentage int
	Rate       decimal.Decimal
}

// Figures prices bet times cards under p. An empty mode is percentage.
func (p Pricing) Figures(bet decimal.Decimal, cards int) (Figures, error) {
	switch p.Mode {
	case "", PricingPercentage:
		return ByPercentage(bet, cards, p.Percentage)
	case PricingCommission:
		return ByCommission(bet, cards, p.Rate)
	}
	return Figures{}, ErrUnknownPricing
}

// BetRules bound the stake a player may choose per card.
type BetRules struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Step decimal.Decimal
}

func DefaultBetRules() BetRules {
	return BetRules{
		Min:  decimal.NewFromInt(10),
		Max:  decimal.NewFromInt(50),
		Step: decimal.NewFromInt(10),
	}
}

func (r BetRules) Validate(bet decimal.Decimal) error {
	if bet.LessThan(r.Min) || bet.GreaterThan(r.Max) {
		return ErrInvalidBet
	}
	if r.Step.IsPositive() && !bet.Sub(r.Min).Mod(r.Step).IsZero() {
		return ErrInvalidBet
	}
	return nil
}

func (r BetRules) Increment(bet decimal.Decimal) decimal.Decimal {
	return decimal.Min(bet.Add(r.Step), r.Max)
}

func (r BetRules) Decrement(bet decimal.Decimal) decimal.Decimal {
	return decimal.Max(bet.Sub(r.Step), r.Min)
}
