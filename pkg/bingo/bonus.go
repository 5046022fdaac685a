package bingo

import (
	"fmt"
	"strconv"
	"strings"
)

type BonusKind int

const (
	NoBonus BonusKind = iota
	// WithinCalls pays when a card wins in at most Calls draws.
	WithinCalls
	// ShapeBonus pays when the card completes Shape.
	ShapeBonus
)

// Bonus is an optional extra payout rule attached to a session.
type Bonus struct {
	Kind  BonusKind
	Calls int
	Shape Pattern
	Raw   string
}

var bonusShapes = map[string]func() Pattern{
	"onlycorner": FourCorners,
	"onlyplus":   Plus,
	"l":          L,
	"t":          T,
	"x":          X,
}

// ParseBonus reads bonus names as the cashier screen offers them:
// "5 CALL", "24 CALL", "OnlyCorner", "OnlyPlus", "L", "T", "X" or "None".
func ParseBonus(s string) (Bonus, error) {
	raw := strings.TrimSpace(s)
	key := strings.ToLower(raw)
	if key == "" || key == "none" {
		return Bonus{Kind: NoBonus, Raw: raw}, nil
	}
	if shape, ok := bonusShapes[key]; ok {
		return Bonus{Kind: ShapeBonus, Shape: shape(), Raw: raw}, nil
	}
	if fields := strings.Fields(key); len(fields) == 2 && fields[1] == "call" {
		calls, err := strconv.Atoi(fields[0])
		if err != nil || calls < 1 || calls > MaxNumber {
			return Bonus{}, fmt.Errorf("invalid bonus %q", s)
		}
		return Bonus{Kind: WithinCalls, Calls: calls, Raw: raw}, nil
	}
	return Bonus{}, fmt.Errorf("unknown bonus %q", s)
}

// Awarded reports whether a card that has just won the patterns in won also
// earns the bonus after draws calls.
func (b Bonus) Awarded(card Card, m Marker, won []string, draws int) bool {
	switch b.Kind {
	case WithinCalls:
		return len(won) > 0 && draws <= b.Calls
	case ShapeBonus:
		return b.Shape.Complete(card, m)
	}
	return false
}
