package bingo

import (
	"fmt"
	"strings"
)

// Cell addresses a card position as {row, column}.
type Cell [2]int

type Pattern struct {
	Name  string
	Cells []Cell
}

// Marker reports whether a number has been called.
type Marker interface {
	IsMarked(n int) bool
}

const (
	MainDiagonalName = "Main Diagonal"
	AntiDiagonalName = "Anti Diagonal"
	FourCornersName  = "Four Corners"
	PlusName         = "Plus"
	XName            = "X"
	LName            = "L"
	TName            = "T"
	FullHouseName    = "Full House"
)

func Row(r int) Pattern {
	p := Pattern{Name: fmt.Sprintf("Row %d", r+1)}
	for c := 0; c < Size; c++ {
		p.Cells = append(p.Cells, Cell{r, c})
	}
	return p
}

func Column(c int) Pattern {
	p := Pattern{Name: fmt.Sprintf("Column %d", c+1)}
	for r := 0; r < Size; r++ {
		p.Cells = append(p.Cells, Cell{r, c})
	}
	return p
}

func MainDiagonal() Pattern {
	p := Pattern{Name: MainDiagonalName}
	for i := 0; i < Size; i++ {
		p.Cells = append(p.Cells, Cell{i, i})
	}
	return p
}

func AntiDiagonal() Pattern {
	p := Pattern{Name: AntiDiagonalName}
	for i := 0; i < Size; i++ {
		p.Cells = append(p.Cells, Cell{i, Size - 1 - i})
	}
	return p
}

func FourCorners() Pattern {
	return Pattern{Name: FourCornersName, Cells: []Cell{{0, 0}, {0, Size - 1}, {Size - 1, 0}, {Size - 1, Size - 1}}}
}

// Plus is the middle row and middle column together.
func Plus() Pattern {
	return union(PlusName, Row(center), Column(center))
}

// X is both diagonals together.
func X() Pattern {
	return union(XName, MainDiagonal(), AntiDiagonal())
}

// L is the first column and the bottom row.
func L() Pattern {
	return union(LName, Column(0), Row(Size-1))
}

// T is the top row and the middle column.
func T() Pattern {
	return union(TName, Row(0), Column(center))
}

func FullHouse() Pattern {
	p := Pattern{Name: FullHouseName}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p.Cells = append(p.Cells, Cell{r, c})
		}
	}
	return p
}

func union(name string, parts ...Pattern) Pattern {
	p := Pattern{Name: name}
	seen := map[Cell]bool{}
	for _, part := range parts {
		for _, cell := range part.Cells {
			if !seen[cell] {
				seen[cell] = true
				p.Cells = append(p.Cells, cell)
			}
		}
	}
	return p
}

// LinePatterns returns the five rows, five columns and both diagonals.
func LinePatterns() []Pattern {
	patterns := make([]Pattern, 0, 2*Size+2)
	for r := 0; r < Size; r++ {
		patterns = append(patterns, Row(r))
	}
	for c := 0; c < Size; c++ {
		patterns = append(patterns, Column(c))
	}
	return append(patterns, MainDiagonal(), AntiDiagonal())
}

// DefaultPatterns is the line set plus Four Corners.
func DefaultPatterns() []Pattern {
	return append(LinePatterns(), FourCorners())
}

// PatternSet resolves a named set: "lines", "fullhouse" or "default" (also the
// empty name).
func PatternSet(name string) ([]Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultPatterns(), nil
	case "lines":
		return LinePatterns(), nil
	case "fullhouse", "full house":
		return []Pattern{FullHouse()}, nil
	}
	return nil, fmt.Errorf("unknown pattern set %q", name)
}

// Complete reports whether every cell of p is marked or free.
func (p Pattern) Complete(card Card, m Marker) bool {
	for _, cell := range p.Cells {
		n := card[cell[0]][cell[1]]
		if n == Free {
			continue
		}
		if !m.IsMarked(n) {
			return false
		}
	}
	return true
}

// Winning lists the names of every pattern the card satisfies.
func Winning(card Card, m Marker, patterns []Pattern) []string {
	var won []string
	for _, p := range patterns {
		if p.Complete(card, m) {
			won = append(won, p.Name)
		}
	}
	return won
}
