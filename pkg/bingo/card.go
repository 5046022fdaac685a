package bingo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformedCard = errors.New("malformed card")
	ErrOutOfRange    = errors.New("number outside its column range")
	ErrDuplicate     = errors.New("number appears twice on card")
	ErrCenterNotFree = errors.New("center cell must be free")
)

const center = Size / 2

// Card is a 5x5 grid indexed [row][column]. The center holds Free.
type Card [Size][Size]int

// CardFromColumns parses the stored B/I/N/G/O layout of a cartela. The center
// cell is always read as free, whatever it holds.
func CardFromColumns(cols map[string][]string) (Card, error) {
	var card Card
	for c, letter := range Letters {
		values, ok := cols[letter]
		if !ok || len(values) != Size {
			return Card{}, fmt.Errorf("%w: column %s needs %d values", ErrMalformedCard, letter, Size)
		}
		for r, raw := range values {
			if r == center && c == center {
				card[r][c] = Free
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return Card{}, fmt.Errorf("%w: %s%d is %q", ErrMalformedCard, letter, r+1, raw)
			}
			card[r][c] = n
		}
	}
	return card, nil
}

// Columns converts the card back to its stored layout.
func (c Card) Columns() map[string][]string {
	cols := make(map[string][]string, Size)
	for col, letter := range Letters {
		values := make([]string, Size)
		for r := 0; r < Size; r++ {
			if c[r][col] == Free {
				values[r] = FreeMarker
				continue
			}
			values[r] = strconv.Itoa(c[r][col])
		}
		cols[letter] = values
	}
	return cols
}

// Validate checks every number against its column range and looks for repeats.
func (c Card) Validate() error {
	if c[center][center] != Free {
		return ErrCenterNotFree
	}
	seen := make(map[int]bool, Size*Size)
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if r == center && col == center {
				continue
			}
			n := c[r][col]
			lo, hi := ColumnRange(col)
			if n < lo || n > hi {
				return fmt.Errorf("%w: %s%d is %d, want %d-%d", ErrOutOfRange, Letters[col], r+1, n, lo, hi)
			}
			if seen[n] {
				return fmt.Errorf("%w: %d", ErrDuplicate, n)
			}
			seen[n] = true
		}
	}
	return nil
}

// Numbers returns the non-free numbers on the card, column by column.
func (c Card) Numbers() []int {
	out := make([]int, 0, Size*Size-1)
	for col := 0; col < Size; col++ {
		for r := 0; r < Size; r++ {
			if c[r][col] != Free {
				out = append(out, c[r][col])
			}
		}
	}
	return out
}

func (c Card) Contains(n int) bool {
	if n == Free {
		return false
	}
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if c[r][col] == n {
				return true
			}
		}
	}
	return false
}

// GenerateCard fills each column with five distinct numbers from its range.
func GenerateCard(src Source) Card {
	var card Card
	for col := 0; col < Size; col++ {
		lo, _ := ColumnRange(col)
		picks := make([]int, ColumnSpan)
		for i := range picks {
			picks[i] = lo + i
		}
		for r := 0; r < Size; r++ {
			j := r + src.IntN(ColumnSpan-r)
			picks[r], picks[j] = picks[j], picks[r]
			card[r][col] = picks[r]
		}
	}
	card[center][center] = Free
	return card
}
