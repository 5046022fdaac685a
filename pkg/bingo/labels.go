package bingo

import (
	"fmt"
	"strconv"
)

const (
	MinNumber  = 1
	MaxNumber  = 75
	ColumnSpan = 15
	Size       = 5

	// Free is the value stored for the center cell of a card.
	Free = 0
	// FreeMarker is how the center cell is written in Firestore.
	FreeMarker = "FREE"
)

var Letters = [Size]string{"B", "I", "N", "G", "O"}

// ColumnRange returns the inclusive number range of a column index.
func ColumnRange(col int) (lo, hi int) {
	lo = col*ColumnSpan + 1
	return lo, lo + ColumnSpan - 1
}

// ColumnOf returns the column index holding n, or -1 when n is outside 1..75.
func ColumnOf(n int) int {
	if n < MinNumber || n > MaxNumber {
		return -1
	}
	return (n - 1) / ColumnSpan
}

func Letter(n int) (string, bool) {
	col := ColumnOf(n)
	if col < 0 {
		return "", false
	}
	return Letters[col], true
}

// Label returns the call for n as shown on the board, e.g. "B 7" or "O 75".
// Numbers outside the board are returned bare.
func Label(n int) string {
	letter, ok := Letter(n)
	if !ok {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%s %d", letter, n)
}

// AssetKey is the label without the space, which is how announcement audio
// files are named ("B7" for /audio/B7.m4a).
func AssetKey(n int) string {
	letter, ok := Letter(n)
	if !ok {
		return strconv.Itoa(n)
	}
	return letter + strconv.Itoa(n)
}
