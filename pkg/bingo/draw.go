package bingo

import (
	"errors"
	"sort"
	"sync"
)

var ErrExhausted = errors.New("no numbers left to draw")

// Draw is one called number. Sequence starts at 1.
type Draw struct {
	Sequence int    `json:"sequence"`
	Number   int    `json:"number"`
	Label    string `json:"label"`
}

// Engine draws numbers without replacement from a fixed pool.
type Engine struct {
	mu        sync.Mutex
	src       Source
	pool      []int
	remaining []int
	marked    []int
	isMarked  [MaxNumber + 1]bool
}

// NewEngine builds an engine over pool. A nil or empty pool means 1..75.
// Numbers outside 1..75 and repeats are dropped from the pool.
func NewEngine(src Source, pool []int) *Engine {
	if len(pool) == 0 {
		pool = FullPool()
	}
	e := &Engine{src: src, pool: normalizePool(pool)}
	e.reset()
	return e
}

func FullPool() []int {
	pool := make([]int, MaxNumber)
	for i := range pool {
		pool[i] = i + MinNumber
	}
	return pool
}

// PoolFromCards returns every number that appears on at least one card.
func PoolFromCards(cards []Card) []int {
	var pool []int
	for _, c := range cards {
		pool = append(pool, c.Numbers()...)
	}
	return normalizePool(pool)
}

func normalizePool(pool []int) []int {
	var seen [MaxNumber + 1]bool
	out := make([]int, 0, len(pool))
	for _, n := range pool {
		if n < MinNumber || n > MaxNumber || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Next picks uniformly among the numbers not yet drawn.
func (e *Engine) Next() (Draw, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	left := len(e.remaining)
	if left == 0 {
		return Draw{}, ErrExhausted
	}
	i := e.src.IntN(left)
	n := e.remaining[i]
	e.remaining[i] = e.remaining[left-1]
	e.remaining = e.remaining[:left-1]

	e.marked = append(e.marked, n)
	e.isMarked[n] = true
	return Draw{Sequence: len(e.marked), Number: n, Label: Label(n)}, nil
}

// Marked returns the drawn numbers in call order.
func (e *Engine) Marked() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.marked...)
}

func (e *Engine) IsMarked(n int) bool {
	if n < MinNumber || n > MaxNumber {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isMarked[n]
}

func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.marked)
}

func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.remaining)
}

func (e *Engine) Exhausted() bool {
	return e.Remaining() == 0
}

// Reset forgets every draw and refills the pool.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	e.remaining = append(e.remaining[:0], e.pool...)
	e.marked = e.marked[:0]
	e.isMarked = [MaxNumber + 1]bool{}
}

// MarkedSet is a Marker over a plain list of numbers, e.g. a stored round.
type MarkedSet map[int]bool

func NewMarkedSet(numbers []int) MarkedSet {
	s := make(MarkedSet, len(numbers))
	for _, n := range numbers {
		s[n] = true
	}
	return s
}

func (s MarkedSet) IsMarked(n int) bool {
	return s[n]
}
