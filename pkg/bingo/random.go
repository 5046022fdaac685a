package bingo

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// Source picks an integer in [0, n). *math/rand/v2.Rand satisfies it but is
// not safe for concurrent use; wrap it with Locked before sharing it.
type Source interface {
	IntN(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

// Locked makes src safe to share between goroutines.
func Locked(src Source) Source {
	if l, ok := src.(*lockedSource); ok {
		return l
	}
	return &lockedSource{src: src}
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

type cryptoSource struct{}

// CryptoSource draws from crypto/rand. Rounds that move points use it.
func CryptoSource() Source {
	return cryptoSource{}
}

func (cryptoSource) IntN(n int) int {
	if n <= 0 {
		panic("bingo: IntN called with non-positive n")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("bingo: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}
