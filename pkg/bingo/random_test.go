package bingo

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockedSharedAcrossGoroutines(t *testing.T) {
	src := Locked(rand.New(rand.NewPCG(5, 6)))
	assert.Same(t, src, Locked(src))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := NewEngine(src, nil)
			for !e.Exhausted() {
				_, err := e.Next()
				assert.NoError(t, err)
			}
			assert.Len(t, e.Marked(), MaxNumber)
		}()
	}
	wg.Wait()
}

func TestCryptoSourceRange(t *testing.T) {
	src := CryptoSource()
	for i := 0; i < 200; i++ {
		v := src.IntN(MaxNumber)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, MaxNumber)
	}
}
