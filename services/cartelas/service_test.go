package cartelas

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvbf/bingo-hall/repos/store"
)

type fakeStore struct {
	mu       sync.Mutex
	cartelas map[int]*store.Cartela
}

func newFakeStore(cs ...store.Cartela) *fakeStore {
	f := &fakeStore{cartelas: map[int]*store.Cartela{}}
	for i := range cs {
		c := cs[i]
		f.cartelas[c.Number] = &c
	}
	return f
}

func (f *fakeStore) ListCartelas(ctx context.Context) ([]*store.Cartela, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Cartela
	for _, c := range f.cartelas {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeStore) GetCartela(ctx context.Context, number int) (*store.Cartela, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cartelas[number]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) SearchCartelas(ctx context.Context, n int) ([]*store.Cartela, error) {
	all, _ := f.ListCartelas(ctx)
	return store.FilterContaining(all, n), nil
}

func (f *fakeStore) CreateCartela(ctx context.Context, c *store.Cartela) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.Number == 0 {
		for n := range f.cartelas {
			if n > c.Number {
				c.Number = n
			}
		}
		c.Number++
	}
	if _, ok := f.cartelas[c.Number]; ok {
		return store.ErrAlreadyExists
	}
	f.cartelas[c.Number] = c
	return nil
}

func (f *fakeStore) SaveCartela(ctx context.Context, c *store.Cartela) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cartelas[c.Number]; !ok {
		return store.ErrNotFound
	}
	f.cartelas[c.Number] = c
	return nil
}

func (f *fakeStore) DeleteCartela(ctx context.Context, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cartelas[number]; !ok {
		return store.ErrNotFound
	}
	delete(f.cartelas, number)
	return nil
}

func validRequest() CartelaRequest {
	return CartelaRequest{
		B: []string{"1", "2", "3", "4", "5"},
		I: []string{"16", "17", "18", "19", "20"},
		N: []string{"31", "32", "", "34", "35"},
		G: []string{"46", "47", "48", "49", "50"},
		O: []string{"61", "62", "63", "64", "65"},
	}
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestCreateAssignsNumberAndFreeCenter(t *testing.T) {
	fake := newFakeStore(store.Cartela{Number: 4})
	s := NewCartelaService(fake, seeded())

	c, err := s.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 5, c.Number)
	assert.Equal(t, "FREE", c.N[2])
}

func TestCreateRejectsBadCards(t *testing.T) {
	s := NewCartelaService(newFakeStore(), seeded())

	req := validRequest()
	req.B[0] = "16"
	_, err := s.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCard)

	req = validRequest()
	req.O = req.O[:4]
	_, err = s.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCard)

	req = validRequest()
	req.I[1] = "x"
	_, err = s.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestUpdateAndDelete(t *testing.T) {
	fake := newFakeStore()
	s := NewCartelaService(fake, seeded())
	ctx := context.Background()

	req := validRequest()
	req.Number = 9
	_, err := s.Create(ctx, req)
	require.NoError(t, err)

	req.B[0] = "15"
	c, err := s.Update(ctx, 9, req)
	require.NoError(t, err)
	assert.Equal(t, "15", c.B[0])

	_, err = s.Update(ctx, 10, req)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Delete(ctx, 9))
	assert.ErrorIs(t, s.Delete(ctx, 9), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, 0), ErrInvalidNumber)
}

func TestGenerate(t *testing.T) {
	s := NewCartelaService(newFakeStore(), seeded())
	cards, err := s.Generate(5)
	require.NoError(t, err)
	require.Len(t, cards, 5)
	for _, c := range cards {
		card, err := c.Card()
		require.NoError(t, err)
		assert.NoError(t, card.Validate())
	}

	_, err = s.Generate(0)
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = s.Generate(101)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestSearch(t *testing.T) {
	fake := newFakeStore()
	s := NewCartelaService(fake, seeded())
	ctx := context.Background()
	_, err := s.Create(ctx, validRequest())
	require.NoError(t, err)

	found, err := s.Search(ctx, 48)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.Search(ctx, 70)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = s.Search(ctx, 76)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	fake := newFakeStore()
	s := NewCartelaService(fake, seeded())
	ctx := context.Background()
	req := validRequest()
	req.Number = 3
	_, err := s.Create(ctx, req)
	require.NoError(t, err)

	text, err := s.Export(ctx)
	require.NoError(t, err)
	lines := strings.Split(text, "\n")
	assert.Equal(t, "Bingo Card 3", lines[0])
	assert.Equal(t, "B    I    N    G    O", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "3    18   FREE 48   63", strings.TrimRight(lines[4], " "))
}
