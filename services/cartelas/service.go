package cartelas

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nvbf/bingo-hall/pkg/bingo"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/store"
)

var (
	ErrInvalidCard   = errors.New("invalid card")
	ErrInvalidNumber = errors.New("invalid card number")
	ErrInvalidCount  = errors.New("count must be between 1 and 100")
)

const maxGenerate = 100

type CartelaStore interface {
	ListCartelas(ctx context.Context) ([]*store.Cartela, error)
	GetCartela(ctx context.Context, number int) (*store.Cartela, error)
	SearchCartelas(ctx context.Context, n int) ([]*store.Cartela, error)
	CreateCartela(ctx context.Context, c *store.Cartela) error
	SaveCartela(ctx context.Context, c *store.Cartela) error
	DeleteCartela(ctx context.Context, number int) error
}

type CartelaService struct {
	store  CartelaStore
	source bingo.Source
}

func NewCartelaService(s CartelaStore, src bingo.Source) *CartelaService {
	if src == nil {
		src = bingo.CryptoSource()
	}
	return &CartelaService{store: s, source: src}
}

func (s *CartelaService) List(ctx context.Context) ([]*store.Cartela, error) {
	return s.store.ListCartelas(ctx)
}

func (s *CartelaService) Get(ctx context.Context, number int) (*store.Cartela, error) {
	if number < 1 {
		return nil, ErrInvalidNumber
	}
	return s.store.GetCartela(ctx, number)
}

func (s *CartelaService) Search(ctx context.Context, n int) ([]*store.Cartela, error) {
	if n < bingo.MinNumber || n > bingo.MaxNumber {
		return nil, fmt.Errorf("%w: %d", bingo.ErrOutOfRange, n)
	}
	return s.store.SearchCartelas(ctx, n)
}

// Generate returns count random cards without storing them.
func (s *CartelaService) Generate(count int) ([]store.Cartela, error) {
	if count < 1 || count > maxGenerate {
		return nil, ErrInvalidCount
	}
	out := make([]store.Cartela, count)
	for i := range out {
		out[i] = store.CartelaFromCard(0, bingo.GenerateCard(s.source))
	}
	return out, nil
}

// normalize parses and validates c and rewrites it in canonical form.
func normalize(c store.Cartela) (store.Cartela, error) {
	card, err := c.Card()
	if err != nil {
		return store.Cartela{}, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	if err := card.Validate(); err != nil {
		return store.Cartela{}, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	return store.CartelaFromCard(c.Number, card), nil
}

func (s *CartelaService) Create(ctx context.Context, req CartelaRequest) (*store.Cartela, error) {
	if req.Number < 0 {
		return nil, ErrInvalidNumber
	}
	c, err := normalize(req.cartela())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateCartela(ctx, &c); err != nil {
		return nil, err
	}
	logger.Infof("created cartela %d", c.Number)
	return &c, nil
}

func (s *CartelaService) Update(ctx context.Context, number int, req CartelaRequest) (*store.Cartela, error) {
	if number < 1 {
		return nil, ErrInvalidNumber
	}
	req.Number = number
	c, err := normalize(req.cartela())
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCartela(ctx, &c); err != nil {
		return nil, err
	}
	logger.Infof("updated cartela %d", number)
	return &c, nil
}

func (s *CartelaService) Delete(ctx context.Context, number int) error {
	if number < 1 {
		return ErrInvalidNumber
	}
	if err := s.store.DeleteCartela(ctx, number); err != nil {
		return err
	}
	logger.Infof("deleted cartela %d", number)
	return nil
}

// Export renders every card as a plain text grid.
func (s *CartelaService) Export(ctx context.Context) (string, error) {
	cartelas, err := s.store.ListCartelas(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, c := range cartelas {
		if i > 0 {
			b.WriteString("\n")
		}
		writeCartela(&b, c)
	}
	return b.String(), nil
}

func writeCartela(b *strings.Builder, c *store.Cartela) {
	fmt.Fprintf(b, "Bingo Card %d\n", c.Number)
	for _, letter := range bingo.Letters {
		fmt.Fprintf(b, "%-5s", letter)
	}
	b.WriteString("\n")
	cols := [][]string{c.B, c.I, c.N, c.G, c.O}
	for r := 0; r < bingo.Size; r++ {
		for _, col := range cols {
			v := ""
			if r < len(col) {
				v = col[r]
			}
			fmt.Fprintf(b, "%-5s", v)
		}
		b.WriteString("\n")
	}
}
