package store

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

func (s *Store) cartelas() *firestore.CollectionRef {
	return s.client.Collection(CartelasCollection)
}

func cartelaID(number int) string {
	return strconv.Itoa(number)
}

func docToCartela(doc *firestore.DocumentSnapshot) (*Cartela, error) {
	var c Cartela
	if err := decode(doc, &c); err != nil {
		return nil, err
	}
	c.ID = doc.Ref.ID
	if c.Number == 0 {
		if n, err := strconv.Atoi(doc.Ref.ID); err == nil {
			c.Number = n
		}
	}
	return &c, nil
}

func (s *Store) ListCartelas(ctx context.Context) ([]*Cartela, error) {
	iter := s.cartelas().OrderBy("number", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var cartelas []*Cartela
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrap(err, "list cartelas")
		}
		c, err := docToCartela(doc)
		if err != nil {
			return nil, err
		}
		cartelas = append(cartelas, c)
	}
	return cartelas, nil
}

func (s *Store) GetCartela(ctx context.Context, number int) (*Cartela, error) {
	doc, err := s.cartelas().Doc(cartelaID(number)).Get(ctx)
	if err != nil {
		return nil, wrap(err, "get cartela %d", number)
	}
	return docToCartela(doc)
}

// GetCartelas loads the given card numbers in order. Any missing card fails
// the whole call.
func (s *Store) GetCartelas(ctx context.Context, numbers []int) ([]*Cartela, error) {
	refs := make([]*firestore.DocumentRef, len(numbers))
	for i, n := range numbers {
		refs[i] = s.cartelas().Doc(cartelaID(n))
	}
	docs, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, wrap(err, "get cartelas")
	}
	out := make([]*Cartela, 0, len(docs))
	for i, doc := range docs {
		if !doc.Exists() {
			return nil, wrap(ErrNotFound, "get cartela %d", numbers[i])
		}
		c, err := docToCartela(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// CreateCartela stores c, picking the next free number when c.Number is 0.
func (s *Store) CreateCartela(ctx context.Context, c *Cartela) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Number != 0 {
		_, err := s.cartelas().Doc(cartelaID(c.Number)).Create(ctx, c)
		return wrap(err, "create cartela %d", c.Number)
	}

	last := s.cartelas().OrderBy("number", firestore.Desc).Limit(1)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(last).GetAll()
		if err != nil {
			return err
		}
		next := 1
		if len(docs) > 0 {
			prev, err := docToCartela(docs[0])
			if err != nil {
				return err
			}
			next = prev.Number + 1
		}
		c.Number = next
		return tx.Create(s.cartelas().Doc(cartelaID(next)), c)
	})
	return wrap(err, "create cartela")
}

// SaveCartela overwrites an existing card.
func (s *Store) SaveCartela(ctx context.Context, c *Cartela) error {
	ref := s.cartelas().Doc(cartelaID(c.Number))
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		prev, err := docToCartela(doc)
		if err != nil {
			return err
		}
		c.CreatedAt = prev.CreatedAt
		return tx.Set(ref, c)
	})
	return wrap(err, "save cartela %d", c.Number)
}

func (s *Store) DeleteCartela(ctx context.Context, number int) error {
	_, err := s.cartelas().Doc(cartelaID(number)).Delete(ctx, firestore.Exists)
	return wrap(err, "delete cartela %d", number)
}

// SearchCartelas returns the cards that carry n. Cards are scanned in memory
// since the numbers are spread over five array fields.
func (s *Store) SearchCartelas(ctx context.Context, n int) ([]*Cartela, error) {
	all, err := s.ListCartelas(ctx)
	if err != nil {
		return nil, err
	}
	return FilterContaining(all, n), nil
}

func FilterContaining(cartelas []*Cartela, n int) []*Cartela {
	want := strconv.Itoa(n)
	var out []*Cartela
	for _, c := range cartelas {
	columns:
		for _, col := range [][]string{c.B, c.I, c.N, c.G, c.O} {
			for _, v := range col {
				if v == want {
					out = append(out, c)
					break columns
				}
			}
		}
	}
	return out
}
