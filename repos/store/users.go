package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

func (s *Store) users() *firestore.CollectionRef {
	return s.client.Collection(UsersCollection)
}

func docToUser(doc *firestore.DocumentSnapshot) (*User, error) {
	var user User
	if err := decode(doc, &user); err != nil {
		return nil, err
	}
	user.ID = doc.Ref.ID
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	doc, err := s.users().Doc(id).Get(ctx)
	if err != nil {
		return nil, wrap(err, "get user %s", id)
	}
	return docToUser(doc)
}

func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	iter := s.users().Documents(ctx)
	defer iter.Stop()

	var users []*User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrap(err, "list users")
		}
		user, err := docToUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// CreateUser writes u under u.ID, which is the Firebase Auth UID.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.users().Doc(u.ID).Create(ctx, u)
	return wrap(err, "create user %s", u.ID)
}

func (s *Store) UpdateUser(ctx context.Context, id string, u UserUpdate) error {
	updates := UserUpdates(u)
	if len(updates) == 0 {
		return nil
	}
	_, err := s.users().Doc(id).Update(ctx, updates)
	return wrap(err, "update user %s", id)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	_, err := s.users().Doc(id).Delete(ctx, firestore.Exists)
	return wrap(err, "delete user %s", id)
}

// AdjustPoints adds delta to the user's balance and returns the new balance.
// A balance never goes below zero.
func (s *Store) AdjustPoints(ctx context.Context, id string, delta int64) (int64, error) {
	ref := s.users().Doc(id)
	var balance int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		user, err := docToUser(doc)
		if err != nil {
			return err
		}
		if balance, err = Debit(user.Points, -delta); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{{Path: "points", Value: balance}})
	})
	if err != nil {
		return 0, wrap(err, "adjust points of %s", id)
	}
	return balance, nil
}

// RoleOf returns the stored role of a user.
func (s *Store) RoleOf(ctx context.Context, uid string) (string, error) {
	user, err := s.GetUser(ctx, uid)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
