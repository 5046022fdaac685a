package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

func (s *Store) sessions() *firestore.CollectionRef {
	return s.client.Collection(SessionsCollection)
}

func docToSession(doc *firestore.DocumentSnapshot) (*GameSession, error) {
	var session GameSession
	if err := decode(doc, &session); err != nil {
		return nil, err
	}
	session.ID = doc.Ref.ID
	return &session, nil
}

// EnterGame charges the entry cost and records the session and the play in
// a single transaction. Nothing is written when the user cannot pay.
func (s *Store) EnterGame(ctx context.Context, e Entry) (*GameSession, error) {
	userRef := s.users().Doc(e.UserID)
	sessionRef := s.sessions().NewDoc()
	playRef := s.client.Collection(PlaysCollection).NewDoc()

	session := e.Session
	session.UserID = e.UserID
	session.EntryCost = e.Cost
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(userRef)
		if err != nil {
			return err
		}
		user, err := docToUser(doc)
		if err != nil {
			return err
		}
		left, err := Debit(user.Points, e.Cost)
		if err != nil {
			return err
		}
		if session.UserEmail == "" {
			session.UserEmail = user.Email
		}

		if err := tx.Update(userRef, []firestore.Update{{Path: "points", Value: left}}); err != nil {
			return err
		}
		if err := tx.Create(sessionRef, session); err != nil {
			return err
		}
		return tx.Create(playRef, Play{
			UserID:      e.UserID,
			BingoPageID: session.BingoPageID,
			SessionID:   sessionRef.ID,
			CreatedAt:   session.CreatedAt,
		})
	})
	if err != nil {
		return nil, wrap(err, "enter game for %s", e.UserID)
	}

	session.ID = sessionRef.ID
	return &session, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*GameSession, error) {
	doc, err := s.sessions().Doc(id).Get(ctx)
	if err != nil {
		return nil, wrap(err, "get session %s", id)
	}
	return docToSession(doc)
}

// ListSessionsByEmail avoids a composite index by sorting in memory.
func (s *Store) ListSessionsByEmail(ctx context.Context, email string) ([]*GameSession, error) {
	docs, err := s.sessions().Where("userEmail", "==", email).Documents(ctx).GetAll()
	if err != nil {
		return nil, wrap(err, "list sessions of %s", email)
	}
	sessions := make([]*GameSession, 0, len(docs))
	for _, doc := range docs {
		session, err := docToSession(doc)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	sortSessions(sessions)
	return sessions, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]*GameSession, error) {
	iter := s.sessions().OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var sessions []*GameSession
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrap(err, "list sessions")
		}
		session, err := docToSession(doc)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// SaveGame stores the outcome of a round under its round id.
func (s *Store) SaveGame(ctx context.Context, g *Game) error {
	_, err := s.client.Collection(GamesCollection).Doc(g.RoundID).Set(ctx, g)
	return wrap(err, "save game %s", g.RoundID)
}

// HasGame reports whether a round of the session has already been stored.
func (s *Store) HasGame(ctx context.Context, sessionID string) (bool, error) {
	docs, err := s.client.Collection(GamesCollection).
		Where("sessionId", "==", sessionID).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return false, wrap(err, "find games of session %s", sessionID)
	}
	return len(docs) > 0, nil
}
