package store

import (
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"golang.org/x/xerrors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	UsersCollection    = "users"
	CartelasCollection = "cartelas"
	SessionsCollection = "gameSessions"
	PlaysCollection    = "plays"
	GamesCollection    = "games"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrAlreadyExists      = errors.New("document already exists")
	ErrInsufficientPoints = errors.New("not enough points")
)

// Store is the only code that talks to Firestore.
type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// wrap maps gRPC status codes onto the package errors and adds context to
// everything else.
func wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrInsufficientPoints):
		return xerrors.Errorf("%s: %w", what, err)
	case isNotFound(err):
		return xerrors.Errorf("%s: %w", what, ErrNotFound)
	case isAlreadyExists(err):
		return xerrors.Errorf("%s: %w", what, ErrAlreadyExists)
	}
	return xerrors.Errorf("%s: %w", what, err)
}

func decode(doc *firestore.DocumentSnapshot, into interface{}) error {
	if err := doc.DataTo(into); err != nil {
		// If this fails, we have an inconsistency error as we control both the data written to
		// Firestore and the shape of our structs.
		return xerrors.Errorf(
			"consistency error. Converting %s to internal struct failed: %w",
			doc.Ref.Path,
			err,
		)
	}
	return nil
}

// UserUpdates turns the non-nil fields of u into Firestore updates.
func UserUpdates(u UserUpdate) []firestore.Update {
	var updates []firestore.Update

	if u.Username != nil {
		updates = append(updates, firestore.Update{Path: "username", Value: *u.Username})
	}
	if u.Email != nil {
		updates = append(updates, firestore.Update{Path: "email", Value: *u.Email})
	}
	if u.Role != nil {
		updates = append(updates, firestore.Update{Path: "role", Value: *u.Role})
	}
	if u.Points != nil {
		updates = append(updates, firestore.Update{Path: "points", Value: *u.Points})
	}
	if u.FolderAccess != nil {
		updates = append(updates, firestore.Update{Path: "folderAccess", Value: u.FolderAccess})
	}

	return updates
}

// Debit takes cost off a balance of points and returns what is left. A
// negative cost is a credit. The balance never goes below zero.
func Debit(points, cost int64) (int64, error) {
	if cost > points {
		return points, ErrInsufficientPoints
	}
	return points - cost, nil
}

func sortSessions(sessions []*GameSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}
