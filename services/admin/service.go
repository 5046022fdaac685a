package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/resend"
	"github.com/nvbf/bingo-hall/repos/store"
)

var (
	ErrInvalidRole   = errors.New("role must be admin, agent or user")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrEmailTaken    = errors.New("email already in use")
	ErrNegativeStart = errors.New("points must not be negative")
	ErrNothingToDo   = errors.New("no fields to update")
)

const minPasswordLength = 6

// AuthClient is the part of the Firebase Auth admin client we use.
type AuthClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *fbauth.UserToUpdate) (*fbauth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	ListUsers(ctx context.Context) ([]*store.User, error)
	CreateUser(ctx context.Context, u *store.User) error
	UpdateUser(ctx context.Context, id string, u store.UserUpdate) error
	DeleteUser(ctx context.Context, id string) error
	AdjustPoints(ctx context.Context, id string, delta int64) (int64, error)
}

type Mailer interface {
	SendCredentials(ctx context.Context, c resend.Credentials) error
}

type AdminService struct {
	authClient AuthClient
	users      UserStore
	mailer     Mailer
	loginURL   string
}

func NewAdminService(authClient AuthClient, users UserStore, mailer Mailer, loginURL string) *AdminService {
	return &AdminService{
		authClient: authClient,
		users:      users,
		mailer:     mailer,
		loginURL:   loginURL,
	}
}

func validRole(role string) bool {
	switch role {
	case auth.RoleAdmin, auth.RoleAgent, auth.RoleUser:
		return true
	}
	return false
}

// FolderAccess lists the app areas a role may open.
func FolderAccess(role string) []string {
	if role == auth.RoleAdmin {
		return []string{"app-admin", "user"}
	}
	return []string{"user"}
}

// CreateUser creates the Firebase account, sets its role claim, writes the
// user document and mails the credentials. The account is removed again if
// the document cannot be written.
func (s *AdminService) CreateUser(ctx context.Context, req CreateUserRequest) (*store.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}
	var points int64
	if req.Points != nil {
		if *req.Points < 0 {
			return nil, ErrNegativeStart
		}
		points = *req.Points
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	toCreate := (&fbauth.UserToCreate{}).
		Email(email).
		Password(req.Password).
		DisplayName(username)
	record, err := s.authClient.CreateUser(ctx, toCreate)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create auth user: %w", err)
	}

	if err := s.authClient.SetCustomUserClaims(ctx, record.UID, map[string]interface{}{"role": role}); err != nil {
		logger.Errorf("Failed to set role claim for %s: %v", record.UID, err)
	}

	user := &store.User{
		ID:           record.UID,
		Username:     username,
		Email:        email,
		Role:         role,
		Points:       points,
		FolderAccess: FolderAccess(role),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if delErr := s.authClient.DeleteUser(ctx, record.UID); delErr != nil {
			logger.Errorf("Failed to roll back auth user %s: %v", record.UID, delErr)
		}
		return nil, err
	}

	err = s.mailer.SendCredentials(ctx, resend.Credentials{
		Email:    email,
		Username: username,
		Password: req.Password,
		LoginURL: s.loginURL,
	})
	if err != nil {
		// The account exists either way; the admin can pass the password on.
		logger.Warnf("User %s created but credentials mail failed: %v", record.UID, err)
	}

	logger.Infof("created user %s with role %s", record.UID, role)
	return user, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*store.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*store.User, error) {
	return s.users.GetUser(ctx, id)
}

// UpdateUser applies a partial update. Role and email changes are mirrored
// to Firebase Auth.
func (s *AdminService) UpdateUser(ctx context.Context, id string, u store.UserUpdate) (*store.User, error) {
	if u.Empty() {
		return nil, ErrNothingToDo
	}
	if u.Role != nil && !validRole(*u.Role) {
		return nil, ErrInvalidRole
	}
	if u.Points != nil && *u.Points < 0 {
		return nil, ErrNegativeStart
	}
	if u.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*u.Email))
		if !strings.Contains(email, "@") {
			return nil, ErrInvalidEmail
		}
		u.Email = &email
	}

	current, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Email != nil && *u.Email != current.Email {
		if _, err := s.authClient.UpdateUser(ctx, id, (&fbauth.UserToUpdate{}).Email(*u.Email)); err != nil {
			if fbauth.IsEmailAlreadyExists(err) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("update auth user: %w", err)
		}
	}
	if u.Role != nil {
		u.FolderAccess = FolderAccess(*u.Role)
	}
	if u.Role != nil && *u.Role != current.Role {
		if err := s.authClient.SetCustomUserClaims(ctx, id, map[string]interface{}{"role": *u.Role}); err != nil {
			return nil, fmt.Errorf("set role claim: %w", err)
		}
	}

	if err := s.users.UpdateUser(ctx, id, u); err != nil {
		return nil, err
	}
	return s.users.GetUser(ctx, id)
}

// AdjustPoints tops up (positive delta) or debits a balance.
func (s *AdminService) AdjustPoints(ctx context.Context, id string, delta int64) (int64, error) {
	balance, err := s.users.AdjustPoints(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	logger.Infof("points of %s adjusted by %d to %d", id, delta, balance)
	return balance, nil
}

// DeleteUser removes the document, then the auth account. A missing auth
// account is not an error.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	if err := s.authClient.DeleteUser(ctx, id); err != nil && !fbauth.IsUserNotFound(err) {
		return fmt.Errorf("delete auth user: %w", err)
	}
	logger.Infof("deleted user %s", id)
	return nil
}

func (s *AdminService) Me(ctx context.Context, uid string) (*store.User, error) {
	return s.users.GetUser(ctx, uid)
}
