package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/croptrack/croptrack/internal/domain/entity"
	repo "github.com/croptrack/croptrack/internal/domain/repository"
	"github.com/croptrack/croptrack/pkg/helpers"
	"github.com/croptrack/croptrack/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrValidation         = errors.New("missing required field")
	ErrUserNotFound       = errors.New("user not found")
)

// UserService implements registration, credential verification and the
// session lifecycle. Sessions are recorded in Redis keyed by user id; the
// client carries a signed token referencing the session.
type UserService struct {
	Repo   repo.UserRepository
	Tokens *helpers.TokenManager
	Redis  *redis.Client
	Logger *logrus.Logger
	Pub    *helpers.RabbitPublisher

	MailEnabled bool
}

func NewUserService(repo repo.UserRepository, tokens *helpers.TokenManager, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, mailEnabled bool) *UserService {
	return &UserService{
		Repo:        repo,
		Tokens:      tokens,
		Redis:       rdb,
		Logger:      logger,
		Pub:         pub,
		MailEnabled: mailEnabled,
	}
}

func sessionKey(userID int64) string {
	return "user:session:" + strconv.FormatInt(userID, 10)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Register stores a new user with a bcrypt hash of the password. The
// plaintext is never persisted. A taken username maps to
// ErrDuplicateUsername; the store's unique constraint is the sole arbiter
// under concurrent registration.
func (s *UserService) Register(ctx context.Context, username, password, email string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrValidation
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{Username: username, PasswordHash: hash, Email: strings.TrimSpace(email)}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	}

	s.enqueueWelcomeMail(ctx, u)
	return u, nil
}

// Authenticate validates username/password and returns the user without
// creating a session. Unknown username and wrong password are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and establishes a session: a Redis record bound to
// the user id plus a signed token for the client cookie.
func (s *UserService) Login(ctx context.Context, username, password string) (*entity.User, string, time.Time, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	sid := uuid.NewString()
	token, exp, err := s.Tokens.GenerateSessionToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		}
		return nil, "", time.Time{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		fields := map[string]any{
			"user_id":    u.ID,
			"username":   u.Username,
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.Tokens.TTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			if s.Logger != nil {
				s.Logger.WithError(rErr).WithField("key", key).Error("redis pipeline failed")
			}
			return nil, "", time.Time{}, rErr
		}
	}

	return u, token, exp, nil
}

// Logout destroys the server-side session record. Logging out an already
// logged-out user is a no-op.
func (s *UserService) Logout(ctx context.Context, userID int64) error {
	if s.Redis == nil {
		return nil
	}
	if err := s.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", userID).Info("user logged out")
	}
	return nil
}

// CurrentUser resolves the session claims to a user. Pure lookup.
func (s *UserService) CurrentUser(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) enqueueWelcomeMail(ctx context.Context, u *entity.User) {
	if !s.MailEnabled || s.Pub == nil || u.Email == "" {
		return
	}
	job := mailer.EmailJob{
		To:      u.Email,
		Subject: "Welcome to croptrack",
		Text:    "Hi " + u.Username + ", your account is ready. Log in and start tracking your crops.",
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome mail failed")
	}
}
