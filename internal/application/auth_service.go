package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/mailer"
	tpl "github.com/tradewire/tradewire-api/pkg/mailer/templates"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = repository.ErrEmailTaken
)

// JobPublisher enqueues background work. *helpers.RabbitPublisher satisfies
// it; tests swap in a recorder.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService owns registration, credential checks and session issuance.
type AuthService struct {
	Users       repository.UserRepository
	Tokens      *helpers.TokenManager
	EmailQueue  JobPublisher
	Logger      *logrus.Logger
	AppName     string
	MailEnabled bool
}

func NewAuthService(users repository.UserRepository, tokens *helpers.TokenManager, emailQueue JobPublisher, logger *logrus.Logger, appName string, mailEnabled bool) *AuthService {
	return &AuthService{
		Users:       users,
		Tokens:      tokens,
		EmailQueue:  emailQueue,
		Logger:      logger,
		AppName:     appName,
		MailEnabled: mailEnabled,
	}
}

// Session is an issued token plus its expiry, ready to be set as a cookie.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Register creates the user record and issues a session. New accounts start
// on the free tier.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*entity.User, Session, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, Session{}, err
	}
	u := &entity.User{Email: email, PasswordHash: hash, Name: name, Role: entity.RoleFree}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, Session{}, err
	}

	s.enqueueWelcome(ctx, u)

	sess, err := s.issue(u)
	if err != nil {
		return nil, Session{}, err
	}
	return u, sess, nil
}

// Login validates credentials and issues a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, Session, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, Session{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, Session{}, ErrInvalidCredentials
	}
	sess, err := s.issue(u)
	if err != nil {
		return nil, Session{}, err
	}
	return u, sess, nil
}

// GetUser looks up the stored record for a verified identity.
func (s *AuthService) GetUser(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) issue(u *entity.User) (Session, error) {
	token, exp, err := s.Tokens.Generate(u.Email, u.Name)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Error("generate session token failed")
		}
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

// enqueueWelcome is best effort; registration never fails because the mail
// queue is down.
func (s *AuthService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if !s.MailEnabled || s.EmailQueue == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.TemplateWelcome,
		Data: map[string]any{
			"AppName": s.AppName,
			"Name":    u.Name,
			"Email":   u.Email,
			"Role":    string(u.Role),
		},
	}
	if err := s.EmailQueue.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("welcome email enqueue failed")
	}
}
