// Package auth issues and checks bearer tokens, gates routes by role and
// runs the password reset flow.
package auth

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/mail"
	"github.com/wichananm65/storefront-api/internal/user"
)

var (
	ErrInvalidToken      = apperror.Unauthorized("InvalidOrExpiredToken", "token is invalid or expired")
	ErrInvalidResetToken = apperror.New(apperror.KindValidation, "InvalidOrExpiredToken", "reset token is invalid or expired")
	ErrUnauthenticated   = apperror.Unauthorized("Unauthenticated", "authentication required")
	ErrForbidden         = apperror.Forbidden("insufficient role for this operation")
)

type Service struct {
	users    *user.Service
	tokens   *Issuer
	resets   ResetRepository
	mailer   mail.Mailer
	resetTTL time.Duration
	baseURL  string
	log      logrus.FieldLogger
	now      func() time.Time
}

type Options struct {
	ResetTTL      time.Duration
	PublicBaseURL string
	Logger        logrus.FieldLogger
}

func NewService(users *user.Service, tokens *Issuer, resets ResetRepository, mailer mail.Mailer, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		resets:   resets,
		mailer:   mailer,
		resetTTL: opts.ResetTTL,
		baseURL:  strings.TrimRight(opts.PublicBaseURL, "/"),
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string, role user.Role) (user.User, error) {
	return s.users.Register(ctx, name, email, password, role)
}

// Authenticate checks credentials and issues a token pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Tokens, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return Tokens{}, err
	}
	return s.tokens.Issue(u)
}

// Renew trades a refresh token for a new pair. The subject is looked up again
// so the new access token carries the current role.
func (s *Service) Renew(ctx context.Context, refreshToken string) (Tokens, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return Tokens{}, ErrInvalidToken
	}
	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Tokens{}, ErrInvalidToken
		}
		return Tokens{}, err
	}
	return s.tokens.Issue(u)
}

// ResolveCurrentUser maps a raw access token to its user.
func (s *Service) ResolveCurrentUser(ctx context.Context, accessToken string) (user.User, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return user.User{}, ErrUnauthenticated
	}
	return s.UserForClaims(ctx, claims)
}

// UserForClaims loads the subject of already verified claims.
func (s *Service) UserForClaims(ctx context.Context, claims *Claims) (user.User, error) {
	if claims == nil || claims.Type != typeAccess || claims.Subject == "" {
		return user.User{}, ErrUnauthenticated
	}
	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, err
	}
	return u, nil
}

// RequireRole is the single authorization gate for role-restricted operations.
func RequireRole(u user.User, role user.Role) (user.User, error) {
	if u.Role != role {
		return user.User{}, ErrForbidden
	}
	return u, nil
}

// RequestReset mails a single-use reset link. Unknown addresses are only
// logged so callers cannot probe which emails are registered.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.log.WithField("email", email).Info("password reset for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.resets.Create(ctx, hashToken(token), u.ID, s.now().Add(s.resetTTL)); err != nil {
		return err
	}

	link := s.baseURL + "/auth/reset-password-form?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, u.Email, link); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Error("send password reset")
	}
	return nil
}

// CompleteReset sets the new password. The token stays valid when the
// password could not be stored.
func (s *Service) CompleteReset(ctx context.Context, token, newPassword string) error {
	if err := user.CheckPassword(newPassword); err != nil {
		return err
	}
	if token == "" {
		return ErrInvalidResetToken
	}
	return s.resets.Consume(ctx, hashToken(token), s.now(), func(userID int) error {
		return s.users.SetPassword(ctx, userID, newPassword)
	})
}
