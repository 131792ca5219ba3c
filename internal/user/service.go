package user

import (
	"context"
	"net/mail"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/storefront-api/internal/apperror"
)

const passwordSpecials = "!@#$%^&*"

var ErrWeakPassword = apperror.Validation("password must be at least 8 characters long and include an uppercase letter, a digit and a special character (" + passwordSpecials + ")")

type Service struct {
	repo           Repository
	allowedDomains map[string]struct{}
}

// NewService builds the account service. An empty allowedDomains accepts any
// email domain.
func NewService(repo Repository, allowedDomains []string) *Service {
	domains := make(map[string]struct{}, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains[d] = struct{}{}
		}
	}
	return &Service{repo: repo, allowedDomains: domains}
}

// Register creates an account with a hashed password. The role defaults to
// RoleUser.
func (s *Service) Register(ctx context.Context, name, email, password string, role Role) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, apperror.Validation("name is required")
	}
	email, err := s.NormalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	if err := CheckPassword(password); err != nil {
		return User{}, err
	}
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return User{}, apperror.Validation("role must be admin or user")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.Wrap(err, "hash password")
	}

	return s.repo.Create(ctx, User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	})
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}

// SetPassword replaces the stored hash after checking the password policy.
func (s *Service) SetPassword(ctx context.Context, id int, password string) error {
	if err := CheckPassword(password); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	return s.repo.UpdatePassword(ctx, id, string(hashed))
}

// NormalizeEmail lowercases and parses email, then applies the domain
// allowlist.
func (s *Service) NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.Validation("email is not a valid address")
	}
	if len(s.allowedDomains) == 0 {
		return email, nil
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if _, ok := s.allowedDomains[domain]; !ok {
		return "", apperror.Validation("email domain " + domain + " is not accepted")
	}
	return email, nil
}

// CheckPassword enforces the password policy.
func CheckPassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !upper || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}
