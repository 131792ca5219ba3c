package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wichananm65/storefront-api/internal/user"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims is the payload of both token kinds. Role is only set on access
// tokens; refresh tokens re-read it from the store.
type Claims struct {
	Role string `json:"role,omitempty"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

// Issuer signs access and refresh tokens with separate HMAC secrets, so a
// refresh token can never pass as an access token.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// AccessSecret is the key the bearer middleware verifies against.
func (i *Issuer) AccessSecret() []byte {
	return i.accessSecret
}

func (i *Issuer) Issue(u user.User) (Tokens, error) {
	access, err := i.sign(Claims{Role: string(u.Role), Type: typeAccess}, u.Email, i.accessTTL, i.accessSecret)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := i.sign(Claims{Type: typeRefresh}, u.Email, i.refreshTTL, i.refreshSecret)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (i *Issuer) sign(claims Claims, subject string, ttl time.Duration, secret []byte) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func (i *Issuer) ParseAccess(raw string) (*Claims, error) {
	return i.parse(raw, typeAccess, i.accessSecret)
}

func (i *Issuer) ParseRefresh(raw string) (*Claims, error) {
	return i.parse(raw, typeRefresh, i.refreshSecret)
}

func (i *Issuer) parse(raw, kind string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != kind || claims.Subject == "" {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}
