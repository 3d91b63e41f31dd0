package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidToken is the only error Validate returns.
// Callers never learn which check failed.
var ErrInvalidToken = errors.New("could not validate credentials")

// TokenType is the OAuth2 token type returned to clients
const TokenType = "bearer"

// DefaultTTL is used when Options.TTL is zero
const DefaultTTL = 30 * time.Minute

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// Options configures a token Service
type Options struct {
	Secret    string
	Algorithm string // HS256, HS384 or HS512
	TTL       time.Duration
	Issuer    string
	Now       func() time.Time
}

// Token is an issued access token
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service issues and validates signed, time-bounded access tokens
type Service struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewService creates a token service from immutable options
func NewService(opts Options) (*Service, error) {
	if opts.Secret == "" {
		return nil, errors.New("jwt: signing secret is required")
	}

	method, err := signingMethod(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		secret: []byte(opts.Secret),
		method: method,
		ttl:    ttl,
		issuer: opts.Issuer,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("jwt: unsupported signing algorithm %q", alg)
	}
}

// TTL returns the default token lifetime
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue issues a token for subject with the default TTL
func (s *Service) Issue(subject string) (*Token, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

// IssueWithTTL issues a token for subject that expires after ttl
func (s *Service) IssueWithTTL(subject string, ttl time.Duration) (*Token, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   subject,
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
	}, nil
}

// Validate checks signature, algorithm and expiry and returns the subject
func (s *Service) Validate(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		zap.L().Debug("access token rejected", zap.Error(err))
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		zap.L().Debug("access token rejected", zap.String("reason", "missing subject"))
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
