// Package auth verifies the bearer tokens sent to the HTTP API.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
)

// Verifier checks a token and returns the id of the user it was issued to.
type Verifier interface {
	Verify(token string) (string, error)
}

// Claims carries the user id either in sub or in user_id (Firebase-style
// tokens use both).
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	gojwt.RegisteredClaims
}

type jwtVerifier struct {
	method  gojwt.SigningMethod
	key     any
	options []gojwt.ParserOption
}

// New creates a Verifier from the auth config. HS256 uses auth.secret,
// RS256 the PEM public key at auth.public_key_path.
func New(cfg config.AuthConfig) (Verifier, error) {
	v := &jwtVerifier{}

	switch strings.ToUpper(cfg.Method) {
	case "", "HS256":
		if cfg.Secret == "" {
			return nil, errors.New("auth: secret is required for HS256")
		}
		v.method = gojwt.SigningMethodHS256
		v.key = []byte(cfg.Secret)
	case "RS256":
		pem, err := os.ReadFile(cfg.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("auth: read public key: %w", err)
		}
		key, err := gojwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("auth: parse public key: %w", err)
		}
		v.method = gojwt.SigningMethodRS256
		v.key = key
	default:
		return nil, fmt.Errorf("auth: unsupported signing method %q", cfg.Method)
	}

	v.options = []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{v.method.Alg()}),
		gojwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		v.options = append(v.options, gojwt.WithIssuer(cfg.Issuer))
	}
	if len(cfg.Audience) > 0 {
		v.options = append(v.options, gojwt.WithAudience(cfg.Audience[0]))
	}
	return v, nil
}

func (v *jwtVerifier) Verify(token string) (string, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return v.key, nil
	}, v.options...)
	if err != nil {
		return "", apperror.Wrap(apperror.CodeUnauthorized, "invalid token", err)
	}
	if !parsed.Valid {
		return "", apperror.Unauthorized("invalid token")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", apperror.Unauthorized("token has no user id")
	}
	return userID, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperror.Unauthorized("invalid authorization header")
	}
	return strings.TrimSpace(token), nil
}
