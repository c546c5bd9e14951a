package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
)

const secret = "test-secret"

func sign(t *testing.T, method gojwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func validClaims(sub string) Claims {
	return Claims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
}

func TestVerifyHS256(t *testing.T) {
	v, err := New(config.AuthConfig{Method: "HS256", Secret: secret})
	if err != nil {
		t.Fatal(err)
	}

	expired := validClaims("u1")
	expired.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "u1"}}

	withUserID := validClaims("")
	withUserID.UserID = "firebase-uid"

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"valid subject", sign(t, gojwt.SigningMethodHS256, []byte(secret), validClaims("u1")), "u1", false},
		{"user_id claim", sign(t, gojwt.SigningMethodHS256, []byte(secret), withUserID), "firebase-uid", false},
		{"wrong secret", sign(t, gojwt.SigningMethodHS256, []byte("other"), validClaims("u1")), "", true},
		{"expired", sign(t, gojwt.SigningMethodHS256, []byte(secret), expired), "", true},
		{"no expiry", sign(t, gojwt.SigningMethodHS256, []byte(secret), noExpiry), "", true},
		{"wrong algorithm", sign(t, gojwt.SigningMethodHS512, []byte(secret), validClaims("u1")), "", true},
		{"no user", sign(t, gojwt.SigningMethodHS256, []byte(secret), validClaims("")), "", true},
		{"garbage", "not-a-jwt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(tt.token)
			if tt.wantErr {
				if apperror.CodeOf(err) != apperror.CodeUnauthorized {
					t.Errorf("Verify() error = %v, want UNAUTHORIZED", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVerifyIssuerAudience(t *testing.T) {
	v, err := New(config.AuthConfig{Secret: secret, Issuer: "https://issuer", Audience: []string{"summarizer"}})
	if err != nil {
		t.Fatal(err)
	}

	good := validClaims("u1")
	good.Issuer = "https://issuer"
	good.Audience = gojwt.ClaimStrings{"summarizer"}
	if _, err := v.Verify(sign(t, gojwt.SigningMethodHS256, []byte(secret), good)); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	bad := good
	bad.Audience = gojwt.ClaimStrings{"other"}
	if _, err := v.Verify(sign(t, gojwt.SigningMethodHS256, []byte(secret), bad)); err == nil {
		t.Error("Verify() accepted a token for another audience")
	}
}

func TestVerifyRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "pub.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}

	v, err := New(config.AuthConfig{Method: "RS256", PublicKeyPath: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := v.Verify(sign(t, gojwt.SigningMethodRS256, key, validClaims("u2")))
	if err != nil || got != "u2" {
		t.Errorf("Verify() = %q, %v", got, err)
	}

	// An HMAC token signed with the public key bytes must not pass.
	pubPEM, _ := os.ReadFile(path)
	if _, err := v.Verify(sign(t, gojwt.SigningMethodHS256, pubPEM, validClaims("u2"))); err == nil {
		t.Error("Verify() accepted an HS256 token")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []config.AuthConfig{
		{Method: "HS256"},
		{Method: "RS256", PublicKeyPath: "/does/not/exist.pem"},
		{Method: "none", Secret: secret},
	}
	for _, cfg := range tests {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) should fail", cfg)
		}
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def", "abc.def", false},
		{"bearer  abc", "abc", false},
		{"Basic abc", "", true},
		{"Bearer", "", true},
		{"Bearer   ", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("BearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}
