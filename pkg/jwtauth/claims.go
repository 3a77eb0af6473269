// Package jwtauth issues, extracts and validates signed bearer tokens
// (access and refresh), with an optional blocklist that can revoke a token
// before its natural expiry. Tokens travel in a header or a cookie; cookie
// transport is paired with CSRF double submit protection.
package jwtauth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TokenType discriminates what a token may authorise. Access tokens gate
// ordinary API calls, refresh tokens only mint new access tokens.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Valid reports whether t is one of the two known token types.
func (t TokenType) Valid() bool {
	return t == TypeAccess || t == TypeRefresh
}

// Claims is the decoded payload of a token. Access tokens always carry Fresh
// and UserClaims; refresh tokens never do. CSRF is only set for tokens meant
// for cookie transport.
type Claims struct {
	// JTI is the globally unique id of this token and the key it is stored
	// under in the blocklist.
	JTI string

	// Identity is an opaque JSON-serializable value naming the subject.
	Identity any

	Type TokenType

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time

	// Fresh is true only for access tokens minted directly from a login,
	// never for ones minted through the refresh flow.
	Fresh bool

	// UserClaims carries arbitrary application data, empty map by default.
	UserClaims map[string]any

	// CSRF is the double submit value embedded at issuance for
	// cookie-carried tokens.
	CSRF string
}

// TTL returns the remaining lifetime of the token, floored at zero.
func (c Claims) TTL(now time.Time) time.Duration {
	ttl := c.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// claimsJSON is the wire/storage shape of Claims. Fresh and UserClaims use
// pointer/omitempty so refresh tokens genuinely lack the fields instead of
// carrying nulls.
type claimsJSON struct {
	JTI        string         `json:"jti"`
	Identity   any            `json:"identity"`
	Type       TokenType      `json:"type"`
	IssuedAt   int64          `json:"iat"`
	NotBefore  int64          `json:"nbf"`
	ExpiresAt  int64          `json:"exp"`
	Fresh      *bool          `json:"fresh,omitempty"`
	UserClaims map[string]any `json:"user_claims,omitempty"`
	CSRF       string         `json:"csrf,omitempty"`
}

func (c Claims) MarshalJSON() ([]byte, error) {
	j := claimsJSON{
		JTI:       c.JTI,
		Identity:  c.Identity,
		Type:      c.Type,
		IssuedAt:  c.IssuedAt.Unix(),
		NotBefore: c.NotBefore.Unix(),
		ExpiresAt: c.ExpiresAt.Unix(),
		CSRF:      c.CSRF,
	}
	if c.Type == TypeAccess {
		fresh := c.Fresh
		j.Fresh = &fresh
		j.UserClaims = c.UserClaims
	}
	return json.Marshal(j)
}

func (c *Claims) UnmarshalJSON(data []byte) error {
	var j claimsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	*c = Claims{
		JTI:       j.JTI,
		Identity:  j.Identity,
		Type:      j.Type,
		IssuedAt:  time.Unix(j.IssuedAt, 0).UTC(),
		NotBefore: time.Unix(j.NotBefore, 0).UTC(),
		ExpiresAt: time.Unix(j.ExpiresAt, 0).UTC(),
		CSRF:      j.CSRF,
	}
	if j.Fresh != nil {
		c.Fresh = *j.Fresh
	}
	if c.Type == TypeAccess {
		c.UserClaims = j.UserClaims
		if c.UserClaims == nil {
			c.UserClaims = map[string]any{}
		}
	}
	return nil
}

var (
	jtiOnce    sync.Once
	jtiMu      sync.Mutex
	jtiEntropy *ulid.MonotonicEntropy
)

// NewJTI returns a lexicographically sortable unique id for the "jti" claim,
// a ULID drawn from a monotonic crypto/rand entropy source.
func NewJTI() string {
	jtiOnce.Do(func() {
		jtiEntropy = ulid.Monotonic(rand.Reader, 0)
	})

	jtiMu.Lock()
	defer jtiMu.Unlock()
	return ulid.MustNew(ulid.Now(), jtiEntropy).String()
}

// newCSRFValue returns a URL-safe random double submit value.
func newCSRFValue() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the platform entropy source is broken,
		// at which point signing keys can't be trusted either.
		panic(fmt.Sprintf("jwtauth: entropy source failed: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b[:])
}
