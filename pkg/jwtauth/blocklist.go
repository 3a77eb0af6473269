package jwtauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/turnstile/pkg/kvstore"
)

// CheckScope selects which token types the blocklist tracks.
type CheckScope string

const (
	// ScopeAll registers and checks both access and refresh tokens.
	ScopeAll CheckScope = "all"

	// ScopeRefresh tracks refresh tokens only. Access tokens are never
	// written to or read from the store and ride out their short lifetime.
	ScopeRefresh CheckScope = "refresh"
)

// Valid reports whether s is a known scope.
func (s CheckScope) Valid() bool {
	return s == ScopeAll || s == ScopeRefresh
}

// DefaultGrace is how long a blocklist record outlives its token's expiry,
// so a revocation lookup never races against the store pruning the record a
// moment before the token itself expires.
const DefaultGrace = 15 * time.Minute

// StoredToken is a blocklist record paired with its live remaining lifetime.
type StoredToken struct {
	Token      Claims `json:"token"`
	Revoked    bool   `json:"revoked"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

// record is the value actually persisted under the token's jti.
type record struct {
	Token   Claims `json:"token"`
	Revoked bool   `json:"revoked"`
}

// Blocklist tracks per-token active/revoked status in an injected key-value
// store. It holds no lock of its own; consistency is whatever the backing
// store provides, which for remote stores may include a short window where a
// just-revoked token still reads as active elsewhere.
type Blocklist struct {
	// Store is the backing key-value store. Required.
	Store kvstore.Store

	// Scope controls which token types are tracked. Defaults to ScopeAll.
	Scope CheckScope

	// Grace extends each record's TTL beyond the token's own expiry.
	// Defaults to DefaultGrace.
	Grace time.Duration

	// Clock is overridable for tests. Defaults to time.Now.
	Clock func() time.Time
}

func (b *Blocklist) now() time.Time {
	if b.Clock != nil {
		return b.Clock()
	}
	return time.Now()
}

func (b *Blocklist) grace() time.Duration {
	if b.Grace > 0 {
		return b.Grace
	}
	return DefaultGrace
}

// InScope reports whether tokens of the given type are tracked.
func (b *Blocklist) InScope(typ TokenType) bool {
	switch b.Scope {
	case ScopeRefresh:
		return typ == TypeRefresh
	default:
		return true
	}
}

func (b *Blocklist) store() (kvstore.Store, error) {
	if b == nil || b.Store == nil {
		return nil, fmt.Errorf("%w: blocklist enabled without a store", ErrConfiguration)
	}
	if b.Scope != "" && !b.Scope.Valid() {
		return nil, fmt.Errorf("%w: unknown blocklist scope %q", ErrConfiguration, b.Scope)
	}
	return b.Store, nil
}

// RegisterToken writes the record for a freshly issued token. Out-of-scope
// token types are a no-op. When the store supports TTL the record expires a
// grace window after the token itself would; otherwise it is stored without
// expiry and pruning is the operator's problem, documented on kvstore.Store.
func (b *Blocklist) RegisterToken(ctx context.Context, claims Claims, revoked bool) error {
	if !b.InScope(claims.Type) {
		return nil
	}
	st, err := b.store()
	if err != nil {
		return err
	}

	var ttl time.Duration
	if st.SupportsTTL() {
		ttl = claims.ExpiresAt.Sub(claims.IssuedAt) + b.grace()
	}
	return b.put(ctx, st, record{Token: claims, Revoked: revoked}, ttl)
}

// CheckIfRevoked fails with ErrRevoked when the token's record is marked
// revoked, or when no record exists at all: a token whose issuance record is
// missing must not be trusted. That fail-closed stance means enabling the
// blocklist (or flushing its store) invalidates tokens issued beforehand.
// Out-of-scope token types always pass.
func (b *Blocklist) CheckIfRevoked(ctx context.Context, claims Claims) error {
	if !b.InScope(claims.Type) {
		return nil
	}
	st, err := b.store()
	if err != nil {
		return err
	}

	rec, err := b.get(ctx, st, claims.JTI)
	if errors.Is(err, kvstore.ErrNotFound) {
		return fmt.Errorf("%w: unknown jti", ErrRevoked)
	}
	if err != nil {
		return err
	}
	if rec.Revoked {
		return ErrRevoked
	}
	return nil
}

// Revoke marks the token with the given jti as revoked. Fails with
// ErrTokenNotFound when no record exists for it.
func (b *Blocklist) Revoke(ctx context.Context, jti string) error {
	return b.setRevoked(ctx, jti, true)
}

// Unrevoke restores the token with the given jti to active status. Fails
// with ErrTokenNotFound when no record exists for it.
func (b *Blocklist) Unrevoke(ctx context.Context, jti string) error {
	return b.setRevoked(ctx, jti, false)
}

func (b *Blocklist) setRevoked(ctx context.Context, jti string, revoked bool) error {
	st, err := b.store()
	if err != nil {
		return err
	}

	rec, err := b.get(ctx, st, jti)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ErrTokenNotFound
	}
	if err != nil {
		return err
	}

	rec.Revoked = revoked

	// Rewrite with the remaining lifetime so the flip doesn't extend or
	// truncate the record's stay in the store.
	var ttl time.Duration
	if st.SupportsTTL() {
		ttl = rec.Token.TTL(b.now()) + b.grace()
	}
	return b.put(ctx, st, rec, ttl)
}

// GetToken returns the stored record for a jti, or ErrTokenNotFound.
func (b *Blocklist) GetToken(ctx context.Context, jti string) (StoredToken, error) {
	st, err := b.store()
	if err != nil {
		return StoredToken{}, err
	}

	rec, err := b.get(ctx, st, jti)
	if errors.Is(err, kvstore.ErrNotFound) {
		return StoredToken{}, ErrTokenNotFound
	}
	if err != nil {
		return StoredToken{}, err
	}
	return b.stored(rec), nil
}

// TokensForIdentity enumerates stored records whose identity matches. Like
// AllTokens this walks the whole store; fine for small trusted deployments,
// pick a store with real secondary indexes before relying on it at scale.
func (b *Blocklist) TokensForIdentity(ctx context.Context, identity any) ([]StoredToken, error) {
	all, err := b.AllTokens(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]StoredToken, 0, len(all))
	for _, tok := range all {
		if identityEqual(tok.Token.Identity, identity) {
			matched = append(matched, tok)
		}
	}
	return matched, nil
}

// AllTokens enumerates every stored record with its live remaining TTL.
// O(store size).
func (b *Blocklist) AllTokens(ctx context.Context) ([]StoredToken, error) {
	st, err := b.store()
	if err != nil {
		return nil, err
	}

	keys, err := st.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	tokens := make([]StoredToken, 0, len(keys))
	for _, key := range keys {
		rec, err := b.get(ctx, st, key)
		if errors.Is(err, kvstore.ErrNotFound) {
			// Expired between Keys and Get, skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, b.stored(rec))
	}
	return tokens, nil
}

func (b *Blocklist) stored(rec record) StoredToken {
	return StoredToken{
		Token:      rec.Token,
		Revoked:    rec.Revoked,
		TTLSeconds: int64(rec.Token.TTL(b.now()).Seconds()),
	}
}

func (b *Blocklist) get(ctx context.Context, st kvstore.Store, jti string) (record, error) {
	data, err := st.Get(ctx, jti)
	if errors.Is(err, kvstore.ErrNotFound) {
		return record{}, err
	}
	if err != nil {
		return record{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("%w: corrupt record for jti %s: %v", ErrStoreUnavailable, jti, err)
	}
	return rec, nil
}

func (b *Blocklist) put(ctx context.Context, st kvstore.Store, rec record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := st.Put(ctx, rec.Token.JTI, data, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// identityEqual compares two identity values by their JSON encoding, which
// sidesteps the int/float64 mismatch a store round trip introduces.
func identityEqual(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
