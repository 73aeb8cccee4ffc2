package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/kv"
)

const revokedTokenKey = "revoked_token:"

// Revocations remembers signed-out token IDs until the tokens would have
// expired anyway.
type Revocations struct {
	kv  kv.Store
	now func() time.Time
}

func NewRevocations(s kv.Store) *Revocations {
	return &Revocations{kv: s, now: time.Now}
}

func (r *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.kv.Set(ctx, revokedTokenKey+tokenID, "1", ttl)
}

func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	_, err := r.kv.Get(ctx, revokedTokenKey+tokenID)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
