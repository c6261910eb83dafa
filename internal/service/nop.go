package service

import (
	"context"

	"github.com/google/uuid"
)

// nopStatusCache skips caching. Used when Redis is not configured and in
// tests.
type nopStatusCache struct{}

// NewNopStatusCache returns a StatusCache that caches nothing.
func NewNopStatusCache() StatusCache {
	return nopStatusCache{}
}

func (nopStatusCache) SetStatus(context.Context, uuid.UUID, string) {}
func (nopStatusCache) GetStatus(context.Context, uuid.UUID) (string, bool) {
	return "", false
}

// nopDeduper claims every reference; the payment row's pending guard
// remains the idempotence backstop.
type nopDeduper struct{}

// NewNopDeduper returns a CallbackDeduper that never rejects a claim.
func NewNopDeduper() CallbackDeduper {
	return nopDeduper{}
}

func (nopDeduper) Claim(context.Context, string) bool { return true }
