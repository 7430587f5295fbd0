package redis

import (
	"context"
	"testing"
	"time"
)

func TestRevocationListExpiresWithToken(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	list := NewRevocationList(client)

	revoked, err := list.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("expected fresh token not revoked, got revoked=%v err=%v", revoked, err)
	}

	if err := list.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = list.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got revoked=%v err=%v", revoked, err)
	}

	// After the token's own expiry the marker is gone.
	mr.FastForward(2 * time.Minute)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("expected marker expired, got revoked=%v err=%v", revoked, err)
	}
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	list := NewRevocationList(client)

	if err := list.Revoke(ctx, "jti-2", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if mr.Exists(revokedKeyPrefix + "jti-2") {
		t.Fatalf("expected no marker for an already expired token")
	}
}
