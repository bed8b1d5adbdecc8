package httpapi

import (
	"context"
	"testing"
	"time"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("context not canceled")
	}
}

func TestJoinContextsCanceledBySecondary(t *testing.T) {
	secondary, cancelSecondary := context.WithCancel(context.Background())
	ctx, cancel := joinContexts(context.Background(), secondary)
	defer cancel()

	cancelSecondary()
	waitDone(t, ctx)
}

func TestJoinContextsCanceledByPrimary(t *testing.T) {
	primary, cancelPrimary := context.WithCancel(context.Background())
	ctx, cancel := joinContexts(primary, context.Background())
	defer cancel()

	cancelPrimary()
	waitDone(t, ctx)
}

func TestJoinContextsPreservesPrimaryValues(t *testing.T) {
	type key struct{}
	primary := context.WithValue(context.Background(), key{}, "v")
	ctx, cancel := joinContexts(primary, context.Background())
	defer cancel()
	if ctx.Value(key{}) != "v" {
		t.Fatalf("primary values not visible through the joined context")
	}
}
