package redis

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestConnectRedis_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := zerolog.Nop()
	client, err := ConnectRedis(ctx, "127.0.0.1:1", "", 3, &logger)
	if err == nil {
		t.Fatal("expected error")
	}
	if client != nil {
		t.Error("expected nil client")
	}
}
