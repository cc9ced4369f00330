package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus(t *testing.T) {
	svc := NewService()
	payload, ok := svc.Status(context.Background())
	if !ok || payload["ok"] != true {
		t.Fatalf("empty service should be healthy: %v", payload)
	}

	svc.Register("db", func(context.Context) error { return nil })
	svc.Register("redis", func(context.Context) error { return errors.New("refused") })
	payload, ok = svc.Status(context.Background())
	if ok {
		t.Fatal("expected unhealthy status")
	}
	deps := payload["dependencies"].(map[string]string)
	if deps["db"] != "up" || deps["redis"] != "down" {
		t.Fatalf("unexpected dependencies %v", deps)
	}
}
