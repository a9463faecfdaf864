package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func resetLogger() {
	log = nil
	once = sync.Once{}
}

func TestInitAndLevels(t *testing.T) {
	Init("development")
	if GetLogger() == nil {
		t.Fatal("expected logger initialized")
	}

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
}

func TestWithContext(t *testing.T) {
	Init("development")

	if WithContext(nil) == nil {
		t.Fatal("expected base logger for nil context")
	}
	if WithContext(context.Background()) == nil {
		t.Fatal("expected base logger for context without request id")
	}

	typed := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	if WithContext(typed) == nil {
		t.Fatal("expected logger for typed request id key")
	}
}

func TestInit_Production(t *testing.T) {
	resetLogger()
	t.Cleanup(resetLogger)

	Init("production")
	if GetLogger() == nil {
		t.Fatal("expected production logger initialized")
	}
}

func TestInit_PanicsWhenBuildFails(t *testing.T) {
	resetLogger()
	origBuild := buildLogger
	t.Cleanup(func() {
		buildLogger = origBuild
		resetLogger()
	})

	buildLogger = func(zap.Config) (*zap.Logger, error) {
		return nil, errors.New("build failed")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when logger builder fails")
		}
	}()
	Init("production")
}
