package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateUUIDv7_Ordered(t *testing.T) {
	a := GenerateUUIDv7()
	b := GenerateUUIDv7()
	if a == uuid.Nil || b == uuid.Nil {
		t.Fatal("expected non-nil uuids")
	}
	if a.Version() != 7 {
		t.Fatalf("expected version 7, got %d", a.Version())
	}
	if a.String() >= b.String() {
		t.Fatalf("expected time-ordered ids, got %s then %s", a, b)
	}
}

func TestGenerateUUIDv7_FallsBackToV4(t *testing.T) {
	orig := newUUIDv7
	t.Cleanup(func() { newUUIDv7 = orig })

	newUUIDv7 = func() (uuid.UUID, error) {
		return uuid.Nil, errors.New("v7 failed")
	}
	id := GenerateUUIDv7()
	if id == uuid.Nil {
		t.Fatal("expected v4 fallback id when v7 fails")
	}
	if id.Version() != 4 {
		t.Fatalf("expected version 4 fallback, got %d", id.Version())
	}
}
