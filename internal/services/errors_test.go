package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"orxport/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "render", "cwebp", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "cwebp", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"cancelled", fmt.Errorf("export: %w", services.ErrCancelled), 130},
		{"context canceled", fmt.Errorf("worker 1: %w", context.Canceled), 130},
		{"validation", services.Wrap(services.ErrValidation, "manifest", "load", "bad", nil), 1},
		{"plain", errors.New("x"), 1},
	}
	for _, tc := range cases {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithWorker(ctx, 3)
	ctx = services.WithEmoji(ctx, "wave")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id %q (%v)", id, ok)
	}
	if w, ok := services.WorkerFromContext(ctx); !ok || w != 3 {
		t.Fatalf("unexpected worker %d (%v)", w, ok)
	}
	if s, ok := services.EmojiFromContext(ctx); !ok || s != "wave" {
		t.Fatalf("unexpected emoji %q (%v)", s, ok)
	}
	if _, ok := services.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on empty context")
	}
	if services.WithEmoji(ctx, "") != ctx {
		t.Fatal("expected empty shortcode to leave context untouched")
	}
}
