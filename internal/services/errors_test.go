package services_test

import (
	"errors"
	"strings"
	"testing"

	"karaoke/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "separation", "demucs", "failed", base)
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
	for _, fragment := range []string{"separation", "demucs", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestDetails(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, "annotation", "gemini", "api key missing", nil)
	details := services.Details(err)
	if details.Kind != "configuration" {
		t.Fatalf("unexpected kind %q", details.Kind)
	}
	if details.Operation != "gemini" || details.Message != "api key missing" {
		t.Fatalf("unexpected details %+v", details)
	}
	if details.Hint == "" {
		t.Fatal("expected hint")
	}

	plain := services.Details(errors.New("plain failure"))
	if plain.Kind != "unknown" || plain.Message != "plain failure" {
		t.Fatalf("unexpected plain details %+v", plain)
	}

	if got := services.Details(nil); got != (services.ErrorDetails{}) {
		t.Fatalf("expected zero details for nil, got %+v", got)
	}
}
