package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"pcsteps/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "indexing", "search", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"indexing", "search", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrContentMismatch, "validation", "", "not a build", nil), "content_mismatch"},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrDownload, "upload", "fetch", "", nil)), "download"},
		{services.Wrap(services.ErrTimeout, "indexing", "poll", "", nil), "timeout"},
		{context.Canceled, "canceled"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range cases {
		if got := services.Category(tc.err); got != tc.want {
			t.Fatalf("Category(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestHintForContentMismatch(t *testing.T) {
	err := services.Wrap(services.ErrContentMismatch, "validation", "", "", nil)
	if !strings.Contains(services.Hint(err), "--skip-validation") {
		t.Fatalf("unexpected hint %q", services.Hint(err))
	}
	if services.Hint(errors.New("plain")) != "" {
		t.Fatal("expected no hint for unclassified error")
	}
}

func TestDetailsExposesStage(t *testing.T) {
	base := errors.New("http 500")
	err := fmt.Errorf("pipeline: %w", services.Wrap(services.ErrExternalService, "indexing", "search", "query failed", base))
	details := services.Details(err)
	if details.Category != "external_service" || details.Stage != "indexing" || details.Operation != "search" {
		t.Fatalf("unexpected details %+v", details)
	}
	if details.Message != "query failed: http 500" {
		t.Fatalf("unexpected message %q", details.Message)
	}
	if details.Hint == "" {
		t.Fatal("expected hint for external service error")
	}

	plain := services.Details(errors.New("plain"))
	if plain.Category != "unknown" || plain.Message != "plain" || plain.Stage != "" {
		t.Fatalf("unexpected plain details %+v", plain)
	}
}

func TestMarkerOutermostWins(t *testing.T) {
	inner := services.Wrap(services.ErrExternalService, "indexing", "get task", "", context.DeadlineExceeded)
	outer := services.Wrap(services.ErrTimeout, "indexing", "wait for task", "", inner)
	if services.Marker(outer) != services.ErrTimeout {
		t.Fatalf("expected timeout marker, got %v", services.Marker(outer))
	}
	if !errors.Is(outer, services.ErrExternalService) {
		t.Fatal("expected inner marker to stay reachable")
	}
}
