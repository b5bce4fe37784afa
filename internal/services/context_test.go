package services_test

import (
	"context"
	"testing"

	"pcsteps/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "extraction")
	ctx = services.WithVideoID(ctx, "abc123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "extraction" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if vid, ok := services.VideoIDFromContext(ctx); !ok || vid != "abc123" {
		t.Fatalf("unexpected video id: %v %v", vid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
