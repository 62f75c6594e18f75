package batch

import (
	"context"
	"log/slog"
	"testing"

	"github.com/borderops/ingestor/internal/pipeline"
	"github.com/borderops/ingestor/internal/store"
)

// TestRunOneRecoversPanic exercises the panic-safe wrapping around
// pipeline.ProcessFile without a database: a nil *pipeline.Pipeline panics
// on its first field dereference, and runOne must convert that into an
// error result rather than crashing the batch.
func TestRunOneRecoversPanic(t *testing.T) {
	p := &Processor{pipeline: (*pipeline.Pipeline)(nil), log: slog.Default()}

	f := store.BordereauxFile{ID: store.NewUUID()}

	outcome, err := p.runOne(context.Background(), f)
	if err == nil {
		t.Fatal("expected runOne to return an error recovered from the panic, got nil")
	}
	if outcome != (pipeline.Outcome{}) {
		t.Fatalf("expected zero-value Outcome on panic, got %+v", outcome)
	}
}

func TestNewDefaultsPoolSize(t *testing.T) {
	p := New(nil, nil, 0, nil)
	if p.poolSize != DefaultPoolSize {
		t.Fatalf("poolSize = %d, want default %d", p.poolSize, DefaultPoolSize)
	}
	if p.log == nil {
		t.Fatal("expected New to default a non-nil logger")
	}
}
