package processor

import (
	"context"

	"github.com/ChaseHampton/graver/internal/memorial"
)

type MemorialResolver interface {
	Resolve(ctx context.Context, rawURL string) memorial.Result
}

type MemorialSaver interface {
	SaveMemorial(ctx context.Context, m memorial.Memorial) error
}

// Report summarises a batch run. Err aggregates one error per failed input.
type Report struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    []string
	Memorials []memorial.Memorial
	Err       error
}
