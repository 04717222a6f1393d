package processor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/memorial"
)

// SaveMemorials stores the memorials the cache has not seen yet, typically
// search results, and returns how many were written.
func (p *Processor) SaveMemorials(ctx context.Context, memorials []memorial.Memorial) (int, error) {
	if len(memorials) == 0 {
		return 0, nil
	}
	if p.saver == nil {
		return 0, fmt.Errorf("no store configured")
	}

	fresh, seen := p.cache.FilterMemorials(memorials)
	p.logger.Info("saving memorials", zap.Int("new", len(fresh)), zap.Int("seen", len(seen)))

	saved := 0
	for _, m := range fresh {
		if err := p.saver.SaveMemorial(ctx, m); err != nil {
			return saved, fmt.Errorf("failed to save memorial %d: %w", m.MemorialID, err)
		}
		p.cache.MarkSeen(m.MemorialID)
		saved++
	}
	return saved, nil
}
