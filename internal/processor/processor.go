package processor

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/config"
	"github.com/ChaseHampton/graver/internal/db"
	"github.com/ChaseHampton/graver/internal/logging"
	"github.com/ChaseHampton/graver/internal/memorial"
)

type Processor struct {
	resolver MemorialResolver
	saver    MemorialSaver
	cache    *db.MemorialCache
	baseURL  string
	cfg      config.ScrapeConfig
	logger   *zap.Logger
}

// NewProcessor builds a batch processor. saver may be nil, in which case
// parsed memorials are only collected in the Report.
func NewProcessor(resolver MemorialResolver, saver MemorialSaver, cache *db.MemorialCache, baseURL string, cfg config.ScrapeConfig, logger *zap.Logger) *Processor {
	if cache == nil {
		cache = db.NewMemorialCache()
	}
	return &Processor{
		resolver: resolver,
		saver:    saver,
		cache:    cache,
		baseURL:  baseURL,
		cfg:      cfg,
		logger:   logging.OrNop(logger),
	}
}

// ProcessURLs scrapes each input line in order. Lines may be memorial URLs,
// bare ids or old GRid links. A failing input is recorded in the report and
// the batch carries on; only a cancelled context stops it early.
func (p *Processor) ProcessURLs(ctx context.Context, lines []string) Report {
	var report Report
	var errs *multierror.Error
	fetched := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		report.Total++

		id, u := memorial.NormalizeURL(line, p.baseURL)
		if !memorial.IsMemorialURL(u) {
			p.logger.Warn("not a valid memorial URL", zap.String("input", line))
			report.Failed = append(report.Failed, u)
			errs = multierror.Append(errs, fmt.Errorf("%s: not a valid memorial URL", u))
			continue
		}
		if id > 0 && p.cache.Seen(id) {
			p.logger.Debug("skipping seen memorial", zap.Int64("memorial_id", id))
			report.Skipped++
			continue
		}

		if fetched > 0 && p.cfg.Delay > 0 {
			if err := jitteredPause(ctx, p.cfg.Delay, p.cfg.Jitter); err != nil {
				errs = multierror.Append(errs, err)
				break
			}
		}
		fetched++

		m, err := p.processOne(ctx, u)
		if err != nil {
			p.logger.Error("failed to scrape memorial", zap.String("url", u), zap.Error(err))
			report.Failed = append(report.Failed, u)
			errs = multierror.Append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if id > 0 {
			p.cache.MarkSeen(id)
		}
		p.cache.MarkSeen(m.MemorialID)
		report.Succeeded++
		report.Memorials = append(report.Memorials, m)
	}

	report.Err = errs.ErrorOrNil()
	p.logger.Info("batch complete",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failed)),
	)
	return report
}

// ScrapeURL resolves one memorial, following a merge once when configured,
// and saves it.
func (p *Processor) ScrapeURL(ctx context.Context, rawURL string) (memorial.Memorial, error) {
	return p.processOne(ctx, rawURL)
}

func (p *Processor) processOne(ctx context.Context, u string) (memorial.Memorial, error) {
	res := p.resolver.Resolve(ctx, u)
	if res.Kind == memorial.KindMerged && p.cfg.FollowMerged {
		p.logger.Info("following merged memorial", zap.String("url", u), zap.String("new_url", res.NewURL))
		res = p.resolver.Resolve(ctx, res.NewURL)
	}
	if res.Kind != memorial.KindOK {
		return memorial.Memorial{}, res.Err
	}

	if p.saver != nil {
		if err := p.saver.SaveMemorial(ctx, res.Memorial); err != nil {
			return memorial.Memorial{}, err
		}
	}
	return res.Memorial, nil
}

func jitteredPause(ctx context.Context, baseDelay time.Duration, jitterPercent float64) error {
	jitterrange := time.Duration(float64(baseDelay) * jitterPercent)

	var jitter time.Duration
	if jitterrange > 0 {
		jitter = time.Duration(rand.Int63n(int64(2*jitterrange))) - jitterrange
	}

	delay := baseDelay + jitter
	if delay < 0 {
		delay = baseDelay / 2
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
