package cemetery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/client"
	"github.com/ChaseHampton/graver/internal/logging"
	"github.com/ChaseHampton/graver/internal/metrics"
	"github.com/ChaseHampton/graver/internal/page"
)

type Cemetery struct {
	CemeteryID    int64  `json:"cemetery_id"`
	FindagraveURL string `json:"findagrave_url"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Coords        string `json:"coords"`
	NumMemorials  int    `json:"num_memorials"`
}

// SearchURL is the cemetery scoped memorial search endpoint.
func (c Cemetery) SearchURL(base string) string {
	return fmt.Sprintf("%s/cemetery/%d/memorial-search", strings.TrimRight(base, "/"), c.CemeteryID)
}

func CanonicalURL(base string, id int64) string {
	return fmt.Sprintf("%s/cemetery/%d", strings.TrimRight(base, "/"), id)
}

type Parser struct {
	fetcher client.Fetcher
	logger  *zap.Logger
}

func NewParser(f client.Fetcher, logger *zap.Logger) *Parser {
	return &Parser{fetcher: f, logger: logging.OrNop(logger)}
}

func (p *Parser) Parse(ctx context.Context, rawURL string) (Cemetery, error) {
	c, err := p.parse(ctx, rawURL)
	outcome := "ok"
	if err != nil {
		outcome = "failed"
		p.logger.Debug("cemetery parse failed", zap.String("url", rawURL), zap.Error(err))
	}
	metrics.ObserveParse("cemetery", outcome)
	return c, err
}

func (p *Parser) parse(ctx context.Context, rawURL string) (Cemetery, error) {
	pg, err := page.Fetch(ctx, p.fetcher, rawURL, nil)
	if err != nil {
		return Cemetery{}, fmt.Errorf("failed to fetch cemetery %s: %w", rawURL, err)
	}
	if !pg.Response.OK() {
		return Cemetery{}, fmt.Errorf("failed to fetch cemetery %s: unexpected response %q", rawURL, pg.Response.Status)
	}
	return ParseDocument(pg.Doc, rawURL)
}

// ParseDocument scrapes a fetched cemetery page. The id comes from the
// canonical URL, falling back to pageURL when the page has none.
func ParseDocument(doc *goquery.Document, pageURL string) (Cemetery, error) {
	c := Cemetery{FindagraveURL: pageURL}
	if href, ok := doc.Find(`link[rel~="canonical"]`).First().Attr("href"); ok && href != "" {
		c.FindagraveURL = href
	}

	id, ok := page.PathID(c.FindagraveURL)
	if !ok {
		return Cemetery{}, errors.New("no cemetery id in " + c.FindagraveURL)
	}
	c.CemeteryID = id

	if h1 := doc.Find(`h1[itemprop="name"]`).First(); h1.Length() > 0 {
		c.Name = strings.TrimSpace(h1.Text())
	}
	c.Location = location(doc)
	c.Coords = coords(doc)

	// "View Memorials 412,345"
	if a := doc.Find("div#MemorialsAll ul a").First(); a.Length() > 0 {
		c.NumMemorials = page.Count(a.Text())
	}
	return c, nil
}

// location is only set when locality, region and country are all present.
func location(doc *goquery.Document) string {
	var parts []string
	for _, prop := range []string{"addressLocality", "addressRegion", "addressCountry"} {
		s := doc.Find(`span[itemprop="` + prop + `"]`).First()
		if s.Length() == 0 {
			return ""
		}
		parts = append(parts, strings.TrimSpace(s.Text()))
	}
	return strings.Join(parts, ", ")
}

func coords(doc *goquery.Document) string {
	lat := strings.TrimSpace(doc.Find(`span[title="Latitude:"]`).First().Text())
	lon := strings.TrimSpace(doc.Find(`span[title="Longitude:"]`).First().Text())
	if lat == "" || lon == "" {
		return ""
	}
	return lat + "," + lon
}
