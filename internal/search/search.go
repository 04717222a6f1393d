package search

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/cemetery"
	"github.com/ChaseHampton/graver/internal/client"
	"github.com/ChaseHampton/graver/internal/logging"
	"github.com/ChaseHampton/graver/internal/memorial"
	"github.com/ChaseHampton/graver/internal/metrics"
	"github.com/ChaseHampton/graver/internal/page"
)

const DefaultPageSize = 20

// ResultSet is the memorials a search produced, in page order. Source is the
// URL of the last results page fetched.
type ResultSet struct {
	Source    string              `json:"source"`
	Memorials []memorial.Memorial `json:"memorials"`
}

type Options struct {
	BaseURL  string
	PageSize int
	Logger   *zap.Logger
}

type Worker struct {
	fetcher  client.Fetcher
	baseURL  string
	pageSize int
	logger   *zap.Logger
}

func NewWorker(f client.Fetcher, opts Options) *Worker {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Worker{
		fetcher:  f,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		pageSize: opts.PageSize,
		logger:   logging.OrNop(opts.Logger),
	}
}

func (w *Worker) searchURL(cem *cemetery.Cemetery) string {
	if cem != nil {
		return cem.SearchURL(w.baseURL)
	}
	return w.baseURL + "/memorial/search"
}

// Search runs a memorial search. Without params.Page it reads the total from
// the first page and keeps fetching pages in order until the total, or
// params.MaxResults if smaller, has been collected.
func (w *Worker) Search(ctx context.Context, cem *cemetery.Cemetery, params Params) (*ResultSet, error) {
	searchURL := w.searchURL(cem)
	values := params.Values(cem)
	w.logger.Debug("search", zap.String("url", searchURL), zap.String("params", values.Encode()))

	first, err := w.fetchPage(ctx, searchURL, values)
	if err != nil {
		return nil, err
	}

	count := w.pageSize
	if params.Page <= 0 {
		count = ScrapeCount(first.Doc)
	}
	if params.MaxResults > 0 && params.MaxResults < count {
		count = params.MaxResults
	}
	numPages := (count + w.pageSize - 1) / w.pageSize

	rs := &ResultSet{Source: first.Response.URL}
	rs.Memorials = append(rs.Memorials, w.scrape(first.Doc, cem, count)...)

	for i := 2; i <= numPages && len(rs.Memorials) < count; i++ {
		values.Set("page", strconv.Itoa(i))
		pg, err := w.fetchPage(ctx, searchURL, values)
		if err != nil {
			return nil, err
		}
		rs.Source = pg.Response.URL
		rs.Memorials = append(rs.Memorials, w.scrape(pg.Doc, cem, count-len(rs.Memorials))...)
	}

	w.logger.Info("search complete",
		zap.String("source", rs.Source),
		zap.Int("total", count),
		zap.Int("pages", numPages),
		zap.Int("results", len(rs.Memorials)),
	)
	return rs, nil
}

func (w *Worker) fetchPage(ctx context.Context, searchURL string, values url.Values) (*page.Page, error) {
	pg, err := page.Fetch(ctx, w.fetcher, searchURL, values)
	if err != nil {
		return nil, fmt.Errorf("failed to get search page: %w", err)
	}
	if !pg.Response.OK() {
		return nil, fmt.Errorf("failed to get search page %s: unexpected response %q", pg.Response.URL, pg.Response.Status)
	}
	metrics.ObserveSearchPage()
	return pg, nil
}

func (w *Worker) scrape(doc *goquery.Document, cem *cemetery.Cemetery, limit int) []memorial.Memorial {
	return ScrapeResultsPage(doc, w.baseURL, cem, limit)
}

var countPattern = regexp.MustCompile(`^([0-9,]+) matching records? found`)

// ScrapeCount reads the "N matching records found" heading, 0 when absent.
func ScrapeCount(doc *goquery.Document) int {
	count := 0
	doc.Find("h1").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		m := countPattern.FindStringSubmatch(page.CollapseSpace(h.Text()))
		if m == nil {
			return true
		}
		count = page.Count(m[1])
		return false
	})
	return count
}

// ScrapeResultsPage turns the result rows of one page into memorials. Rows
// without a memorial link are skipped. At most limit rows are read when limit
// is positive.
func ScrapeResultsPage(doc *goquery.Document, baseURL string, cem *cemetery.Cemetery, limit int) []memorial.Memorial {
	var results []memorial.Memorial
	doc.Find(`div[role="group"]`).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}
		m, ok := scrapeRow(row, baseURL, cem)
		if ok {
			results = append(results, m)
		}
		return true
	})
	return results
}

func scrapeRow(row *goquery.Selection, baseURL string, cem *cemetery.Cemetery) (memorial.Memorial, bool) {
	var m memorial.Memorial

	href, ok := row.Find("a[href]").First().Attr("href")
	if !ok {
		return m, false
	}
	m.FindagraveURL = absolute(baseURL, href)
	id, ok := page.PathID(href)
	if !ok {
		return m, false
	}
	m.MemorialID = id

	info := row.Find("div.memorial-item--info").First()
	grave := row.Find("div.memorial-item---grave").First()

	m.MemorialType = "Burial"
	switch strings.TrimSpace(grave.Find("h2 button").First().Text()) {
	case "Cenotaph":
		m.MemorialType = "Cenotaph"
	case "Monument":
		m.MemorialType = "Monument"
	}

	nameGrave := info.Find("h2.name-grave").First()
	if nameTag := nameGrave.Find("i.pe-2").First(); nameTag.Length() > 0 {
		parts := memorial.SplitName(nameTag, m.FindagraveURL)
		m.Prefix = parts.Prefix
		m.Name = parts.Name
		m.Suffix = parts.Suffix
		m.Nickname = parts.Nickname
		m.MaidenName = parts.MaidenName
	}

	dates := page.StrippedText(row.Find(`b[class*="birthDeathDates"]`).First())
	if birth, death, ok := strings.Cut(dates, " – "); ok {
		m.Birth = birth
		m.Death = death
	}

	m.Famous = info.Find(`span[title="Famous Memorial"]`).Length() > 0
	m.Veteran = nameGrave.Find(`span[title="Veteran"]`).Length() > 0

	scrapeCemetery(row.Find("div.memorial-item---cemet").First(), cem, &m)
	return m, true
}

// scrapeCemetery fills the burial fields. A search scoped to a cemetery uses
// that cemetery; otherwise they come from the row's cemetery form, whose
// action is the cemetery path and whose next paragraph is its location.
func scrapeCemetery(div *goquery.Selection, cem *cemetery.Cemetery, m *memorial.Memorial) {
	if cem != nil {
		m.CemeteryID = cem.CemeteryID
		m.BurialPlace = joinNonEmpty(cem.Name, cem.Location)
	}

	if form := div.Find("form").First(); form.Length() > 0 && cem == nil {
		if id, ok := page.PathID(form.AttrOr("action", "")); ok {
			m.CemeteryID = id
		}
		location := ""
		form.NextAllFiltered("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			if strings.Contains(p.Text(), "Plot info:") {
				return true
			}
			location = page.CollapseSpace(p.Text())
			return false
		})
		m.BurialPlace = joinNonEmpty(page.StrippedText(form), location)
	}

	div.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := page.CollapseSpace(p.Text())
		if !strings.HasPrefix(text, "Plot info:") {
			return true
		}
		m.Plot = strings.TrimSpace(strings.TrimPrefix(text, "Plot info:"))
		return false
	})
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func absolute(baseURL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	base, err := url.Parse(baseURL + "/")
	if err != nil {
		return baseURL + href
	}
	return base.ResolveReference(ref).String()
}
