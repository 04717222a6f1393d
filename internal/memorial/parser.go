package memorial

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/client"
	"github.com/ChaseHampton/graver/internal/logging"
	"github.com/ChaseHampton/graver/internal/metrics"
	"github.com/ChaseHampton/graver/internal/page"
)

type Parser struct {
	fetcher client.Fetcher
	logger  *zap.Logger
}

func NewParser(f client.Fetcher, logger *zap.Logger) *Parser {
	return &Parser{fetcher: f, logger: logging.OrNop(logger)}
}

// Parse fetches and scrapes one memorial page. Errors are *ParseError,
// *MergedError or *RemovedError.
func (p *Parser) Parse(ctx context.Context, rawURL string) (Memorial, error) {
	m, err := p.parse(ctx, rawURL)
	metrics.ObserveParse("memorial", kindOf(err).String())
	return m, err
}

// Resolve is Parse with the outcome folded into a Result.
func (p *Parser) Resolve(ctx context.Context, rawURL string) Result {
	m, err := p.Parse(ctx, rawURL)
	res := Result{Kind: kindOf(err), URL: rawURL, Memorial: m, Err: err}
	var merged *MergedError
	if errors.As(err, &merged) {
		res.NewURL = merged.NewURL
	}
	return res
}

func kindOf(err error) Kind {
	var merged *MergedError
	var removed *RemovedError
	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &merged):
		return KindMerged
	case errors.As(err, &removed):
		return KindRemoved
	}
	return KindFailed
}

func (p *Parser) parse(ctx context.Context, rawURL string) (Memorial, error) {
	pg, err := page.Fetch(ctx, p.fetcher, rawURL, nil)
	if err != nil {
		return Memorial{}, &ParseError{URL: rawURL, Err: err}
	}

	resp := pg.Response
	if !resp.OK() {
		if resp.StatusCode == http.StatusNotFound {
			if CheckRemoved(pg.Doc) {
				p.logger.Info("memorial removed", zap.String("url", rawURL))
				return Memorial{}, &RemovedError{URL: rawURL}
			}
			if newURL, ok := CheckMerged(pg.Doc, rawURL); ok {
				p.logger.Info("memorial merged", zap.String("url", rawURL), zap.String("new_url", newURL))
				return Memorial{}, &MergedError{OldURL: rawURL, NewURL: newURL}
			}
		}
		return Memorial{}, &ParseError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response %q", resp.Status),
		}
	}

	m, err := ParseDocument(pg.Doc, rawURL)
	if err != nil {
		return Memorial{}, &ParseError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}
	return m, nil
}

func jumbotron(doc *goquery.Document) *goquery.Selection {
	return doc.Find("div.jumbotron.text-center").First()
}

// CheckRemoved reports whether doc carries the removed memorial banner.
func CheckRemoved(doc *goquery.Document) bool {
	popup := jumbotron(doc)
	return popup.Length() > 0 && strings.Contains(page.StrippedText(popup), "This memorial has been removed.")
}

// CheckMerged returns the memorial a merged page points to, resolved against
// requestURL. The last paragraph link in the banner wins.
func CheckMerged(doc *goquery.Document, requestURL string) (string, bool) {
	popup := jumbotron(doc)
	if popup.Length() == 0 || !strings.Contains(page.StrippedText(popup), "Memorial has been merged") {
		return "", false
	}
	base, err := url.Parse(requestURL)
	if err != nil {
		return "", false
	}

	var merged string
	popup.Find("p").Each(func(_ int, p *goquery.Selection) {
		href, ok := p.Find("a").First().Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		merged = base.ResolveReference(ref).String()
	})
	return merged, merged != ""
}

// ParseDocument scrapes a memorial page that has already been fetched.
// pageURL is used when the page has no canonical link.
func ParseDocument(doc *goquery.Document, pageURL string) (Memorial, error) {
	var m Memorial
	m.FindagraveURL = pageURL
	if href, ok := doc.Find(`link[rel~="canonical"]`).First().Attr("href"); ok && href != "" {
		m.FindagraveURL = href
	}
	if id, ok := page.PathID(m.FindagraveURL); ok {
		m.MemorialID = id
	}
	m.HasBio = doc.Find(`meta[property="og:description"]`).Length() > 0

	vitals := doc.Find("div:has(h1#bio-name)").First()
	if vitals.Length() == 0 {
		return Memorial{}, errors.New("no memorial name heading on page")
	}
	heading := vitals.Find("h1#bio-name").First()
	m.Famous = heading.Find(`span[title="Famous memorial"]`).Length() > 0
	m.Veteran = heading.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Veteran")
	}).Length() > 0

	parts := SplitName(heading, m.FindagraveURL)
	m.Prefix = parts.Prefix
	m.Name = parts.Name
	m.Suffix = parts.Suffix
	m.Nickname = parts.Nickname
	m.MaidenName = parts.MaidenName

	vitals.Find("dl").First().Find("dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextAllFiltered("dd").First()
		label := strings.ReplaceAll(page.StrippedText(dt), "Read More", "")
		switch {
		case strings.HasPrefix(label, "Original Name"):
			m.OriginalName = strings.TrimSpace(dd.Text())
		case label == "Birth":
			m.Birth = strings.TrimSpace(dd.Find(`time[itemprop="birthDate"]`).Text())
			m.BirthPlace = strings.TrimSpace(dd.Find(`div[itemprop="birthPlace"]`).Text())
		case label == "Death":
			death := dd.Find(`span[itemprop="deathDate"]`).Text()
			m.Death = strings.TrimSpace(strings.SplitN(death, "(", 2)[0])
			m.DeathPlace = strings.TrimSpace(dd.Find(`div[itemprop="deathPlace"]`).Text())
		case label == "Burial" || strings.HasPrefix(label, "Cenotaph") || strings.HasPrefix(label, "Monument"):
			m.MemorialType = label
			scrapeBurial(dd, &m)
		case label == "Plot":
			m.Plot = page.StrippedText(dd)
		case label == "Memorial ID":
			// Without a readable label the id from the URL stands.
			raw := page.StrippedText(dd.Find("span#memNumberLabel"))
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				m.MemorialID = id
			}
		}
	})
	return m, nil
}

func scrapeBurial(dd *goquery.Selection, m *Memorial) {
	// The map link can be present whatever the memorial type.
	if href, ok := dd.Find(`span[itemtype*="https://schema.org/Map"] a`).First().Attr("href"); ok {
		m.Coords = ParseCoords(href)
	}

	cem := dd.Find(`div[itemtype="https://schema.org/Cemetery"]`).First()
	if cem.Length() == 0 {
		if other := dd.Find("span#otherPlace"); other.Length() > 0 {
			m.BurialPlace = page.StrippedText(other)
		}
		return
	}

	if href, ok := cem.Find("a").First().Attr("href"); ok {
		if id, ok := page.PathID(href); ok {
			m.CemeteryID = id
		}
	}
	place := []string{page.StrippedText(cem)}
	if addr := page.StrippedText(dd.Find(`span[itemprop="address"]`).First()); addr != "" {
		place = append(place, strings.ReplaceAll(addr, ",", ", "))
	}
	m.BurialPlace = strings.Join(place, ", ")
}

// ParseCoords returns the value of the first query parameter of a map link,
// which the site always fills with "lat,lon". The parameter name is not
// checked.
func ParseCoords(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		_, value, _ := strings.Cut(pair, "=")
		if v, err := url.QueryUnescape(value); err == nil {
			return v
		}
		return value
	}
	return ""
}
