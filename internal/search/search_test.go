package search

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ChaseHampton/graver/internal/cemetery"
	"github.com/ChaseHampton/graver/internal/client"
	"github.com/ChaseHampton/graver/internal/memorial"
	"github.com/ChaseHampton/graver/internal/page"
)

const base = "https://www.findagrave.com"

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Get(ctx context.Context, rawURL string, params url.Values) (*client.Response, error) {
	args := m.Called(ctx, rawURL, params)
	if fn, ok := args.Get(0).(func(context.Context, string, url.Values) *client.Response); ok {
		return fn(ctx, rawURL, params), args.Error(1)
	}
	resp, _ := args.Get(0).(*client.Response)
	return resp, args.Error(1)
}

func pageParam(n string) interface{} {
	return mock.MatchedBy(func(q url.Values) bool { return q.Get("page") == n })
}

func htmlResponse(rawURL string, params url.Values, body string) *client.Response {
	return &client.Response{
		StatusCode: 200,
		Status:     "200 OK",
		Body:       []byte(body),
		URL:        rawURL + "?" + params.Encode(),
	}
}

// resultsPage renders a results page holding memorial ids [from, to).
func resultsPage(total, from, to int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body><h1>%d matching records found</h1>", total)
	for id := from; id < to; id++ {
		fmt.Fprintf(&b, `<div role="group"><a href="/memorial/%d/person-%d"></a>`+
			`<div class="memorial-item--info"><h2 class="name-grave"><i class="pe-2">Person %d</i></h2>`+
			`<div class="memorial-item---grave"><b class="birthDeathDates">1900 – 1950</b></div></div>`+
			`<div class="memorial-item---cemet"></div></div>`, id, id, id)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func onPage(f *mockFetcher, searchURL, n string, body string) *mock.Call {
	return f.On("Get", mock.Anything, searchURL, pageParam(n)).
		Return(func(_ context.Context, u string, q url.Values) *client.Response {
			return htmlResponse(u, q, body)
		}, nil)
}

func TestSearchPaginates(t *testing.T) {
	f := new(mockFetcher)
	searchURL := base + "/memorial/search"
	onPage(f, searchURL, "", resultsPage(37, 0, 20)).Once()
	onPage(f, searchURL, "2", resultsPage(37, 20, 37)).Once()

	w := NewWorker(f, Options{BaseURL: base, PageSize: 20})
	rs, err := w.Search(context.Background(), nil, Params{LastName: "Person"})
	require.NoError(t, err)

	assert.Len(t, rs.Memorials, 37)
	f.AssertNumberOfCalls(t, "Get", 2)
	f.AssertExpectations(t)

	for i, m := range rs.Memorials {
		assert.Equal(t, int64(i), m.MemorialID)
	}
	assert.Contains(t, rs.Source, "page=2")
}

func TestSearchLogsCompletionOnce(t *testing.T) {
	f := new(mockFetcher)
	searchURL := base + "/memorial/search"
	onPage(f, searchURL, "", resultsPage(3, 0, 3)).Once()

	core, logs := observer.New(zap.InfoLevel)
	w := NewWorker(f, Options{BaseURL: base, PageSize: 20, Logger: zap.New(core)})
	rs, err := w.Search(context.Background(), nil, Params{LastName: "Person"})
	require.NoError(t, err)

	done := logs.FilterMessage("search complete").All()
	require.Len(t, done, 1)
	fields := done[0].ContextMap()
	assert.Equal(t, rs.Source, fields["source"])
	assert.Equal(t, int64(3), fields["results"])
}

func TestSearchMaxResults(t *testing.T) {
	f := new(mockFetcher)
	searchURL := base + "/memorial/search"
	onPage(f, searchURL, "", resultsPage(37, 0, 20)).Once()
	onPage(f, searchURL, "2", resultsPage(37, 20, 37)).Once()

	w := NewWorker(f, Options{BaseURL: base, PageSize: 20})
	rs, err := w.Search(context.Background(), nil, Params{MaxResults: 25})
	require.NoError(t, err)

	assert.Len(t, rs.Memorials, 25)
	f.AssertNumberOfCalls(t, "Get", 2)
}

func TestSearchMaxResultsWithinFirstPage(t *testing.T) {
	f := new(mockFetcher)
	searchURL := base + "/memorial/search"
	onPage(f, searchURL, "", resultsPage(37, 0, 20)).Once()

	w := NewWorker(f, Options{BaseURL: base, PageSize: 20})
	rs, err := w.Search(context.Background(), nil, Params{MaxResults: 5})
	require.NoError(t, err)

	assert.Len(t, rs.Memorials, 5)
	f.AssertNumberOfCalls(t, "Get", 1)
}

func TestSearchSpecificPage(t *testing.T) {
	f := new(mockFetcher)
	searchURL := base + "/memorial/search"
	onPage(f, searchURL, "3", resultsPage(100, 40, 60)).Once()

	w := NewWorker(f, Options{BaseURL: base, PageSize: 20})
	rs, err := w.Search(context.Background(), nil, Params{Page: 3})
	require.NoError(t, err)

	assert.Len(t, rs.Memorials, 20)
	assert.Equal(t, int64(40), rs.Memorials[0].MemorialID)
	assert.Contains(t, rs.Source, "page=3")
	f.AssertNumberOfCalls(t, "Get", 1)
}

func TestSearchNoResults(t *testing.T) {
	f := new(mockFetcher)
	searchURL := base + "/memorial/search"
	onPage(f, searchURL, "", "<html><body><h1>No matching records found</h1></body></html>").Once()

	w := NewWorker(f, Options{BaseURL: base})
	rs, err := w.Search(context.Background(), nil, Params{LastName: "Nobody"})
	require.NoError(t, err)
	assert.Empty(t, rs.Memorials)
	f.AssertNumberOfCalls(t, "Get", 1)
}

func TestSearchErrorStatus(t *testing.T) {
	f := new(mockFetcher)
	f.On("Get", mock.Anything, mock.Anything, mock.Anything).
		Return(&client.Response{StatusCode: 503, Status: "503 Service Unavailable"}, nil)

	w := NewWorker(f, Options{BaseURL: base})
	_, err := w.Search(context.Background(), nil, Params{})
	assert.Error(t, err)
}

func TestSearchTransportError(t *testing.T) {
	f := new(mockFetcher)
	f.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	w := NewWorker(f, Options{BaseURL: base})
	_, err := w.Search(context.Background(), nil, Params{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchCemeteryScope(t *testing.T) {
	cem := &cemetery.Cemetery{
		CemeteryID: 49269,
		Name:       "Arlington National Cemetery",
		Location:   "Arlington, Virginia, USA",
	}
	f := new(mockFetcher)
	searchURL := base + "/cemetery/49269/memorial-search"
	f.On("Get", mock.Anything, searchURL, mock.MatchedBy(func(q url.Values) bool {
		return q.Get("cemeteryName") == cem.Name
	})).Return(func(_ context.Context, u string, q url.Values) *client.Response {
		return htmlResponse(u, q, resultsPage(2, 1, 3))
	}, nil).Once()

	w := NewWorker(f, Options{BaseURL: base})
	rs, err := w.Search(context.Background(), cem, Params{})
	require.NoError(t, err)

	require.Len(t, rs.Memorials, 2)
	for _, m := range rs.Memorials {
		assert.Equal(t, int64(49269), m.CemeteryID)
		assert.Equal(t, "Arlington National Cemetery, Arlington, Virginia, USA", m.BurialPlace)
	}
	f.AssertExpectations(t)
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func TestScrapeResultsPage(t *testing.T) {
	doc, err := page.Parse([]byte(loadFixture(t, "results.html")))
	require.NoError(t, err)

	assert.Equal(t, 2, ScrapeCount(doc))

	got := ScrapeResultsPage(doc, base, nil, 0)
	want := []memorial.Memorial{
		{
			MemorialID:    1784,
			FindagraveURL: base + "/memorial/1784/george-washington",
			Name:          "George Washington",
			Famous:        true,
			Veteran:       true,
			Birth:         "22 Feb 1732",
			Death:         "14 Dec 1799",
			MemorialType:  "Burial",
			BurialPlace:   "Mount Vernon Estate, Mount Vernon, Fairfax County, Virginia, USA",
			CemeteryID:    1234,
			Plot:          "Family vault",
		},
		{
			MemorialID:    555,
			FindagraveURL: base + "/memorial/555/dolores-higginbotham",
			Name:          "Dolores Higginbotham",
			MaidenName:    "Smith",
			Birth:         "1901",
			Death:         "1987",
			MemorialType:  "Cenotaph",
			Plot:          "Row 3",
		},
	}
	assert.Equal(t, want, got)

	assert.Len(t, ScrapeResultsPage(doc, base, nil, 1), 1)
}

func TestScrapeCountWithSeparators(t *testing.T) {
	doc, err := page.Parse([]byte("<h1>Search</h1><h1>1,234 matching records found</h1>"))
	require.NoError(t, err)
	assert.Equal(t, 1234, ScrapeCount(doc))

	doc, err = page.Parse([]byte("<h1>1 matching record found</h1>"))
	require.NoError(t, err)
	assert.Equal(t, 1, ScrapeCount(doc))
}
