package page

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ChaseHampton/graver/internal/client"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Get(ctx context.Context, rawURL string, params url.Values) (*client.Response, error) {
	args := m.Called(ctx, rawURL, params)
	resp, _ := args.Get(0).(*client.Response)
	return resp, args.Error(1)
}

func TestFetchParsesErrorPages(t *testing.T) {
	f := new(mockFetcher)
	f.On("Get", mock.Anything, "https://example.test/x", url.Values(nil)).Return(&client.Response{
		StatusCode: 404,
		Body:       []byte(`<div class="jumbotron"><p>gone</p></div>`),
	}, nil)

	p, err := Fetch(context.Background(), f, "https://example.test/x", nil)
	require.NoError(t, err)
	assert.Equal(t, 404, p.Response.StatusCode)
	assert.Equal(t, "gone", p.Doc.Find("div.jumbotron p").Text())
	f.AssertExpectations(t)
}

func TestFetchPropagatesTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	f := new(mockFetcher)
	f.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

	_, err := Fetch(context.Background(), f, "https://example.test/x", nil)
	assert.ErrorIs(t, err, boom)
}

func TestStrippedText(t *testing.T) {
	doc, err := Parse([]byte("<dt>\n  Burial\n  <a>Read More</a>\n</dt>"))
	require.NoError(t, err)
	assert.Equal(t, "BurialRead More", StrippedText(doc.Find("dt")))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "Arlington, Virginia, USA", CollapseSpace("  Arlington,\n   Virginia,  USA "))
	assert.Equal(t, "", CollapseSpace(" \n\t"))
}

func TestPathID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"https://www.findagrave.com/memorial/1784/george-washington", 1784, true},
		{"https://www.findagrave.com/memorial/1784", 1784, true},
		{"/cemetery/49269/arlington-national-cemetery", 49269, true},
		{"https://www.findagrave.com/memorial/search", 0, false},
	}
	for _, tc := range cases {
		got, ok := PathID(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, 412345, Count("View Memorials 412,345"))
	assert.Equal(t, 37, Count("37"))
	assert.Equal(t, 0, Count("none"))
}
