package memorial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const base = "https://www.findagrave.com"

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		line   string
		wantID int64
		want   string
	}{
		{"1784", 1784, "https://www.findagrave.com/memorial/1784"},
		{" 1784 \n", 1784, "https://www.findagrave.com/memorial/1784"},
		{"https://secure.findagrave.com/cgi-bin/fg.cgi?page=gr&GRid=1784", 1784, "https://www.findagrave.com/memorial/1784"},
		{"https://www.findagrave.com/memorial/1784/george-washington", 1784, "https://www.findagrave.com/memorial/1784/george-washington"},
		{"not a url", -1, "not a url"},
	}
	for _, tc := range cases {
		id, got := NormalizeURL(tc.line, base)
		assert.Equal(t, tc.wantID, id, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestIsMemorialURL(t *testing.T) {
	valid := []string{
		"https://www.findagrave.com/memorial/1784/george-washington",
		"http://www.findagrave.com/memorial/1784",
		"file:///tmp/memorial/1784.html",
		"https://secure.findagrave.com/cgi-bin/fg.cgi?page=gr&GRid=1784",
	}
	for _, u := range valid {
		assert.True(t, IsMemorialURL(u), u)
	}

	invalid := []string{
		"https://www.findagrave.com/cemetery/49269",
		"ftp://www.findagrave.com/memorial/1784",
		"memorial/1784",
		"",
	}
	for _, u := range invalid {
		assert.False(t, IsMemorialURL(u), u)
	}
}

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, "https://www.findagrave.com/memorial/7", CanonicalURL(base+"/", 7))
}
