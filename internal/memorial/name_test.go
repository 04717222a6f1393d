package memorial

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nameTag(t *testing.T, markup string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<h1>" + markup + "</h1>"))
	require.NoError(t, err)
	return doc.Find("h1").First()
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		url    string
		want   NameParts
	}{
		{
			name:   "prefix and suffix",
			markup: "Dr. John Q. Public Jr.",
			url:    "https://www.findagrave.com/memorial/1/john-q-public",
			want:   NameParts{Prefix: "Dr.", Name: "John Q. Public", Suffix: "Jr."},
		},
		{
			name:   "maiden name",
			markup: "Dolores <i>Smith</i> Higginbotham",
			url:    "https://www.findagrave.com/memorial/2/dolores-higginbotham",
			want:   NameParts{Name: "Dolores Higginbotham", MaidenName: "Smith"},
		},
		{
			name:   "hyphenated maiden name",
			markup: "Dolores <i>Bar-Baz</i> Higginbotham",
			url:    "https://www.findagrave.com/memorial/2/dolores-higginbotham",
			want:   NameParts{Name: "Dolores Higginbotham", MaidenName: "Bar-Baz"},
		},
		{
			name:   "nickname",
			markup: "George Herman “Babe” Ruth",
			url:    "https://www.findagrave.com/memorial/3/george-herman-ruth",
			want:   NameParts{Name: "George Herman Ruth", Nickname: "Babe"},
		},
		{
			name:   "multi word prefix",
			markup: "RADM Grace Brewster Hopper",
			url:    "https://www.findagrave.com/memorial/4/grace-brewster-hopper",
			want:   NameParts{Prefix: "RADM", Name: "Grace Brewster Hopper"},
		},
		{
			name:   "famous and veteran markers",
			markup: `John J. Pershing <span title="Famous memorial">Famous memorial</span> <span title="Veteran">VVeteran</span>`,
			url:    "https://www.findagrave.com/memorial/5/john-j-pershing",
			want:   NameParts{Name: "John J. Pershing"},
		},
		{
			name:   "no slug leaves name whole",
			markup: "Dr. John Q. Public Jr.",
			url:    "https://www.findagrave.com/memorial/1",
			want:   NameParts{Name: "Dr. John Q. Public Jr."},
		},
		{
			name:   "single word",
			markup: "Cher",
			url:    "https://www.findagrave.com/memorial/6/cher",
			want:   NameParts{Name: "Cher"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitName(nameTag(t, tc.markup), tc.url))
		})
	}
}

func TestSplitNameDoesNotMutateTag(t *testing.T) {
	tag := nameTag(t, `Carl Sagan <span title="Famous memorial">Famous memorial</span>`)
	SplitName(tag, "https://www.findagrave.com/memorial/7/carl-sagan")
	assert.Equal(t, 1, tag.Find("span").Length())
}
