package memorial

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ChaseHampton/graver/internal/page"
)

type NameParts struct {
	Prefix     string
	Name       string
	Suffix     string
	Nickname   string
	MaidenName string
}

var (
	nicknamePattern = regexp.MustCompile("“(.*)”")
	allDigits       = regexp.MustCompile(`^[0-9]+$`)
)

// SplitName breaks a rendered name element into its parts. The slug at the
// end of memorialURL (john-q-public in /memorial/1/john-q-public) decides
// which leading words are a prefix and whether the last word is a suffix.
// The italic child, when present, is the maiden name.
func SplitName(nameTag *goquery.Selection, memorialURL string) NameParts {
	tag := nameTag.Clone()
	tag.Find(`span[title="Famous memorial"], span[title="Famous Memorial"]`).Remove()
	tag.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Veteran")
	}).Remove()

	name := tag.Text()
	name = strings.ReplaceAll(name, "Famous memorial", "")
	name = strings.ReplaceAll(name, "VVeteran", "")
	name = page.CollapseSpace(name)

	var parts NameParts
	parts.Prefix, parts.Suffix = prefixSuffix(name, slugTokens(memorialURL))
	if parts.Prefix != "" {
		name = strings.TrimPrefix(name, parts.Prefix+" ")
	}
	if parts.Suffix != "" {
		name = strings.TrimSuffix(name, " "+parts.Suffix)
	}

	if m := nicknamePattern.FindStringSubmatch(name); m != nil {
		parts.Nickname = m[1]
		name = strings.Replace(name, " “"+parts.Nickname+"”", "", 1)
	}

	if i := nameTag.Find("i").First(); i.Length() > 0 {
		parts.MaidenName = strings.TrimSpace(i.Text())
		if parts.MaidenName != "" {
			name = strings.Replace(name, " "+parts.MaidenName+" ", " ", 1)
		}
	}

	parts.Name = strings.TrimSpace(name)
	return parts
}

// slugTokens returns the dash separated words of the last path segment, or
// nil when the URL carries no name slug.
func slugTokens(memorialURL string) []string {
	p := memorialURL
	if u, err := url.Parse(memorialURL); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	slug := p[strings.LastIndex(p, "/")+1:]
	if slug == "" || allDigits.MatchString(slug) {
		return nil
	}
	return strings.Split(strings.ToLower(slug), "-")
}

func simplify(token string) string {
	return strings.ToLower(strings.ReplaceAll(token, ".", ""))
}

func prefixSuffix(name string, slug []string) (prefix, suffix string) {
	if len(slug) == 0 {
		return "", ""
	}
	tokens := strings.Split(name, " ")

	first := -1
	for i, tok := range tokens {
		if simplify(tok) == slug[0] {
			first = i
			break
		}
	}
	if first > 0 {
		prefix = strings.Join(tokens[:first], " ")
	}

	last := len(tokens) - 1
	if last > first && last > 0 && simplify(tokens[last]) != slug[len(slug)-1] {
		suffix = tokens[last]
	}
	return prefix, suffix
}
