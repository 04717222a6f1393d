package search

import (
	"net/url"
	"strconv"

	"github.com/ChaseHampton/graver/internal/cemetery"
)

// Params holds the memorial search filters. Nil toggles are left out of the
// query entirely; set ones are sent as "true" or "false".
type Params struct {
	FirstName  string
	MiddleName string
	LastName   string

	// Year filters are "before", "after", "exact", "unknown" or a +/- range
	// of years. "unknown" drops the year itself from the query.
	BirthYear       string
	BirthYearFilter string
	DeathYear       string
	DeathYearFilter string

	Location   string
	LocationID string
	MemorialID string
	// Contributor id (mcid).
	ContributorID string
	LinkedToName  string
	// "all" or the number of days since the memorial was added.
	DateFilter string
	// r, n, n-, b, b-, d, d- or pl. Defaults to r.
	OrderBy string
	Plot    string

	// Famous wins over Sponsored and Cenotaph over Monument when both are set.
	Famous    *bool
	Sponsored *bool
	Cenotaph  *bool
	Monument  *bool
	// NoCemetery removes Location and LocationID. Ignored for cemetery searches.
	NoCemetery *bool
	Veteran    *bool

	IncludeNickname   *bool
	IncludeMaidenName *bool
	IncludeTitles     *bool
	// ExactName wins over FuzzyNames.
	ExactName  *bool
	FuzzyNames *bool

	PhotoFilter string // photos, nophotos
	GPSFilter   string // gps, nogps
	Flowers     *bool
	// HasPlot false removes Plot.
	HasPlot *bool

	// Page fetches only that results page when positive.
	Page int
	// MaxResults caps the number of memorials returned when positive.
	MaxResults int
}

func Bool(b bool) *bool {
	return &b
}

// Values builds the query string for a search, scoped to cem when it is not nil.
func (p Params) Values(cem *cemetery.Cemetery) url.Values {
	q := url.Values{}
	q.Set("firstname", p.FirstName)
	q.Set("middlename", p.MiddleName)
	q.Set("lastname", p.LastName)
	if cem != nil {
		q.Set("cemeteryName", cem.Name)
	}

	if p.BirthYearFilter != "unknown" {
		q.Set("birthyear", p.BirthYear)
	}
	q.Set("birthyearfilter", p.BirthYearFilter)
	if p.DeathYearFilter != "unknown" {
		q.Set("deathyear", p.DeathYear)
	}
	q.Set("deathyearfilter", p.DeathYearFilter)

	if cem == nil {
		q.Set("location", p.Location)
		q.Set("locationId", p.LocationID)
	}
	q.Set("memorialid", p.MemorialID)
	q.Set("mcid", p.ContributorID)
	q.Set("linkedToName", p.LinkedToName)
	q.Set("datefilter", p.DateFilter)
	orderBy := p.OrderBy
	if orderBy == "" {
		orderBy = "r"
	}
	q.Set("orderby", orderBy)
	q.Set("plot", p.Plot)

	setEither(q, "famous", p.Famous, "sponsored", p.Sponsored)
	if cem == nil && p.NoCemetery != nil {
		q.Del("location")
		q.Del("locationId")
		setBool(q, "noCemetery", p.NoCemetery)
	}
	setEither(q, "cenotaph", p.Cenotaph, "monument", p.Monument)
	setBool(q, "isVeteran", p.Veteran)

	setBool(q, "includeNickName", p.IncludeNickname)
	setBool(q, "includeMaidenName", p.IncludeMaidenName)
	setBool(q, "includeTitles", p.IncludeTitles)
	setEither(q, "exactName", p.ExactName, "fuzzyNames", p.FuzzyNames)

	if p.PhotoFilter != "" {
		q.Set("photofilter", p.PhotoFilter)
	}
	if p.GPSFilter != "" {
		q.Set("gpsfilter", p.GPSFilter)
	}
	setBool(q, "flowers", p.Flowers)
	if p.HasPlot != nil {
		if !*p.HasPlot {
			q.Del("plot")
		}
		setBool(q, "hasPlot", p.HasPlot)
	}

	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	return q
}

func setBool(q url.Values, key string, v *bool) bool {
	if v == nil {
		return false
	}
	q.Set(key, strconv.FormatBool(*v))
	return true
}

func setEither(q url.Values, first string, a *bool, second string, b *bool) {
	if !setBool(q, first, a) {
		setBool(q, second, b)
	}
}
