package cmd

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/cemetery"
	"github.com/ChaseHampton/graver/internal/memorial"
	"github.com/ChaseHampton/graver/internal/processor"
	"github.com/ChaseHampton/graver/internal/search"
)

var yearRange = regexp.MustCompile(`^[0-9]{1,3}$`)

type searchOptions struct {
	cemeteryID int64
	memorialID int64
	save       bool
	format     string

	firstName, middleName, lastName string
	birthYear, deathYear            int
	birthYearFilter                 string
	deathYearFilter                 string
	location, locationID            string
	mcid                            int64
	linkedToName                    string
	dateFilter                      string
	orderBy                         string
	plot                            string
	photoFilter, gpsFilter          string
	page, maxResults                int
}

var triStateFlags = map[string]func(p *search.Params, v *bool){
	"noCemetery":        func(p *search.Params, v *bool) { p.NoCemetery = v },
	"famous":            func(p *search.Params, v *bool) { p.Famous = v },
	"sponsored":         func(p *search.Params, v *bool) { p.Sponsored = v },
	"cenotaph":          func(p *search.Params, v *bool) { p.Cenotaph = v },
	"monument":          func(p *search.Params, v *bool) { p.Monument = v },
	"isVeteran":         func(p *search.Params, v *bool) { p.Veteran = v },
	"includeNickName":   func(p *search.Params, v *bool) { p.IncludeNickname = v },
	"includeMaidenName": func(p *search.Params, v *bool) { p.IncludeMaidenName = v },
	"includeTitles":     func(p *search.Params, v *bool) { p.IncludeTitles = v },
	"exactName":         func(p *search.Params, v *bool) { p.ExactName = v },
	"fuzzyNames":        func(p *search.Params, v *bool) { p.FuzzyNames = v },
	"flowers":           func(p *search.Params, v *bool) { p.Flowers = v },
	"hasPlot":           func(p *search.Params, v *bool) { p.HasPlot = v },
}

var nameFilterFlags = []string{"includeNickName", "includeMaidenName", "includeTitles", "exactName", "fuzzyNames"}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Scrape memorial search results with the given search parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := opts.params(cmd)
			if err != nil {
				return err
			}
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			app.Logger.Debug("search terms", zap.Any("params", params))

			found, err := opts.find(cmd, app, params)
			if err != nil {
				return err
			}

			if opts.save {
				store, err := app.Store(cmd.Context())
				if err != nil {
					return err
				}
				p := processor.NewProcessor(app.Memorials, store, nil, app.Config.Site.BaseURL, app.Config.Scrape, app.Logger)
				if _, err := p.SaveMemorials(cmd.Context(), found); err != nil {
					return err
				}
			}
			return writeMemorials(cmd.OutOrStdout(), opts.format, found)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.cemeteryID, "cemetery-id", 0, "numeric id of a Find a Grave cemetery to search within")
	f.Int64Var(&opts.memorialID, "memorialid", 0, "memorial id; supersedes all other search terms")
	f.BoolVar(&opts.save, "save", false, "save results to the database")
	f.StringVar(&opts.format, "format", formatJSON, "output format: json or csv")

	f.StringVar(&opts.firstName, "firstname", "", "")
	f.StringVar(&opts.middleName, "middlename", "", "")
	f.StringVar(&opts.lastName, "lastname", "", "")
	f.IntVar(&opts.birthYear, "birthyear", 0, "")
	f.StringVar(&opts.birthYearFilter, "birthyearfilter", "", "'before', 'after', 'exact', 'unknown' or n for +/- n years")
	f.IntVar(&opts.deathYear, "deathyear", 0, "")
	f.StringVar(&opts.deathYearFilter, "deathyearfilter", "", "'before', 'after', 'exact', 'unknown' or n for +/- n years")
	f.StringVar(&opts.location, "location", "", "place name, e.g. 'Albemarle County, Virginia, USA'; requires --locationId")
	f.StringVar(&opts.locationID, "locationId", "", "Find a Grave place-name lookup code")
	f.Int64Var(&opts.mcid, "mcid", 0, "memorial contributor id")
	f.StringVar(&opts.linkedToName, "linkedToName", "", "names of relatives linked to the memorial")
	f.StringVar(&opts.dateFilter, "datefilter", "", "memorials added in the last n days")
	f.StringVar(&opts.orderBy, "orderby", "r", "r, r-, n, n-, b, b-, d, d-, c, c-, dc, dm or pl")
	f.StringVar(&opts.plot, "plot", "", "")
	f.StringVar(&opts.photoFilter, "photofilter", "", "photos or nophotos")
	f.StringVar(&opts.gpsFilter, "gpsfilter", "", "gps or nogps")
	f.IntVar(&opts.page, "page", 0, "fetch only this results page")
	f.IntVar(&opts.maxResults, "max", 0, "maximum number of results (0 means no limit)")

	for name := range triStateFlags {
		f.Bool(name, false, "")
	}
	f.Lookup("noCemetery").Usage = "only memorials not associated with a cemetery"
	f.Lookup("famous").Usage = "only famous memorials (wins over --sponsored)"
	f.Lookup("sponsored").Usage = "only sponsored memorials"
	return cmd
}

// find runs the search, or parses the one memorial named by --memorialid.
func (o searchOptions) find(cmd *cobra.Command, app *App, params search.Params) ([]memorial.Memorial, error) {
	ctx := cmd.Context()
	base := app.Config.Site.BaseURL
	if o.memorialID > 0 {
		m, err := app.Memorials.Parse(ctx, memorial.CanonicalURL(base, o.memorialID))
		if err != nil {
			return nil, err
		}
		return []memorial.Memorial{m}, nil
	}

	var cem *cemetery.Cemetery
	if o.cemeteryID > 0 {
		c, err := app.Cemeteries.Parse(ctx, cemetery.CanonicalURL(base, o.cemeteryID))
		if err != nil {
			return nil, err
		}
		cem = &c
	}

	results, err := app.Searcher.Search(ctx, cem, params)
	if err != nil {
		return nil, err
	}
	return results.Memorials, nil
}

// params validates the flags and builds search parameters. Boolean filters
// are only sent when given on the command line.
func (o searchOptions) params(cmd *cobra.Command) (search.Params, error) {
	if err := checkFormat(o.format); err != nil {
		return search.Params{}, err
	}
	for flag, v := range map[string]string{"birthyearfilter": o.birthYearFilter, "deathyearfilter": o.deathYearFilter} {
		if err := checkYearFilter(v); err != nil {
			return search.Params{}, fmt.Errorf("--%s: %w", flag, err)
		}
	}
	if o.photoFilter != "" && o.photoFilter != "photos" && o.photoFilter != "nophotos" {
		return search.Params{}, fmt.Errorf("--photofilter: only 'photos' or 'nophotos' is allowed")
	}
	if o.gpsFilter != "" && o.gpsFilter != "gps" && o.gpsFilter != "nogps" {
		return search.Params{}, fmt.Errorf("--gpsfilter: only 'gps' or 'nogps' is allowed")
	}
	if o.firstName == "" && o.middleName == "" && o.lastName == "" {
		for _, name := range nameFilterFlags {
			if cmd.Flags().Changed(name) {
				return search.Params{}, fmt.Errorf("--%s: a name must be specified in order to use name filters", name)
			}
		}
	}
	if o.page < 0 || o.maxResults < 0 {
		return search.Params{}, fmt.Errorf("--page and --max must not be negative")
	}

	p := search.Params{
		FirstName:       o.firstName,
		MiddleName:      o.middleName,
		LastName:        o.lastName,
		BirthYearFilter: o.birthYearFilter,
		DeathYearFilter: o.deathYearFilter,
		Location:        o.location,
		LocationID:      o.locationID,
		LinkedToName:    o.linkedToName,
		DateFilter:      o.dateFilter,
		OrderBy:         o.orderBy,
		Plot:            o.plot,
		PhotoFilter:     o.photoFilter,
		GPSFilter:       o.gpsFilter,
		Page:            o.page,
		MaxResults:      o.maxResults,
	}
	if cmd.Flags().Changed("birthyear") {
		p.BirthYear = strconv.Itoa(o.birthYear)
	}
	if cmd.Flags().Changed("deathyear") {
		p.DeathYear = strconv.Itoa(o.deathYear)
	}
	if o.mcid > 0 {
		p.ContributorID = strconv.FormatInt(o.mcid, 10)
	}
	if o.memorialID > 0 {
		p.MemorialID = strconv.FormatInt(o.memorialID, 10)
	}

	for name, set := range triStateFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetBool(name)
		if err != nil {
			return search.Params{}, err
		}
		set(&p, search.Bool(v))
	}
	return p, nil
}

func checkYearFilter(v string) error {
	switch v {
	case "", "before", "after", "exact", "unknown":
		return nil
	}
	if !yearRange.MatchString(v) {
		return fmt.Errorf("only 'before', 'after', 'exact', 'unknown', or 0 < value < 999 is allowed")
	}
	return nil
}
