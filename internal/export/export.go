// Package export writes scraped records as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ChaseHampton/graver/internal/memorial"
)

// WriteJSON writes v as indented JSON followed by a newline. Non-ASCII text
// is written as-is.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

var memorialHeader = []string{
	"memorial_id", "findagrave_url", "prefix", "name", "suffix", "nickname",
	"maiden_name", "original_name", "famous", "veteran", "birth", "birth_place",
	"death", "death_place", "memorial_type", "burial_place", "cemetery_id",
	"plot", "coords", "has_bio",
}

// WriteMemorialsCSV writes a header row and one row per memorial. A zero
// cemetery id is written as an empty cell.
func WriteMemorialsCSV(w io.Writer, memorials []memorial.Memorial) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(memorialHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, m := range memorials {
		cemeteryID := ""
		if m.CemeteryID != 0 {
			cemeteryID = strconv.FormatInt(m.CemeteryID, 10)
		}
		row := []string{
			strconv.FormatInt(m.MemorialID, 10), m.FindagraveURL, m.Prefix, m.Name, m.Suffix, m.Nickname,
			m.MaidenName, m.OriginalName, strconv.FormatBool(m.Famous), strconv.FormatBool(m.Veteran),
			m.Birth, m.BirthPlace, m.Death, m.DeathPlace, m.MemorialType, m.BurialPlace, cemeteryID,
			m.Plot, m.Coords, strconv.FormatBool(m.HasBio),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write memorial %d: %w", m.MemorialID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
