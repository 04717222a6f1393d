package cmd

import (
	"fmt"
	"io"

	"github.com/ChaseHampton/graver/internal/export"
	"github.com/ChaseHampton/graver/internal/memorial"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatCSV:
		return nil
	}
	return fmt.Errorf("--format must be json or csv, got %q", format)
}

func writeMemorials(w io.Writer, format string, memorials []memorial.Memorial) error {
	if format == formatCSV {
		return export.WriteMemorialsCSV(w, memorials)
	}
	if memorials == nil {
		memorials = []memorial.Memorial{}
	}
	return export.WriteJSON(w, memorials)
}
