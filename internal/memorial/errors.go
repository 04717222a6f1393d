package memorial

import (
	"fmt"
	"net/http"
)

// ParseError reports a memorial that could not be fetched or scraped.
// StatusCode is 0 when the request never produced a response.
type ParseError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("parse %s: %d %s: %v", e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type MergedError struct {
	OldURL string
	NewURL string
}

func (e *MergedError) Error() string {
	return fmt.Sprintf("%s has been merged into %s", e.OldURL, e.NewURL)
}

type RemovedError struct {
	URL string
}

func (e *RemovedError) Error() string {
	return fmt.Sprintf("%s has been removed", e.URL)
}
