// Package parser decodes the YAML timeline data file.
package parser

import (
	"bytes"
	"fmt"

	"github.com/narvanalabs/timeline/internal/models"
	"github.com/narvanalabs/timeline/pkg/logger"
	"gopkg.in/yaml.v3"
)

// ParseError reports malformed timeline data.
type ParseError struct {
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse timeline data: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes a top-level YAML sequence of entries. An empty or null
// document yields an empty slice.
func Parse(data []byte) ([]models.Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Entry{}, nil
	}

	var entries []models.Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, &ParseError{Err: err}
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

// Func decodes raw timeline data. Parse is the default.
type Func func(data []byte) ([]models.Entry, error)

// OrEmpty applies the soft-failure policy: malformed data is logged and
// treated as zero entries.
func (f Func) OrEmpty(data []byte, log *logger.Logger) []models.Entry {
	entries, err := f(data)
	if err != nil {
		if log == nil {
			log = logger.Default()
		}
		log.Error("error parsing timeline data", "error", err)
		return []models.Entry{}
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries
}
