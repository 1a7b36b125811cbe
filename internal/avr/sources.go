package avr

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// SourceTable maps device-reported source IDs to display names. The table
// is a bounded mapping loaded once at startup; lookups for IDs outside it
// fail explicitly instead of silently returning an empty name.
type SourceTable struct {
	names map[string]string
}

// sourceFile is the on-disk YAML shape:
//
//	sources:
//	  "01": "CD"
//	  "02": "TUNER"
type sourceFile struct {
	Sources map[string]string `yaml:"sources"`
}

// NewSourceTable builds a table from an in-memory mapping.
func NewSourceTable(names map[string]string) *SourceTable {
	table := make(map[string]string, len(names))
	for id, name := range names {
		table[id] = name
	}
	return &SourceTable{names: table}
}

// LoadSourceTable reads a source table from a YAML file.
func LoadSourceTable(path string) (*SourceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source table: %w", err)
	}
	var file sourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse source table: %w", err)
	}
	return NewSourceTable(file.Sources), nil
}

// Name resolves a source ID to its display name.
func (t *SourceTable) Name(id string) (string, error) {
	name, ok := t.names[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}
	return name, nil
}

// IDs returns the known source IDs in stable order.
func (t *SourceTable) IDs() []string {
	ids := make([]string, 0, len(t.names))
	for id := range t.names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
