package data

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by LoadRecords.
type SeedFile struct {
	Registrations []*Record `yaml:"registrations"`
}

// LoadRecords reads registrations from a YAML seed file.
func LoadRecords(path string) ([]*Record, error) {
	if path == "" {
		return nil, errors.New("seed file path required")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file %s: %w", path, err)
	}

	return ParseRecords(b)
}

// ParseRecords decodes a YAML seed document.
func ParseRecords(b []byte) ([]*Record, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("error decoding seed file: %w", err)
	}

	for i, r := range seed.Registrations {
		if r == nil || strings.TrimSpace(r.RegNumber) == "" {
			return nil, fmt.Errorf("registration[%d] has no registration number", i)
		}
	}

	return seed.Registrations, nil
}

// MockRecords returns a copy of the built-in demonstration records.
func MockRecords() []*Record {
	list := make([]*Record, 0, len(mockRecords))
	for _, r := range mockRecords {
		c := *r
		c.Classes = append([]string(nil), r.Classes...)
		list = append(list, &c)
	}
	return list
}
