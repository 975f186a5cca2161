package core

// definitions.go loads query definitions from a YAML file so reports can be
// added without recompiling. Targets are referenced by the name they were
// registered under with RegisterTarget.
//
//	queries:
//	  - key: ar_aging
//	    group: Receivables
//	    label: AR Aging
//	    target: customer
//	    shape: list
//	    params:
//	      - {name: as_of, type: date}
//	    sql: |
//	      SELECT ...

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type definitionsFile struct {
	Queries []definitionEntry `yaml:"queries"`
}

type definitionEntry struct {
	Key         string      `yaml:"key"`
	Group       string      `yaml:"group"`
	Label       string      `yaml:"label"`
	Description string      `yaml:"description"`
	SQL         string      `yaml:"sql"`
	Shape       string      `yaml:"shape"`
	GroupBy     string      `yaml:"group_by"`
	Target      string      `yaml:"target"`
	Params      []ParamSpec `yaml:"params"`
}

// ParseDefinitions decodes a definitions document and resolves its targets.
// Unknown fields are rejected.
func ParseDefinitions(data []byte) ([]QueryDefinition, error) {
	var file definitionsFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	defs := make([]QueryDefinition, 0, len(file.Queries))
	seen := make(map[string]bool, len(file.Queries))
	for i, e := range file.Queries {
		if e.Key == "" {
			return nil, fmt.Errorf("%w: entry %d has no key", ErrInvalidDefinition, i+1)
		}
		if seen[e.Key] {
			return nil, fmt.Errorf("%w: duplicate key %s", ErrInvalidDefinition, e.Key)
		}
		seen[e.Key] = true

		target, ok := LookupTarget(e.Target)
		if !ok {
			return nil, fmt.Errorf("%w: query %s refers to unknown target %q", ErrInvalidDefinition, e.Key, e.Target)
		}

		def := QueryDefinition{
			Info: QueryInfo{
				Key:         e.Key,
				Group:       e.Group,
				Label:       e.Label,
				Description: e.Description,
				Params:      e.Params,
			},
			SQL:     e.SQL,
			Shape:   Shape(e.Shape),
			GroupBy: e.GroupBy,
			Target:  target,
		}

		def, err := normalizeDefinition(def)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, nil
}

// LoadDefinitions reads and parses a definitions file.
func LoadDefinitions(path string) ([]QueryDefinition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	defs, err := ParseDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return defs, nil
}

// RegisterFile loads a definitions file and registers every query in it.
// Nothing is registered when any entry is invalid or its key is taken.
func RegisterFile(path string) (int, error) {
	defs, err := LoadDefinitions(path)
	if err != nil {
		return 0, err
	}

	for _, def := range defs {
		if _, exists := Get(def.Info.Key); exists {
			return 0, fmt.Errorf("%s: %w: query already registered: %s", path, ErrInvalidDefinition, def.Info.Key)
		}
	}

	for _, def := range defs {
		if err := RegisterDefinition(def); err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
	}
	return len(defs), nil
}
