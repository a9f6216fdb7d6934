package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/querysql"
)

// LoadSuite reads and parses a suite YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Catalog, schema and seed paths are resolved relative to the file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	suite, err := ParseSuite(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&suite.Catalog, &suite.Schema, &suite.Seed} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if err := validateSuite(suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	for _, p := range []string{suite.Catalog, suite.Schema, suite.Seed} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid suite: file not found: %s", p)
		}
	}
	return suite, nil
}

// ParseSuite parses suite YAML with strict field validation. Paths are
// left as written.
func ParseSuite(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &suite, nil
}

// validateSuite checks that required fields are present and valid.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	if s.Seed != "" && s.Schema == "" {
		return fmt.Errorf("seed requires schema")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true

		if c.Resource == "" {
			return fmt.Errorf("cases[%d]: resource is required", i)
		}
		dialect, err := c.dialect()
		if err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		if c.Expect.empty() {
			return fmt.Errorf("cases[%d]: expect must check at least one of sql, args, error, warnings, rows", i)
		}
		if c.Expect.Error != "" && (c.Expect.SQL != "" || c.Expect.Args != nil || c.Expect.Rows != nil) {
			return fmt.Errorf("cases[%d]: error cannot be combined with sql, args or rows", i)
		}
		if c.Expect.Rows != nil {
			if s.Schema == "" {
				return fmt.Errorf("cases[%d]: rows requires a suite schema", i)
			}
			if dialect != querysql.SQLite {
				return fmt.Errorf("cases[%d]: rows requires the sqlite dialect", i)
			}
		}
	}
	return nil
}

// dialect returns the case dialect, defaulting to SQLite.
func (c Case) dialect() (querysql.Dialect, error) {
	if c.Dialect == "" {
		return querysql.SQLite, nil
	}
	return querysql.ParseDialect(c.Dialect)
}
