// Package queries loads named vacancy searches from a YAML file. A saved
// query maps onto the hh.ru /vacancies search parameters.
package queries

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sample_queries.yaml
var sampleQueries string

// Query describes one saved vacancy search.
type Query struct {
	Name             string   `yaml:"name"`
	Text             string   `yaml:"text"`
	SearchField      string   `yaml:"search_field"`
	ProfessionalRole int      `yaml:"professional_role"`
	ExcludedText     []string `yaml:"excluded_text"`
	WorkFormat       string   `yaml:"work_format"`
	// Params carries extra request parameters verbatim, for knobs the
	// struct does not model.
	Params map[string]string `yaml:"params"`
}

type file struct {
	Queries []Query `yaml:"queries"`
}

// Load reads every named query from the YAML file at path.
func Load(path string) ([]Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read queries file: %w", err)
	}
	var parsed file
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse queries file %s: %w", path, err)
	}
	seen := make(map[string]struct{}, len(parsed.Queries))
	for i := range parsed.Queries {
		name := strings.TrimSpace(parsed.Queries[i].Name)
		if name == "" {
			return nil, fmt.Errorf("queries file %s: query %d has no name", path, i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("queries file %s: duplicate query name %q", path, name)
		}
		seen[name] = struct{}{}
		parsed.Queries[i].Name = name
	}
	return parsed.Queries, nil
}

// Find returns the named query. When the file is missing the built-in default
// still resolves, so a fresh install can search without writing a queries file
// first.
func Find(path, name string) (Query, error) {
	loaded, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && name == Default().Name {
			return Default(), nil
		}
		return Query{}, err
	}
	for _, query := range loaded {
		if query.Name == name {
			return query, nil
		}
	}
	if name == Default().Name {
		return Default(), nil
	}
	names := make([]string, 0, len(loaded))
	for _, query := range loaded {
		names = append(names, query.Name)
	}
	sort.Strings(names)
	return Query{}, fmt.Errorf("query %q not found in %s (have: %s)", name, path, strings.Join(names, ", "))
}

// Default returns the built-in search used when no queries file overrides it.
func Default() Query {
	return Query{
		Name:             "default",
		Text:             "python",
		SearchField:      "name",
		ProfessionalRole: 96,
		ExcludedText: []string{
			"senior", "сеньор", "lead", "преподаватель", "автор", "наставник",
			"руководитель", "репетитор", "старший", "ведущий", "главный", "techlead",
		},
		WorkFormat: "REMOTE",
	}
}

// Values renders the query as hh.ru /vacancies request parameters.
func (q Query) Values(page int) url.Values {
	values := url.Values{}
	if q.Text != "" {
		values.Set("text", q.Text)
	}
	if q.SearchField != "" {
		values.Set("search_field", q.SearchField)
	}
	if q.ProfessionalRole > 0 {
		values.Set("professional_role", strconv.Itoa(q.ProfessionalRole))
	}
	if len(q.ExcludedText) > 0 {
		values.Set("excluded_text", strings.Join(q.ExcludedText, ","))
	}
	if q.WorkFormat != "" {
		values.Set("work_format", q.WorkFormat)
	}
	for key, value := range q.Params {
		if strings.TrimSpace(key) == "" {
			continue
		}
		values.Set(key, value)
	}
	values.Set("page", strconv.Itoa(page))
	return values
}

// CreateSample writes a commented sample queries file.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create queries directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleQueries), 0o644); err != nil {
		return fmt.Errorf("write sample queries: %w", err)
	}
	return nil
}
