// Package apidoc loads API reference documents: endpoints with their request
// examples and their response examples keyed by status code.
package apidoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoEndpoints    = errors.New("document has no endpoints")
	ErrMissingID      = errors.New("endpoint id is required")
	ErrDuplicateID    = errors.New("duplicate endpoint id")
	ErrNoExamples     = errors.New("no examples")
	ErrDuplicateKey   = errors.New("duplicate example key")
	ErrUnknownDefault = errors.New("default example not found")
)

type Document struct {
	Title       string     `yaml:"title"`
	Version     string     `yaml:"version"`
	BaseURL     string     `yaml:"base_url"`
	Description string     `yaml:"description"`
	Endpoints   []Endpoint `yaml:"endpoints"`
}

type Endpoint struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	Method          string            `yaml:"method"`
	Path            string            `yaml:"path"`
	Description     string            `yaml:"description"`
	Headers         map[string]string `yaml:"headers"`
	Body            string            `yaml:"body"`
	Requests        []Example         `yaml:"requests"`
	Responses       []Example         `yaml:"responses"`
	DefaultRequest  string            `yaml:"default_request"`
	DefaultResponse string            `yaml:"default_response"`
}

// Example is one tab worth of content. Request examples are keyed by format
// (curl, json, ...), response examples by status code.
type Example struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Language string `yaml:"language"`
	Body     string `yaml:"body"`
}

// Title falls back to the key when no label was given.
func (e Example) Title() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Key
}

func (e Endpoint) RequestGroupID() string  { return e.ID + "/request" }
func (e Endpoint) ResponseGroupID() string { return e.ID + "/response" }

// Title is the method and path line shown on a collapsed section.
func (e Endpoint) Title() string {
	var b strings.Builder
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(" ")
	}
	b.WriteString(e.Path)
	if e.Name != "" {
		if b.Len() > 0 {
			b.WriteString("  ")
		}
		b.WriteString(e.Name)
	}
	return b.String()
}

// RequestDefault returns the key of the request example shown first.
func (e Endpoint) RequestDefault() string { return defaultKey(e.DefaultRequest, e.Requests) }

// ResponseDefault returns the key of the response example shown first.
func (e Endpoint) ResponseDefault() string { return defaultKey(e.DefaultResponse, e.Responses) }

func defaultKey(configured string, examples []Example) string {
	if configured != "" {
		return configured
	}
	if len(examples) > 0 {
		return examples[0].Key
	}
	return ""
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Read is Load for an already opened stream such as stdin.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML (or JSON) and validates the result.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc.normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) normalize() {
	for i := range d.Endpoints {
		ep := &d.Endpoints[i]
		ep.Method = strings.ToUpper(strings.TrimSpace(ep.Method))
		ep.ID = strings.TrimSpace(ep.ID)
	}
}

// Validate checks what the selector relies on but does not check itself:
// unique group ids, unique keys within a group, defaults that exist.
func (d *Document) Validate() error {
	if len(d.Endpoints) == 0 {
		return ErrNoEndpoints
	}
	seen := make(map[string]bool, len(d.Endpoints))
	for i, ep := range d.Endpoints {
		if ep.ID == "" {
			return fmt.Errorf("endpoint %d: %w", i, ErrMissingID)
		}
		if seen[ep.ID] {
			return fmt.Errorf("endpoint %s: %w", ep.ID, ErrDuplicateID)
		}
		seen[ep.ID] = true

		if err := validateExamples(ep.Requests, ep.DefaultRequest); err != nil {
			return fmt.Errorf("endpoint %s requests: %w", ep.ID, err)
		}
		if err := validateExamples(ep.Responses, ep.DefaultResponse); err != nil {
			return fmt.Errorf("endpoint %s responses: %w", ep.ID, err)
		}
	}
	return nil
}

func validateExamples(examples []Example, def string) error {
	if len(examples) == 0 {
		return ErrNoExamples
	}
	keys := make(map[string]bool, len(examples))
	for _, ex := range examples {
		if ex.Key == "" {
			return fmt.Errorf("example %q: key is required", ex.Label)
		}
		if keys[ex.Key] {
			return fmt.Errorf("%s: %w", ex.Key, ErrDuplicateKey)
		}
		keys[ex.Key] = true
	}
	if def != "" && !keys[def] {
		return fmt.Errorf("%s: %w", def, ErrUnknownDefault)
	}
	return nil
}
