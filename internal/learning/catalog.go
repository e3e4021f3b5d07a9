// Package learning holds the learning module catalog, quiz grading and the
// progress rules of the module viewer.
package learning

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryAll matches every module in Filter.
const CategoryAll = "all"

var ErrModuleNotFound = errors.New("module not found")

//go:embed catalog.yaml
var defaultCatalog []byte

type Module struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Category    string     `yaml:"category"`
	Level       string     `yaml:"level"`
	Duration    string     `yaml:"duration"`
	Content     string     `yaml:"content"`
	Quiz        []Question `yaml:"quiz"`
}

type Question struct {
	ID            int      `yaml:"id"`
	Question      string   `yaml:"question"`
	Options       []string `yaml:"options"`
	CorrectAnswer int      `yaml:"correct_answer"`
}

type Catalog struct {
	modules []Module
	byID    map[string]int
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Modules []Module `yaml:"modules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{modules: doc.Modules, byID: make(map[string]int, len(doc.Modules))}
	for i, m := range doc.Modules {
		if m.ID == "" || m.Title == "" {
			return nil, fmt.Errorf("module %d: id and title are required", i)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate module id %q", m.ID)
		}
		if err := m.validateQuiz(); err != nil {
			return nil, fmt.Errorf("module %s: %w", m.ID, err)
		}
		c.byID[m.ID] = i
	}
	return c, nil
}

func (m Module) validateQuiz() error {
	seen := make(map[int]bool, len(m.Quiz))
	for _, q := range m.Quiz {
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d needs at least two options", q.ID)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %d: correct answer %d out of range", q.ID, q.CorrectAnswer)
		}
	}
	return nil
}

func (c *Catalog) All() []Module {
	return append([]Module(nil), c.modules...)
}

func (c *Catalog) Get(id string) (Module, error) {
	i, ok := c.byID[id]
	if !ok {
		return Module{}, fmt.Errorf("%w: %s", ErrModuleNotFound, id)
	}
	return c.modules[i], nil
}

// Filter returns the modules of category, matched case-insensitively.
// CategoryAll and the empty string return every module.
func (c *Catalog) Filter(category string) []Module {
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return c.All()
	}
	var out []Module
	for _, m := range c.modules {
		if strings.EqualFold(m.Category, category) {
			out = append(out, m)
		}
	}
	return out
}

// Categories returns the distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.modules {
		key := strings.ToLower(m.Category)
		if !seen[key] {
			seen[key] = true
			out = append(out, m.Category)
		}
	}
	return out
}
