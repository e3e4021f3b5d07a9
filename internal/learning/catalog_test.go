package learning

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCatalogForTest(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

func TestDefaultCatalog(t *testing.T) {
	c := defaultCatalogForTest(t)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "module1", all[0].ID)
	assert.Equal(t, "Introduction to Web Accessibility", all[0].Title)
	assert.Equal(t, "Accessibility", all[0].Category)
	assert.Equal(t, "Beginner", all[0].Level)
	assert.Equal(t, "30 min", all[0].Duration)
	assert.Len(t, all[0].Quiz, 3)

	assert.Equal(t, []string{"Accessibility", "Design"}, c.Categories())
}

func TestCatalog_Filter(t *testing.T) {
	c := defaultCatalogForTest(t)

	tests := []struct {
		category string
		want     []string
	}{
		{"all", []string{"module1", "module2", "module3"}},
		{"", []string{"module1", "module2", "module3"}},
		{"design", []string{"module2", "module3"}},
		{"DESIGN", []string{"module2", "module3"}},
		{"accessibility", []string{"module1"}},
		{"cooking", nil},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			var ids []string
			for _, m := range c.Filter(tt.category) {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCatalog_Get(t *testing.T) {
	c := defaultCatalogForTest(t)

	m, err := c.Get("module3")
	require.NoError(t, err)
	assert.Equal(t, "Color Theory for Accessibility", m.Title)

	_, err = c.Get("module9")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := map[string]string{
		"malformed":      "modules: [",
		"missing id":     "modules:\n  - title: A\n",
		"duplicate id":   "modules:\n  - {id: a, title: A}\n  - {id: a, title: B}\n",
		"answer range":   "modules:\n  - id: a\n    title: A\n    quiz:\n      - {id: 1, question: Q, options: [x, y], correct_answer: 2}\n",
		"one option":     "modules:\n  - id: a\n    title: A\n    quiz:\n      - {id: 1, question: Q, options: [x], correct_answer: 0}\n",
		"duplicate qids": "modules:\n  - id: a\n    title: A\n    quiz:\n      - {id: 1, question: Q, options: [x, y]}\n      - {id: 1, question: R, options: [x, y]}\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestModule_Sections(t *testing.T) {
	m, err := defaultCatalogForTest(t).Get("module1")
	require.NoError(t, err)

	sections := m.Sections()
	require.Len(t, sections, 4)
	assert.Equal(t, "Introduction to Web Accessibility", sections[0].Title)
	assert.Equal(t, "What is Web Accessibility?", sections[1].Title)
	assert.Equal(t, "Why is Accessibility Important?", sections[2].Title)
	assert.Equal(t, "Key Principles of Accessibility", sections[3].Title)
	assert.Contains(t, sections[3].HTML, "<strong>Robust</strong>")
	assert.NotContains(t, sections[1].HTML, "</h2>")

	assert.Equal(t, "Why is Accessibility Important?", m.SectionTitle(2))
	assert.Equal(t, "", m.SectionTitle(4))
	assert.Equal(t, "", m.SectionTitle(-1))
}

func TestModule_SectionsWithoutHeadings(t *testing.T) {
	m := Module{Title: "Plain", Content: "<p>Only text</p>"}

	sections := m.Sections()
	require.Len(t, sections, 1)
	assert.Equal(t, "Plain", sections[0].Title)
	assert.Equal(t, "<p>Only text</p>", sections[0].HTML)
}

func TestModule_PlainText(t *testing.T) {
	m, err := defaultCatalogForTest(t).Get("module1")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "module1_plain_text", []byte(m.PlainText()))
}

func TestPlainText_EntitiesAndInline(t *testing.T) {
	assert.Equal(t, "Fish & chips are tasty", plainText("<p>Fish &amp; chips <em>are</em> tasty</p>"))
	assert.Equal(t, "", plainText("   "))
}
