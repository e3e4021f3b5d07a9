package learning

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

type Section struct {
	Title string
	HTML  string
}

// Sections splits the module content at each <h2>. The text before the first
// heading becomes section 0, titled with the module title.
func (m Module) Sections() []Section {
	parts := strings.Split(m.Content, "<h2>")
	sections := make([]Section, 0, len(parts))
	for i, part := range parts {
		if i == 0 {
			sections = append(sections, Section{Title: m.Title, HTML: part})
			continue
		}
		title, body, _ := strings.Cut(part, "</h2>")
		sections = append(sections, Section{Title: strings.TrimSpace(title), HTML: body})
	}
	return sections
}

// SectionTitle returns the title of section i, or "" when i is out of range.
func (m Module) SectionTitle(i int) string {
	sections := m.Sections()
	if i < 0 || i >= len(sections) {
		return ""
	}
	return sections[i].Title
}

// PlainText returns the module content with markup removed and whitespace
// collapsed, suitable for reading aloud.
func (m Module) PlainText() string {
	return plainText(m.Content)
}

var blockElements = map[string]bool{
	"p": true, "li": true, "ul": true, "ol": true, "br": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func plainText(s string) string {
	var buf bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(buf.String()), " ")
		case html.TextToken:
			buf.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockElements[string(name)] {
				buf.WriteByte(' ')
			}
		}
	}
}
