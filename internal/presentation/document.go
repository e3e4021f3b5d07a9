// Package presentation holds the document-level presentation context that
// accessibility preferences are applied to. A Document renders as the class
// and style attributes of the page's root <html> element.
package presentation

import (
	"sort"
	"strings"
	"sync"
)

// Document is safe for concurrent use.
type Document struct {
	mu         sync.RWMutex
	properties map[string]string
	classes    map[string]struct{}
}

func NewDocument() *Document {
	return &Document{
		properties: make(map[string]string),
		classes:    make(map[string]struct{}),
	}
}

// SetProperty sets a custom property such as "--font-size".
func (d *Document) SetProperty(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.properties[name] = value
}

func (d *Document) AddClass(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range names {
		d.classes[n] = struct{}{}
	}
}

func (d *Document) RemoveClass(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range names {
		delete(d.classes, n)
	}
}

func (d *Document) HasClass(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.classes[name]
	return ok
}

// Property returns the value of a custom property and whether it is set.
func (d *Document) Property(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.properties[name]
	return v, ok
}

// Classes returns the class list in sorted order.
func (d *Document) Classes() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.classes))
	for c := range d.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ClassAttr renders the class list as the value of a class attribute.
func (d *Document) ClassAttr() string {
	return strings.Join(d.Classes(), " ")
}

// StyleAttr renders the custom properties, sorted by name, as the value of a
// style attribute.
func (d *Document) StyleAttr() string {
	d.mu.RLock()
	names := make([]string, 0, len(d.properties))
	for n := range d.properties {
		names = append(names, n)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+": "+d.properties[n])
	}
	d.mu.RUnlock()
	return strings.Join(parts, "; ")
}
