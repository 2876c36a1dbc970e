package theme

import (
	"sort"
	"strings"
	"sync"
)

// Scope is the target a Store projects design tokens onto. In a browser this
// is the document root style; on the server it is usually a MemoryScope
// rendered into the page head.
type Scope interface {
	SetProperty(name, value string)
	RemoveProperty(name string)
	SetStyleBlock(id, css string)
	RemoveStyleBlock(id string)
}

// MemoryScope is an in-memory Scope that renders itself as CSS.
type MemoryScope struct {
	mu         sync.RWMutex
	properties map[string]string
	blocks     map[string]string
}

// NewMemoryScope returns an empty scope.
func NewMemoryScope() *MemoryScope {
	return &MemoryScope{
		properties: make(map[string]string),
		blocks:     make(map[string]string),
	}
}

func (m *MemoryScope) SetProperty(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[name] = value
}

func (m *MemoryScope) RemoveProperty(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.properties, name)
}

func (m *MemoryScope) SetStyleBlock(id, css string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[id] = css
}

func (m *MemoryScope) RemoveStyleBlock(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, id)
}

// Property returns the current value of a custom property.
func (m *MemoryScope) Property(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.properties[name]
	return value, ok
}

// Properties returns a copy of every custom property in the scope.
func (m *MemoryScope) Properties() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.properties))
	for k, v := range m.properties {
		out[k] = v
	}
	return out
}

// StyleBlock returns the CSS of an injected block.
func (m *MemoryScope) StyleBlock(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	css, ok := m.blocks[id]
	return css, ok
}

// CSS renders the scope as a :root rule followed by every style block, both in
// lexical order so identical scopes render byte-identical output.
func (m *MemoryScope) CSS() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range sortedKeys(m.properties) {
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(m.properties[name])
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	for _, id := range sortedKeys(m.blocks) {
		b.WriteString("/* ")
		b.WriteString(id)
		b.WriteString(" */\n")
		b.WriteString(m.blocks[id])
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
