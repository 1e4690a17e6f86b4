// Package genre consolidates the long tail of library genre tags into a small
// set of broad groups so genre playlists land on "Rock" rather than thirty
// near-duplicate subgenre lists.
package genre

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"jellyjams/internal/services"
)

//go:embed groups.toml
var builtinGroups []byte

type groupFile struct {
	Groups []groupEntry `toml:"group"`
}

type groupEntry struct {
	Name string   `toml:"name"`
	Tags []string `toml:"tags"`
}

// Mapper resolves raw genre tags to group names. When disabled it passes tags
// through untouched.
type Mapper struct {
	enabled bool
	index   map[string]string
	order   []string
}

// NewMapper builds a mapper from the built-in group table.
func NewMapper(enabled bool) *Mapper {
	m, err := parseMapper(builtinGroups, enabled)
	if err != nil {
		// The embedded table is validated by tests; a decode failure here is
		// a build defect, not a runtime condition.
		panic(fmt.Sprintf("genre: embedded group table invalid: %v", err))
	}
	return m
}

// LoadMapper builds a mapper from an operator-supplied group table. The file
// uses the same layout as the built-in table.
func LoadMapper(path string, enabled bool) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "genre", "load", "read group table", err)
	}
	m, err := parseMapper(data, enabled)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "genre", "load", "parse group table", err)
	}
	return m, nil
}

func parseMapper(data []byte, enabled bool) (*Mapper, error) {
	var file groupFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Groups) == 0 {
		return nil, fmt.Errorf("group table defines no groups")
	}
	m := &Mapper{
		enabled: enabled,
		index:   make(map[string]string),
		order:   make([]string, 0, len(file.Groups)),
	}
	for _, g := range file.Groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, fmt.Errorf("group table contains an unnamed group")
		}
		m.order = append(m.order, name)
		for _, tag := range g.Tags {
			key := tagKey(tag)
			if key == "" {
				continue
			}
			// Earlier groups win when a tag appears more than once.
			if _, exists := m.index[key]; !exists {
				m.index[key] = name
			}
		}
	}
	return m, nil
}

// Enabled reports whether grouping is active.
func (m *Mapper) Enabled() bool {
	return m.enabled
}

// Groups returns the configured group names in table order.
func (m *Mapper) Groups() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Map resolves a single tag to its group. Unknown tags pass through unchanged,
// as does every tag when grouping is disabled.
func (m *Mapper) Map(tag string) string {
	tag = strings.TrimSpace(tag)
	if !m.enabled {
		return tag
	}
	if group, ok := m.index[tagKey(tag)]; ok {
		return group
	}
	return tag
}

// MapAll maps each tag and drops duplicates while preserving first-seen order.
func (m *Mapper) MapAll(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		mapped := m.Map(tag)
		if mapped == "" {
			continue
		}
		key := strings.ToLower(mapped)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, mapped)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func tagKey(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
