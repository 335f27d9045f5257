package catalog

import (
	"fmt"
	"slices"
	"strings"
)

const (
	LangVF     = "vf"
	LangVOSTFR = "vostfr"
)

// Catalog is the on-disk list of every known season.
type Catalog struct {
	Media []Media `json:"media"`
}

// Media is one season of one title in one language.
type Media struct {
	Name      string   `json:"name"`
	Lang      string   `json:"lang"`
	Season    int      `json:"season"`
	MediaType string   `json:"media_type"`
	Episodes  []string `json:"episodes"`
}

func (m Media) String() string {
	return fmt.Sprintf("season %d", m.Season)
}

// Names returns the distinct titles in first-seen order.
func (c *Catalog) Names() []string {
	seen := make(map[string]bool, len(c.Media))
	var names []string
	for _, m := range c.Media {
		if seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		names = append(names, m.Name)
	}
	return names
}

// Seasons returns every entry of the given title.
func (c *Catalog) Seasons(name string) []Media {
	var entries []Media
	for _, m := range c.Media {
		if m.Name == name {
			entries = append(entries, m)
		}
	}
	return entries
}

func HasLanguage(entries []Media, lang string) bool {
	return slices.ContainsFunc(entries, func(m Media) bool {
		return strings.EqualFold(m.Lang, lang)
	})
}

func FilterLanguage(entries []Media, lang string) []Media {
	var filtered []Media
	for _, m := range entries {
		if strings.EqualFold(m.Lang, lang) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// SortBySeason returns a copy ordered by season number, keeping catalog order for ties.
func SortBySeason(entries []Media) []Media {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Media) int {
		return a.Season - b.Season
	})
	return sorted
}
