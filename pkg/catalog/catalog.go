// Package catalog serves the curated list of documentation sites shown on the
// explore page.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"fundocs-be/pkg/pagination"

	"gopkg.in/yaml.v3"
)

const PerPage = 12

//go:embed docs.yaml
var docsYAML []byte

type Entry struct {
	ID          int      `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	URL         string   `yaml:"url" json:"url"`
	Categories  []string `yaml:"categories" json:"categories"`
	Description string   `yaml:"description" json:"description"`
	Logo        string   `yaml:"logo" json:"logo"`
}

type Sort string

const (
	SortPopular      Sort = "popular"
	SortLatest       Sort = "latest"
	SortAlphabetical Sort = "alphabetical"
)

func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortLatest:
		return SortLatest
	case SortAlphabetical:
		return SortAlphabetical
	default:
		return SortPopular
	}
}

type Query struct {
	Search     string
	Categories []string
	Sort       Sort
	Page       int
}

type Catalog struct {
	categories []string
	entries    []Entry
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(docsYAML)
}

func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Categories []string `yaml:"categories"`
		Docs       []Entry  `yaml:"docs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &Catalog{categories: doc.Categories, entries: doc.Docs}, nil
}

func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Find filters by category (any match) and title substring, sorts, and
// returns one page of PerPage entries.
func (c *Catalog) Find(q Query) pagination.Page[Entry] {
	wanted := map[string]bool{}
	for _, cat := range q.Categories {
		if cat = strings.TrimSpace(cat); cat != "" {
			wanted[strings.ToLower(cat)] = true
		}
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if len(wanted) > 0 && !anyCategory(e.Categories, wanted) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Title), search) {
			continue
		}
		filtered = append(filtered, e)
	}

	switch q.Sort {
	case SortAlphabetical:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Title) < strings.ToLower(filtered[j].Title)
		})
	case SortLatest:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })
	default:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	}

	return pagination.Paginate(filtered, q.Page, PerPage)
}

func anyCategory(cats []string, wanted map[string]bool) bool {
	for _, c := range cats {
		if wanted[strings.ToLower(c)] {
			return true
		}
	}
	return false
}
