package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

//go:embed catalog.jsonc
var builtin []byte

// Group is a filter category.
type Group struct {
	GroupID       int    `json:"groupId"`
	GroupName     string `json:"groupName"`
	DisplayNumber int    `json:"displayNumber"`
}

// Filter is a filter list and, once loaded from the store, its enabled state.
type Filter struct {
	FilterID         int    `json:"filterId"`
	GroupID          int    `json:"groupId"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Homepage         string `json:"homepage,omitempty"`
	Version          string `json:"version"`
	DisplayNumber    int    `json:"displayNumber"`
	RulesCount       int    `json:"rulesCount"`
	EnabledByDefault bool   `json:"enabledByDefault,omitempty"`
	Enabled          bool   `json:"enabled"`
}

// Catalog is the full list of known groups and filters.
type Catalog struct {
	Groups  []Group  `json:"groups"`
	Filters []Filter `json:"filters"`
}

// Category is a group with its filters, as shown on the options page.
type Category struct {
	Group
	Filters []Filter `json:"filters"`
}

// Metadata is the reply body of the filters metadata request.
type Metadata struct {
	Categories []Category `json:"categories"`
	Filters    []Filter   `json:"filters"`
}

// RequestFilterInfo summarizes the active request filter.
type RequestFilterInfo struct {
	RulesCount int `json:"rulesCount"`
}

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) {
	return Parse(builtin)
}

// Parse decodes a JSONC catalog document and validates it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(jsonc.ToJSON(data), &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks identifiers are positive and unique and that every filter
// references a known group.
func (c *Catalog) Validate() error {
	if c == nil {
		return errors.New("catalog is nil")
	}
	groups := make(map[int]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		if g.GroupID <= 0 {
			return fmt.Errorf("catalog: group %q has invalid id %d", g.GroupName, g.GroupID)
		}
		if _, dup := groups[g.GroupID]; dup {
			return fmt.Errorf("catalog: duplicate group id %d", g.GroupID)
		}
		if strings.TrimSpace(g.GroupName) == "" {
			return fmt.Errorf("catalog: group %d has no name", g.GroupID)
		}
		groups[g.GroupID] = struct{}{}
	}
	filters := make(map[int]struct{}, len(c.Filters))
	for _, f := range c.Filters {
		if f.FilterID <= 0 {
			return fmt.Errorf("catalog: filter %q has invalid id %d", f.Name, f.FilterID)
		}
		if _, dup := filters[f.FilterID]; dup {
			return fmt.Errorf("catalog: duplicate filter id %d", f.FilterID)
		}
		if _, ok := groups[f.GroupID]; !ok {
			return fmt.Errorf("catalog: filter %d references unknown group %d", f.FilterID, f.GroupID)
		}
		filters[f.FilterID] = struct{}{}
	}
	return nil
}

// BuildMetadata groups filters under their categories. Categories and the
// filters inside them are ordered by display number, then id.
func BuildMetadata(groups []Group, filters []Filter) Metadata {
	sortedGroups := append([]Group(nil), groups...)
	sort.SliceStable(sortedGroups, func(i, j int) bool {
		if sortedGroups[i].DisplayNumber != sortedGroups[j].DisplayNumber {
			return sortedGroups[i].DisplayNumber < sortedGroups[j].DisplayNumber
		}
		return sortedGroups[i].GroupID < sortedGroups[j].GroupID
	})
	sortedFilters := append([]Filter(nil), filters...)
	sort.SliceStable(sortedFilters, func(i, j int) bool {
		if sortedFilters[i].DisplayNumber != sortedFilters[j].DisplayNumber {
			return sortedFilters[i].DisplayNumber < sortedFilters[j].DisplayNumber
		}
		return sortedFilters[i].FilterID < sortedFilters[j].FilterID
	})

	byGroup := make(map[int][]Filter, len(sortedGroups))
	for _, f := range sortedFilters {
		byGroup[f.GroupID] = append(byGroup[f.GroupID], f)
	}
	categories := make([]Category, 0, len(sortedGroups))
	for _, g := range sortedGroups {
		members := byGroup[g.GroupID]
		if members == nil {
			members = []Filter{}
		}
		categories = append(categories, Category{Group: g, Filters: members})
	}
	return Metadata{Categories: categories, Filters: sortedFilters}
}
