package snapshot

import (
	"context"
	"fmt"
	"maps"

	"filterbridge/internal/catalog"
	"filterbridge/internal/config"
)

// Source is the backend state a snapshot reads.
type Source interface {
	AllSettings(ctx context.Context) (map[string]any, error)
	IsFilterEnabled(ctx context.Context, id int) (bool, error)
	Filters(ctx context.Context) ([]catalog.Filter, error)
	RequestFilterInfo(ctx context.Context) (catalog.RequestFilterInfo, error)
}

// Prefs are the UI preferences nested in the environment options.
type Prefs struct {
	Locale string `json:"locale"`
	Mobile bool   `json:"mobile"`
}

// EnvironmentOptions describe the host environment to the UI.
type EnvironmentOptions struct {
	IsMacOS bool  `json:"isMacOs"`
	Prefs   Prefs `json:"Prefs"`
}

// Constants are static identifiers the UI needs.
type Constants struct {
	AntiBannerFiltersID map[string]int `json:"AntiBannerFiltersId"`
}

// Snapshot is the initialization payload.
type Snapshot struct {
	UserSettings       map[string]any            `json:"userSettings"`
	EnabledFilters     map[int]bool              `json:"enabledFilters"`
	FiltersMetadata    []catalog.Filter          `json:"filtersMetadata"`
	RequestFilterInfo  catalog.RequestFilterInfo `json:"requestFilterInfo"`
	EnvironmentOptions EnvironmentOptions        `json:"environmentOptions"`
	Constants          Constants                 `json:"constants"`
}

// Builder builds snapshots from a Source and static configuration.
type Builder struct {
	source   Source
	knownIDs map[string]int
	env      EnvironmentOptions
}

// NewBuilder creates a builder. knownIDs maps logical filter names to ids and
// is copied.
func NewBuilder(source Source, knownIDs map[string]int, env config.Environment) *Builder {
	return &Builder{
		source:   source,
		knownIDs: maps.Clone(knownIDs),
		env: EnvironmentOptions{
			IsMacOS: env.IsMacOS,
			Prefs:   Prefs{Locale: env.Locale, Mobile: env.Mobile},
		},
	}
}

// FromConfig creates a builder using the filter ids and environment in cfg.
func FromConfig(source Source, cfg *config.Config) *Builder {
	return NewBuilder(source, cfg.Filters.AntiBannerIDs, cfg.Environment)
}

// Build reads current state and assembles a snapshot. Only known filters that
// are enabled appear in EnabledFilters.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	settings, err := b.source.AllSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if settings == nil {
		settings = map[string]any{}
	}

	enabled := make(map[int]bool)
	for name, id := range b.knownIDs {
		on, err := b.source.IsFilterEnabled(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check filter %s (%d): %w", name, id, err)
		}
		if on {
			enabled[id] = true
		}
	}

	filters, err := b.source.Filters(ctx)
	if err != nil {
		return nil, fmt.Errorf("read filters: %w", err)
	}
	if filters == nil {
		filters = []catalog.Filter{}
	}

	info, err := b.source.RequestFilterInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("read request filter info: %w", err)
	}

	ids := maps.Clone(b.knownIDs)
	if ids == nil {
		ids = map[string]int{}
	}
	return &Snapshot{
		UserSettings:       settings,
		EnabledFilters:     enabled,
		FiltersMetadata:    filters,
		RequestFilterInfo:  info,
		EnvironmentOptions: b.env,
		Constants:          Constants{AntiBannerFiltersID: ids},
	}, nil
}
