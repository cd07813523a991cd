package dispatch

import (
	"context"
	"errors"

	"filterbridge/internal/catalog"
	"filterbridge/internal/snapshot"
)

// Settings stores user settings.
type Settings interface {
	SetProperty(ctx context.Context, key string, value any) error
	AllSettings(ctx context.Context) (map[string]any, error)
}

// Filters manages filter enabled state.
type Filters interface {
	AddAndEnableFilters(ctx context.Context, ids []int) error
	DisableFilters(ctx context.Context, ids []int) error
	AddAndEnableFiltersByGroupID(ctx context.Context, groupID int) error
	DisableAntiBannerFiltersByGroupID(ctx context.Context, groupID int) error
	IsFilterEnabled(ctx context.Context, id int) (bool, error)
	Filters(ctx context.Context) ([]catalog.Filter, error)
	RequestFilterInfo(ctx context.Context) (catalog.RequestFilterInfo, error)
}

// Categories reports filters grouped by category.
type Categories interface {
	FiltersMetadata(ctx context.Context) (catalog.Metadata, error)
}

// Whitelist manages the whitelisted domains and mode.
type Whitelist interface {
	WhiteListDomains(ctx context.Context) ([]string, error)
	UpdateWhiteListDomains(ctx context.Context, domains []string) error
	ChangeDefaultWhiteListMode(ctx context.Context, enabled bool) error
}

// UserRules stores the user's custom rules text. Reading may be slow.
type UserRules interface {
	UserRulesText(ctx context.Context) (string, error)
	UpdateUserRulesText(ctx context.Context, text string) error
}

// SnapshotBuilder builds the options page initialization payload.
type SnapshotBuilder interface {
	Build(ctx context.Context) (*snapshot.Snapshot, error)
}

// Collaborators bundles the backend subsystems the handlers call.
type Collaborators struct {
	Settings   Settings
	Filters    Filters
	Categories Categories
	Whitelist  Whitelist
	UserRules  UserRules
	Snapshot   SnapshotBuilder
}

// Backend is satisfied by a single type implementing every collaborator,
// such as store.Store.
type Backend interface {
	Settings
	Filters
	Categories
	Whitelist
	UserRules
}

// FromBackend fills every collaborator from one backend.
func FromBackend(b Backend, snap SnapshotBuilder) Collaborators {
	return Collaborators{
		Settings:   b,
		Filters:    b,
		Categories: b,
		Whitelist:  b,
		UserRules:  b,
		Snapshot:   snap,
	}
}

func (c Collaborators) validate() error {
	var errs []error
	if c.Settings == nil {
		errs = append(errs, errors.New("settings collaborator is nil"))
	}
	if c.Filters == nil {
		errs = append(errs, errors.New("filters collaborator is nil"))
	}
	if c.Categories == nil {
		errs = append(errs, errors.New("categories collaborator is nil"))
	}
	if c.Whitelist == nil {
		errs = append(errs, errors.New("whitelist collaborator is nil"))
	}
	if c.UserRules == nil {
		errs = append(errs, errors.New("user rules collaborator is nil"))
	}
	if c.Snapshot == nil {
		errs = append(errs, errors.New("snapshot builder is nil"))
	}
	return errors.Join(errs...)
}
