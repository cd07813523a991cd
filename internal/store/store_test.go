package store_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"filterbridge/internal/store"
	"filterbridge/internal/testsupport"
)

func TestOpenSeedsCatalogDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg, nil)
	ctx := context.Background()

	if st.Path() != cfg.DatabasePath() {
		t.Fatalf("unexpected path %q", st.Path())
	}

	filters, err := st.Filters(ctx)
	if err != nil {
		t.Fatalf("Filters failed: %v", err)
	}
	if len(filters) != 11 {
		t.Fatalf("expected 11 seeded filters, got %d", len(filters))
	}

	for id, want := range map[int]bool{2: true, 3: true, 4: false, 14: false} {
		got, err := st.IsFilterEnabled(ctx, id)
		if err != nil {
			t.Fatalf("IsFilterEnabled(%d) failed: %v", id, err)
		}
		if got != want {
			t.Fatalf("filter %d enabled = %v, want %v", id, got, want)
		}
	}

	enabled, err := st.IsFilterEnabled(ctx, 9999)
	if err != nil || enabled {
		t.Fatalf("unknown filter should report disabled, got %v, %v", enabled, err)
	}
}

func TestReopenPreservesState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	first, err := store.Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.DisableFilters(ctx, []int{2}); err != nil {
		t.Fatalf("DisableFilters failed: %v", err)
	}
	if err := first.SetProperty(ctx, "show-page-stats", true); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := testsupport.MustOpenStore(t, cfg, nil)
	enabled, err := second.IsFilterEnabled(ctx, 2)
	if err != nil {
		t.Fatalf("IsFilterEnabled failed: %v", err)
	}
	if enabled {
		t.Fatal("expected reseed to keep filter 2 disabled")
	}
	value, ok, err := second.Property(ctx, "show-page-stats")
	if err != nil || !ok || value != true {
		t.Fatalf("expected persisted setting, got %v %v %v", value, ok, err)
	}
}

func TestSetPropertyPublishesEvent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rec := &testsupport.Recorder{}
	st := testsupport.MustOpenStore(t, cfg, rec)
	ctx := context.Background()

	if err := st.SetProperty(ctx, "locale", "de"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if err := st.SetProperty(ctx, "locale", "fr"); err != nil {
		t.Fatalf("SetProperty overwrite failed: %v", err)
	}

	settings, err := st.AllSettings(ctx)
	if err != nil {
		t.Fatalf("AllSettings failed: %v", err)
	}
	if settings["locale"] != "fr" {
		t.Fatalf("expected locale fr, got %#v", settings)
	}

	evt := rec.Last(t)
	if evt.Name != store.EventSettingUpdated {
		t.Fatalf("unexpected event %q", evt.Name)
	}
	if !reflect.DeepEqual(evt.Args, []any{"locale", "fr"}) {
		t.Fatalf("unexpected event args %#v", evt.Args)
	}

	if err := st.SetProperty(ctx, "", 1); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}

func TestSetPropertyKeepsKeyVerbatim(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg, nil)
	ctx := context.Background()

	if err := st.SetProperty(ctx, " k ", "v"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	settings, err := st.AllSettings(ctx)
	if err != nil {
		t.Fatalf("AllSettings failed: %v", err)
	}
	if settings[" k "] != "v" {
		t.Fatalf("expected key with edge whitespace to be kept, got %#v", settings)
	}
	if _, ok := settings["k"]; ok {
		t.Fatalf("key was trimmed: %#v", settings)
	}
}

func TestAllSettingsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg, nil)

	settings, err := st.AllSettings(context.Background())
	if err != nil {
		t.Fatalf("AllSettings failed: %v", err)
	}
	if settings == nil || len(settings) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", settings)
	}
}

func TestEnableDisableFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rec := &testsupport.Recorder{}
	st := testsupport.MustOpenStore(t, cfg, rec)
	ctx := context.Background()

	if err := st.AddAndEnableFilters(ctx, []int{14}); err != nil {
		t.Fatalf("AddAndEnableFilters failed: %v", err)
	}
	if enabled, _ := st.IsFilterEnabled(ctx, 14); !enabled {
		t.Fatal("expected filter 14 enabled")
	}
	evt := rec.Last(t)
	if evt.Name != store.EventFilterEnabledDisabled || !reflect.DeepEqual(evt.Args, []any{[]int{14}, true}) {
		t.Fatalf("unexpected event %#v", evt)
	}

	if err := st.DisableFilters(ctx, []int{14}); err != nil {
		t.Fatalf("DisableFilters failed: %v", err)
	}
	if enabled, _ := st.IsFilterEnabled(ctx, 14); enabled {
		t.Fatal("expected filter 14 disabled")
	}

	before := len(rec.Events())
	err := st.AddAndEnableFilters(ctx, []int{4, 9999})
	if !errors.Is(err, store.ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
	if enabled, _ := st.IsFilterEnabled(ctx, 4); enabled {
		t.Fatal("failed batch must not enable filter 4")
	}
	if len(rec.Events()) != before {
		t.Fatal("failed mutation must not publish")
	}
}

func TestGroupToggles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rec := &testsupport.Recorder{}
	st := testsupport.MustOpenStore(t, cfg, rec)
	ctx := context.Background()

	if err := st.AddAndEnableFiltersByGroupID(ctx, 7); err != nil {
		t.Fatalf("AddAndEnableFiltersByGroupID failed: %v", err)
	}
	for _, id := range []int{1, 6, 7, 16} {
		if enabled, _ := st.IsFilterEnabled(ctx, id); !enabled {
			t.Fatalf("expected filter %d enabled", id)
		}
	}
	evt := rec.Last(t)
	if evt.Name != store.EventFilterGroupEnabledDisabled || !reflect.DeepEqual(evt.Args, []any{7, true}) {
		t.Fatalf("unexpected event %#v", evt)
	}

	if err := st.DisableAntiBannerFiltersByGroupID(ctx, 7); err != nil {
		t.Fatalf("DisableAntiBannerFiltersByGroupID failed: %v", err)
	}
	for _, id := range []int{1, 6, 7, 16} {
		if enabled, _ := st.IsFilterEnabled(ctx, id); enabled {
			t.Fatalf("expected filter %d disabled", id)
		}
	}

	if err := st.AddAndEnableFiltersByGroupID(ctx, 42); !errors.Is(err, store.ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestFiltersMetadataGroupsByCategory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg, nil)

	meta, err := st.FiltersMetadata(context.Background())
	if err != nil {
		t.Fatalf("FiltersMetadata failed: %v", err)
	}
	if len(meta.Categories) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(meta.Categories))
	}
	first := meta.Categories[0]
	if first.GroupID != 1 || len(first.Filters) != 3 || first.Filters[0].FilterID != 2 {
		t.Fatalf("unexpected first category %#v", first)
	}
	if !first.Filters[0].Enabled {
		t.Fatal("expected metadata to carry enabled state")
	}
	for _, c := range meta.Categories {
		if c.GroupID == 5 && len(c.Filters) != 0 {
			t.Fatalf("expected empty security category, got %#v", c.Filters)
		}
	}
}

func TestWhitelistRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rec := &testsupport.Recorder{}
	st := testsupport.MustOpenStore(t, cfg, rec)
	ctx := context.Background()

	domains, err := st.WhiteListDomains(ctx)
	if err != nil {
		t.Fatalf("WhiteListDomains failed: %v", err)
	}
	if len(domains) != 0 {
		t.Fatalf("expected empty whitelist, got %v", domains)
	}

	want := []string{"a.com", "b.com", "", "c.com"}
	if err := st.UpdateWhiteListDomains(ctx, want); err != nil {
		t.Fatalf("UpdateWhiteListDomains failed: %v", err)
	}
	got, err := st.WhiteListDomains(ctx)
	if err != nil {
		t.Fatalf("WhiteListDomains failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("whitelist = %#v, want %#v", got, want)
	}
	evt := rec.Last(t)
	if evt.Name != store.EventWhitelistUpdated || !reflect.DeepEqual(evt.Args, []any{4}) {
		t.Fatalf("unexpected event %#v", evt)
	}

	if err := st.UpdateWhiteListDomains(ctx, []string{"d.com"}); err != nil {
		t.Fatalf("UpdateWhiteListDomains failed: %v", err)
	}
	got, _ = st.WhiteListDomains(ctx)
	if !reflect.DeepEqual(got, []string{"d.com"}) {
		t.Fatalf("expected replacement, got %#v", got)
	}
}

func TestWhitelistMode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rec := &testsupport.Recorder{}
	st := testsupport.MustOpenStore(t, cfg, rec)
	ctx := context.Background()

	mode, err := st.DefaultWhiteListMode(ctx)
	if err != nil || !mode {
		t.Fatalf("expected default mode true, got %v %v", mode, err)
	}
	if err := st.ChangeDefaultWhiteListMode(ctx, false); err != nil {
		t.Fatalf("ChangeDefaultWhiteListMode failed: %v", err)
	}
	mode, _ = st.DefaultWhiteListMode(ctx)
	if mode {
		t.Fatal("expected mode false")
	}
	evt := rec.Last(t)
	if evt.Name != store.EventDefaultWhitelistModeChanged || !reflect.DeepEqual(evt.Args, []any{false}) {
		t.Fatalf("unexpected event %#v", evt)
	}
}

func TestUserRulesAndRequestFilterInfo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rec := &testsupport.Recorder{}
	st := testsupport.MustOpenStore(t, cfg, rec)
	ctx := context.Background()

	text, err := st.UserRulesText(ctx)
	if err != nil || text != "" {
		t.Fatalf("expected empty rules, got %q %v", text, err)
	}

	info, err := st.RequestFilterInfo(ctx)
	if err != nil {
		t.Fatalf("RequestFilterInfo failed: %v", err)
	}
	if info.RulesCount != 41820+18455 {
		t.Fatalf("unexpected rules count %d", info.RulesCount)
	}

	rules := "||ads.example^\r\n! comment\r\n\r\n@@||good.example^\n"
	if err := st.UpdateUserRulesText(ctx, rules); err != nil {
		t.Fatalf("UpdateUserRulesText failed: %v", err)
	}
	text, _ = st.UserRulesText(ctx)
	if text != rules {
		t.Fatalf("rules not stored verbatim: %q", text)
	}
	evt := rec.Last(t)
	if evt.Name != store.EventUserRulesUpdated || !reflect.DeepEqual(evt.Args, []any{2}) {
		t.Fatalf("unexpected event %#v", evt)
	}

	info, _ = st.RequestFilterInfo(ctx)
	if info.RulesCount != 41820+18455+2 {
		t.Fatalf("unexpected rules count after update %d", info.RulesCount)
	}
}
