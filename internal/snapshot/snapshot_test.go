package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"filterbridge/internal/catalog"
	"filterbridge/internal/config"
)

type fakeSource struct {
	settings map[string]any
	enabled  map[int]bool
	filters  []catalog.Filter
	info     catalog.RequestFilterInfo
	failID   int
	queried  []int
}

func (f *fakeSource) AllSettings(context.Context) (map[string]any, error) {
	return f.settings, nil
}

func (f *fakeSource) IsFilterEnabled(_ context.Context, id int) (bool, error) {
	f.queried = append(f.queried, id)
	if f.failID != 0 && id == f.failID {
		return false, errors.New("lookup failed")
	}
	return f.enabled[id], nil
}

func (f *fakeSource) Filters(context.Context) ([]catalog.Filter, error) {
	return f.filters, nil
}

func (f *fakeSource) RequestFilterInfo(context.Context) (catalog.RequestFilterInfo, error) {
	return f.info, nil
}

func TestBuildIncludesOnlyEnabledKnownFilters(t *testing.T) {
	src := &fakeSource{
		settings: map[string]any{"locale": "en"},
		enabled:  map[int]bool{1: true, 2: false, 99: true},
		filters:  []catalog.Filter{{FilterID: 1, Name: "Russian"}},
		info:     catalog.RequestFilterInfo{RulesCount: 10},
	}
	known := map[string]int{"RUSSIAN_FILTER_ID": 1, "ENGLISH_FILTER_ID": 2}
	b := NewBuilder(src, known, config.Environment{IsMacOS: true, Locale: "en"})

	snap, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if !reflect.DeepEqual(snap.EnabledFilters, map[int]bool{1: true}) {
		t.Fatalf("unexpected enabled filters %v", snap.EnabledFilters)
	}
	if !reflect.DeepEqual(snap.UserSettings, map[string]any{"locale": "en"}) {
		t.Fatalf("unexpected settings %v", snap.UserSettings)
	}
	if !reflect.DeepEqual(snap.FiltersMetadata, src.filters) {
		t.Fatalf("unexpected filters metadata %+v", snap.FiltersMetadata)
	}
	if snap.RequestFilterInfo.RulesCount != 10 {
		t.Fatalf("unexpected rules count %d", snap.RequestFilterInfo.RulesCount)
	}
	if !reflect.DeepEqual(snap.Constants.AntiBannerFiltersID, known) {
		t.Fatalf("unexpected constants %v", snap.Constants.AntiBannerFiltersID)
	}
	if !snap.EnvironmentOptions.IsMacOS || snap.EnvironmentOptions.Prefs != (Prefs{Locale: "en"}) {
		t.Fatalf("unexpected environment %+v", snap.EnvironmentOptions)
	}
	queried := slices.Sorted(slices.Values(src.queried))
	if !slices.Equal(queried, []int{1, 2}) {
		t.Fatalf("expected known ids queried, got %v", src.queried)
	}
}

func TestBuildWithNoKnownFilters(t *testing.T) {
	src := &fakeSource{enabled: map[int]bool{1: true}}
	snap, err := NewBuilder(src, nil, config.Environment{}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(snap.EnabledFilters) != 0 {
		t.Fatalf("expected no enabled filters, got %v", snap.EnabledFilters)
	}
	if snap.UserSettings == nil || snap.FiltersMetadata == nil {
		t.Fatalf("expected non-nil settings and metadata, got %+v", snap)
	}
	if len(src.queried) != 0 {
		t.Fatalf("expected no lookups, got %v", src.queried)
	}
}

func TestBuildPropagatesErrors(t *testing.T) {
	src := &fakeSource{failID: 2}
	_, err := NewBuilder(src, map[string]int{"ENGLISH_FILTER_ID": 2}, config.Environment{}).Build(context.Background())
	if err == nil {
		t.Fatal("expected lookup error")
	}
	if !strings.Contains(err.Error(), "ENGLISH_FILTER_ID") {
		t.Fatalf("expected filter name in error, got %v", err)
	}
}

func TestBuilderCopiesKnownIDs(t *testing.T) {
	known := map[string]int{"ENGLISH_FILTER_ID": 2}
	b := NewBuilder(&fakeSource{}, known, config.Environment{})
	known["GERMAN_FILTER_ID"] = 6

	snap, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !reflect.DeepEqual(snap.Constants.AntiBannerFiltersID, map[string]int{"ENGLISH_FILTER_ID": 2}) {
		t.Fatalf("builder shares caller map: %v", snap.Constants.AntiBannerFiltersID)
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	src := &fakeSource{enabled: map[int]bool{2: true}}
	cfg := config.Default()
	snap, err := FromConfig(src, &cfg).Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	for _, key := range []string{"userSettings", "enabledFilters", "filtersMetadata", "requestFilterInfo", "environmentOptions", "constants"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("snapshot JSON missing %q: %s", key, data)
		}
	}
	if !reflect.DeepEqual(decoded["enabledFilters"], map[string]any{"2": true}) {
		t.Fatalf("unexpected enabledFilters %v", decoded["enabledFilters"])
	}

	env, _ := decoded["environmentOptions"].(map[string]any)
	if env["isMacOs"] != true {
		t.Fatalf("unexpected isMacOs %v", env["isMacOs"])
	}
	if !reflect.DeepEqual(env["Prefs"], map[string]any{"locale": "en", "mobile": false}) {
		t.Fatalf("unexpected Prefs %v", env["Prefs"])
	}

	constants, _ := decoded["constants"].(map[string]any)
	ids, _ := constants["AntiBannerFiltersId"].(map[string]any)
	if ids["ENGLISH_FILTER_ID"] != float64(2) {
		t.Fatalf("unexpected AntiBannerFiltersId %v", ids)
	}
}
