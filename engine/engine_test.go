package engine

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rushteam/winerec/catalog"
	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/metrics"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/store"
)

func abcCatalog() catalog.StaticSource {
	return catalog.StaticSource{
		{ID: "A", Category: "red", Quality: 90, Price: core.Price(40), Style: core.StyleRed},
		{ID: "B", Category: "red", Quality: 95, Price: core.Price(45), Style: core.StyleRed},
		{ID: "C", Category: "white", Quality: 80, Price: core.Price(20), Style: core.StyleWhite},
	}
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]core.Wine, error) {
	return nil, errors.New("catalog offline")
}

func fixedClock() func() time.Time {
	now := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newEngine(t *testing.T, src core.CatalogSource, backend core.Store, opts ...Option) *RecommendationEngine {
	t.Helper()
	opts = append([]Option{WithJitter(0), WithClock(fixedClock())}, opts...)
	e, err := New(src, backend, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID())
	}
	return out
}

func TestPersonalized_ABC(t *testing.T) {
	e := newEngine(t, abcCatalog(), nil)
	got := ids(e.Personalized(context.Background(), 10))
	if !slices.Equal(got, []string{"B", "A"}) {
		t.Fatalf("Personalized = %v, want [B A]", got)
	}
}

func TestRecordInteraction_PurchasesPreferCategoryOnce(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, abcCatalog(), nil)
	for i := 0; i < 5; i++ {
		if err := e.RecordInteraction(ctx, "B", core.KindPurchased); err != nil {
			t.Fatalf("RecordInteraction: %v", err)
		}
	}
	prefs := e.Preferences(ctx)
	n := 0
	for _, c := range prefs.PreferredCategories {
		if c == "red" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("preferred categories = %v, want red exactly once", prefs.PreferredCategories)
	}
	if got := len(e.Interactions(ctx)); got != 5 {
		t.Errorf("interactions = %d, want 5", got)
	}

	items := e.Personalized(ctx, 10)
	if len(items) == 0 || items[0].ID() != "B" {
		t.Fatalf("Personalized after purchases = %v", ids(items))
	}
}

func TestRecordInteraction_ViewedStep(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, abcCatalog(), nil)
	if err := e.RecordInteraction(ctx, "A", core.KindViewed); err != nil {
		t.Fatal(err)
	}
	// 0.5 + (0.7-0.5)*0.02
	if got := e.Profile(ctx).Params.Tannin; math.Abs(got-0.504) > 1e-9 {
		t.Errorf("tannin = %v, want 0.504", got)
	}
	if prefs := e.Preferences(ctx); len(prefs.PreferredCategories) != 0 {
		t.Errorf("viewed should not change preferences: %v", prefs.PreferredCategories)
	}
}

func TestRecordInteraction_LogCapped(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Millisecond)
	}
	e := newEngine(t, abcCatalog(), nil, WithClock(clock))
	for i := 0; i < core.MaxInteractions+1; i++ {
		if err := e.RecordInteraction(ctx, "A", core.KindViewed); err != nil {
			t.Fatal(err)
		}
	}
	log := e.Interactions(ctx)
	if len(log) != core.MaxInteractions {
		t.Fatalf("log length = %d, want %d", len(log), core.MaxInteractions)
	}
	first := log[0].Time()
	if !first.After(start.Add(time.Millisecond)) {
		t.Errorf("oldest record should be dropped, first = %v", first)
	}
}

func TestLogLimitCannotExceedPersistedBound(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	defer backend.Close()

	e := newEngine(t, abcCatalog(), backend, WithLogLimit(150))
	for i := 0; i < 150; i++ {
		if err := e.RecordInteraction(ctx, "A", core.KindViewed); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(e.Interactions(ctx)); got != core.MaxInteractions {
		t.Fatalf("in-memory log = %d, want %d", got, core.MaxInteractions)
	}

	reloaded := newEngine(t, abcCatalog(), backend)
	if got := len(reloaded.Interactions(ctx)); got != core.MaxInteractions {
		t.Errorf("reloaded log = %d, want %d", got, core.MaxInteractions)
	}
	if !slices.Equal(reloaded.Interactions(ctx), e.Interactions(ctx)) {
		t.Error("reloaded log differs from the saved one")
	}
}

func TestRecordInteraction_UnknownItemAndKind(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, abcCatalog(), nil)

	if err := e.RecordInteraction(ctx, "ZZZ", core.KindPurchased); err != nil {
		t.Errorf("unknown item should be ignored, got %v", err)
	}
	if len(e.Interactions(ctx)) != 0 {
		t.Error("unknown item should not be logged")
	}
	if e.Profile(ctx).Params != core.NewTasteProfile().Params {
		t.Error("unknown item should not change profile")
	}

	err := e.RecordInteraction(ctx, "A", core.InteractionKind("shared"))
	if !core.IsInvalidInput(err) {
		t.Errorf("invalid kind error = %v, want INVALID_INPUT", err)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	defer backend.Close()

	first := newEngine(t, abcCatalog(), backend, WithNamespace("user-1"))
	if err := first.RecordInteraction(ctx, "B", core.KindPurchased); err != nil {
		t.Fatal(err)
	}
	if err := first.SetMinQuality(ctx, 88); err != nil {
		t.Fatal(err)
	}
	if !first.Persisting() {
		t.Fatal("first engine should persist")
	}

	second := newEngine(t, abcCatalog(), backend, WithNamespace("user-1"))
	if got := second.Profile(ctx); got.Params != first.Profile(ctx).Params {
		t.Errorf("profile not restored: %+v", got.Params)
	}
	prefs := second.Preferences(ctx)
	if prefs.MinQuality != 88 || !prefs.PrefersCategory("red") {
		t.Errorf("preferences not restored: %+v", prefs)
	}
	if got := second.Interactions(ctx); len(got) != 1 || got[0].ItemID != "B" {
		t.Errorf("interactions not restored: %+v", got)
	}

	other := newEngine(t, abcCatalog(), backend, WithNamespace("user-2"))
	if len(other.Interactions(ctx)) != 0 {
		t.Error("namespaces should be isolated")
	}
}

func TestCorruptStateDisablesPersistence(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	defer backend.Close()
	key := store.NewStateStore(backend, "winerec").Key(store.KeyTasteProfile)
	if err := backend.Set(ctx, key, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	m := metrics.New(prometheus.NewRegistry())
	e := newEngine(t, abcCatalog(), backend, WithMetrics(m))
	e.Init(ctx)
	if e.Persisting() {
		t.Error("corrupt state should disable persistence")
	}
	if e.Profile(ctx).Params != core.NewTasteProfile().Params {
		t.Error("corrupt state should fall back to default profile")
	}
	if got := testutil.ToFloat64(m.PersistenceError.WithLabelValues("read")); got != 1 {
		t.Errorf("read errors = %v, want 1", got)
	}

	if err := e.RecordInteraction(ctx, "A", core.KindPurchased); err != nil {
		t.Fatal(err)
	}
	raw, err := backend.Get(ctx, key)
	if err != nil || string(raw) != "{not json" {
		t.Errorf("corrupt value should be left untouched, got %q, %v", raw, err)
	}
}

func TestCatalogUnavailable(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, failingSource{}, nil)
	if got := e.Personalized(ctx, 10); got == nil || len(got) != 0 {
		t.Errorf("Personalized = %v, want empty list", got)
	}
	if got := e.Trending(ctx, 10); len(got) != 0 {
		t.Errorf("Trending = %v, want empty list", ids(got))
	}
	if err := e.RecordInteraction(ctx, "A", core.KindViewed); err != nil {
		t.Errorf("RecordInteraction on empty catalog = %v", err)
	}
	if err := e.ReloadCatalog(ctx); !core.IsCatalogUnavailable(err) {
		t.Errorf("ReloadCatalog error = %v, want CATALOG_UNAVAILABLE", err)
	}
}

func TestSimilarUnknownItem(t *testing.T) {
	e := newEngine(t, abcCatalog(), nil)
	got := e.Similar(context.Background(), "nope", 5)
	if got == nil || len(got) != 0 {
		t.Errorf("Similar(unknown) = %v, want empty list", got)
	}
	if got := ids(e.Similar(context.Background(), "A", 5)); slices.Contains(got, "A") || len(got) == 0 {
		t.Errorf("Similar(A) = %v", got)
	}
}

func TestCustomViews(t *testing.T) {
	views := []pipeline.ViewConfig{{
		Name: "whites",
		Nodes: []pipeline.NodeConfig{
			{Type: "recall.catalog"},
			{Type: "filter.expr", Config: map[string]any{"expr": `wine.style == "white"`}},
			{Type: "rank.quality"},
		},
	}}
	e := newEngine(t, abcCatalog(), nil, WithViews(views, nil))

	items, err := e.View(context.Background(), "whites", 5, nil)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if got := ids(items); !slices.Equal(got, []string{"C"}) {
		t.Errorf("whites = %v, want [C]", got)
	}
	if !slices.Contains(e.Views(), "whites") {
		t.Errorf("Views() = %v", e.Views())
	}

	if _, err := e.View(context.Background(), "nope", 5, nil); !core.IsInvalidInput(err) {
		t.Errorf("unknown view error = %v, want INVALID_INPUT", err)
	}
	if items, err := e.View(context.Background(), "personalized", 5, nil); err != nil || len(items) != 2 {
		t.Errorf("builtin via View = %v, %v", ids(items), err)
	}
}

func TestCustomViewErrors(t *testing.T) {
	tests := []struct {
		name string
		view pipeline.ViewConfig
	}{
		{"shadows builtin", pipeline.ViewConfig{Name: "trending", Nodes: []pipeline.NodeConfig{{Type: "recall.catalog"}}}},
		{"unknown node", pipeline.ViewConfig{Name: "x", Nodes: []pipeline.NodeConfig{{Type: "recall.ann"}}}},
		{"bad expr", pipeline.ViewConfig{Name: "y", Nodes: []pipeline.NodeConfig{{Type: "filter.expr", Config: map[string]any{"expr": "wine.quality >"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(abcCatalog(), nil, WithViews([]pipeline.ViewConfig{tt.view}, nil))
			if !core.IsInvalidInput(err) {
				t.Errorf("New() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestPreferenceActions(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, abcCatalog(), nil)

	if err := e.DislikeCategory(ctx, "red"); err != nil {
		t.Fatal(err)
	}
	if got := ids(e.Personalized(ctx, 10)); len(got) != 0 {
		t.Errorf("after disliking red = %v, want none (C is below min quality)", got)
	}
	if err := e.SetMinQuality(ctx, 75); err != nil {
		t.Fatal(err)
	}
	if got := ids(e.Personalized(ctx, 10)); !slices.Equal(got, []string{"C"}) {
		t.Errorf("after lowering min quality = %v, want [C]", got)
	}
	if err := e.SetPriceRange(ctx, 50, 10); !core.IsInvalidInput(err) {
		t.Errorf("inverted range error = %v", err)
	}
	if err := e.SetMinQuality(ctx, 101); !core.IsInvalidInput(err) {
		t.Errorf("min quality 101 error = %v", err)
	}
	if err := e.ForgetCategory(ctx, "red"); err != nil {
		t.Fatal(err)
	}
	if got := ids(e.Personalized(ctx, 10)); len(got) != 3 {
		t.Errorf("after forgetting red = %v", got)
	}
}

func TestMetricsCounted(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	e := newEngine(t, abcCatalog(), nil, WithMetrics(m))

	_ = e.RecordInteraction(ctx, "A", core.KindViewed)
	_ = e.RecordInteraction(ctx, "ZZZ", core.KindViewed)
	e.Personalized(ctx, 10)
	e.Personalized(ctx, 10)

	if got := testutil.ToFloat64(m.Interactions.WithLabelValues("viewed", "recorded")); got != 1 {
		t.Errorf("recorded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Interactions.WithLabelValues("viewed", "ignored")); got != 1 {
		t.Errorf("ignored = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ViewRequests.WithLabelValues("personalized")); got != 2 {
		t.Errorf("view requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CatalogSize); got != 3 {
		t.Errorf("catalog size = %v, want 3", got)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	defer backend.Close()
	e := newEngine(t, abcCatalog(), backend)

	_ = e.RecordInteraction(ctx, "B", core.KindPurchased)
	_ = e.SetMinQuality(ctx, 90)
	e.Reset(ctx)

	if len(e.Interactions(ctx)) != 0 {
		t.Error("log should be empty after reset")
	}
	if p := e.Preferences(ctx); p.MinQuality != core.DefaultMinQuality || len(p.PreferredCategories) != 0 {
		t.Errorf("preferences after reset = %+v", p)
	}

	fresh := newEngine(t, abcCatalog(), backend)
	if len(fresh.Interactions(ctx)) != 0 {
		t.Error("persisted log should be cleared by reset")
	}
}
