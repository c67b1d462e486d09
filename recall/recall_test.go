package recall

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rushteam/winerec/core"
)

func testCatalog() []core.Wine {
	return []core.Wine{
		{ID: "a", Category: "Cabernet Sauvignon", Region: "Napa", Quality: 92, Price: core.Price(40), Style: core.StyleRed},
		{ID: "b", Category: "Cabernet Sauvignon", Region: "Napa", Quality: 90, Price: core.Price(44), Style: core.StyleRed},
		{ID: "c", Category: "Cabernet Sauvignon", Region: "Sonoma", Quality: 95, Style: core.StyleRed},
		{ID: "d", Category: "Chardonnay", Region: "Napa", Quality: 88, Price: core.Price(20), Style: core.StyleWhite},
		{ID: "e", Category: "Riesling", Region: "Mosel", Quality: 91, Price: core.Price(25), Style: core.StyleWhite},
	}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSimilarity(t *testing.T) {
	cat := testCatalog()
	tests := []struct {
		name string
		a, b core.Wine
		want float64
	}{
		{
			name: "same category region",
			a:    cat[0], b: cat[1],
			want: 3 + 2 + 1.5*(1-4.0/44) + 1.5*(1-2.0/100),
		},
		{
			name: "missing price gets no price bonus",
			a:    cat[0], b: cat[2],
			want: 3 + 1.5*(1-3.0/100),
		},
		{
			name: "both free",
			a:    core.Wine{ID: "x", Quality: 80, Price: core.Price(0)},
			b:    core.Wine{ID: "y", Quality: 80, Price: core.Price(0)},
			want: 1.5 + 1.5,
		},
		{
			name: "nothing shared",
			a:    cat[3], b: cat[4],
			want: 1.5*(1-5.0/25) + 1.5*(1-3.0/100),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(&tt.a, &tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
			if back := Similarity(&tt.b, &tt.a); !almostEqual(got, back) {
				t.Errorf("not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	cat := testCatalog()
	got := FindSimilar(&cat[0], cat, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, it := range got {
		if it.ID() == "a" {
			t.Fatal("source item must be excluded")
		}
		if i > 0 && got[i-1].Score < it.Score {
			t.Errorf("not sorted at %d: %v < %v", i, got[i-1].Score, it.Score)
		}
	}
	if got[0].ID() != "b" {
		t.Errorf("top = %s, want b", got[0].ID())
	}
	if _, ok := got[0].Labels["similarity"]; !ok {
		t.Error("missing similarity label")
	}
	if all := FindSimilar(&cat[0], cat, 0); len(all) != len(cat)-1 {
		t.Errorf("unlimited len = %d", len(all))
	}
}

func TestFindSimilar_TieBreak(t *testing.T) {
	cat := []core.Wine{
		{ID: "src", Quality: 90},
		{ID: "z", Quality: 90},
		{ID: "y", Quality: 90},
	}
	got := FindSimilar(&cat[0], cat, 10)
	if got[0].ID() != "y" || got[1].ID() != "z" {
		t.Errorf("order = %s,%s, want y,z", got[0].ID(), got[1].ID())
	}
}

func TestSimilarRecall(t *testing.T) {
	cat := testCatalog()
	r := &SimilarRecall{}
	items, err := r.Recall(context.Background(), &core.RecommendContext{Catalog: cat, Params: map[string]any{"item_id": "d"}})
	if err != nil || len(items) != 4 {
		t.Fatalf("Recall() = %d items, %v", len(items), err)
	}
	items, _ = r.Recall(context.Background(), &core.RecommendContext{Catalog: cat, Params: map[string]any{"item_id": "ghost"}})
	if len(items) != 0 {
		t.Errorf("unknown anchor returned %d items", len(items))
	}
}

func TestTrending(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ms := func(d time.Duration) int64 { return now.Add(-d).UnixMilli() }
	rctx := &core.RecommendContext{
		Catalog: testCatalog(),
		Now:     now,
		Interactions: []core.InteractionRecord{
			{ItemID: "e", Kind: core.KindPurchased, Timestamp: ms(40 * 24 * time.Hour)}, // 窗口外
			{ItemID: "a", Kind: core.KindViewed, Timestamp: ms(3 * time.Hour)},
			{ItemID: "a", Kind: core.KindViewed, Timestamp: ms(2 * time.Hour)},
			{ItemID: "b", Kind: core.KindAddedToCart, Timestamp: ms(2 * time.Hour)},
			{ItemID: "d", Kind: core.KindRatedHigh, Timestamp: ms(time.Hour)}, // 不计权重
			{ItemID: "c", Kind: core.KindViewed, Timestamp: ms(time.Hour)},
			{ItemID: "c", Kind: core.KindViewed, Timestamp: ms(time.Minute)},
		},
	}
	items, err := (&Trending{}).Recall(context.Background(), rctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID())
	}
	want := []string{"b", "c", "a"} // b=3, c=2 (q95), a=2 (q92)
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestUserHistory(t *testing.T) {
	rctx := &core.RecommendContext{
		Catalog: testCatalog(),
		Now:     time.UnixMilli(10_000),
		Interactions: []core.InteractionRecord{
			{ItemID: "a", Kind: core.KindPurchased, Timestamp: 1_000},
			{ItemID: "b", Kind: core.KindViewed, Timestamp: 2_000},
			{ItemID: "c", Kind: core.KindFavorited, Timestamp: 3_000},
			{ItemID: "a", Kind: core.KindPurchased, Timestamp: 4_000},
			{ItemID: "ghost", Kind: core.KindPurchased, Timestamp: 5_000},
		},
	}
	items, _ := (&UserHistory{}).Recall(context.Background(), rctx)
	if len(items) != 2 || items[0].ID() != "a" || items[0].Score != 2 || items[1].ID() != "c" {
		t.Fatalf("items = %+v", items)
	}
	items, _ = (&UserHistory{Kinds: []core.InteractionKind{core.KindViewed}}).Recall(context.Background(), rctx)
	if len(items) != 1 || items[0].ID() != "b" {
		t.Errorf("viewed items = %+v", items)
	}
	items, _ = (&UserHistory{TimeWindow: 6 * time.Second}).Recall(context.Background(), rctx)
	if len(items) != 1 || items[0].ID() != "a" || items[0].Score != 1 {
		t.Errorf("windowed items = %+v", items)
	}
}

func TestContentRecall(t *testing.T) {
	prefs := core.NewPreferenceSet()
	prefs.PreferCategory("riesling")
	profile := core.NewTasteProfile()
	profile.AddTag("Chardonnay")
	rctx := &core.RecommendContext{Catalog: testCatalog(), Profile: profile, Preferences: prefs}

	items, _ := (&ContentRecall{}).Recall(context.Background(), rctx)
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	off := false
	items, _ = (&ContentRecall{UseTags: &off}).Recall(context.Background(), rctx)
	if len(items) != 1 || items[0].ID() != "e" {
		t.Errorf("items = %+v", items)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "recall.failing" }
func (failingSource) Recall(context.Context, *core.RecommendContext) ([]*core.Item, error) {
	return nil, errors.New("down")
}

func TestFanout(t *testing.T) {
	now := time.UnixMilli(10_000)
	rctx := &core.RecommendContext{
		Catalog: testCatalog(),
		Now:     now,
		Interactions: []core.InteractionRecord{
			{ItemID: "e", Kind: core.KindPurchased, Timestamp: 9_000},
		},
	}
	n := &Fanout{
		Sources:       []Source{&UserHistory{}, failingSource{}, &CatalogRecall{}},
		Dedup:         true,
		MaxConcurrent: 2,
		MergeStrategy: "priority",
	}
	items, err := n.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != len(rctx.Catalog) {
		t.Fatalf("len = %d, want %d", len(items), len(rctx.Catalog))
	}
	if items[0].ID() != "e" {
		t.Errorf("first = %s, want history item e", items[0].ID())
	}
	if lbl := items[0].Labels["recall_source"]; lbl.Value != "recall.user_history|recall.catalog" {
		t.Errorf("recall_source = %q", lbl.Value)
	}

	n.Dedup = false
	items, _ = n.Process(context.Background(), rctx, nil)
	if len(items) != len(rctx.Catalog)+1 {
		t.Errorf("union len = %d", len(items))
	}
}

func TestSeasonOf(t *testing.T) {
	want := map[time.Month]Season{
		time.January: SeasonWinter, time.February: SeasonWinter, time.March: SeasonSpring,
		time.April: SeasonSpring, time.May: SeasonSpring, time.June: SeasonSummer,
		time.July: SeasonSummer, time.August: SeasonSummer, time.September: SeasonFall,
		time.October: SeasonFall, time.November: SeasonFall, time.December: SeasonWinter,
	}
	for m, s := range want {
		if got := SeasonOf(m); got != s {
			t.Errorf("SeasonOf(%v) = %s, want %s", m, got, s)
		}
	}
}

func TestSeasonalRecall(t *testing.T) {
	rctx := &core.RecommendContext{
		Catalog: testCatalog(),
		Now:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
	items, _ := (&SeasonalRecall{}).Recall(context.Background(), rctx)
	if len(items) != 3 {
		t.Fatalf("winter items = %d, want 3 cabernets", len(items))
	}
	for _, it := range items {
		if it.Wine.Category != "Cabernet Sauvignon" || it.Labels["season"].Value != "winter" {
			t.Errorf("unexpected item %s (%s)", it.ID(), it.Wine.Category)
		}
	}

	rctx.Now = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	items, _ = (&SeasonalRecall{}).Recall(context.Background(), rctx)
	if len(items) != 1 || items[0].ID() != "e" {
		t.Errorf("spring items = %+v", items)
	}
}

func TestMatchPairing(t *testing.T) {
	tests := []struct {
		meal string
		key  string
	}{
		{"Grilled Steak with fries", "grilled steak"},
		{"steak tartare", "steak"},
		{"ROAST CHICKEN", "roast chicken"},
		{"seafood paella", "seafood"},
		{"fish and seafood", "seafood"},
		{"tofu", AnyPairing},
		{"", AnyPairing},
	}
	for _, tt := range tests {
		t.Run(tt.meal, func(t *testing.T) {
			if got := MatchPairing(tt.meal); got.Key != tt.key {
				t.Errorf("MatchPairing(%q) = %s, want %s", tt.meal, got.Key, tt.key)
			}
		})
	}
}

func TestPairingRecall(t *testing.T) {
	cat := append(testCatalog(), core.Wine{ID: "f", Category: "Tempranillo", Quality: 89, Style: core.StyleRed})
	rctx := &core.RecommendContext{Catalog: cat, Params: map[string]any{"meal": "grilled steak"}}
	items, _ := (&PairingRecall{}).Recall(context.Background(), rctx)
	if len(items) != 4 {
		t.Fatalf("len = %d, want 4 reds", len(items))
	}
	for _, it := range items {
		if it.Wine.Style != core.StyleRed {
			t.Errorf("non-red %s paired with steak", it.ID())
		}
	}

	rctx.Params["meal"] = "something unusual"
	items, _ = (&PairingRecall{}).Recall(context.Background(), rctx)
	if len(items) != len(cat) {
		t.Errorf("any pairing len = %d, want %d", len(items), len(cat))
	}
}
