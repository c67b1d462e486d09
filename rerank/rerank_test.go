package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/winerec/core"
)

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID())
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func catalog() []core.Wine {
	return []core.Wine{
		{ID: "a", Category: "Merlot", Quality: 85},
		{ID: "b", Category: "Merlot", Quality: 97},
		{ID: "c", Category: "Riesling", Quality: 90},
		{ID: "d", Category: "Merlot", Quality: 90},
		{ID: "e", Category: "Syrah", Quality: 70},
	}
}

func TestTopNNode(t *testing.T) {
	items := core.NewItems(catalog())
	tests := []struct {
		n    int
		want int
	}{
		{0, 5}, {-1, 5}, {3, 3}, {10, 5},
	}
	for _, tt := range tests {
		out, _ := (&TopNNode{N: tt.n}).Process(context.Background(), nil, items)
		if len(out) != tt.want {
			t.Errorf("TopN(%d) len = %d, want %d", tt.n, len(out), tt.want)
		}
	}
}

func TestDiversity(t *testing.T) {
	items := core.NewItems(catalog())
	out, _ := (&Diversity{MaxPerCategory: 1}).Process(context.Background(), nil, items)
	if want := []string{"a", "c", "e", "b", "d"}; !equal(ids(out), want) {
		t.Errorf("got %v, want %v", ids(out), want)
	}
	out, _ = (&Diversity{MaxPerCategory: 2}).Process(context.Background(), nil, core.NewItems(catalog()))
	if want := []string{"a", "b", "c", "e", "d"}; !equal(ids(out), want) {
		t.Errorf("got %v, want %v", ids(out), want)
	}
}

func TestBackfill(t *testing.T) {
	cat := catalog()
	rctx := &core.RecommendContext{Catalog: cat}

	t.Run("empty input pads by quality", func(t *testing.T) {
		out, _ := (&Backfill{N: 3}).Process(context.Background(), rctx, nil)
		if want := []string{"b", "c", "d"}; !equal(ids(out), want) {
			t.Errorf("got %v, want %v", ids(out), want)
		}
	})

	t.Run("keeps existing and skips duplicates", func(t *testing.T) {
		in := []*core.Item{core.NewItem(&cat[4]), core.NewItem(&cat[1]), core.NewItem(&cat[4])}
		out, _ := (&Backfill{N: 4}).Process(context.Background(), rctx, in)
		if want := []string{"e", "b", "c", "d"}; !equal(ids(out), want) {
			t.Errorf("got %v, want %v", ids(out), want)
		}
	})

	t.Run("filter limits pool", func(t *testing.T) {
		only := func(w *core.Wine) bool { return w.Category == "Merlot" }
		out, _ := (&Backfill{N: 5, Filter: only}).Process(context.Background(), rctx, nil)
		if want := []string{"b", "d", "a"}; !equal(ids(out), want) {
			t.Errorf("got %v, want %v", ids(out), want)
		}
	})

	t.Run("catalog smaller than N", func(t *testing.T) {
		out, _ := (&Backfill{N: 50}).Process(context.Background(), rctx, nil)
		if len(out) != len(cat) {
			t.Errorf("len = %d, want %d", len(out), len(cat))
		}
	})
}
