package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/winerec/core"
)

type countingSource struct {
	calls atomic.Int32
	wines []core.Wine
	err   error
}

func (s *countingSource) Load(ctx context.Context) ([]core.Wine, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.wines, nil
}

func sampleWines() []core.Wine {
	return []core.Wine{
		{ID: "a", Title: "A", Category: "Cabernet Sauvignon", Quality: 92, Price: core.Price(40), Style: "Red"},
		{ID: "b", Title: "B", Category: "Chardonnay", Quality: 88, Style: "white"},
		{ID: "a", Title: "A duplicate", Quality: 50},
		{ID: "", Title: "no id"},
		{ID: "c", Title: "C", Category: "Rosé", Quality: 86, Style: "Rosé"},
	}
}

func TestStore_LoadNormalizes(t *testing.T) {
	s := New(StaticSource(sampleWines()))
	wines, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(wines) != 3 {
		t.Fatalf("len = %d, want 3", len(wines))
	}
	a, ok := s.FindByID("a")
	if !ok || a.Title != "A" {
		t.Errorf("FindByID(a) = %+v, %v, want first occurrence", a, ok)
	}
	if a.Style != core.StyleRed {
		t.Errorf("style = %q, want red", a.Style)
	}
	c, _ := s.FindByID("c")
	if c.Style != core.StyleRose {
		t.Errorf("style = %q, want rose", c.Style)
	}
	if _, ok := s.FindByID("missing"); ok {
		t.Error("FindByID(missing) found")
	}
	if s.Degraded() {
		t.Error("Degraded() = true after successful load")
	}
}

func TestStore_ItemsFetchesOnce(t *testing.T) {
	src := &countingSource{wines: sampleWines()}
	s := New(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Items(context.Background())
		}()
	}
	wg.Wait()
	_ = s.Items(context.Background())

	if got := src.calls.Load(); got != 1 {
		t.Errorf("source calls = %d, want 1", got)
	}
}

func TestStore_DegradesToEmpty(t *testing.T) {
	src := &countingSource{err: errors.New("network down")}
	s := New(src)

	wines, err := s.Load(context.Background())
	if !core.IsCatalogUnavailable(err) {
		t.Fatalf("err = %v, want CATALOG_UNAVAILABLE", err)
	}
	if len(wines) != 0 {
		t.Errorf("len = %d, want 0", len(wines))
	}
	if !s.Degraded() || !s.Loaded() {
		t.Errorf("Degraded=%v Loaded=%v, want both true", s.Degraded(), s.Loaded())
	}
	// 降级后不再重复拉取
	_ = s.Items(context.Background())
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source calls = %d, want 1", got)
	}
}

func TestStore_ReloadKeepsSnapshotOnFailure(t *testing.T) {
	src := &countingSource{wines: sampleWines()}
	s := New(src)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	src.err = errors.New("boom")
	wines, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected error on reload")
	}
	if len(wines) != 3 {
		t.Errorf("len = %d, want previous snapshot of 3", len(wines))
	}
	if s.Degraded() {
		t.Error("Degraded() = true, want previous snapshot kept")
	}
}

func TestStore_BreakerOpens(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	s := New(src, WithBreaker(BreakerConfig{MaxFailures: 2, OpenTimeout: time.Hour}))

	for i := 0; i < 4; i++ {
		_, _ = s.Load(context.Background())
	}
	if got := src.calls.Load(); got != 2 {
		t.Errorf("source calls = %d, want 2 before breaker opens", got)
	}
	_, err := s.Load(context.Background())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want open state", err)
	}
	if !core.IsCatalogUnavailable(err) {
		t.Errorf("err = %v, want CATALOG_UNAVAILABLE", err)
	}
}

type recordingObserver struct {
	sizes []int
	errs  []error
}

func (o *recordingObserver) ObserveCatalogLoad(size int, d time.Duration, err error) {
	o.sizes = append(o.sizes, size)
	o.errs = append(o.errs, err)
}

func TestStore_Observer(t *testing.T) {
	obs := &recordingObserver{}
	s := New(StaticSource(sampleWines()[:2]), WithObserver(obs))
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(obs.sizes) != 1 || obs.sizes[0] != 2 || obs.errs[0] != nil {
		t.Errorf("observer = %+v", obs)
	}
}

func TestStore_NilSource(t *testing.T) {
	s := New(nil)
	if got := s.Items(context.Background()); len(got) != 0 {
		t.Errorf("Items() = %v, want empty", got)
	}
	if !s.Degraded() {
		t.Error("Degraded() = false, want true")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
		want   int
		err    bool
	}{
		{name: "json array", data: `[{"id":"a","quality":90},{"id":"b","price":12.5}]`, format: "json", want: 2},
		{name: "json document", data: `{"wines":[{"id":"a"}]}`, format: "json", want: 1},
		{name: "yaml list", data: "- id: a\n  quality: 90\n- id: b\n", format: "yaml", want: 2},
		{name: "yaml document", data: "wines:\n  - id: a\n", format: "yml", want: 1},
		{name: "empty", data: "  ", format: "json", want: 0},
		{name: "broken json", data: `{"wines":`, format: "json", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data), tt.format)
			if (err != nil) != tt.err {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDecode_MissingPrice(t *testing.T) {
	got, err := Decode([]byte(`[{"id":"a"},{"id":"b","price":0}]`), "json")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].HasPrice() {
		t.Error("a.HasPrice() = true, want unknown")
	}
	if !got[1].HasPrice() || got[1].PriceValue() != 0 {
		t.Errorf("b price = %v, want known 0", got[1].Price)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wines.yaml")
	if err := os.WriteFile(path, []byte("- id: a\n  title: Alpha\n  style: red\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wines, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(wines) != 1 || wines[0].Title != "Alpha" {
		t.Errorf("wines = %+v", wines)
	}

	_, err = NewFileSource(filepath.Join(dir, "missing.json")).Load(context.Background())
	if !core.IsCatalogUnavailable(err) {
		t.Errorf("err = %v, want CATALOG_UNAVAILABLE", err)
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wines":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"wines":[{"id":"a","title":"Alpha"},{"id":"b"}]}`))
		case "/yaml":
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte("- id: y\n"))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	wines, err := NewHTTPSource(srv.URL+"/wines", time.Second).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(wines) != 2 {
		t.Errorf("len = %d, want 2", len(wines))
	}

	wines, err = NewHTTPSourceWithClient(srv.URL+"/yaml", srv.Client()).Load(context.Background())
	if err != nil || len(wines) != 1 || wines[0].ID != "y" {
		t.Errorf("yaml Load() = %+v, %v", wines, err)
	}

	_, err = NewHTTPSource(srv.URL+"/broken", time.Second).Load(context.Background())
	if !core.IsCatalogUnavailable(err) {
		t.Errorf("err = %v, want CATALOG_UNAVAILABLE", err)
	}
}
