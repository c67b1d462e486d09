package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rushteam/winerec/core"
)

// failingStore 模拟不可用的存储后端。
type failingStore struct {
	*MemoryStore
	readErr  error
	writeErr error
}

func (f *failingStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.MemoryStore.BatchGet(ctx, keys)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.MemoryStore.Set(ctx, key, value, ttl...)
}

func TestStateStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	defer backend.Close()
	s := NewStateStore(backend, "user:1")

	profile := core.NewTasteProfile()
	profile.Params.Sweetness = 0.12
	profile.Params.Oakiness = 0.93
	profile.AddTag("Pinot Noir")
	profile.AddTag("Riesling")

	prefs := core.NewPreferenceSet()
	prefs.MinQuality = 88
	prefs.PriceRange = core.PriceRange{Min: 10, Max: 120}
	prefs.PreferCategory("Pinot Noir")
	prefs.PreferRegion("Burgundy")
	prefs.DislikeCategory("Merlot")

	log := []core.InteractionRecord{
		{ItemID: "w1", Kind: core.KindViewed, Timestamp: 1000},
		{ItemID: "w2", Kind: core.KindPurchased, Timestamp: 2000},
		{ItemID: "w1", Kind: core.KindRatedLow, Timestamp: 2000},
	}

	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if err := s.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	if err := s.SaveInteractions(ctx, log); err != nil {
		t.Fatalf("SaveInteractions() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got.Profile, profile) {
		t.Errorf("profile round trip = %+v, want %+v", got.Profile, profile)
	}
	if !reflect.DeepEqual(got.Preferences, prefs) {
		t.Errorf("preferences round trip = %+v, want %+v", got.Preferences, prefs)
	}
	if !reflect.DeepEqual(got.Interactions, log) {
		t.Errorf("interactions round trip = %+v, want %+v", got.Interactions, log)
	}
}

func TestStateStore_KeysAreNamespaced(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	defer backend.Close()

	a := NewStateStore(backend, "user:a")
	b := NewStateStore(backend, "user:b")
	p := core.NewTasteProfile()
	p.Params.Body = 0.99
	if err := a.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	if _, err := backend.Get(ctx, "user:a:taste-profile"); err != nil {
		t.Errorf("expected key user:a:taste-profile, got error %v", err)
	}
	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Profile.Params.Body != 0.5 {
		t.Errorf("namespace b sees body = %v, want default 0.5", got.Profile.Params.Body)
	}
}

func TestStateStore_LoadDefaultsAndCorruption(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		seed      map[string]string
		readErr   error
		wantRead  bool
		checkFunc func(t *testing.T, st State)
	}{
		{
			name: "empty store yields defaults",
			checkFunc: func(t *testing.T, st State) {
				if st.Preferences.MinQuality != 85 || st.Preferences.PriceRange.Max != 500 {
					t.Errorf("preferences = %+v, want defaults", st.Preferences)
				}
				if len(st.Interactions) != 0 {
					t.Errorf("interactions = %v, want empty", st.Interactions)
				}
			},
		},
		{
			name:     "corrupt profile falls back to default",
			seed:     map[string]string{"ns:taste-profile": "{not json"},
			wantRead: true,
			checkFunc: func(t *testing.T, st State) {
				if st.Profile.Params.Tannin != 0.5 {
					t.Errorf("profile tannin = %v, want default", st.Profile.Params.Tannin)
				}
			},
		},
		{
			name:     "unknown interaction kind is corruption",
			seed:     map[string]string{"ns:interaction-log": `[{"itemId":"a","kind":"teleported","timestamp":1}]`},
			wantRead: true,
			checkFunc: func(t *testing.T, st State) {
				if len(st.Interactions) != 0 {
					t.Errorf("interactions = %v, want empty", st.Interactions)
				}
			},
		},
		{
			name: "out of range params are clamped and overlap resolved",
			seed: map[string]string{
				"ns:taste-profile":  `{"params":{"sweetness":1.7,"acidity":-0.2},"preferredTags":["a","a","b"]}`,
				"ns:preference-set": `{"minQuality":90,"priceRange":{"min":100,"max":10},"preferredCategories":["Merlot"],"dislikedCategories":["merlot"]}`,
			},
			checkFunc: func(t *testing.T, st State) {
				if st.Profile.Params.Sweetness != 1 || st.Profile.Params.Acidity != 0 {
					t.Errorf("params = %+v, want clamped", st.Profile.Params)
				}
				if !reflect.DeepEqual(st.Profile.PreferredTags, []string{"a", "b"}) {
					t.Errorf("tags = %v, want [a b]", st.Profile.PreferredTags)
				}
				if st.Preferences.PriceRange != (core.PriceRange{Min: 10, Max: 100}) {
					t.Errorf("price range = %+v, want swapped", st.Preferences.PriceRange)
				}
				if st.Preferences.PrefersCategory("Merlot") {
					t.Errorf("Merlot both preferred and disliked")
				}
			},
		},
		{
			name:     "backend read failure",
			readErr:  errors.New("connection refused"),
			wantRead: true,
			checkFunc: func(t *testing.T, st State) {
				if st.Profile == nil || st.Preferences == nil {
					t.Errorf("state must fall back to defaults")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewMemoryStore()
			defer mem.Close()
			for k, v := range tt.seed {
				_ = mem.Set(ctx, k, []byte(v))
			}
			s := NewStateStore(&failingStore{MemoryStore: mem, readErr: tt.readErr}, "ns")

			st, err := s.Load(ctx)
			if tt.wantRead != core.IsPersistenceRead(err) {
				t.Fatalf("Load() error = %v, wantRead %v", err, tt.wantRead)
			}
			tt.checkFunc(t, st)
		})
	}
}

func TestStateStore_WriteFailure(t *testing.T) {
	mem := NewMemoryStore()
	defer mem.Close()
	s := NewStateStore(&failingStore{MemoryStore: mem, writeErr: errors.New("quota exceeded")}, "ns")

	err := s.SaveProfile(context.Background(), core.NewTasteProfile())
	if !core.IsPersistenceWrite(err) {
		t.Fatalf("SaveProfile() error = %v, want PERSISTENCE_WRITE", err)
	}
}
