package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestLoadMissingReturnsDefault(t *testing.T) {
	s := newTestStore(t)

	got := Load(s, "things.json", []doc{{Name: "fallback"}})
	require.Equal(t, []doc{{Name: "fallback"}}, got)
}

func TestLoadUnparsableReturnsDefault(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path("things.json"), []byte("{not json"), 0o644))

	got := Load(s, "things.json", []doc{{Name: "fallback"}})
	require.Equal(t, []doc{{Name: "fallback"}}, got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	Save(s, "things.json", []doc{{Name: "a", Count: 1}, {Name: "b", Count: 2}})

	got := Load(s, "things.json", []doc{})
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Name)
	require.Equal(t, 2, got[1].Count)
}

func TestSaveOverwritesWholeDocument(t *testing.T) {
	s := newTestStore(t)

	Save(s, "things.json", []doc{{Name: "a"}, {Name: "b"}})
	Save(s, "things.json", []doc{{Name: "c"}})

	got := Load(s, "things.json", []doc{})
	require.Equal(t, []doc{{Name: "c"}}, got)
}

// Racing writers must each land a complete document; the file is always one
// of the two, never a torn mix.
func TestConcurrentSavesNeverCorrupt(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			payload := make([]doc, 50)
			for j := range payload {
				payload[j] = doc{Name: "writer", Count: n}
			}
			for k := 0; k < 20; k++ {
				Save(s, "things.json", payload)
			}
		}(i)
	}
	wg.Wait()

	raw, err := os.ReadFile(s.Path("things.json"))
	require.NoError(t, err)

	var got []doc
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 50)
	for _, d := range got {
		require.Equal(t, got[0].Count, d.Count)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	Save(s, "things.json", []doc{{Name: "a"}})

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "things.json", filepath.Base(entries[0].Name()))
}
