package pt_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"pictier/internal/pt"
	"pictier/internal/testutil"
)

func storagePath(t *testing.T, env *testutil.Env, id string) string {
	t.Helper()
	row, err := env.DB.FindActivePhoto(context.Background(), id)
	if err != nil || row == nil {
		t.Fatalf("FindActivePhoto(%s) = %v, %v", id, row, err)
	}
	return row.StoragePath
}

func TestDetectDuplicates(t *testing.T) {
	ctx := context.Background()

	t.Run("no duplicates in a fresh library", func(t *testing.T) {
		env := testutil.NewEnv(t, pt.Options{GroupWorkers: 4})
		ingest(t, env, "a.jpg", "alpha")
		ingest(t, env, "b.jpg", "bravo")

		groups, err := env.Service.DetectDuplicates(ctx)
		if err != nil {
			t.Fatalf("DetectDuplicates() error = %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("DetectDuplicates() = %d groups, want 0", len(groups))
		}
	})

	t.Run("files changed on disk are grouped by current content", func(t *testing.T) {
		env := testutil.NewEnv(t, pt.Options{GroupWorkers: 2})
		a := ingest(t, env, "a.jpg", "alpha")
		b := ingest(t, env, "b.jpg", "bravo")
		c := ingest(t, env, "c.jpg", "charlie")
		ingest(t, env, "d.jpg", "delta")

		testutil.WriteFile(t, storagePath(t, env, b), []byte("alpha"))
		testutil.WriteFile(t, storagePath(t, env, c), []byte("alpha"))

		groups, err := env.Service.DetectDuplicates(ctx)
		if err != nil {
			t.Fatalf("DetectDuplicates() error = %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("DetectDuplicates() = %d groups, want 1", len(groups))
		}
		g := groups[0]
		want, _ := pt.HashReader(strings.NewReader("alpha"))
		if g.Hash != want {
			t.Errorf("group hash = %s, want %s", g.Hash, want)
		}
		var ids []string
		for _, p := range g.Photos {
			ids = append(ids, p.ID)
		}
		if len(ids) != 3 || ids[0] != a || ids[1] != b || ids[2] != c {
			t.Errorf("group members = %v, want [%s %s %s]", ids, a, b, c)
		}
	})

	t.Run("trashed photos are ignored", func(t *testing.T) {
		env := testutil.NewEnv(t, pt.Options{})
		a := ingest(t, env, "a.jpg", "alpha")
		b := ingest(t, env, "b.jpg", "bravo")
		testutil.WriteFile(t, storagePath(t, env, b), []byte("alpha"))
		if err := env.Service.Delete(ctx, a, false); err != nil {
			t.Fatal(err)
		}

		groups, err := env.Service.DetectDuplicates(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(groups) != 0 {
			t.Errorf("DetectDuplicates() = %d groups, want 0", len(groups))
		}
	})

	t.Run("unreadable file aborts the scan", func(t *testing.T) {
		env := testutil.NewEnv(t, pt.Options{})
		a := ingest(t, env, "a.jpg", "alpha")
		os.Remove(storagePath(t, env, a))

		if _, err := env.Service.DetectDuplicates(ctx); !pt.IsIOError(err) {
			t.Errorf("DetectDuplicates() error = %v, want IOError", err)
		}
	})
}

func TestDetectBursts(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// IMG_001 and IMG_002 are three seconds apart; IMG_999 is an hour later.
	t.Run("burst scenario", func(t *testing.T) {
		env := testutil.NewEnv(t, pt.Options{})
		first := ingest(t, env, "IMG_001.jpg", "one")
		second := ingest(t, env, "IMG_002.jpg", "two")
		late := ingest(t, env, "IMG_999.jpg", "nine")

		testutil.SetModTime(t, storagePath(t, env, first), base)
		testutil.SetModTime(t, storagePath(t, env, second), base.Add(3*time.Second))
		testutil.SetModTime(t, storagePath(t, env, late), base.Add(time.Hour))

		groups, err := env.Service.DetectBursts(ctx)
		if err != nil {
			t.Fatalf("DetectBursts() error = %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("DetectBursts() = %d groups, want 1", len(groups))
		}
		g := groups[0]
		if g.Prefix != "IMG" {
			t.Errorf("Prefix = %q, want IMG", g.Prefix)
		}
		if len(g.Photos) != 2 || g.Photos[0].ID != first || g.Photos[1].ID != second {
			t.Errorf("members = %v, want %s and %s", g.Photos, first, second)
		}
		if !g.Start.Equal(base) || !g.End.Equal(base.Add(3*time.Second)) {
			t.Errorf("span = %v..%v", g.Start, g.End)
		}
	})

	tests := []struct {
		name       string
		window     time.Duration
		files      map[string]time.Duration // name -> offset from base
		wantGroups []int                    // group sizes in order
	}{
		{
			name:       "different prefixes never group",
			files:      map[string]time.Duration{"IMG_1.jpg": 0, "DSC_1.jpg": time.Second},
			wantGroups: nil,
		},
		{
			name:       "chain of short gaps forms one group",
			files:      map[string]time.Duration{"B_1.jpg": 0, "B_2.jpg": 8 * time.Second, "B_3.jpg": 16 * time.Second},
			wantGroups: []int{3},
		},
		{
			name:       "gap equal to window still groups",
			window:     5 * time.Second,
			files:      map[string]time.Duration{"B_1.jpg": 0, "B_2.jpg": 5 * time.Second},
			wantGroups: []int{2},
		},
		{
			name:       "gap beyond window splits",
			window:     5 * time.Second,
			files:      map[string]time.Duration{"B_1.jpg": 0, "B_2.jpg": 6 * time.Second},
			wantGroups: nil,
		},
		{
			name:       "interleaved prefix breaks the run",
			files:      map[string]time.Duration{"A_1.jpg": 0, "A_2.jpg": time.Second, "X_1.jpg": 2 * time.Second, "A_3.jpg": 3 * time.Second, "A_4.jpg": 4 * time.Second},
			wantGroups: []int{2, 2},
		},
		{
			name:       "name without underscore is its own prefix",
			files:      map[string]time.Duration{"sunset.jpg": 0, "sunset (1).jpg": time.Second},
			wantGroups: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t, pt.Options{BurstWindow: tt.window})
			for name, offset := range tt.files {
				id := ingest(t, env, name, name)
				testutil.SetModTime(t, storagePath(t, env, id), base.Add(offset))
			}

			groups, err := env.Service.DetectBursts(ctx)
			if err != nil {
				t.Fatalf("DetectBursts() error = %v", err)
			}
			var sizes []int
			for _, g := range groups {
				sizes = append(sizes, len(g.Photos))
			}
			if len(sizes) != len(tt.wantGroups) {
				t.Fatalf("group sizes = %v, want %v", sizes, tt.wantGroups)
			}
			for i := range sizes {
				if sizes[i] != tt.wantGroups[i] {
					t.Errorf("group sizes = %v, want %v", sizes, tt.wantGroups)
				}
			}
		})
	}
}
