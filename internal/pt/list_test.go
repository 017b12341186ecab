package pt_test

import (
	"context"
	"errors"
	"testing"

	"pictier/internal/pt"
	"pictier/internal/testutil"
)

func TestListAndStatus(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t, pt.Options{})
	a := ingest(t, env, "a.jpg", "alpha")
	b := ingest(t, env, "b.jpg", "bravo")
	c := ingest(t, env, "c.jpg", "charlie")

	if _, err := env.Service.Promote(ctx, b, "finalized"); err != nil {
		t.Fatal(err)
	}
	if err := env.Service.Delete(ctx, c, false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    pt.ListOptions
		want    []string
		wantErr error
	}{
		{name: "all active", opts: pt.ListOptions{}, want: []string{a, b}},
		{name: "by tier", opts: pt.ListOptions{Tier: "finalized"}, want: []string{b}},
		{name: "empty tier", opts: pt.ListOptions{Tier: "archived"}},
		{name: "trash", opts: pt.ListOptions{Trash: true}, want: []string{c}},
		{name: "invalid tier", opts: pt.ListOptions{Tier: "gold"}, wantErr: pt.ErrInvalidTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photos, err := env.Service.List(ctx, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("List() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(photos) != len(tt.want) {
				t.Fatalf("List() returned %d photos, want %d", len(photos), len(tt.want))
			}
			for i, p := range photos {
				if p.ID != tt.want[i] {
					t.Errorf("photos[%d] = %s, want %s", i, p.ID, tt.want[i])
				}
			}
		})
	}

	t.Run("trash with tier is rejected", func(t *testing.T) {
		if _, err := env.Service.List(ctx, pt.ListOptions{Trash: true, Tier: "intake"}); err == nil {
			t.Error("List() expected error")
		}
	})

	t.Run("status", func(t *testing.T) {
		status, err := env.Service.Status(ctx)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		want := map[pt.Tier]int64{pt.TierIntake: 1, pt.TierReviewed: 0, pt.TierFinalized: 1, pt.TierArchived: 0}
		if len(status.Tiers) != 4 {
			t.Fatalf("Status() has %d tiers, want 4", len(status.Tiers))
		}
		for i, tc := range status.Tiers {
			if tc.Tier != pt.Tiers()[i] {
				t.Errorf("Tiers[%d] = %s, want %s", i, tc.Tier, pt.Tiers()[i])
			}
			if tc.Count != want[tc.Tier] {
				t.Errorf("%s count = %d, want %d", tc.Tier, tc.Count, want[tc.Tier])
			}
		}
		if status.Active != 2 || status.Trashed != 1 {
			t.Errorf("Active/Trashed = %d/%d, want 2/1", status.Active, status.Trashed)
		}
	})

	t.Run("get", func(t *testing.T) {
		p, err := env.Service.Get(ctx, b)
		if err != nil || p.ID != b {
			t.Errorf("Get(%s) = %v, %v", b, p, err)
		}
		if _, err := env.Service.Get(ctx, c); !errors.Is(err, pt.ErrNotFound) {
			t.Errorf("Get(trashed) error = %v, want ErrNotFound", err)
		}
	})
}

func TestGetHistory(t *testing.T) {
	env := testutil.NewEnv(t, pt.Options{})
	for _, op := range []string{"ingest", "promote", "delete"} {
		o, err := env.DB.CreateOperation(op, "[]")
		if err != nil {
			t.Fatal(err)
		}
		if err := env.DB.FinishOperation(o.ID, "success"); err != nil {
			t.Fatal(err)
		}
	}

	ops, err := env.Service.GetHistory(2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 2 || ops[0].Operation != "delete" || ops[1].Operation != "promote" {
		t.Errorf("GetHistory(2) = %+v, want delete then promote", ops)
	}
}
