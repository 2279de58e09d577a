package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crobledo/vitrina/internal/catalog"
	"github.com/crobledo/vitrina/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	base := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"many failures capped", 20, maxBackoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, base)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, base, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	base := 2 * time.Second
	for failures := 0; failures <= 30; failures++ {
		got := calculateBackoff(failures, base)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, base, got, maxBackoff)
		}
	}
}

// listerFunc adapts a function to catalog.Resource for refresh tests.
type listerFunc func(ctx context.Context) ([]catalog.Product, error)

func (f listerFunc) List(ctx context.Context) ([]catalog.Product, error) { return f(ctx) }
func (f listerFunc) Get(ctx context.Context, id int) (catalog.Product, error) {
	return catalog.Product{}, nil
}
func (f listerFunc) Create(ctx context.Context, fields catalog.Fields, image *catalog.FileUpload) (catalog.Product, error) {
	return catalog.Product{}, nil
}
func (f listerFunc) Update(ctx context.Context, id int, fields catalog.Fields, image *catalog.FileUpload) (catalog.Product, error) {
	return catalog.Product{}, nil
}
func (f listerFunc) Remove(ctx context.Context, id int) error { return nil }
func (f listerFunc) SwapImage(ctx context.Context, id int, image catalog.FileUpload) (string, error) {
	return "", nil
}
func (f listerFunc) Categories(ctx context.Context) ([]catalog.Category, error) { return nil, nil }

func TestRefresh_PopulatesStore(t *testing.T) {
	store := &state.Store{}
	client := listerFunc(func(ctx context.Context) ([]catalog.Product, error) {
		return []catalog.Product{{ID: 1, Name: "Almendras"}}, nil
	})

	refresh(context.Background(), store, client)

	snap := store.Snapshot()
	if len(snap.Products) != 1 || snap.Products[0].ID != 1 {
		t.Fatalf("snapshot products = %#v, want 1 item id=1", snap.Products)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestRefresh_FailureKeepsPreviousData(t *testing.T) {
	store := &state.Store{}
	ok := listerFunc(func(ctx context.Context) ([]catalog.Product, error) {
		return []catalog.Product{{ID: 1}}, nil
	})
	failing := listerFunc(func(ctx context.Context) ([]catalog.Product, error) {
		return nil, errors.New("boom")
	})

	refresh(context.Background(), store, ok)
	refresh(context.Background(), store, failing)

	snap := store.Snapshot()
	if len(snap.Products) != 1 {
		t.Fatalf("snapshot products = %#v, want the previous collection", snap.Products)
	}
	if snap.LastError == nil {
		t.Fatal("LastError = nil, want the refresh failure recorded")
	}
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
}
