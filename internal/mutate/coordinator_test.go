package mutate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crobledo/vitrina/internal/catalog"
	"github.com/crobledo/vitrina/internal/state"
)

// fakeResource implements catalog.Resource with pluggable behavior.
type fakeResource struct {
	createFn func(catalog.Fields, *catalog.FileUpload) (catalog.Product, error)
	updateFn func(int, catalog.Fields, *catalog.FileUpload) (catalog.Product, error)
	removeFn func(int) error
	swapFn   func(int, catalog.FileUpload) (string, error)
}

func (f *fakeResource) List(ctx context.Context) ([]catalog.Product, error) { return nil, nil }
func (f *fakeResource) Get(ctx context.Context, id int) (catalog.Product, error) {
	return catalog.Product{}, nil
}
func (f *fakeResource) Create(ctx context.Context, fields catalog.Fields, image *catalog.FileUpload) (catalog.Product, error) {
	return f.createFn(fields, image)
}
func (f *fakeResource) Update(ctx context.Context, id int, fields catalog.Fields, image *catalog.FileUpload) (catalog.Product, error) {
	return f.updateFn(id, fields, image)
}
func (f *fakeResource) Remove(ctx context.Context, id int) error { return f.removeFn(id) }
func (f *fakeResource) SwapImage(ctx context.Context, id int, image catalog.FileUpload) (string, error) {
	return f.swapFn(id, image)
}
func (f *fakeResource) Categories(ctx context.Context) ([]catalog.Category, error) {
	return nil, nil
}

func seededStore(products ...catalog.Product) *state.Store {
	s := &state.Store{}
	gen := s.BeginLoad()
	s.ApplyLoad(gen, products, nil)
	return s
}

func TestCoordinator_SaveCreateAppliesToStore(t *testing.T) {
	store := seededStore()
	client := &fakeResource{
		createFn: func(fields catalog.Fields, image *catalog.FileUpload) (catalog.Product, error) {
			return catalog.Product{ID: 11, Name: fields.Name, Price: fields.Price}, nil
		},
	}
	c := New(client, store)

	res := c.Save(context.Background(), Draft{Fields: catalog.Fields{Name: "Miel", Price: 7}})
	require.NoError(t, res.Err)
	assert.Equal(t, 11, res.Product.ID)

	snap := store.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Miel", snap.Products[0].Name)
	assert.Equal(t, StatusIdle, c.Status(0).Status)
}

func TestCoordinator_SaveUpdatePersistsServerImageURL(t *testing.T) {
	store := seededStore(catalog.Product{ID: 3, Name: "Pasas", ImageURL: "https://cdn/old.jpg"})
	client := &fakeResource{
		updateFn: func(id int, fields catalog.Fields, image *catalog.FileUpload) (catalog.Product, error) {
			// The update response carries the authoritative image URL.
			return catalog.Product{ID: id, Name: fields.Name, ImageURL: "https://cdn/from-update.jpg"}, nil
		},
	}
	c := New(client, store)

	draft := Draft{
		ID:     3,
		Fields: catalog.Fields{Name: "Pasas", Description: "d", Category: "Deshidratado"},
		Image:  &catalog.FileUpload{Filename: "local.jpg", Data: []byte("x")},
	}
	res := c.Save(context.Background(), draft)
	require.NoError(t, res.Err)

	p, ok := store.Get(3)
	require.True(t, ok)
	assert.Equal(t, "https://cdn/from-update.jpg", p.ImageURL)
}

func TestCoordinator_SaveFailureKeepsStoreAndReportsMessage(t *testing.T) {
	store := seededStore(catalog.Product{ID: 3, Name: "Pasas"})
	client := &fakeResource{
		updateFn: func(int, catalog.Fields, *catalog.FileUpload) (catalog.Product, error) {
			return catalog.Product{}, &catalog.Error{
				Kind:   catalog.KindValidation,
				Fields: map[string][]string{"precio": {"must be positive"}},
			}
		},
	}
	c := New(client, store)

	res := c.Save(context.Background(), Draft{ID: 3, Fields: catalog.Fields{Name: "Pasas"}})
	require.Error(t, res.Err)

	es := c.Status(3)
	assert.Equal(t, StatusError, es.Status)
	assert.Equal(t, "precio: must be positive", es.Message)

	// The collection is untouched; the user's form input survives in the view.
	p, ok := store.Get(3)
	require.True(t, ok)
	assert.Equal(t, "Pasas", p.Name)

	c.ClearError(3)
	assert.Equal(t, StatusIdle, c.Status(3).Status)
}

func TestCoordinator_SaveNotFoundReconciles(t *testing.T) {
	store := seededStore(catalog.Product{ID: 3, Name: "Pasas"})
	client := &fakeResource{
		updateFn: func(int, catalog.Fields, *catalog.FileUpload) (catalog.Product, error) {
			return catalog.Product{}, &catalog.Error{Kind: catalog.KindNotFound}
		},
	}
	c := New(client, store)

	res := c.Save(context.Background(), Draft{ID: 3, Fields: catalog.Fields{Name: "Pasas"}})
	require.Error(t, res.Err)

	// The stale local entry is removed instead of retried.
	_, ok := store.Get(3)
	assert.False(t, ok)
	assert.Equal(t, StatusError, c.Status(3).Status)
}

func TestCoordinator_SaveReportsLocallyVanishedTarget(t *testing.T) {
	store := seededStore() // entry already gone locally
	client := &fakeResource{
		updateFn: func(id int, fields catalog.Fields, image *catalog.FileUpload) (catalog.Product, error) {
			return catalog.Product{ID: id, Name: fields.Name}, nil
		},
	}
	c := New(client, store)

	res := c.Save(context.Background(), Draft{ID: 5, Fields: catalog.Fields{Name: "x"}})
	require.NoError(t, res.Err)
	assert.True(t, res.Vanished)
	assert.Empty(t, store.Snapshot().Products)
}

func TestCoordinator_StaleResponseIsRejected(t *testing.T) {
	store := seededStore(catalog.Product{ID: 7, Name: "original"})

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	client := &fakeResource{
		updateFn: func(id int, fields catalog.Fields, image *catalog.FileUpload) (catalog.Product, error) {
			calls++
			if calls == 1 {
				close(firstStarted)
				<-release // hold response A until B has resolved
			}
			return catalog.Product{ID: id, Name: fields.Name}, nil
		},
	}
	c := New(client, store)

	resA := make(chan SaveResult, 1)
	go func() {
		resA <- c.Save(context.Background(), Draft{ID: 7, Fields: catalog.Fields{Name: "A"}})
	}()

	select {
	case <-firstStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("first save never reached the client")
	}

	// Second edit issued while A is still in flight; resolves first.
	resB := c.Save(context.Background(), Draft{ID: 7, Fields: catalog.Fields{Name: "B"}})
	require.NoError(t, resB.Err)

	close(release)
	a := <-resA
	assert.True(t, a.Stale, "older response must be discarded")

	p, ok := store.Get(7)
	require.True(t, ok)
	assert.Equal(t, "B", p.Name, "final state reflects the freshest submission")
	assert.Equal(t, StatusIdle, c.Status(7).Status)
}

func TestCoordinator_SwapImage(t *testing.T) {
	store := seededStore(catalog.Product{ID: 2, ImageURL: "https://cdn/old.jpg"})
	client := &fakeResource{
		swapFn: func(id int, image catalog.FileUpload) (string, error) {
			return "https://cdn/new.jpg", nil
		},
	}
	c := New(client, store)

	res := c.SwapImage(context.Background(), 2, catalog.FileUpload{Filename: "n.jpg"})
	require.NoError(t, res.Err)
	assert.Equal(t, "https://cdn/new.jpg", res.URL)

	p, _ := store.Get(2)
	assert.Equal(t, "https://cdn/new.jpg", p.ImageURL)
	assert.Equal(t, StatusIdle, c.Status(2).Status)
}

func TestCoordinator_SwapImageFailurePreservesPreviousImage(t *testing.T) {
	store := seededStore(catalog.Product{ID: 2, ImageURL: "https://cdn/old.jpg"})
	client := &fakeResource{
		swapFn: func(int, catalog.FileUpload) (string, error) {
			return "", &catalog.Error{Kind: catalog.KindUpload, Message: "too large"}
		},
	}
	c := New(client, store)

	res := c.SwapImage(context.Background(), 2, catalog.FileUpload{Filename: "n.jpg"})
	require.Error(t, res.Err)

	p, _ := store.Get(2)
	assert.Equal(t, "https://cdn/old.jpg", p.ImageURL, "no partial or broken state")

	es := c.Status(2)
	assert.Equal(t, StatusError, es.Status)
	assert.Equal(t, "too large", es.Message)
}

func TestCoordinator_DeleteRequiresConfirmation(t *testing.T) {
	store := seededStore(catalog.Product{ID: 4})
	removed := 0
	client := &fakeResource{
		removeFn: func(int) error { removed++; return nil },
	}
	c := New(client, store)

	// Unconfirmed delete is refused outright.
	res := c.ConfirmDelete(context.Background(), 4)
	require.Error(t, res.Err)
	assert.Zero(t, removed)

	// Cancel disarms the gate with no side effect.
	c.RequestDelete(4)
	assert.True(t, c.PendingDelete(4))
	c.CancelDelete(4)
	assert.False(t, c.PendingDelete(4))
	res = c.ConfirmDelete(context.Background(), 4)
	require.Error(t, res.Err)
	assert.Zero(t, removed)
	assert.Len(t, store.Snapshot().Products, 1)

	// Confirmed delete removes the entry only after the server acknowledges.
	c.RequestDelete(4)
	res = c.ConfirmDelete(context.Background(), 4)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, store.Snapshot().Products)
}

func TestCoordinator_DeleteFailureKeepsEntry(t *testing.T) {
	store := seededStore(catalog.Product{ID: 4, Name: "Miel"})
	client := &fakeResource{
		removeFn: func(int) error { return errors.New("boom") },
	}
	c := New(client, store)

	c.RequestDelete(4)
	res := c.ConfirmDelete(context.Background(), 4)
	require.Error(t, res.Err)

	// Confirmed-first semantics: nothing was removed locally.
	_, ok := store.Get(4)
	assert.True(t, ok)
	assert.Equal(t, StatusError, c.Status(4).Status)
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields(" Miel ", "pura", "7.25", "3", "Encurtidos")
	require.NoError(t, err)
	assert.Equal(t, catalog.Fields{
		Name:        "Miel",
		Description: "pura",
		Price:       7.25,
		Stock:       3,
		Category:    "Encurtidos",
	}, fields)

	tests := []struct {
		name                                  string
		vName, desc, price, stock, category   string
		wantErr                               string
	}{
		{"missing name", "", "d", "1", "1", "c", "name is required"},
		{"missing description", "n", "", "1", "1", "c", "description is required"},
		{"missing category", "n", "d", "1", "1", "", "category is required"},
		{"bad price", "n", "d", "abc", "1", "c", "price must be a number"},
		{"negative price", "n", "d", "-1", "1", "c", "price must not be negative"},
		{"bad stock", "n", "d", "1", "x", "c", "stock must be an integer"},
		{"negative stock", "n", "d", "1", "-2", "c", "stock must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFields(tt.vName, tt.desc, tt.price, tt.stock, tt.category)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
