package mutate

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"github.com/crobledo/vitrina/internal/catalog"
	"github.com/crobledo/vitrina/internal/state"
)

// Status describes where a product-in-edit currently is.
type Status int

const (
	StatusIdle Status = iota
	StatusSaving
	StatusUploadingImage
	StatusError
)

// String implements fmt.Stringer for display.
func (s Status) String() string {
	switch s {
	case StatusSaving:
		return "saving"
	case StatusUploadingImage:
		return "uploading image"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// EditState is the observable per-entity status. The message is only set in
// the error state.
type EditState struct {
	Status  Status
	Message string
}

// Draft is a product submission as assembled by the form: scalar fields
// plus an optional not-yet-uploaded image file. A zero ID means create.
type Draft struct {
	ID     int
	Fields catalog.Fields
	Image  *catalog.FileUpload
}

// SaveResult reports the outcome of a Save call.
type SaveResult struct {
	ID      int
	Product catalog.Product
	Err     error
	// Stale is true when a newer submission for the same entity already
	// resolved; the result was discarded without touching any state.
	Stale bool
	// Vanished is true when the update target no longer existed locally;
	// the caller should trigger a refresh.
	Vanished bool
}

// SwapResult reports the outcome of an in-place image swap.
type SwapResult struct {
	ID    int
	URL   string
	Err   error
	Stale bool
}

// DeleteResult reports the outcome of a confirmed delete.
type DeleteResult struct {
	ID  int
	Err error
}

type entityState struct {
	status  Status
	message string
	issued  uint64 // last sequence handed out for this entity
	applied uint64 // newest sequence whose result was applied

	pendingDelete bool
}

// Coordinator serializes the edit lifecycle of individual products. It is
// safe for use from concurrently running commands; each mutation carries a
// per-entity sequence token and out-of-order resolutions are dropped
// instead of overwriting fresher state.
type Coordinator struct {
	mu     sync.Mutex
	client catalog.Resource
	store  *state.Store
	states map[int]*entityState
}

// New builds a Coordinator wired to the given remote resource and store.
func New(client catalog.Resource, store *state.Store) *Coordinator {
	return &Coordinator{
		client: client,
		store:  store,
		states: make(map[int]*entityState),
	}
}

// Status returns the observable edit state for a product id.
func (c *Coordinator) Status(id int) EditState {
	c.mu.Lock()
	defer c.mu.Unlock()
	es, ok := c.states[id]
	if !ok {
		return EditState{Status: StatusIdle}
	}
	return EditState{Status: es.status, Message: es.message}
}

// ClearError acknowledges an error state, returning the entity to idle.
func (c *Coordinator) ClearError(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	es, ok := c.states[id]
	if !ok || es.status != StatusError {
		return
	}
	es.status = StatusIdle
	es.message = ""
}

// Save submits a draft: create when the id is zero, update otherwise. On
// success the result is applied to the store and the entity returns to
// idle; on failure the entity enters the error state and the store is left
// untouched, so the caller's form input survives.
func (c *Coordinator) Save(ctx context.Context, draft Draft) SaveResult {
	seq := c.begin(draft.ID, StatusSaving)

	var (
		p   catalog.Product
		err error
	)
	if draft.ID == 0 {
		p, err = c.client.Create(ctx, draft.Fields, draft.Image)
	} else {
		p, err = c.client.Update(ctx, draft.ID, draft.Fields, draft.Image)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	es := c.states[draft.ID]
	if seq < es.applied {
		return SaveResult{ID: draft.ID, Stale: true}
	}
	es.applied = seq

	if err != nil {
		if catalog.IsNotFound(err) && draft.ID != 0 {
			// The target vanished server-side: reconcile instead of retrying.
			c.store.ApplyDeleted(draft.ID)
		}
		es.status = StatusError
		es.message = userMessage(err)
		return SaveResult{ID: draft.ID, Err: err}
	}

	es.status = StatusIdle
	es.message = ""

	res := SaveResult{ID: draft.ID, Product: p}
	if draft.ID == 0 {
		c.store.ApplyCreated(p)
	} else if !c.store.ApplyUpdated(p) {
		// Collection was mutated from elsewhere; report, do not fail.
		res.Vanished = true
	}
	return res
}

// SwapImage uploads a replacement image for an existing product. On success
// the stored image URL is replaced; on failure the previous reference is
// preserved and the entity enters the error state.
func (c *Coordinator) SwapImage(ctx context.Context, id int, file catalog.FileUpload) SwapResult {
	seq := c.begin(id, StatusUploadingImage)

	url, err := c.client.SwapImage(ctx, id, file)

	c.mu.Lock()
	defer c.mu.Unlock()

	es := c.states[id]
	if seq < es.applied {
		return SwapResult{ID: id, Stale: true}
	}
	es.applied = seq

	if err != nil {
		es.status = StatusError
		es.message = userMessage(err)
		return SwapResult{ID: id, Err: err}
	}

	es.status = StatusIdle
	es.message = ""
	c.store.SetImageURL(id, url)
	return SwapResult{ID: id, URL: url}
}

// RequestDelete arms the confirmation gate for a product. Nothing is
// removed until ConfirmDelete runs and the server acknowledges.
func (c *Coordinator) RequestDelete(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(id).pendingDelete = true
}

// CancelDelete disarms the gate with no side effect.
func (c *Coordinator) CancelDelete(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if es, ok := c.states[id]; ok {
		es.pendingDelete = false
	}
}

// PendingDelete reports whether a delete is awaiting confirmation.
func (c *Coordinator) PendingDelete(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	es, ok := c.states[id]
	return ok && es.pendingDelete
}

// ConfirmDelete performs the remote delete and removes the local entry only
// after the server confirms. An already-deleted target counts as success.
// Without a prior RequestDelete the call is refused.
func (c *Coordinator) ConfirmDelete(ctx context.Context, id int) DeleteResult {
	c.mu.Lock()
	es, ok := c.states[id]
	if !ok || !es.pendingDelete {
		c.mu.Unlock()
		return DeleteResult{ID: id, Err: errors.New("delete was not confirmed")}
	}
	es.pendingDelete = false
	es.status = StatusSaving
	es.message = ""
	c.mu.Unlock()

	err := c.client.Remove(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		es.status = StatusError
		es.message = userMessage(err)
		return DeleteResult{ID: id, Err: err}
	}
	es.status = StatusIdle
	c.store.ApplyDeleted(id)
	return DeleteResult{ID: id}
}

// begin hands out the next sequence token for an entity and moves it into
// the given in-flight status. Submissions are not queued; overlapping calls
// each get their own token and freshness is decided at resolution time.
func (c *Coordinator) begin(id int, status Status) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	es := c.ensure(id)
	es.issued++
	es.status = status
	es.message = ""
	return es.issued
}

// ensure assumes the caller holds the lock.
func (c *Coordinator) ensure(id int) *entityState {
	es, ok := c.states[id]
	if !ok {
		es = &entityState{}
		c.states[id] = es
	}
	return es
}

func userMessage(err error) string {
	var ce *catalog.Error
	if errors.As(err, &ce) {
		return ce.UserMessage()
	}
	return "Request failed. Please retry."
}

// ParseFields converts raw form input into catalog fields, validating the
// required-field and non-negativity rules before anything hits the wire.
func ParseFields(name, description, price, stock, category string) (catalog.Fields, error) {
	var problems []string

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	if name == "" {
		problems = append(problems, "name is required")
	}
	if description == "" {
		problems = append(problems, "description is required")
	}
	if category == "" {
		problems = append(problems, "category is required")
	}

	priceVal, err := cast.ToFloat64E(strings.TrimSpace(price))
	if err != nil {
		problems = append(problems, "price must be a number")
	} else if priceVal < 0 {
		problems = append(problems, "price must not be negative")
	}

	stockVal, err := cast.ToIntE(strings.TrimSpace(stock))
	if err != nil {
		problems = append(problems, "stock must be an integer")
	} else if stockVal < 0 {
		problems = append(problems, "stock must not be negative")
	}

	if len(problems) > 0 {
		return catalog.Fields{}, errors.New(strings.Join(problems, "; "))
	}
	return catalog.Fields{
		Name:        name,
		Description: description,
		Price:       priceVal,
		Stock:       stockVal,
		Category:    category,
	}, nil
}
