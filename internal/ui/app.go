package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crobledo/vitrina/internal/catalog"
	"github.com/crobledo/vitrina/internal/mutate"
	"github.com/crobledo/vitrina/internal/prefs"
	"github.com/crobledo/vitrina/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewCatalog View = iota
	ViewForm
)

const uiTick = time.Second

// Options configures the UI.
type Options struct {
	Context     context.Context
	Client      catalog.Resource
	Store       *state.Store
	Coordinator *mutate.Coordinator
	ThemeName   string
	PrefsPath   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    catalog.Resource
	store     *state.Store
	coord     *mutate.Coordinator
	prefsPath string
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Data state
	snapshot   state.Snapshot
	categories []catalog.Category

	// Catalog state
	selectedRow int

	// Search state
	searchMode  bool
	searchInput textinput.Model

	// Delete dialog state; zero means no dialog
	deleteTarget int

	// Image swap prompt state; zero means no prompt
	imageTarget int
	imageInput  textinput.Model

	// Form state
	form formState

	// One-line transient feedback
	notice    string
	noticeErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	search := textinput.New()
	search.Placeholder = "name or id"
	search.CharLimit = 64

	image := textinput.New()
	image.Placeholder = "path to image file"
	image.CharLimit = 256

	return Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		coord:       opts.Coordinator,
		prefsPath:   prefsPath,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewCatalog,
		searchInput: search,
		imageInput:  image,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(),
		categoriesCmd(m.ctx, m.client),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.clampSelection()
		return m, nil

	case categoriesMsg:
		// Category fetch failures are non-fatal; the form falls back to
		// free-text entry.
		if msg.err == nil {
			m.categories = msg.items
		}
		return m, nil

	case saveResultMsg:
		return m.handleSaveResult(mutate.SaveResult(msg))

	case swapResultMsg:
		res := mutate.SwapResult(msg)
		if res.Stale {
			return m, nil
		}
		if res.Err != nil {
			m.setNotice(m.coord.Status(res.ID).Message, true)
			m.coord.ClearError(res.ID)
			return m, nil
		}
		m.setNotice("Image updated.", false)
		return m, fetchSnapshotCmd(m.store)

	case deleteResultMsg:
		res := mutate.DeleteResult(msg)
		if res.Err != nil {
			m.setNotice(m.coord.Status(res.ID).Message, true)
			m.coord.ClearError(res.ID)
			return m, nil
		}
		m.setNotice("Product deleted.", false)
		return m, fetchSnapshotCmd(m.store)

	case refreshedMsg:
		return m, fetchSnapshotCmd(m.store)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.deleteTarget != 0 {
		return m.renderDeleteDialog()
	}
	if m.imageTarget != 0 {
		return m.renderImagePrompt()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.currentView {
	case ViewForm:
		b.WriteString(m.renderForm())
	default:
		b.WriteString(m.renderCatalog())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays first, so global bindings cannot swallow their keys.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.deleteTarget != 0 {
		return m.handleDeleteDialogKey(msg)
	}
	if m.imageTarget != 0 {
		return m.handleImagePromptKey(msg)
	}
	if m.searchMode {
		return m.handleSearchKey(msg)
	}
	if m.currentView == ViewForm {
		return m.handleFormKey(msg)
	}
	return m.handleCatalogKey(msg)
}

// handleCatalogKey processes keyboard input for the catalog table.
func (m Model) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name})
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, refreshCmd(m.ctx, m.store, m.client)

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.snapshot.SearchTerm)
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Add):
		m.form = newFormState(catalog.Product{}, m.categories)
		m.currentView = ViewForm
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		if p, ok := m.selectedProduct(); ok {
			m.form = newFormState(p, m.categories)
			m.currentView = ViewForm
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if p, ok := m.selectedProduct(); ok {
			m.coord.RequestDelete(p.ID)
			m.deleteTarget = p.ID
		}
		return m, nil

	case key.Matches(msg, m.keys.SwapImage):
		if p, ok := m.selectedProduct(); ok {
			m.imageTarget = p.ID
			m.imageInput.SetValue("")
			m.imageInput.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.snapshot.SearchTerm != "" {
			m.store.SetSearchTerm("")
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < len(m.snapshot.Filtered)-1 {
			m.selectedRow++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		if n := len(m.snapshot.Filtered); n > 0 {
			m.selectedRow = n - 1
		}
		return m, nil
	}

	return m, nil
}

// handleSearchKey processes keys while the search input is active. The
// filter updates on every keystroke; no network is involved.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.store.SetSearchTerm("")
		return m, fetchSnapshotCmd(m.store)
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.store.SetSearchTerm(m.searchInput.Value())
	return m, tea.Batch(cmd, fetchSnapshotCmd(m.store))
}

// handleDeleteDialogKey drives the confirmation gate. Cancelling has no
// side effect; the entity is removed only after the server confirms.
func (m Model) handleDeleteDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := m.deleteTarget
		m.deleteTarget = 0
		return m, deleteCmd(m.ctx, m.coord, id)
	case "n", "esc":
		m.coord.CancelDelete(m.deleteTarget)
		m.deleteTarget = 0
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// handleImagePromptKey drives the in-place image swap prompt.
func (m Model) handleImagePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		id := m.imageTarget
		path := strings.TrimSpace(m.imageInput.Value())
		m.imageTarget = 0
		m.imageInput.Blur()
		if path == "" {
			return m, nil
		}
		file, err := readImageFile(path)
		if err != nil {
			m.setNotice(err.Error(), true)
			return m, nil
		}
		return m, swapCmd(m.ctx, m.coord, id, *file)
	case "esc":
		m.imageTarget = 0
		m.imageInput.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.imageInput, cmd = m.imageInput.Update(msg)
	return m, cmd
}

func (m Model) handleSaveResult(res mutate.SaveResult) (tea.Model, tea.Cmd) {
	if res.Stale {
		return m, nil
	}
	m.form.saving = false
	if res.Err != nil {
		// Form input is retained; only the error line changes.
		m.form.errMsg = m.coord.Status(res.ID).Message
		m.coord.ClearError(res.ID)
		return m, nil
	}

	m.currentView = ViewCatalog
	if res.ID == 0 {
		m.setNotice("Product created.", false)
	} else {
		m.setNotice("Product saved.", false)
	}

	cmds := []tea.Cmd{fetchSnapshotCmd(m.store)}
	if res.Vanished {
		// Local entry disappeared while editing; resync with the server.
		cmds = append(cmds, refreshCmd(m.ctx, m.store, m.client))
	}
	return m, tea.Batch(cmds...)
}

// selectedProduct returns the product under the cursor in the filtered view.
func (m Model) selectedProduct() (catalog.Product, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.snapshot.Filtered) {
		return catalog.Product{}, false
	}
	return m.snapshot.Filtered[m.selectedRow], true
}

func (m *Model) clampSelection() {
	if n := len(m.snapshot.Filtered); m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type categoriesMsg struct {
	items []catalog.Category
	err   error
}

type saveResultMsg mutate.SaveResult

type swapResultMsg mutate.SwapResult

type deleteResultMsg mutate.DeleteResult

type refreshedMsg struct{}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(uiTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func categoriesCmd(ctx context.Context, client catalog.Resource) tea.Cmd {
	return func() tea.Msg {
		items, err := client.Categories(ctx)
		return categoriesMsg{items: items, err: err}
	}
}

func refreshCmd(ctx context.Context, store *state.Store, client catalog.Resource) tea.Cmd {
	return func() tea.Msg {
		gen := store.BeginLoad()
		products, err := client.List(ctx)
		store.ApplyLoad(gen, products, err)
		return refreshedMsg{}
	}
}

func saveCmd(ctx context.Context, coord *mutate.Coordinator, draft mutate.Draft) tea.Cmd {
	return func() tea.Msg {
		return saveResultMsg(coord.Save(ctx, draft))
	}
}

func swapCmd(ctx context.Context, coord *mutate.Coordinator, id int, file catalog.FileUpload) tea.Cmd {
	return func() tea.Msg {
		return swapResultMsg(coord.SwapImage(ctx, id, file))
	}
}

func deleteCmd(ctx context.Context, coord *mutate.Coordinator, id int) tea.Cmd {
	return func() tea.Msg {
		return deleteResultMsg(coord.ConfirmDelete(ctx, id))
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
