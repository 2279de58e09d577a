package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crobledo/vitrina/internal/catalog"
	"github.com/crobledo/vitrina/internal/mutate"
)

// Form field indexes.
const (
	fieldName = iota
	fieldPrice
	fieldStock
	fieldCategory
	fieldDescription
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name",
	"Price",
	"Stock",
	"Category",
	"Description",
	"Image file",
}

// formState holds the create/edit form. The inputs own the user's text;
// a failed save never clears them.
type formState struct {
	id         int
	image      catalog.ImageRef
	inputs     [fieldCount]textinput.Model
	focus      int
	errMsg     string
	saving     bool
	categories []catalog.Category
}

// newFormState builds a form prefilled from a product. The zero product
// yields an empty create form.
func newFormState(p catalog.Product, categories []catalog.Category) formState {
	f := formState{
		id:         p.ID,
		image:      catalog.RemoteImage(p.ImageURL),
		categories: categories,
	}
	for i := range f.inputs {
		in := textinput.New()
		in.CharLimit = 255
		f.inputs[i] = in
	}
	f.inputs[fieldName].SetValue(p.Name)
	f.inputs[fieldCategory].SetValue(p.Category)
	f.inputs[fieldDescription].SetValue(p.Description)
	if p.ID != 0 {
		f.inputs[fieldPrice].SetValue(strconv.FormatFloat(p.Price, 'f', -1, 64))
		f.inputs[fieldStock].SetValue(strconv.Itoa(p.Stock))
	}
	f.inputs[fieldImage].Placeholder = "leave empty to keep current image"
	f.inputs[fieldName].Focus()
	return f
}

// handleFormKey processes keyboard input while the form is open.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		// Abandon the form; nothing was sent, nothing to roll back.
		m.currentView = ViewCatalog
		return m, nil

	case "tab":
		m.form.focusField((m.form.focus + 1) % fieldCount)
		return m, textinput.Blink

	case "shift+tab":
		m.form.focusField((m.form.focus + fieldCount - 1) % fieldCount)
		return m, textinput.Blink

	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

// submitForm validates the draft and hands it to the coordinator.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.form.saving {
		// A submission is in flight; overlapping submits are resolved by
		// sequence tokens, but double-enter is almost always accidental.
		return m, nil
	}

	fields, err := mutate.ParseFields(
		m.form.inputs[fieldName].Value(),
		m.form.inputs[fieldDescription].Value(),
		m.form.inputs[fieldPrice].Value(),
		m.form.inputs[fieldStock].Value(),
		m.form.inputs[fieldCategory].Value(),
	)
	if err != nil {
		m.form.errMsg = err.Error()
		return m, nil
	}

	draft := mutate.Draft{ID: m.form.id, Fields: fields}
	if path := strings.TrimSpace(m.form.inputs[fieldImage].Value()); path != "" {
		file, err := readImageFile(path)
		if err != nil {
			m.form.errMsg = err.Error()
			return m, nil
		}
		m.form.image = catalog.PendingImage(*file)
	}
	if file, ok := m.form.image.Pending(); ok {
		draft.Image = &file
	}

	m.form.errMsg = ""
	m.form.saving = true
	return m, saveCmd(m.ctx, m.coord, draft)
}

func (f *formState) focusField(idx int) {
	f.inputs[f.focus].Blur()
	f.focus = idx
	f.inputs[f.focus].Focus()
}

// renderForm renders the create/edit form.
func (m Model) renderForm() string {
	styles := m.theme.Styles()
	var b strings.Builder

	title := "New product"
	if m.form.id != 0 {
		title = fmt.Sprintf("Edit product #%d", m.form.id)
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n\n")

	for i := 0; i < fieldCount; i++ {
		label := fieldLabels[i]
		if i == m.form.focus {
			b.WriteString(styles.AccentText.Render("> " + label))
		} else {
			b.WriteString(styles.MutedText.Render("  " + label))
		}
		b.WriteString("\n  ")
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
	}

	if img := m.form.image.DisplayURL(); img != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("  image: " + truncate(img, 60)))
		b.WriteString("\n")
	}
	if len(m.form.categories) > 0 {
		names := make([]string, 0, len(m.form.categories))
		for _, c := range m.form.categories {
			names = append(names, c.Name)
		}
		b.WriteString(styles.FaintText.Render("  categories: " + truncate(strings.Join(names, ", "), 80)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.form.saving:
		b.WriteString(styles.WarningText.Render("  Saving..."))
	case m.form.errMsg != "":
		b.WriteString(styles.DangerText.Render("  " + m.form.errMsg))
	default:
		b.WriteString(styles.MutedText.Render("  enter save • tab next field • esc cancel"))
	}

	return styles.Box.Width(max(40, m.width-2)).Render(b.String())
}

// readImageFile loads a local file into an upload payload.
func readImageFile(path string) (*catalog.FileUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &catalog.FileUpload{
		Filename: filepath.Base(path),
		Data:     data,
	}, nil
}
