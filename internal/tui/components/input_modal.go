package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/tui/styles"
)

// Field order in the product modal
var productFields = []struct {
	name        string
	label       string
	placeholder string
}{
	{"name", "Name", "product name"},
	{"price", "Price", "0.00"},
	{"vendor", "Vendor", "vendor"},
	{"sku", "SKU", "SKU-0000"},
}

// ProductModal is the add/edit product form
type ProductModal struct {
	visible   bool
	title     string
	editingID string // Empty when creating
	inputs    []textinput.Model
	focus     int
	errors    map[string]string
}

// NewProductModal creates a hidden product modal
func NewProductModal() ProductModal {
	inputs := make([]textinput.Model, len(productFields))
	for i, f := range productFields {
		ti := textinput.New()
		ti.Placeholder = f.placeholder
		ti.CharLimit = 80
		ti.Width = 32
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		inputs[i] = ti
	}
	return ProductModal{inputs: inputs}
}

// Show displays the modal pre-filled with form. id is empty for a new product.
func (m *ProductModal) Show(title, id string, form domain.ProductForm) tea.Cmd {
	m.visible = true
	m.title = title
	m.editingID = id
	m.errors = nil

	values := []string{form.Name, form.Price, form.Vendor, form.SKU}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].CursorEnd()
	}
	return m.setFocus(0)
}

// Hide dismisses the modal
func (m *ProductModal) Hide() {
	m.visible = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// IsVisible returns whether the modal is shown
func (m ProductModal) IsVisible() bool {
	return m.visible
}

// EditingID returns the id of the product being edited, or ""
func (m ProductModal) EditingID() string {
	return m.editingID
}

// Value returns the current input as a form
func (m ProductModal) Value() domain.ProductForm {
	return domain.ProductForm{
		Name:   m.inputs[0].Value(),
		Price:  m.inputs[1].Value(),
		Vendor: m.inputs[2].Value(),
		SKU:    m.inputs[3].Value(),
	}
}

// SetErrors shows per-field validation messages
func (m *ProductModal) SetErrors(verr *domain.ValidationError) {
	m.errors = nil
	if verr != nil {
		m.errors = verr.Fields
	}
}

func (m *ProductModal) setFocus(i int) tea.Cmd {
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	return m.inputs[m.focus].Focus()
}

// Update handles input events, returns (modal, cmd, submitted)
func (m ProductModal) Update(msg tea.Msg) (ProductModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, formKeys.Submit):
			return m, nil, true
		case key.Matches(keyMsg, formKeys.Cancel):
			m.Hide()
			return m, nil, false
		case key.Matches(keyMsg, formKeys.Next):
			return m, m.setFocus(m.focus + 1), false
		case key.Matches(keyMsg, formKeys.Prev):
			return m, m.setFocus(m.focus - 1), false
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

// View renders the product modal
func (m ProductModal) View() string {
	if !m.visible {
		return ""
	}

	lines := []string{styles.ModalTitleStyle.Render(m.title)}
	for i, f := range productFields {
		label := styles.FieldLabelStyle.Render(f.label)
		if i == m.focus {
			label = styles.FocusedLabelStyle.Render(f.label)
		}
		lines = append(lines, label+m.inputs[i].View())
		if msg := m.errors[f.name]; msg != "" {
			lines = append(lines, styles.FieldErrorStyle.Render(msg))
		}
	}
	lines = append(lines, "", styles.DimStyle.Render("enter: save · esc: cancel · tab: next field"))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
