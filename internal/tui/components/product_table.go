package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/ids"
	"github.com/mmcdole/kiosk/internal/tui/styles"
)

// Fixed column widths; Name takes the rest
const (
	priceWidth  = 10
	vendorWidth = 16
	skuWidth    = 12
	ratingWidth = 7
	minNameCol  = 16
)

var tableKeys = DefaultTableKeyMap()

// ProductTable shows the current catalog page with an optional local
// fuzzy filter over the loaded rows
type ProductTable struct {
	table table.Model
	items []domain.Product

	// Filter state; filtered is nil when no filter applies
	filterInput textinput.Model
	filtering   bool
	filterQuery string
	filtered    []int

	width  int
	height int
}

// NewProductTable creates an empty table
func NewProductTable() ProductTable {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle
	s.Cell = styles.TableCellStyle
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)

	fi := textinput.New()
	fi.Prompt = "filter: "
	fi.Placeholder = "name, sku or vendor"
	fi.CharLimit = 64
	fi.PromptStyle = styles.AccentStyle
	fi.PlaceholderStyle = styles.DimStyle

	return ProductTable{table: t, filterInput: fi}
}

func columns(width int) []table.Column {
	// Each cell carries one column of padding on both sides
	fixed := priceWidth + vendorWidth + skuWidth + ratingWidth + 5*2
	name := max(width-fixed, minNameCol)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Price", Width: priceWidth},
		{Title: "Vendor", Width: vendorWidth},
		{Title: "SKU", Width: skuWidth},
		{Title: "Rating", Width: ratingWidth},
	}
}

// SetSize sets the table dimensions
func (t *ProductTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.table.SetColumns(columns(width))
	t.table.SetWidth(width)
	t.table.SetHeight(max(height-1, 3)) // One line for the filter input
}

// SetItems replaces the rows, keeping an active filter applied
func (t *ProductTable) SetItems(items []domain.Product) {
	t.items = items
	t.applyFilter()
}

// Items returns the unfiltered rows
func (t ProductTable) Items() []domain.Product {
	return t.items
}

// Selected returns the product under the cursor
func (t ProductTable) Selected() (domain.Product, bool) {
	visible := t.visible()
	c := t.table.Cursor()
	if c < 0 || c >= len(visible) {
		return domain.Product{}, false
	}
	return visible[c], true
}

// StartFilter focuses the filter input
func (t *ProductTable) StartFilter() tea.Cmd {
	t.filtering = true
	t.filterInput.SetValue(t.filterQuery)
	return t.filterInput.Focus()
}

// IsFiltering reports whether the filter input has focus
func (t ProductTable) IsFiltering() bool {
	return t.filtering
}

// HasFilter reports whether rows are currently narrowed
func (t ProductTable) HasFilter() bool {
	return t.filterQuery != ""
}

// ClearFilter removes the filter and shows every row
func (t *ProductTable) ClearFilter() {
	t.filtering = false
	t.filterQuery = ""
	t.filterInput.SetValue("")
	t.filterInput.Blur()
	t.applyFilter()
}

// Update handles navigation and filter input
func (t ProductTable) Update(msg tea.KeyMsg) (ProductTable, tea.Cmd) {
	if t.filtering {
		switch {
		case key.Matches(msg, tableKeys.Escape):
			t.ClearFilter()
			return t, nil
		case key.Matches(msg, tableKeys.Enter):
			t.filtering = false
			t.filterInput.Blur()
			return t, nil
		}
		var cmd tea.Cmd
		t.filterInput, cmd = t.filterInput.Update(msg)
		if q := t.filterInput.Value(); q != t.filterQuery {
			t.filterQuery = q
			t.applyFilter()
		}
		return t, cmd
	}

	half := max(t.table.Height()/2, 1)
	switch {
	case key.Matches(msg, tableKeys.Up):
		t.table.MoveUp(1)
	case key.Matches(msg, tableKeys.Down):
		t.table.MoveDown(1)
	case key.Matches(msg, tableKeys.HalfUp):
		t.table.MoveUp(half)
	case key.Matches(msg, tableKeys.HalfDown):
		t.table.MoveDown(half)
	case key.Matches(msg, tableKeys.Home):
		t.table.GotoTop()
	case key.Matches(msg, tableKeys.End):
		t.table.GotoBottom()
	case key.Matches(msg, tableKeys.Escape):
		if t.HasFilter() {
			t.ClearFilter()
		}
	}
	return t, nil
}

// applyFilter recomputes filtered rows from filterQuery
func (t *ProductTable) applyFilter() {
	if t.filterQuery == "" {
		t.filtered = nil
	} else {
		haystack := make([]string, len(t.items))
		for i, p := range t.items {
			haystack[i] = strings.ToLower(p.Name + " " + p.SKU + " " + p.Vendor)
		}
		matches := fuzzy.Find(strings.ToLower(t.filterQuery), haystack)
		t.filtered = make([]int, len(matches))
		for i, match := range matches {
			t.filtered[i] = match.Index
		}
	}

	visible := t.visible()
	rows := make([]table.Row, len(visible))
	for i, p := range visible {
		rows[i] = productRow(p)
	}
	t.table.SetRows(rows)
	if t.table.Cursor() >= len(rows) {
		t.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (t ProductTable) visible() []domain.Product {
	if t.filtered == nil {
		return t.items
	}
	out := make([]domain.Product, len(t.filtered))
	for i, idx := range t.filtered {
		out[i] = t.items[idx]
	}
	return out
}

func productRow(p domain.Product) table.Row {
	name := p.Name
	if ids.IsLocal(p.ID) {
		name = "• " + name
	}
	return table.Row{
		name,
		strconv.FormatFloat(p.Price, 'f', 2, 64),
		p.Vendor,
		p.SKU,
		formatRating(p.Rating),
	}
}

func formatRating(r float64) string {
	if r <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", r)
}

// View renders the table with the filter line beneath it
func (t ProductTable) View() string {
	var footer string
	switch {
	case t.filtering:
		footer = t.filterInput.View()
	case t.filterQuery != "":
		footer = styles.DimStyle.Render(fmt.Sprintf("filter: %s (%d of %d)", t.filterQuery, len(t.visible()), len(t.items)))
	}

	if len(t.items) == 0 {
		empty := styles.DimStyle.Render("No products")
		return lipgloss.JoinVertical(lipgloss.Left, t.table.View(), empty)
	}
	return lipgloss.JoinVertical(lipgloss.Left, t.table.View(), footer)
}
