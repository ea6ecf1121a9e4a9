package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/tui/styles"
)

// View renders the current screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.Screen {
	case ScreenValidating:
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Spinner.View()+" Restoring session...")
	case ScreenLogin:
		return m.renderLogin()
	}

	switch m.Mode {
	case ModeHelp:
		return m.renderHelp()
	case ModeConfirmLogout:
		return m.renderLogoutConfirmation()
	case ModeForm:
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Modal.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.Table.View(),
		m.renderPager(),
		m.renderStatus(),
		m.renderFooter(),
	)
}

func (m Model) renderLogin() string {
	view := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("kiosk"),
		styles.SubtitleStyle.Render("product catalog admin"),
		"",
		m.LoginForm.View(),
	)
	if line := m.renderNotification(); line != "" {
		view = lipgloss.JoinVertical(lipgloss.Center, view, "", line)
	}
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, view)
}

// renderHeader shows the user plus the active search or sort
func (m Model) renderHeader() string {
	left := styles.TitleStyle.Render("kiosk")
	if m.User != "" {
		left += styles.DimStyle.Render(" · " + m.User)
	}

	q := m.catalog.Query()
	var center string
	switch {
	case m.Mode == ModeSearch:
		center = m.SearchInput.View()
	case q.Search != "":
		center = styles.DimStyle.Render("search: ") + styles.AccentStyle.Render(q.Search)
	case q.Sorted():
		center = styles.DimStyle.Render("sort: ") + styles.AccentStyle.Render(sortLabel(q.Sort))
	}

	var right string
	if m.State.Busy {
		right = m.Spinner.View() + styles.DimStyle.Render(" loading")
	}

	return spread(m.Width, left, center, right)
}

func (m Model) renderPager() string {
	q := m.catalog.Query()
	pages := max(q.PageCount(m.State.Total), 1)
	return styles.DimStyle.Render(fmt.Sprintf("page %d/%d · %d products", q.Page, pages, m.State.Total))
}

// renderStatus shows the catalog error, falling back to the notification slot
func (m Model) renderStatus() string {
	if m.State.Error != "" {
		return styles.ErrorStyle.Render(m.State.Error) + styles.DimStyle.Render("  (r: retry)")
	}
	return m.renderNotification()
}

func (m Model) renderNotification() string {
	n := m.Notification
	if !n.Visible {
		return ""
	}
	switch n.Kind {
	case domain.NotifySuccess:
		return styles.SuccessStyle.Render(n.Text)
	case domain.NotifyError:
		return styles.ErrorStyle.Render(n.Text)
	default:
		return styles.InfoStyle.Render(n.Text)
	}
}

func (m Model) renderFooter() string {
	left := styles.DimStyle.Render(fmt.Sprintf("%d rows", len(m.Table.Items())))
	center := hint("/", "search") + "  " + hint("s", "sort") + "  " + hint("a", "add") + "  " + hint("e", "edit")
	right := hint("?", "help")
	return spread(m.Width, left, center, right)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, binding := range HelpBindings() {
		h := binding.Help()
		b.WriteString(styles.HelpKeyStyle.Render(fmt.Sprintf("%-8s", h.Key)))
		b.WriteString(styles.HelpDescStyle.Render(h.Desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("j/k move · g/G first/last · esc close"))

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(b.String()))
}

// renderLogoutConfirmation renders the logout confirmation modal
func (m Model) renderLogoutConfirmation() string {
	modal := `
         Log Out?

  Stored tokens will be removed
  from this machine.

     [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}

func hint(k, desc string) string {
	return styles.AccentStyle.Render(k) + styles.DimStyle.Render(" "+desc)
}

func sortLabel(s domain.Sort) string {
	arrow := "↑"
	if s.Direction == domain.SortDesc {
		arrow = "↓"
	}
	return string(s.Field) + " " + arrow
}

// spread lays out left, center and right across width, dropping center if it does not fit
func spread(width int, left, center, right string) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	if lw+cw+rw >= width {
		gap := max(width-lw-rw, 1)
		return left + strings.Repeat(" ", gap) + right
	}

	available := width - lw - rw
	leftPad := (available - cw) / 2
	rightPad := available - cw - leftPad
	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}
