package tui

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/kiosk/internal/debounce"
	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/service"
	"github.com/mmcdole/kiosk/internal/tui/components"
	"github.com/mmcdole/kiosk/internal/tui/styles"
)

// Screen is the top-level view
type Screen int

const (
	ScreenValidating Screen = iota
	ScreenLogin
	ScreenCatalog
)

// Mode is the interaction mode on the catalog screen
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeForm
	ModeHelp
	ModeConfirmLogout
)

// ChromeHeight is the number of lines around the table (header, pager, status, footer)
const ChromeHeight = 5

// Deps are the controllers the UI drives
type Deps struct {
	Session   *service.SessionController
	Catalog   *service.CatalogController
	Editor    *service.ProductEditor
	Notifier  *service.Notifier
	Debouncer *debounce.Debouncer
	Logger    *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Screen Screen
	Mode   Mode
	Ready  bool

	// Controllers
	session   *service.SessionController
	catalog   *service.CatalogController
	editor    *service.ProductEditor
	notifier  *service.Notifier
	debouncer *debounce.Debouncer
	events    *ChannelObserver
	logger    *slog.Logger

	// UI components
	LoginForm   components.LoginForm
	Table       components.ProductTable
	Modal       components.ProductModal
	SearchInput textinput.Model
	Spinner     spinner.Model

	// Snapshots of controller state
	User         string
	State        service.CatalogState
	Notification domain.Notification

	// Dimensions
	Width  int
	Height int
}

// NewModel creates the application model and subscribes it to notifier changes
func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debouncer := deps.Debouncer
	if debouncer == nil {
		debouncer = debounce.New(debounce.DefaultDelay, nil)
	}

	events := NewChannelObserver(32)
	if deps.Notifier != nil {
		deps.Notifier.OnChange(func(n domain.Notification) {
			events.Send(NotificationMsg{Notification: n})
		})
	}

	si := textinput.New()
	si.Prompt = "search: "
	si.Placeholder = "type to search the catalog"
	si.CharLimit = 100
	si.PromptStyle = styles.AccentStyle
	si.PlaceholderStyle = styles.DimStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	return Model{
		Screen:      ScreenValidating,
		session:     deps.Session,
		catalog:     deps.Catalog,
		editor:      deps.Editor,
		notifier:    deps.Notifier,
		debouncer:   debouncer,
		events:      events,
		logger:      logger,
		LoginForm:   components.NewLoginForm(),
		Table:       components.NewProductTable(),
		Modal:       components.NewProductModal(),
		SearchInput: si,
		Spinner:     sp,
	}
}

// Init validates any stored session
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ValidateSessionCmd(m.session),
		m.events.Listen(),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Table.SetSize(msg.Width, msg.Height-ChromeHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case NotificationMsg:
		m.Notification = msg.Notification
		return m, m.events.Listen()

	case SearchSettledMsg:
		cmd := m.applySearch(msg.Text)
		return m, tea.Batch(cmd, m.events.Listen())

	case SessionValidatedMsg:
		if msg.Session.IsAuthenticated() {
			return m.enterCatalog(msg.Session)
		}
		m.Screen = ScreenLogin
		return m, nil

	case LoginResultMsg:
		return m.handleLoginResult(msg)

	case LogoutMsg:
		if msg.Err != nil {
			m.logger.Error("logout failed", "error", msg.Err)
		}
		m.debouncer.Cancel()
		m.Screen = ScreenLogin
		m.Mode = ModeBrowse
		m.User = ""
		m.LoginForm.Reset()
		m.SearchInput.SetValue("")
		m.catalog.Reset()
		m.Table.ClearFilter()
		m.syncCatalog()
		m.notify("logged out", domain.NotifyInfo)
		return m, nil

	case CatalogLoadedMsg:
		m.syncCatalog()
		return m, nil
	}

	return m, nil
}

func (m Model) enterCatalog(s domain.Session) (tea.Model, tea.Cmd) {
	m.Screen = ScreenCatalog
	m.Mode = ModeBrowse
	m.User = s.Login
	m.syncCatalog()
	return m, RefetchCmd(m.catalog)
}

func (m Model) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	m.LoginForm.SetBusy(false)
	if msg.Err == nil {
		return m.enterCatalog(m.session.Session())
	}

	var verr *domain.ValidationError
	if errors.As(msg.Err, &verr) {
		m.LoginForm.SetError("", verr)
		return m, nil
	}
	m.LoginForm.SetError(m.session.Session().Error, nil)
	return m, nil
}

// syncCatalog copies controller state into the view
func (m *Model) syncCatalog() {
	m.State = m.catalog.State()
	m.Table.SetItems(m.State.Items)
}

// refetch marks the view busy and reloads the current page
func (m *Model) refetch() tea.Cmd {
	m.State = m.catalog.State()
	m.State.Busy = true
	return RefetchCmd(m.catalog)
}

// applySearch commits search text to the catalog if it changed
func (m *Model) applySearch(text string) tea.Cmd {
	if m.Screen != ScreenCatalog || text == m.catalog.Query().Search {
		return nil
	}
	m.catalog.SetSearch(text)
	m.Table.ClearFilter()
	return m.refetch()
}

func (m *Model) notify(text string, kind domain.NotificationKind) {
	if m.notifier != nil {
		m.notifier.Show(text, kind)
	}
}

// handleKeyMsg routes keys to the active screen or mode
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.Screen {
	case ScreenValidating:
		if key.Matches(msg, Keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	case ScreenLogin:
		return m.handleLoginKeys(msg)
	}

	switch m.Mode {
	case ModeHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.Mode = ModeBrowse
		}
		return m, nil

	case ModeConfirmLogout:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.Mode = ModeBrowse
			return m, LogoutCmd(m.session)
		case key.Matches(msg, Keys.Deny):
			m.Mode = ModeBrowse
		}
		return m, nil

	case ModeForm:
		return m.handleFormKeys(msg)

	case ModeSearch:
		return m.handleSearchKeys(msg)
	}

	if m.Table.IsFiltering() {
		var cmd tea.Cmd
		m.Table, cmd = m.Table.Update(msg)
		return m, cmd
	}

	return m.handleBrowseKeys(msg)
}

func (m Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		return m, tea.Quit
	}

	var (
		cmd       tea.Cmd
		submitted bool
	)
	m.LoginForm, cmd, submitted = m.LoginForm.Update(msg)
	if !submitted {
		return m, cmd
	}

	login, password, remember := m.LoginForm.Values()
	if err := service.ValidateLogin(login, password); err != nil {
		var verr *domain.ValidationError
		errors.As(err, &verr)
		m.LoginForm.SetError("", verr)
		return m, nil
	}

	m.session.ClearError()
	m.LoginForm.SetError("", nil)
	m.LoginForm.SetBusy(true)
	return m, LoginCmd(m.session, login, password, remember)
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Commit immediately instead of waiting for the debounce
		m.debouncer.Cancel()
		m.Mode = ModeBrowse
		m.SearchInput.Blur()
		return m, m.applySearch(m.SearchInput.Value())
	case "esc":
		// Abandon uncommitted input
		m.debouncer.Cancel()
		m.Mode = ModeBrowse
		m.SearchInput.Blur()
		m.SearchInput.SetValue(m.catalog.Query().Search)
		return m, nil
	}

	before := m.SearchInput.Value()
	var cmd tea.Cmd
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	if text := m.SearchInput.Value(); text != before {
		events := m.events
		m.debouncer.Trigger(func() {
			events.Send(SearchSettledMsg{Text: text})
		})
	}
	return m, cmd
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		cmd       tea.Cmd
		submitted bool
	)
	m.Modal, cmd, submitted = m.Modal.Update(msg)
	if !m.Modal.IsVisible() {
		m.Mode = ModeBrowse
		return m, cmd
	}
	if !submitted {
		return m, cmd
	}

	var err error
	if id := m.Modal.EditingID(); id != "" {
		_, err = m.editor.Update(id, m.Modal.Value())
	} else {
		_, err = m.editor.Create(m.Modal.Value())
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		m.Modal.SetErrors(verr)
		return m, nil
	}

	// Not-found already produced a notification; close either way
	m.Modal.Hide()
	m.Mode = ModeBrowse
	m.syncCatalog()
	return m, nil
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.Mode = ModeHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		switch {
		case m.Table.HasFilter():
			m.Table.ClearFilter()
		case m.State.Error != "":
			m.catalog.ClearError()
			m.State.Error = ""
		case m.Notification.Visible && m.notifier != nil:
			m.notifier.Hide()
		}
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.Mode = ModeSearch
		m.SearchInput.SetValue(m.catalog.Query().Search)
		m.SearchInput.CursorEnd()
		return m, m.SearchInput.Focus()

	case key.Matches(msg, Keys.Filter):
		return m, m.Table.StartFilter()

	case key.Matches(msg, Keys.Sort):
		q := m.catalog.Query()
		dir := q.Sort.Direction
		m.catalog.SetSort(nextSortField(q.Sort.Field), dir)
		m.clearSearchInput()
		return m, m.refetch()

	case key.Matches(msg, Keys.Reverse):
		q := m.catalog.Query()
		field := q.Sort.Field
		if field == "" {
			field = domain.SortFields[0]
		}
		dir := domain.SortDesc
		if q.Sort.Direction == domain.SortDesc {
			dir = domain.SortAsc
		}
		m.catalog.SetSort(field, dir)
		m.clearSearchInput()
		return m, m.refetch()

	case key.Matches(msg, Keys.ClearSort):
		if !m.catalog.Query().Sorted() {
			return m, nil
		}
		m.catalog.ClearSort()
		return m, m.refetch()

	case key.Matches(msg, Keys.PrevPage):
		q := m.catalog.Query()
		if q.Page <= 1 {
			return m, nil
		}
		m.catalog.SetPage(q.Page - 1)
		return m, m.refetch()

	case key.Matches(msg, Keys.NextPage):
		q := m.catalog.Query()
		if q.Page >= q.PageCount(m.State.Total) {
			return m, nil
		}
		m.catalog.SetPage(q.Page + 1)
		return m, m.refetch()

	case key.Matches(msg, Keys.Refresh):
		return m, m.refetch()

	case key.Matches(msg, Keys.Add):
		m.Mode = ModeForm
		return m, m.Modal.Show("Add product", "", domain.ProductForm{})

	case key.Matches(msg, Keys.Edit):
		p, ok := m.Table.Selected()
		if !ok {
			return m, nil
		}
		m.Mode = ModeForm
		return m, m.Modal.Show("Edit product", p.ID, domain.FormFromProduct(p))

	case key.Matches(msg, Keys.Logout):
		m.Mode = ModeConfirmLogout
		return m, nil
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

// clearSearchInput drops pending search input after a sort replaced the search
func (m *Model) clearSearchInput() {
	m.debouncer.Cancel()
	m.SearchInput.SetValue("")
	m.Table.ClearFilter()
}

// nextSortField cycles through the sortable fields
func nextSortField(current domain.SortField) domain.SortField {
	for i, f := range domain.SortFields {
		if f == current {
			return domain.SortFields[(i+1)%len(domain.SortFields)]
		}
	}
	return domain.SortFields[0]
}
