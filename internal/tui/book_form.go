package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shelfmate/shelfmate/internal/catalog"
	"github.com/shelfmate/shelfmate/internal/form"
	"github.com/shelfmate/shelfmate/internal/shelf"
)

// BookFormDeps are the async collaborators of the book dialog. Load is
// nil for the add dialog; edit and lend prefetch the current values.
type BookFormDeps struct {
	Load   func(ctx context.Context) (shelf.ShelvedBook, error)
	Search func(ctx context.Context, query string) ([]catalog.Result, error)
	Submit func(ctx context.Context, book shelf.ShelvedBook) error
}

// BookFormResult reports how the dialog ended.
type BookFormResult struct {
	Saved          bool
	SessionExpired bool
}

type formLoadedMsg struct{ book shelf.ShelvedBook }
type formLoadErrMsg struct{ err error }
type searchDoneMsg struct{ results []catalog.Result }
type searchErrMsg struct{ err error }
type submitDoneMsg struct{}
type submitErrMsg struct{ err error }

// Focus zones, cycled with tab. Hidden or disabled zones are skipped.
const (
	zoneSearch = iota
	zoneResults
	zoneStatus
	zoneOtherName
	zoneDate
	zoneSubmit
	zoneCount
)

// BookForm is the add/edit/lend dialog model. All field semantics live
// in the controller and picker; this model only renders and routes.
type BookForm struct {
	ctrl   *form.Controller
	picker *catalog.Picker
	deps   BookFormDeps

	searchInput textinput.Model
	otherInput  textinput.Model
	dateInput   textinput.Model

	focus     int
	resultRow int
	statusIdx int

	quitting bool
	result   BookFormResult
	width    int
	height   int
}

// NewBookForm wires a dialog around the given controller.
func NewBookForm(ctrl *form.Controller, deps BookFormDeps) BookForm {
	const fieldWidth = 42

	search := textinput.New()
	search.Placeholder = "Search the catalog"
	search.CharLimit = 200
	search.Width = fieldWidth
	search.Prompt = "│ "

	other := textinput.New()
	other.CharLimit = 100
	other.Width = fieldWidth
	other.Prompt = "│ "

	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10
	date.Width = 12
	date.Prompt = "│ "

	m := BookForm{
		ctrl:        ctrl,
		picker:      catalog.NewPicker(),
		deps:        deps,
		searchInput: search,
		otherInput:  other,
		dateInput:   date,
	}
	m.picker.SetDisabled(ctrl.BookDisabled())
	if ctrl.Phase() == form.PhaseReady && !ctrl.BookDisabled() {
		m.searchInput.Focus()
	}
	m.syncStatusIndex()
	return m
}

// Result reports the dialog outcome after the program finishes.
func (m BookForm) Result() BookFormResult { return m.result }

func (m BookForm) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.deps.Load != nil && m.ctrl.Phase() == form.PhaseLoading {
		load := m.deps.Load
		cmds = append(cmds, func() tea.Msg {
			book, err := load(context.Background())
			if err != nil {
				return formLoadErrMsg{err}
			}
			return formLoadedMsg{book}
		})
	}
	return tea.Batch(cmds...)
}

func (m BookForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case formLoadedMsg:
		m.ctrl.Populate(msg.book)
		if b := m.ctrl.Book(); b != nil {
			m.picker.Preselect(*b)
		}
		m.otherInput.SetValue(m.ctrl.OtherName())
		m.dateInput.SetValue(m.ctrl.Date())
		m.syncStatusIndex()
		if !m.zoneVisible(m.focus) {
			m.focus = m.nextZone(m.focus, 1)
		}
		return m, m.focusZone(m.focus)

	case formLoadErrMsg:
		m.ctrl.FailLoad()
		return m, nil

	case searchDoneMsg:
		m.picker.SetResults(msg.results)
		m.resultRow = 0
		if m.picker.State() == catalog.PickerOpen {
			m.searchInput.Blur()
			m.focus = zoneResults
		}
		return m, nil

	case searchErrMsg:
		m.picker.Fail(msg.err.Error())
		return m, nil

	case submitDoneMsg:
		m.ctrl.Succeed()
		m.result = BookFormResult{Saved: true}
		m.quitting = true
		return m, tea.Quit

	case submitErrMsg:
		m.ctrl.HandleSubmitError(msg.err)
		if m.ctrl.SessionExpired() {
			m.result = BookFormResult{SessionExpired: true}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m BookForm) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While a save is pending every control is frozen; only cancel works.
	if m.ctrl.Phase() == form.PhaseSubmitting {
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab":
		m.blurZone(m.focus)
		if msg.String() == "tab" {
			m.focus = m.nextZone(m.focus, 1)
		} else {
			m.focus = m.nextZone(m.focus, -1)
		}
		return m, m.focusZone(m.focus)

	case "enter":
		return m.activate()

	case "up", "down":
		switch m.focus {
		case zoneResults:
			rows := m.picker.Rows()
			if msg.String() == "up" && m.resultRow > 0 {
				m.resultRow--
			}
			if msg.String() == "down" && m.resultRow < len(rows)-1 {
				m.resultRow++
			}
			return m, nil
		case zoneStatus:
			return m.cycleStatus(msg.String() == "down"), nil
		}

	case "left", "right":
		if m.focus == zoneStatus {
			return m.cycleStatus(msg.String() == "right"), nil
		}
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

// activate runs the enter action for the focused zone.
func (m BookForm) activate() (tea.Model, tea.Cmd) {
	switch m.focus {
	case zoneSearch:
		query := strings.TrimSpace(m.searchInput.Value())
		m.picker.SetQuery(query)
		if !m.picker.BeginSearch() {
			return m, nil
		}
		search := m.deps.Search
		return m, func() tea.Msg {
			results, err := search(context.Background(), query)
			if err != nil {
				return searchErrMsg{err}
			}
			return searchDoneMsg{results}
		}

	case zoneResults:
		rows := m.picker.Rows()
		if m.resultRow >= len(rows) {
			return m, nil
		}
		if chosen := m.picker.Choose(rows[m.resultRow].Key); chosen != nil {
			m.ctrl.SelectBook(*chosen)
			m.ctrl.Blur(form.FieldBook)
			m.blurZone(zoneResults)
			m.focus = m.nextZone(zoneResults, 1)
			return m, m.focusZone(m.focus)
		}
		return m, nil

	case zoneSubmit:
		m.flushInputs()
		if !m.ctrl.BeginSubmit() {
			return m, nil
		}
		book := m.ctrl.Payload()
		submit := m.deps.Submit
		return m, func() tea.Msg {
			if err := submit(context.Background(), book); err != nil {
				return submitErrMsg{err}
			}
			return submitDoneMsg{}
		}
	}

	// Enter on a text field moves on, like tab.
	m.blurZone(m.focus)
	m.focus = m.nextZone(m.focus, 1)
	return m, m.focusZone(m.focus)
}

func (m BookForm) cycleStatus(forward bool) BookForm {
	opts := m.ctrl.StatusOptions()
	if len(opts) < 2 {
		return m
	}
	if forward {
		m.statusIdx = (m.statusIdx + 1) % len(opts)
	} else {
		m.statusIdx = (m.statusIdx - 1 + len(opts)) % len(opts)
	}
	m.ctrl.SetStatus(opts[m.statusIdx])
	return m
}

func (m *BookForm) syncStatusIndex() {
	for i, s := range m.ctrl.StatusOptions() {
		if s == m.ctrl.Status() {
			m.statusIdx = i
			return
		}
	}
	m.statusIdx = 0
}

// zoneVisible reports whether a focus zone is reachable right now.
func (m BookForm) zoneVisible(zone int) bool {
	switch zone {
	case zoneSearch:
		return !m.ctrl.BookDisabled()
	case zoneResults:
		s := m.picker.State()
		return s == catalog.PickerOpen || s == catalog.PickerChosen
	case zoneStatus:
		return !m.ctrl.StatusDisabled()
	case zoneOtherName, zoneDate:
		return m.ctrl.ShowOtherFields()
	}
	return true
}

func (m BookForm) nextZone(from, dir int) int {
	zone := from
	for i := 0; i < zoneCount; i++ {
		zone = (zone + dir + zoneCount) % zoneCount
		if m.zoneVisible(zone) {
			return zone
		}
	}
	return from
}

func (m *BookForm) focusZone(zone int) tea.Cmd {
	switch zone {
	case zoneSearch:
		return m.searchInput.Focus()
	case zoneOtherName:
		return m.otherInput.Focus()
	case zoneDate:
		return m.dateInput.Focus()
	}
	return nil
}

// blurZone leaves a zone, pushing text values into the controller so
// touched and dirty tracking stays accurate.
func (m *BookForm) blurZone(zone int) {
	switch zone {
	case zoneSearch:
		m.searchInput.Blur()
	case zoneOtherName:
		m.otherInput.Blur()
		m.ctrl.SetOtherName(m.otherInput.Value())
		m.ctrl.Blur(form.FieldOtherName)
	case zoneDate:
		m.dateInput.Blur()
		m.ctrl.SetDate(strings.TrimSpace(m.dateInput.Value()))
		m.ctrl.Blur(form.FieldDate)
	case zoneStatus:
		m.ctrl.Blur(form.FieldStatus)
	}
}

// flushInputs pushes every text value into the controller before
// validation.
func (m *BookForm) flushInputs() {
	if m.ctrl.ShowOtherFields() {
		m.ctrl.SetOtherName(m.otherInput.Value())
		m.ctrl.SetDate(strings.TrimSpace(m.dateInput.Value()))
	}
}

func (m *BookForm) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case zoneSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case zoneOtherName:
		m.otherInput, cmd = m.otherInput.Update(msg)
	case zoneDate:
		m.dateInput, cmd = m.dateInput.Update(msg)
	}
	return cmd
}

func (m BookForm) title() string {
	switch {
	case m.ctrl.Mode() == form.ModeLend:
		return "Lend Book"
	case m.ctrl.Mode() == form.ModeEdit:
		return "Edit Book"
	case m.ctrl.Wishlist():
		return "Add to Wishlist"
	}
	return "Add Book"
}

func (m BookForm) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := lipgloss.NewStyle().Padding(2, 4)
	sepStyle := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#444444"})

	const w = 54
	sep := sepStyle.Render(strings.Repeat("─", w))

	var b strings.Builder
	b.WriteString(StyleHeader.Render(m.title()))
	b.WriteString("\n\n")

	switch m.ctrl.Phase() {
	case form.PhaseLoading:
		b.WriteString(StyleHelp.Render("Loading..."))
		b.WriteString("\n")
	case form.PhaseFailed:
		b.WriteString(StyleError.Render("Could not load the book. Close and try again."))
		b.WriteString("\n")
	default:
		b.WriteString(sep)
		b.WriteString("\n\n")
		if m.ctrl.Banner() != "" {
			b.WriteString(StyleError.Render(m.ctrl.Banner()))
			b.WriteString("\n\n")
		}
		m.renderBookField(&b)
		m.renderStatusField(&b)
		if m.ctrl.ShowOtherFields() {
			m.renderTextField(&b, zoneOtherName, m.ctrl.OtherNameLabel(), m.otherInput.View(), form.FieldOtherName)
			m.renderTextField(&b, zoneDate, m.ctrl.DateLabel(), m.dateInput.View(), form.FieldDate)
		}
		b.WriteString(sep)
		b.WriteString("\n")
		m.renderSubmit(&b)
	}

	b.WriteString("\n")
	b.WriteString(RenderFooterBar([]ShortcutEntry{
		{Key: "", Label: "tab navigate"},
		{Key: "", Label: "enter select/submit"},
		{Key: "", Label: "esc cancel"},
	}, ""))
	b.WriteString("\n")

	innerPadding := lipgloss.NewStyle().Padding(0, 2, 0, 1)
	return outerStyle.Render(StyleBorder.Render(innerPadding.Render(b.String())))
}

func (m BookForm) renderBookField(b *strings.Builder) {
	label := "Book"
	if m.focus == zoneSearch {
		b.WriteString(StyleHighlight.Render("› " + label))
	} else {
		b.WriteString(StyleHelp.Render("  " + label))
	}
	b.WriteString("\n")

	if m.ctrl.BookDisabled() {
		if book := m.ctrl.Book(); book != nil {
			b.WriteString("  " + StyleNormal.Render(book.Title))
			if len(book.AuthorNames) > 0 {
				b.WriteString("  " + StyleAuthor.Render(strings.Join(book.AuthorNames, ", ")))
			}
			b.WriteString("\n\n")
		}
		return
	}

	b.WriteString(m.searchInput.View())
	b.WriteString("\n")
	if msg := m.picker.Err(); msg != "" {
		b.WriteString(StyleError.Render("  " + msg))
		b.WriteString("\n")
	}
	if fieldErr := m.ctrl.VisibleFieldError(form.FieldBook); fieldErr != "" {
		b.WriteString(StyleError.Render("  " + fieldErr))
		b.WriteString("\n")
	}

	for i, row := range m.picker.Rows() {
		line := row.Title
		if len(row.AuthorNames) > 0 {
			line += "  " + strings.Join(row.AuthorNames, ", ")
		}
		if m.focus == zoneResults && i == m.resultRow {
			b.WriteString(StyleHighlight.Render("  › " + line))
		} else if chosen := m.picker.Chosen(); chosen != nil && chosen.Key == row.Key && row.Key != "" {
			b.WriteString(StyleOwned.Render("  ✓ " + line))
		} else {
			b.WriteString("    " + StyleNormal.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m BookForm) renderStatusField(b *strings.Builder) {
	label := "Status"
	if m.focus == zoneStatus {
		b.WriteString(StyleHighlight.Render("› " + label))
	} else {
		b.WriteString(StyleHelp.Render("  " + label))
	}
	b.WriteString("\n")

	if m.ctrl.StatusDisabled() {
		b.WriteString("  " + StyleNormal.Render(string(m.ctrl.Status())))
		b.WriteString("\n\n")
		return
	}

	parts := make([]string, 0, 4)
	for _, s := range m.ctrl.StatusOptions() {
		if s == m.ctrl.Status() {
			parts = append(parts, StyleHighlight.Render("["+string(s)+"]"))
		} else {
			parts = append(parts, StyleHelp.Render(string(s)))
		}
	}
	b.WriteString("  " + strings.Join(parts, " "))
	b.WriteString("\n")
	if fieldErr := m.ctrl.VisibleFieldError(form.FieldStatus); fieldErr != "" {
		b.WriteString(StyleError.Render("  " + fieldErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m BookForm) renderTextField(b *strings.Builder, zone int, label, view, field string) {
	if m.focus == zone {
		b.WriteString(StyleHighlight.Render("› " + label))
	} else {
		b.WriteString(StyleHelp.Render("  " + label))
	}
	b.WriteString("\n")
	b.WriteString(view)
	b.WriteString("\n")
	if fieldErr := m.ctrl.VisibleFieldError(field); fieldErr != "" {
		b.WriteString(StyleError.Render("  " + fieldErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m BookForm) renderSubmit(b *strings.Builder) {
	label := "Save"
	switch {
	case m.ctrl.Phase() == form.PhaseSubmitting:
		b.WriteString(StyleHelp.Render("  Saving..."))
	case m.focus == zoneSubmit && m.ctrl.CanSubmit():
		b.WriteString(StyleHighlight.Render("› [ " + label + " ]"))
	case m.ctrl.CanSubmit():
		b.WriteString(StyleNormal.Render("  [ " + label + " ]"))
	default:
		b.WriteString(StyleHelp.Render("  [ " + label + " ]"))
	}
	b.WriteString("\n")
}

// RunBookForm launches the dialog and reports how it ended.
func RunBookForm(ctrl *form.Controller, deps BookFormDeps) (*BookFormResult, error) {
	m := NewBookForm(ctrl, deps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running form: %w", err)
	}
	fm, ok := finalModel.(BookForm)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	result := fm.Result()
	return &result, nil
}
