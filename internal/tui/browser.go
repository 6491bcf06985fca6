package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/shelf"
)

// ShelfFetcher loads one page of the listing for the composed query.
type ShelfFetcher func(ctx context.Context, query map[string][]string) (*api.ShelfPage, error)

// BrowserAction is an action requested from the browser for a row.
type BrowserAction string

const (
	ActionNone   BrowserAction = ""
	ActionAdd    BrowserAction = "add"
	ActionEdit   BrowserAction = "edit"
	ActionLend   BrowserAction = "lend"
	ActionReturn BrowserAction = "return"
	ActionDelete BrowserAction = "delete"
)

// BrowserResult holds the outcome of a browser session.
type BrowserResult struct {
	Action BrowserAction
	Book   *shelf.ShelvedBook
	// SessionExpired is set when the backend rejected the token. The
	// shell clears the session and routes to login.
	SessionExpired bool
}

// Messages produced by the async fetch. Responses carry no request
// correlation: whichever lands last overwrites the visible list.
// Listing fetches are idempotent re-reads, so the race is harmless.
type shelfLoadedMsg struct {
	page *api.ShelfPage
}

type shelfErrMsg struct {
	err error
}

type browserKeys struct {
	quit      key.Binding
	edit      key.Binding
	add       key.Binding
	lend      key.Binding
	ret       key.Binding
	del       key.Binding
	filter    key.Binding
	sortOwner key.Binding
	sortTitle key.Binding
	nextPage  key.Binding
	prevPage  key.Binding
}

var browserKeyMap = browserKeys{
	quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	edit:      key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
	add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	lend:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lend")),
	ret:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "return")),
	del:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	sortOwner: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort owner")),
	sortTitle: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sort title")),
	nextPage:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next page")),
	prevPage:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev page")),
}

const (
	filterFieldOwner = iota
	filterFieldTitle
	filterFieldAuthor
)

// Browser is the interactive shelf (or wishlist) table. It owns a
// query composer and refetches on every filter, sort or page change.
type Browser struct {
	fetch    ShelfFetcher
	composer *shelf.Composer
	wishlist bool

	books    []shelf.ShelvedBook
	lastPage int
	cursor   int

	loading bool
	errMsg  string

	filtering    bool
	filterInputs []textinput.Model
	filterFocus  int

	quitting  bool
	result    BrowserResult
	width     int
	height    int
	activeCmd string
}

// NewBrowser builds a browser over the given fetcher. The composer
// carries any pre-seeded filter or page size.
func NewBrowser(fetch ShelfFetcher, composer *shelf.Composer, wishlist bool) Browser {
	inputs := make([]textinput.Model, 3)
	for i, placeholder := range []string{"Owner", "Title", "Author"} {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholder
		inputs[i].CharLimit = 100
		inputs[i].Width = 30
		inputs[i].Prompt = "│ "
	}
	return Browser{
		fetch:        fetch,
		composer:     composer,
		wishlist:     wishlist,
		filterInputs: inputs,
		loading:      true,
	}
}

// Books returns the currently displayed rows.
func (m Browser) Books() []shelf.ShelvedBook { return m.books }

// Result returns the action the user picked, if any.
func (m Browser) Result() BrowserResult { return m.result }

func (m Browser) Init() tea.Cmd {
	return m.fetchCmd()
}

// fetchCmd snapshots the composed query and issues one fetch. In-flight
// fetches are never cancelled when a newer one starts.
func (m Browser) fetchCmd() tea.Cmd {
	fetch := m.fetch
	query := m.composer.Compose()
	return func() tea.Msg {
		page, err := fetch(context.Background(), query)
		if err != nil {
			return shelfErrMsg{err}
		}
		return shelfLoadedMsg{page}
	}
}

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case shelfLoadedMsg:
		m.loading = false
		m.errMsg = ""
		m.books = msg.page.Books
		m.lastPage = msg.page.LastPage
		if m.cursor >= len(m.books) {
			m.cursor = 0
		}
		return m, nil

	case shelfErrMsg:
		if errors.Is(msg.err, api.ErrSessionExpired) {
			m.result = BrowserResult{SessionExpired: true}
			m.quitting = true
			return m, tea.Quit
		}
		m.loading = false
		m.errMsg = msg.err.Error()
		return m, nil

	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFiltering(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m Browser) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, browserKeyMap.quit):
		m.quitting = true
		return m, tea.Quit

	case msg.String() == "up", msg.String() == "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case msg.String() == "down", msg.String() == "j":
		if m.cursor < len(m.books)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, browserKeyMap.add):
		m.result = BrowserResult{Action: ActionAdd}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, browserKeyMap.edit):
		if b := m.selected(); b != nil {
			m.result = BrowserResult{Action: ActionEdit, Book: b}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, browserKeyMap.lend):
		if b := m.selected(); b != nil && shelf.CanLend(*b) {
			m.result = BrowserResult{Action: ActionLend, Book: b}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, browserKeyMap.ret):
		if b := m.selected(); b != nil && (shelf.CanReturn(*b) || shelf.CanReturnToOwner(*b)) {
			m.result = BrowserResult{Action: ActionReturn, Book: b}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, browserKeyMap.del):
		if b := m.selected(); b != nil && (m.wishlist || shelf.CanDelete(*b)) {
			m.result = BrowserResult{Action: ActionDelete, Book: b}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, browserKeyMap.sortOwner):
		if m.wishlist {
			return m, nil
		}
		m.composer.ToggleSort(shelf.SortOwner)
		m.activeCmd = "o"
		m.loading = true
		return m, tea.Batch(m.fetchCmd(), HighlightCmd())

	case key.Matches(msg, browserKeyMap.sortTitle):
		m.composer.ToggleSort(shelf.SortTitle)
		m.activeCmd = "t"
		m.loading = true
		return m, tea.Batch(m.fetchCmd(), HighlightCmd())

	case key.Matches(msg, browserKeyMap.nextPage):
		if m.lastPage == 0 || m.composer.Page() < m.lastPage {
			m.composer.SetPage(m.composer.Page() + 1)
			m.loading = true
			return m, m.fetchCmd()
		}
		return m, nil

	case key.Matches(msg, browserKeyMap.prevPage):
		if m.composer.Page() > 1 {
			m.composer.SetPage(m.composer.Page() - 1)
			m.loading = true
			return m, m.fetchCmd()
		}
		return m, nil

	case key.Matches(msg, browserKeyMap.filter):
		m.filtering = true
		m.filterFocus = m.firstFilterField()
		f := m.composer.Filter()
		m.filterInputs[filterFieldOwner].SetValue(f.Owner)
		m.filterInputs[filterFieldTitle].SetValue(f.Title)
		m.filterInputs[filterFieldAuthor].SetValue(f.Author)
		cmd := m.filterInputs[m.filterFocus].Focus()
		return m, cmd

	// Status toggles refetch immediately. The filter is replaced
	// wholesale with the toggled set.
	case msg.String() == "1", msg.String() == "2", msg.String() == "3", msg.String() == "4":
		if m.wishlist {
			return m, nil
		}
		f := m.composer.Filter()
		switch msg.String() {
		case "1":
			f.Statuses.Owned = !f.Statuses.Owned
		case "2":
			f.Statuses.Lent = !f.Statuses.Lent
		case "3":
			f.Statuses.Borrowed = !f.Statuses.Borrowed
		case "4":
			f.Statuses.Library = !f.Statuses.Library
		}
		m.composer.SetFilter(f)
		m.composer.SetPage(1)
		m.loading = true
		return m, m.fetchCmd()
	}

	return m, nil
}

func (m Browser) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.filtering = false
		m.blurFilterInputs()
		return m, nil

	// Reset every criterion at once, status boxes included.
	case "ctrl+r":
		for i := range m.filterInputs {
			m.filterInputs[i].SetValue("")
		}
		m.composer.SetFilter(shelf.FilterCriteria{})
		m.composer.SetPage(1)
		m.filtering = false
		m.blurFilterInputs()
		m.loading = true
		return m, m.fetchCmd()

	case "enter":
		f := m.composer.Filter()
		if !m.wishlist {
			f.Owner = strings.TrimSpace(m.filterInputs[filterFieldOwner].Value())
		}
		f.Title = strings.TrimSpace(m.filterInputs[filterFieldTitle].Value())
		f.Author = strings.TrimSpace(m.filterInputs[filterFieldAuthor].Value())
		m.composer.SetFilter(f)
		m.composer.SetPage(1)
		m.filtering = false
		m.blurFilterInputs()
		m.loading = true
		return m, m.fetchCmd()

	case "tab", "down":
		return m.focusFilterInput(m.filterFocus + 1)

	case "shift+tab", "up":
		return m.focusFilterInput(m.filterFocus - 1)
	}

	var cmd tea.Cmd
	m.filterInputs[m.filterFocus], cmd = m.filterInputs[m.filterFocus].Update(msg)
	return m, cmd
}

// firstFilterField is the first filter input shown for this view. The
// wishlist has no owner criterion, so its form starts at the title.
func (m Browser) firstFilterField() int {
	if m.wishlist {
		return filterFieldTitle
	}
	return filterFieldOwner
}

func (m Browser) focusFilterInput(n int) (tea.Model, tea.Cmd) {
	lo := m.firstFilterField()
	if n < lo {
		n = len(m.filterInputs) - 1
	} else if n >= len(m.filterInputs) {
		n = lo
	}
	m.filterFocus = n
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == n {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return m, cmd
}

func (m *Browser) blurFilterInputs() {
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
}

func (m Browser) selected() *shelf.ShelvedBook {
	if m.cursor < 0 || m.cursor >= len(m.books) {
		return nil
	}
	b := m.books[m.cursor]
	return &b
}

func (m Browser) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "Bookshelf"
	if m.wishlist {
		title = "Wishlist"
	}
	b.WriteString(StyleHeader.Render(title))
	b.WriteString("\n")
	b.WriteString(StyleHelp.Render(m.statusLine()))
	b.WriteString("\n\n")

	if m.filtering {
		b.WriteString(m.filterView())
	} else {
		b.WriteString(m.tableView())
	}

	b.WriteString("\n")
	b.WriteString(RenderFooterBar(m.shortcuts(), m.activeCmd))

	outer := lipgloss.NewStyle().Padding(1, 2)
	return outer.Render(StyleBorder.Render(lipgloss.NewStyle().Padding(0, 2, 0, 1).Render(b.String())))
}

// tableView renders exactly one of loading, error or rows. Loading
// takes precedence over a stale error, and both over the empty hint.
func (m Browser) tableView() string {
	switch {
	case m.loading:
		return StyleHelp.Render("Loading...") + "\n"
	case m.errMsg != "":
		return StyleError.Render("Error: "+m.errMsg) + "\n"
	case len(m.books) == 0:
		return StyleHelp.Render("No books here yet.") + "\n"
	}

	var b strings.Builder
	b.WriteString(StyleHelp.Render(fmt.Sprintf("  %-32s %-24s %-14s %s", "Title", "Author", "Owner", "Status")))
	b.WriteString("\n")
	for i, book := range m.books {
		row := fmt.Sprintf("%-32s %-24s %-14s %s",
			truncate(book.Title, 32),
			truncate(strings.Join(book.Authors, ", "), 24),
			shelf.OwnerLabel(book),
			shelf.StatusLine(book),
		)
		if i == m.cursor {
			b.WriteString(StyleHighlight.Render("› " + row))
		} else {
			b.WriteString("  " + StyleNormal.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Browser) filterView() string {
	var b strings.Builder
	labels := []string{"Owner", "Title", "Author"}
	for i, label := range labels {
		if i < m.firstFilterField() {
			continue
		}
		if i == m.filterFocus {
			b.WriteString(StyleHighlight.Render("› " + label))
		} else {
			b.WriteString(StyleHelp.Render("  " + label))
		}
		b.WriteString("\n")
		b.WriteString(m.filterInputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleHelp.Render("enter apply · ctrl+r clear · esc cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m Browser) statusLine() string {
	page := m.composer.Page()
	last := m.lastPage
	if last < 1 {
		last = 1
	}
	parts := []string{fmt.Sprintf("page %d/%d", page, last)}

	if s := m.composer.Sort(); s.Column != shelf.SortNone {
		dir := "desc"
		if s.Ascending {
			dir = "asc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", s.Column, dir))
	}
	if f := m.composer.Filter(); !f.Statuses.Empty() {
		parts = append(parts, "status "+strings.Join(f.Statuses.Tokens(), ","))
	}
	return strings.Join(parts, " · ")
}

func (m Browser) shortcuts() []ShortcutEntry {
	if m.wishlist {
		return []ShortcutEntry{
			{Key: "a", Label: "a add"},
			{Key: "e", Label: "enter edit"},
			{Key: "d", Label: "d delete"},
			{Key: "f", Label: "f filter"},
			{Key: "t", Label: "t sort title"},
			{Key: "", Label: "←→ page"},
			{Key: "", Label: "q quit"},
		}
	}
	return []ShortcutEntry{
		{Key: "a", Label: "a add"},
		{Key: "e", Label: "enter edit"},
		{Key: "l", Label: "l lend"},
		{Key: "r", Label: "r return"},
		{Key: "d", Label: "d delete"},
		{Key: "f", Label: "f filter"},
		{Key: "o", Label: "o sort owner"},
		{Key: "t", Label: "t sort title"},
		{Key: "", Label: "1-4 status"},
		{Key: "", Label: "q quit"},
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

// RunBrowser launches the interactive shelf browser and returns the
// action the user picked.
func RunBrowser(fetch ShelfFetcher, composer *shelf.Composer, wishlist bool) (*BrowserResult, error) {
	m := NewBrowser(fetch, composer, wishlist)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running browser: %w", err)
	}
	fm, ok := finalModel.(Browser)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	result := fm.Result()
	return &result, nil
}
