package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"launchdeck/internal/app"
	"launchdeck/internal/launches"
	"launchdeck/internal/table"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// Messages for tea updates
type (
	// fetchResultMsg carries a finished fetch back to the event loop.
	fetchResultMsg struct {
		seq uint64
		res launches.Result
	}
	// favoritesChangedMsg reports a favorites write by another process.
	favoritesChangedMsg struct{}
)

// PageOptions configures a LaunchesPage.
type PageOptions struct {
	Styles   Styles
	Location *time.Location
	Logger   *zap.Logger
	// FavoritesChanged, when set, delivers a value each time another
	// process rewrites the favorites map.
	FavoritesChanged <-chan struct{}
}

// LaunchesPage is the interactive launch table.
type LaunchesPage struct {
	ctx     context.Context
	session *app.Session
	fetcher app.Fetcher
	logger  *zap.Logger

	styles    Styles
	keys      keyMap
	help      help.Model
	spinner   spinner.Model
	paginator paginator.Model
	renderer  *glamour.TermRenderer
	loc       *time.Location
	watch     <-chan struct{}

	cursor       int
	rocketChoice int // index into table.RocketChoices; -1 is no filter
	statusChoice int // 0 none, 1 succeed, 2 failed
	showHelp     bool
	status       string

	width  int
	height int
}

// NewLaunchesPage creates the page. The first fetch starts in Init.
func NewLaunchesPage(ctx context.Context, session *app.Session, fetcher app.Fetcher, opts PageOptions) LaunchesPage {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Styles.Theme == (Theme{}) {
		opts.Styles = DefaultStyles()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	pg := paginator.New()
	pg.Type = paginator.Arabic
	pg.PerPage = session.PageSize()
	pg.SetTotalPages(0)

	renderer, err := newHelpRenderer(opts.Styles.Theme.IsDark, 80)
	if err != nil {
		opts.Logger.Warn("help renderer unavailable", zap.Error(err))
	}

	return LaunchesPage{
		ctx:          ctx,
		session:      session,
		fetcher:      fetcher,
		logger:       opts.Logger,
		styles:       opts.Styles,
		keys:         defaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		paginator:    pg,
		renderer:     renderer,
		loc:          opts.Location,
		watch:        opts.FavoritesChanged,
		rocketChoice: -1,
	}
}

// Init starts the first fetch and the favorites watch.
func (m LaunchesPage) Init() tea.Cmd {
	return tea.Batch(m.startFetch(), waitForFavorites(m.watch))
}

func (m LaunchesPage) startFetch() tea.Cmd {
	seq, req := m.session.BeginFetch()
	ctx, fetcher := m.ctx, m.fetcher
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return fetchResultMsg{seq: seq, res: fetcher.Fetch(ctx, req)}
		},
	)
}

func waitForFavorites(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return favoritesChangedMsg{}
	}
}

// Update handles messages.
func (m LaunchesPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.session.State() == launches.StateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case fetchResultMsg:
		applied, err := m.session.CompleteFetch(m.ctx, msg.seq, msg.res)
		if err != nil {
			m.status = m.styles.Error.Render(err.Error())
		}
		if applied {
			m.cursor = 0
			m.syncPaginator()
		}
		return m, nil

	case favoritesChangedMsg:
		if err := m.session.ReloadFavorites(m.ctx); err != nil {
			m.status = m.styles.Error.Render(err.Error())
		} else {
			m.status = m.styles.Muted.Render("Favorites reloaded")
		}
		return m, waitForFavorites(m.watch)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m LaunchesPage) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc || key.Matches(msg, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	m.status = ""
	rows, page := m.session.VisibleRows()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if m.cursor >= len(rows) {
			return m, nil
		}
		row := rows[m.cursor]
		fav, err := m.session.ToggleFavorite(m.ctx, row.Key)
		switch {
		case errors.Is(err, app.ErrNoKey):
			m.status = m.styles.Warning.Render("This launch has no id and cannot be favorited")
		case err != nil:
			m.status = m.styles.Error.Render(err.Error())
		case fav:
			m.status = m.styles.Star.Render(fmt.Sprintf("%s %s", table.StarFilled, row.Name))
		default:
			m.status = m.styles.Muted.Render(fmt.Sprintf("%s %s", table.StarOutline, row.Name))
		}

	case key.Matches(msg, m.keys.PrevPage):
		return m.setPage(page.Index - 1)

	case key.Matches(msg, m.keys.NextPage):
		return m.setPage(page.Index + 1)

	case key.Matches(msg, m.keys.NextWindow):
		if !m.session.NextWindow() {
			m.status = m.styles.Muted.Render("Upcoming launches are a single window")
			return m, nil
		}
		return m, m.startFetch()

	case key.Matches(msg, m.keys.PrevWindow):
		if !m.session.PrevWindow() {
			m.status = m.styles.Muted.Render("Already at the first window")
			return m, nil
		}
		return m, m.startFetch()

	case key.Matches(msg, m.keys.Mode):
		m.session.ToggleMode()
		m.cursor = 0
		return m, m.startFetch()

	case key.Matches(msg, m.keys.DateSort):
		m.session.CycleDateSort()

	case key.Matches(msg, m.keys.Rocket):
		choices := table.RocketChoices(m.session.FilterSets())
		m.rocketChoice++
		if m.rocketChoice >= len(choices) {
			m.rocketChoice = -1
			m.session.SetRocketFilter()
		} else {
			m.session.SetRocketFilter(choices[m.rocketChoice])
		}
		m.cursor = 0

	case key.Matches(msg, m.keys.Status):
		m.statusChoice = (m.statusChoice + 1) % 3
		switch m.statusChoice {
		case 1:
			m.session.SetStatusFilter(table.StatusSucceed)
		case 2:
			m.session.SetStatusFilter(table.StatusFailed)
		default:
			m.session.SetStatusFilter()
		}
		m.cursor = 0

	case key.Matches(msg, m.keys.Clear):
		m.session.ClearFilters()
		m.rocketChoice = -1
		m.statusChoice = 0
		m.cursor = 0

	case key.Matches(msg, m.keys.Copy):
		if m.cursor < len(rows) && rows[m.cursor].HasKey() {
			id := rows[m.cursor].Key
			if err := clipboardWriteAll(id); err != nil {
				m.status = m.styles.Error.Render("Failed to copy launch id")
			} else {
				m.status = m.styles.Success.Render(fmt.Sprintf("Copied %s to clipboard", id))
			}
		}
	}

	m.syncPaginator()
	return m, nil
}

func (m LaunchesPage) setPage(index int) (tea.Model, tea.Cmd) {
	if m.session.SetPage(index, m.session.PageSize()) {
		return m, m.startFetch()
	}
	m.cursor = 0
	m.syncPaginator()
	return m, nil
}

func (m *LaunchesPage) syncPaginator() {
	rows, page := m.session.VisibleRows()
	m.paginator.PerPage = page.Size
	m.paginator.TotalPages = page.Pages
	m.paginator.Page = page.Index - 1
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetSize updates the layout size.
func (m *LaunchesPage) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.help.Width = w
	if r, err := newHelpRenderer(m.styles.Theme.IsDark, w-4); err == nil {
		m.renderer = r
	}
}

// View renders the page.
func (m LaunchesPage) View() string {
	if m.showHelp {
		return renderHelp(m.renderer)
	}

	var sb strings.Builder
	sb.WriteString(m.renderModeRadio())
	sb.WriteString("\n\n")

	if ph := m.session.Placeholder(); ph != "" {
		if m.session.State() == launches.StateLoading {
			sb.WriteString(m.spinner.View() + " " + ph)
		} else {
			sb.WriteString(m.styles.Error.Render(ph))
		}
		sb.WriteString("\n\n")
		sb.WriteString(m.help.View(m.keys))
		return sb.String()
	}

	rows, page := m.session.VisibleRows()
	sb.WriteString(m.renderFilterLine(page))
	sb.WriteString("\n")

	t := LaunchTable{
		Rows:      rows,
		Cursor:    m.cursor,
		Location:  m.loc,
		SortState: m.session.SortState(),
	}
	if len(rows) == 0 {
		sb.WriteString(m.styles.Muted.Render("No launches match the current filters."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(t.View(m.styles))
	}

	if m.status != "" {
		sb.WriteString(m.status)
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m LaunchesPage) renderModeRadio() string {
	upcoming, past := m.styles.RadioInactive, m.styles.RadioInactive
	if m.session.Mode() == launches.Upcoming {
		upcoming = m.styles.RadioActive
	} else {
		past = m.styles.RadioActive
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		upcoming.Render("Upcoming Launches"),
		" ",
		past.Render("Past Launches"),
	)
}

func (m LaunchesPage) renderFilterLine(page table.Page) string {
	w := m.session.Window()
	parts := []string{
		fmt.Sprintf("Page %s", m.paginator.View()),
		fmt.Sprintf("launches %d-%d", w.Offset+1, w.Offset+len(m.session.Rows())),
	}
	f := m.session.Filters()
	if len(f.Rocket) > 0 {
		parts = append(parts, "rocket: "+strings.Join(f.Rocket, ", "))
	}
	if len(f.Status) > 0 {
		names := make([]string, len(f.Status))
		for i, s := range f.Status {
			names[i] = s.String()
		}
		parts = append(parts, "status: "+strings.Join(names, ", "))
	}
	parts = append(parts, "date: "+m.session.SortState().Date.String())
	if page.Total != len(m.session.Rows()) {
		parts = append(parts, fmt.Sprintf("%d shown", page.Total))
	}
	return m.styles.Muted.Render(strings.Join(parts, " · "))
}
