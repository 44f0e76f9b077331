package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/services"
	"github.com/desertthunder/ytbeets/internal/shared"
	"github.com/desertthunder/ytbeets/internal/tasks"
)

// ViewState represents the current view in the picker.
type ViewState int

const (
	ResultListView ViewState = iota
	TrackListView
	ConfirmView
	RunView
	ResultView
)

// Model represents the picker state.
type Model struct {
	ctx          context.Context
	view         ViewState
	meta         services.MetadataService
	engine       *tasks.ImportEngine
	query        string
	kind         models.Kind
	opts         tasks.Options
	width        int
	height       int
	loading      bool
	resultList   list.Model
	trackList    list.Model
	desc         *models.Descriptor
	progressChan chan tasks.ProgressUpdate
	done         chan completePayload
	progress     tasks.ProgressUpdate
	result       *tasks.Result
	err          error
	showTracks   bool
	help         help.Model
	keys         keyMap
}

// NewModel creates a picker that searches meta for query and fetches the chosen release with engine.
func NewModel(ctx context.Context, meta services.MetadataService, engine *tasks.ImportEngine, query string, kind models.Kind, opts tasks.Options) *Model {
	if kind == "" {
		kind = models.KindAlbum
	}
	return &Model{
		ctx:        ctx,
		view:       ResultListView,
		meta:       meta,
		engine:     engine,
		query:      query,
		kind:       kind,
		opts:       opts,
		loading:    true,
		resultList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		trackList:  list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the catalogue search.
func (m *Model) Init() tea.Cmd {
	return m.search()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resultList.SetSize(m.listSize())
		m.trackList.SetSize(m.listSize())
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ResultListView:
			return m.handleResultListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case RunView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgResultsFetched:
		data := msg.data.(resultsPayload)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.results))
		for i, r := range data.results {
			items[i] = resultItem{result: r}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = fmt.Sprintf("%s matching %q", kindTitle(m.kind), m.query)
		m.resultList.SetSize(m.listSize())
		return m, nil

	case MsgDescriptorFetched:
		data := msg.data.(descriptorPayload)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.desc = data.desc
		items := make([]list.Item, len(data.desc.Tracks))
		for i, t := range data.desc.Tracks {
			items[i] = trackItem{track: t}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = data.desc.String()
		m.trackList.SetSize(m.listSize())
		m.view = TrackListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgRunComplete:
		data := msg.data.(completePayload)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}
	if m.loading {
		return styles.help.Render("Loading...")
	}

	switch m.view {
	case ResultListView:
		return m.renderResultList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleResultListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.resultList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back) && m.err != nil:
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.switchKind):
		m.kind = otherKind(m.kind)
		m.err = nil
		m.loading = true
		return m, m.search()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.resultList.SelectedItem().(resultItem); ok {
			m.loading = true
			return m, m.resolve(item.result)
		}
	}

	return m.updateLists(msg)
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ResultListView
		m.desc = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
		m.showTracks = false
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = TrackListView
		return m, nil
	case key.Matches(msg, m.keys.tracks):
		m.showTracks = !m.showTracks
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = RunView
		return m, m.startRun()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = ResultListView
		m.desc = nil
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ResultListView:
		m.resultList, cmd = m.resultList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) search() tea.Cmd {
	return func() tea.Msg {
		if m.kind == models.KindTrack {
			return resultsFetchedMsg(m.meta.SearchSongs(m.ctx, m.query))
		}
		return resultsFetchedMsg(m.meta.SearchAlbums(m.ctx, m.query))
	}
}

func (m *Model) resolve(r services.SearchResult) tea.Cmd {
	return func() tea.Msg {
		return descriptorFetchedMsg(m.engine.ResolveResult(m.ctx, r))
	}
}

func (m *Model) startRun() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan completePayload, 1)
	m.progressChan = progress
	m.done = done
	desc := m.desc

	go func() {
		result, err := m.engine.Process(m.ctx, desc, m.opts, progress)
		done <- completePayload{result, err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return runCompleteMsg(nil, nil)
		}

		update, ok := <-progress
		if !ok {
			c := <-done
			return runCompleteMsg(c.result, c.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderResultList() string {
	helpView := m.help.ShortHelpView(m.keys.resultHelp())
	return fmt.Sprintf("%s\n%s\n\n%s", styles.badge(m.kind), m.resultList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	fetchKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "fetch"))
	helpView := m.help.ShortHelpView([]key.Binding{fetchKey, m.keys.back, m.keys.quit})

	var warning string
	if n := len(m.desc.Unavailable()); n > 0 {
		warning = "\n" + styles.warn.Render(fmt.Sprintf("%d of %d tracks are unavailable; the fetch will be refused", n, len(m.desc.Tracks)))
	}
	return fmt.Sprintf("%s%s\n\n%s", m.trackList.View(), warning, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Fetch %s and import it into beets?", m.desc))
	info := fmt.Sprintf("\nSource: %s\nTracks: %d\n", m.desc.SourceID, len(m.desc.Tracks))

	var flags []string
	if m.opts.KeepFiles {
		flags = append(flags, "keep files")
	}
	if m.opts.Force {
		flags = append(flags, "force")
	}
	if m.opts.NoImport {
		flags = append(flags, "no import")
	}
	if len(flags) > 0 {
		info += fmt.Sprintf("Options: %s\n", strings.Join(flags, ", "))
	}

	if m.showTracks {
		info += "\n" + m.renderTracklist()
	}

	helpView := m.help.ShortHelpView(m.keys.confirmHelp())
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

// renderTracklist lists the tracks about to be fetched, unavailable ones highlighted.
func (m *Model) renderTracklist() string {
	var b strings.Builder
	for _, t := range m.desc.Tracks {
		line := fmt.Sprintf("%2d. %s %s", t.TrackNumber, t.Title, styles.help.Render(shared.FormatDuration(t.Duration)))
		if !t.Available {
			line = styles.warn.Render(fmt.Sprintf("%2d. %s (unavailable)", t.TrackNumber, t.Title))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *Model) renderRun() string {
	title := styles.title.Render(fmt.Sprintf("Fetching %s", m.desc))

	phase := "Starting..."
	if m.progress.Message != "" {
		phase = m.progress.Phase.String()
		if m.progress.Total > 1 {
			phase = fmt.Sprintf("%s (%d/%d)", phase, m.progress.Step, m.progress.Total)
		}
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		var kept string
		if m.result != nil && stagingKept(m.result.StagingDir) {
			kept = fmt.Sprintf("\nDownloaded files were kept in %s", m.result.StagingDir)
		}
		return fmt.Sprintf("%s%s\n\n%s", styles.err.Render(fmt.Sprintf("Fetch failed: %v", m.err)), kept, helpView)
	}

	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	var title, info string
	switch {
	case m.result.Skipped:
		title = styles.warn.Render(fmt.Sprintf("%s is already in the library", m.result.Descriptor))
		info = "\nUse --force to fetch it again."
	case m.result.Imported:
		title = styles.ok.Render(fmt.Sprintf("✓ Imported %s", m.result.Descriptor))
		info = fmt.Sprintf("\nFiles: %d", len(m.result.Files))
	default:
		title = styles.ok.Render(fmt.Sprintf("✓ Downloaded %s", m.result.Descriptor))
		info = fmt.Sprintf("\nFiles: %d", len(m.result.Files))
	}
	if m.result.Kept {
		info += fmt.Sprintf("\nKept in %s", m.result.StagingDir)
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func kindTitle(kind models.Kind) string {
	if kind == models.KindTrack {
		return "Songs"
	}
	return "Albums"
}

func otherKind(kind models.Kind) models.Kind {
	if kind == models.KindTrack {
		return models.KindAlbum
	}
	return models.KindTrack
}

// stagingKept reports whether a failed run left its staging directory behind.
func stagingKept(dir string) bool {
	if dir == "" {
		return false
	}
	_, err := os.Stat(dir)
	return err == nil
}
