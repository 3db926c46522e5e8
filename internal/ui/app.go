package ui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/abelbrown/ramah/internal/feed"
	"github.com/abelbrown/ramah/internal/logging"
	"github.com/abelbrown/ramah/internal/otel"
	"github.com/abelbrown/ramah/internal/prefs"
	"github.com/abelbrown/ramah/internal/render"
	"github.com/abelbrown/ramah/internal/router"
	"github.com/abelbrown/ramah/internal/scroll"
	"github.com/abelbrown/ramah/internal/stats"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/time/rate"
)

// Lines used by the header and the status bar.
const chromeLines = 2

// AppConfig holds the collaborators and settings for the App.
// Function fields are called from tea.Cmd goroutines.
type AppConfig struct {
	// Context bounds fetches; cancelling it aborts one in flight.
	Context   context.Context
	Store     *feed.Store
	Fetch     func(ctx context.Context) (feed.Snapshot, error)
	Opener    render.Opener
	CopyEmbed func(siteURL string) error
	SaveTheme func(theme string) error

	// Loading is flipped by the fetcher around each request.
	Loading *atomic.Bool
	// Events backs the debug panel. A private ring is used when nil.
	Events *otel.RingBuffer

	Theme      string // "light" or "dark"
	Fragment   string // initial route, e.g. "#stats"
	Endpoint   string
	SiteURL    string
	BatchSize  int
	BatchDelay time.Duration
	LeadMargin int
	Limiter    *rate.Limiter
	Now        func() time.Time
}

// appStarted kicks off the initial routing pass inside Update.
type appStarted struct{}

// App is the root Bubble Tea model.
// The feed, paginator, trigger and router are shared by pointer; App copies
// only carry view state.
type App struct {
	cfg AppConfig

	store    *feed.Store
	pager    *render.Paginator
	output   *render.Output
	trigger  *scroll.Trigger
	router   *router.Router
	overlays *overlayState
	stats    *stats.Cache
	markdown *markdownCache
	loading  *atomic.Bool
	events   *otel.RingBuffer

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	styles   Styles
	theme    string

	focus  int
	offset int
	width  int
	height int
	ready  bool

	fetching     bool
	batchPending bool
	failed       bool
	err          error
	notice       string
	embedStatus  string
	shown        router.ViewState
	route        router.ViewState
	debugOpen    bool
	fetchStarted time.Time
}

// NewApp creates an App from cfg, filling in defaults.
func NewApp(cfg AppConfig) App {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Store == nil {
		cfg.Store = feed.NewStore()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = render.DefaultBatchSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Loading == nil {
		cfg.Loading = &atomic.Bool{}
	}
	if cfg.Events == nil {
		cfg.Events = otel.NewRingBuffer(otel.DefaultRingSize)
	}
	if cfg.Theme != prefs.ThemeLight {
		cfg.Theme = prefs.ThemeDark
	}

	pager := render.NewPaginator(cfg.Store, cfg.Opener)
	pager.SetClock(cfg.Now)
	overlays := &overlayState{}
	history := router.NewHistory(strings.TrimPrefix(cfg.Fragment, "#"))

	return App{
		cfg:      cfg,
		store:    cfg.Store,
		pager:    pager,
		output:   &render.Output{},
		trigger:  scroll.New(pager, cfg.LeadMargin, cfg.Limiter),
		router:   router.New(history, overlays),
		overlays: overlays,
		stats:    &stats.Cache{},
		markdown: &markdownCache{},
		loading:  cfg.Loading,
		events:   cfg.Events,
		keys:     newKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport: viewport.New(0, 0),
		styles:   NewStyles(cfg.Theme),
		theme:    cfg.Theme,
	}
}

// Init starts the spinner and the initial routing pass.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, func() tea.Msg { return appStarted{} })
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appStarted:
		return a.start()

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		return a.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		a.offset = scrollOffset(a.offset, a.focus, a.visible())
		a = a.refreshOverlay()
		return a.observe()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case FeedFetched:
		return a.handleFetched(msg)

	case BatchReady:
		return a.handleBatch(msg)

	case LinkOpened:
		if msg.Err != nil {
			a.notice = "Could not open link"
			logging.Warn("Open link failed", "link", msg.Link, "err", msg.Err)
			a.events.Record(otel.Event{Kind: otel.KindLinkError, Level: otel.LevelWarn, Msg: msg.Link, Err: msg.Err.Error()})
		} else {
			a.notice = ""
			a.events.Record(otel.Event{Kind: otel.KindLinkOpen, Msg: msg.Link})
		}
		return a, nil

	case EmbedCopied:
		if msg.Err != nil {
			a.embedStatus = "Copy failed: " + msg.Err.Error()
			logging.Warn("Embed copy failed", "err", msg.Err)
		} else {
			a.embedStatus = "Copied to clipboard."
			a.events.Record(otel.Event{Kind: otel.KindEmbedCopy})
		}
		return a.refreshOverlay(), nil

	case ThemeSaved:
		if msg.Err != nil {
			logging.Warn("Theme preference not saved", "theme", msg.Theme, "err", msg.Err)
		}
		return a, nil
	}

	return a, nil
}

// start routes the initial fragment. The feed always loads on startup, even
// when a deep link opens an overlay over it.
func (a App) start() (tea.Model, tea.Cmd) {
	eff := a.router.Start(a.env())
	if a.store.Empty() {
		eff |= router.EffectFetch
	}
	logging.Info("App started", "route", a.router.State().String())
	return a.runEffects(eff)
}

// env snapshots the state routing decisions depend on.
func (a App) env() router.Env {
	_, cached := a.stats.Get(a.store.Generation())
	return router.Env{FeedEmpty: a.store.Empty(), StatsCached: cached}
}

// runEffects carries out the follow-up work of a route transition.
func (a App) runEffects(eff router.Effects) (App, tea.Cmd) {
	var cmds []tea.Cmd
	if eff.Has(router.EffectFetch) {
		var cmd tea.Cmd
		a, cmd = a.startFetch()
		cmds = append(cmds, cmd)
	}
	if eff.Has(router.EffectRenderFirstBatch) && !a.store.Empty() && a.output.Len() == 0 {
		a = a.renderFirstBatch()
	}
	if eff.Has(router.EffectComputeStats) && !a.store.Empty() {
		a.stats.Resolve(a.store.Snapshot(), a.cfg.Now())
	}
	if state := a.router.State(); state != a.route {
		a.events.Record(otel.Event{Kind: otel.KindRoute, Route: state.String(), Msg: "from " + a.route.String()})
		a.route = state
	}
	a.syncKeys()
	a = a.refreshOverlay()
	if !a.router.State().IsOverlay() {
		var cmd tea.Cmd
		a, cmd = a.observe()
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// startFetch issues one fetch unless one is already running.
func (a App) startFetch() (App, tea.Cmd) {
	if a.fetching || a.cfg.Fetch == nil {
		return a, nil
	}
	a.fetching = true
	a.fetchStarted = time.Now()
	a.events.Record(otel.Event{Kind: otel.KindFetchStart})
	fetchFn, ctx := a.cfg.Fetch, a.cfg.Context
	return a, func() tea.Msg {
		snap, err := fetchFn(ctx)
		return FeedFetched{Snapshot: snap, Err: err}
	}
}

// handleFetched resets pagination against the new snapshot. An empty feed
// is treated like a failed fetch and offers retry.
func (a App) handleFetched(msg FeedFetched) (tea.Model, tea.Cmd) {
	a.fetching = false
	a.batchPending = false
	a.focus, a.offset = 0, 0
	a.stats.Invalidate()

	gen := a.store.Generation()
	a.pager.Reset()
	a.output.Reset(gen)

	if msg.Err != nil || a.store.Empty() {
		a.failed = true
		a.err = msg.Err
		a.trigger.Disarm()
		ev := otel.Event{Kind: otel.KindFetchError, Level: otel.LevelWarn, Generation: gen, Dur: time.Since(a.fetchStarted)}
		if msg.Err != nil {
			logging.Warn("Feed unavailable", "err", msg.Err)
			ev.Err = msg.Err.Error()
		} else {
			logging.Warn("Feed is empty")
			ev.Msg = "empty feed"
		}
		a.events.Record(ev)
		a.syncKeys()
		return a.refreshOverlay(), nil
	}

	a.failed = false
	a.err = nil
	a.trigger.Rearm(gen)
	a = a.renderFirstBatch()
	logging.Info("Feed loaded", "stories", a.store.Len(), "generation", gen)
	a.events.Record(otel.Event{Kind: otel.KindFetchComplete, Generation: gen, Count: a.store.Len(), Dur: time.Since(a.fetchStarted)})

	if a.router.State() == router.Stats {
		a.stats.Resolve(a.store.Snapshot(), a.cfg.Now())
	}
	a.syncKeys()
	a = a.refreshOverlay()
	return a.observe()
}

func (a App) renderFirstBatch() App {
	a.output.Apply(a.pager.RenderNext(a.cfg.BatchSize))
	return a
}

// handleBatch appends the batch a scroll load was started for. Batches for
// a superseded snapshot are dropped.
func (a App) handleBatch(msg BatchReady) (tea.Model, tea.Cmd) {
	if msg.Generation != a.store.Generation() || msg.Generation != a.output.Generation() {
		a.trigger.Done(msg.Generation)
		logging.Debug("Discarded stale batch", "generation", msg.Generation)
		a.events.Record(otel.Event{Kind: otel.KindBatchStale, Level: otel.LevelDebug, Generation: msg.Generation})
		return a, nil
	}
	r := a.pager.RenderNext(a.cfg.BatchSize)
	a.output.Apply(r)
	a.events.Record(otel.Event{Kind: otel.KindBatchRender, Generation: msg.Generation, Count: r.Rendered})
	a.trigger.Done(msg.Generation)
	a.batchPending = false
	return a.observe()
}

// observe reports the viewport to the scroll trigger and schedules a batch
// when it fires.
func (a App) observe() (App, tea.Cmd) {
	if a.failed || a.router.State().IsOverlay() {
		return a, nil
	}
	pos := scroll.Position{LastVisible: a.lastVisible(), Rendered: a.output.Len()}
	if !a.trigger.Observe(pos) {
		return a, nil
	}
	a.batchPending = true
	gen := a.trigger.Generation()
	a.events.Record(otel.Event{Kind: otel.KindBatchRequest, Generation: gen, Count: pos.Rendered})
	return a, tea.Tick(a.cfg.BatchDelay, func(time.Time) tea.Msg {
		return BatchReady{Generation: gen}
	})
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}
	a.notice = ""

	if key.Matches(msg, a.keys.Debug) {
		a.debugOpen = !a.debugOpen
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Close):
		return a.runEffects(a.router.Close(a.env()))
	case msg.String() == "q":
		return a, tea.Quit

	case key.Matches(msg, a.keys.Stats):
		return a.openOverlay(router.Stats)
	case key.Matches(msg, a.keys.Embed):
		return a.openOverlay(router.Embed)
	case key.Matches(msg, a.keys.Data):
		return a.openOverlay(router.DataAccess)

	case key.Matches(msg, a.keys.Back):
		return a.runEffects(a.router.Back(a.env()))
	case key.Matches(msg, a.keys.Forward):
		return a.runEffects(a.router.Forward(a.env()))

	case key.Matches(msg, a.keys.Theme):
		return a.toggleTheme()

	case key.Matches(msg, a.keys.Copy):
		return a.copyEmbed()

	case key.Matches(msg, a.keys.Retry):
		a.notice = "Retrying..."
		var cmd tea.Cmd
		a, cmd = a.startFetch()
		a.syncKeys()
		return a, cmd
	}

	if a.router.State().IsOverlay() {
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Down):
		return a.moveFocus(1)
	case key.Matches(msg, a.keys.Up):
		return a.moveFocus(-1)
	case key.Matches(msg, a.keys.Activate):
		return a, a.activate()
	}
	return a, nil
}

// handleMouseMsg maps the wheel onto focus movement.
func (a App) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.router.State().IsOverlay() {
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		return a.moveFocus(1)
	case tea.MouseButtonWheelUp:
		return a.moveFocus(-1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionRelease {
			return a, nil
		}
		idx, ok := a.cardAt(msg.Y)
		if !ok {
			return a, nil
		}
		a.focus = idx
		return a, a.activate()
	}
	return a, nil
}

// cardAt maps a screen row to the index of the rendered card under it.
// Row 0 is the header.
func (a App) cardAt(y int) (int, bool) {
	row := y - 1
	if row < 0 || row >= a.listHeight() {
		return 0, false
	}
	idx := a.offset + row/itemHeight
	if idx >= a.output.Len() || idx >= a.offset+a.visible() {
		return 0, false
	}
	return idx, true
}

func (a App) openOverlay(v router.ViewState) (tea.Model, tea.Cmd) {
	if a.router.State() != v {
		a.embedStatus = ""
	}
	return a.runEffects(a.router.Open(v, a.env()))
}

func (a App) moveFocus(delta int) (tea.Model, tea.Cmd) {
	n := a.output.Len()
	if n == 0 {
		return a, nil
	}
	a.focus += delta
	if a.focus < 0 {
		a.focus = 0
	}
	if a.focus > n-1 {
		a.focus = n - 1
	}
	a.offset = scrollOffset(a.offset, a.focus, a.visible())
	return a.observe()
}

// activate opens the focused story. Focus and scroll position are left
// untouched.
func (a App) activate() tea.Cmd {
	items := a.output.Items()
	if a.focus < 0 || a.focus >= len(items) || items[a.focus].OnActivate == nil {
		return nil
	}
	d := items[a.focus]
	return func() tea.Msg {
		return LinkOpened{Link: d.Link, Err: d.OnActivate()}
	}
}

func (a App) toggleTheme() (tea.Model, tea.Cmd) {
	if a.theme == prefs.ThemeDark {
		a.theme = prefs.ThemeLight
	} else {
		a.theme = prefs.ThemeDark
	}
	a.styles = NewStyles(a.theme)
	a = a.refreshOverlay()
	a.events.Record(otel.Event{Kind: otel.KindTheme, Msg: a.theme})

	save := a.cfg.SaveTheme
	if save == nil {
		return a, nil
	}
	theme := a.theme
	return a, func() tea.Msg {
		return ThemeSaved{Theme: theme, Err: save(theme)}
	}
}

func (a App) copyEmbed() (tea.Model, tea.Cmd) {
	copyFn := a.cfg.CopyEmbed
	if copyFn == nil {
		return a, nil
	}
	site := a.cfg.SiteURL
	return a, func() tea.Msg {
		return EmbedCopied{Err: copyFn(site)}
	}
}

// syncKeys enables only the bindings that apply to the current view.
func (a *App) syncKeys() {
	state := a.router.State()
	onHome := !state.IsOverlay()
	a.keys.Down.SetEnabled(onHome)
	a.keys.Up.SetEnabled(onHome)
	a.keys.Activate.SetEnabled(onHome)
	a.keys.Close.SetEnabled(!onHome)
	a.keys.Copy.SetEnabled(state == router.Embed)
	a.keys.Retry.SetEnabled(onHome && a.failed && !a.fetching)
}

// refreshOverlay sizes the viewport and fills it with the open overlay.
func (a App) refreshOverlay() App {
	v := a.overlays.Visible()
	if !v.IsOverlay() {
		a.shown = router.Home
		return a
	}

	w, h := a.overlaySize()
	a.viewport.Width = w
	a.viewport.Height = h

	var body string
	switch v {
	case router.Stats:
		if a.fetching && a.store.Empty() {
			body = a.spinner.View() + " Loading stats..."
		} else {
			body = statsBody(a.stats.Resolve(a.store.Snapshot(), a.cfg.Now()), a.styles)
		}
	case router.Embed:
		body = embedBody(a.cfg.SiteURL, a.embedStatus, a.styles)
	case router.DataAccess:
		body = a.markdown.dataAccessBody(a.cfg.Endpoint, a.theme, w)
	}
	a.viewport.SetContent(body)
	if a.shown != v {
		a.viewport.GotoTop()
		a.shown = v
	}
	return a
}

func (a App) overlaySize() (int, int) {
	w := a.width - 8
	if w < 20 {
		w = 20
	}
	h := a.height - chromeLines - 6
	if h < 3 {
		h = 3
	}
	return w, h
}

func (a App) listHeight() int {
	return a.height - chromeLines
}

func (a App) visible() int {
	return visibleItems(a.listHeight())
}

// lastVisible is the index of the last rendered card on screen, or -1.
func (a App) lastVisible() int {
	n := a.output.Len()
	if n == 0 {
		return -1
	}
	last := a.offset + a.visible() - 1
	if last > n-1 {
		last = n - 1
	}
	return last
}

// isLoading reports whether a fetch or a batch load is under way.
func (a App) isLoading() bool {
	return a.fetching || a.batchPending || a.loading.Load()
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.styles.Title.Render("ramah · good news")

	h := a.listHeight()
	if h < 1 {
		h = 1
	}
	var body string
	switch v := a.overlays.Visible(); {
	case a.debugOpen:
		body = debugOverlay(a.events, a.width, h, a.cfg.Now(), a.styles)
	case v.IsOverlay():
		body = a.overlayView(v)
	default:
		body = a.feedView()
	}
	body = lipgloss.NewStyle().Height(h).MaxHeight(h).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, a.statusBar())
}

func (a App) feedView() string {
	if a.output.Len() == 0 {
		switch {
		case a.fetching || a.loading.Load():
			return a.styles.HelpStyle.Render(a.spinner.View() + " Loading good news...")
		case a.failed:
			msg := "Unable to load stories right now."
			if a.err != nil {
				msg += "\n" + a.err.Error()
			}
			return a.styles.ErrorStyle.Render(msg + "\n\nPress r to retry.")
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(renderCards(a.output.Items(), a.focus, a.offset, a.visible(), a.width, a.styles))
	if a.batchPending {
		b.WriteString(a.styles.HelpStyle.Render(a.spinner.View() + " Loading more..."))
	} else if a.output.Exhausted() && a.lastVisible() == a.output.Len()-1 {
		b.WriteString(a.styles.EndMessage.Render("You've reached the end. Check back later for more good news."))
	}
	return b.String()
}

func (a App) overlayView(v router.ViewState) string {
	content := a.styles.OverlayTitle.Render(overlayTitle(v)) + "\n" + a.viewport.View()
	return a.styles.Overlay.Render(content)
}

// statusBar renders the bottom bar with position and key hints.
func (a App) statusBar() string {
	var left string
	switch {
	case a.isLoading():
		left = a.spinner.View() + " Loading"
	case a.output.Len() > 0 && !a.router.State().IsOverlay():
		left = fmt.Sprintf("%d/%d", a.focus+1, a.store.Len())
	}
	if a.notice != "" {
		left += "  " + a.notice
	}

	hints := a.help.View(a.keys)
	pad := a.width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if pad < 1 {
		pad = 1
	}
	return a.styles.StatusBar.Width(a.width).Render(left + strings.Repeat(" ", pad) + hints)
}

// Route returns the current view state (for testing).
func (a App) Route() router.ViewState {
	return a.router.State()
}

// Focus returns the focused story index (for testing).
func (a App) Focus() int {
	return a.focus
}

// Rendered returns the number of rendered stories (for testing).
func (a App) Rendered() int {
	return a.output.Len()
}

// Failed reports whether the feed is in the error state (for testing).
func (a App) Failed() bool {
	return a.failed
}
