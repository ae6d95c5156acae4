// Package ui implements the interactive terminal presentation of a deck: a
// fixed navigation rail, a scrolling content viewport and animated stat
// counters that start when they scroll into view.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/gtmdeck/internal/datasource"
	"github.com/vanderheijden86/gtmdeck/pkg/anim"
	"github.com/vanderheijden86/gtmdeck/pkg/config"
	"github.com/vanderheijden86/gtmdeck/pkg/debug"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/export"
	"github.com/vanderheijden86/gtmdeck/pkg/metrics"
	"github.com/vanderheijden86/gtmdeck/pkg/nav"
	"github.com/vanderheijden86/gtmdeck/pkg/stat"
	"github.com/vanderheijden86/gtmdeck/pkg/watcher"
)

// fadeDuration is how long content stays faint after a section change.
const fadeDuration = 50 * time.Millisecond

// wheelStep is the number of lines one wheel notch scrolls.
const wheelStep = 3

// frameMsg asks the model to sample running counters. Ticks scheduled before
// the last unmount carry an old seq and are dropped.
type frameMsg struct{ seq int }

// fadeMsg ends the fade started by navigation seq.
type fadeMsg struct{ seq int }

// exportDoneMsg carries the outcome of a background export.
type exportDoneMsg struct {
	res export.Result
	err error
}

// copyDoneMsg reports a clipboard write.
type copyDoneMsg struct {
	label string
	err   error
}

// reloadMsg carries a deck reload from the watcher.
type reloadMsg struct {
	reload watcher.Reload
	ok     bool
}

// Options configures a Model.
type Options struct {
	Config config.Config
	// Start overrides Config.UI.StartSection.
	Start  string
	Source datasource.DataSource
	// Reloader, when set, feeds live deck reloads into the model.
	Reloader *watcher.Reloader
	// Clock and Clipboard default to time.Now and clipboard.WriteAll.
	Clock     func() time.Time
	Clipboard func(string) error
}

// counter is one mounted stat value.
type counter struct {
	value stat.Value
	anim  *anim.Animator
	sub   *anim.Subscription
}

// scrollFlag is set by the navigation hook and consumed by the model.
type scrollFlag struct{ reset bool }

// Model is the Bubble Tea model of the deck viewer.
type Model struct {
	deck   *deck.Deck
	source datasource.DataSource
	cfg    config.Config
	nav    *nav.Controller
	scroll *scrollFlag

	theme    Theme
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	jump     textinput.Model
	md       *MarkdownRenderer

	width, height int
	ready         bool

	layout    *sectionLayout
	observer  *anim.Observer
	counters  map[string]*counter
	selection map[string]int

	frameScheduled bool
	frameSeq       int
	fading         bool
	fadeSeq        int
	showHelp       bool
	exporting      bool
	status         string
	statusErr      bool

	reloader  *watcher.Reloader
	clock     func() time.Time
	clipboard func(string) error
}

// NewModel builds a viewer for d. The first WindowSizeMsg mounts the
// starting section.
func NewModel(d *deck.Deck, opts Options) (Model, error) {
	if d == nil || len(d.Sections) == 0 {
		return Model{}, deck.ErrNoSections
	}
	cfg := opts.Config
	start := opts.Start
	if start == "" {
		start = cfg.UI.StartSection
	}
	if d.Section(start) == nil {
		if opts.Start != "" {
			return Model{}, fmt.Errorf("unknown section %q", opts.Start)
		}
		start = d.Sections[0].ID
	}

	m := Model{
		deck:      d,
		source:    opts.Source,
		cfg:       cfg,
		scroll:    &scrollFlag{},
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		keys:      newKeyMap(cfg.UI.Keys),
		help:      help.New(),
		viewport:  viewport.New(0, 0),
		counters:  make(map[string]*counter),
		selection: make(map[string]int),
		reloader:  opts.Reloader,
		clock:     opts.Clock,
		clipboard: opts.Clipboard,
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.clipboard == nil {
		m.clipboard = clipboard.WriteAll
	}

	ctrl, err := m.newController(d, start)
	if err != nil {
		return Model{}, err
	}
	m.nav = ctrl

	m.jump = textinput.New()
	m.jump.Prompt = "/ "
	m.jump.Placeholder = "section name or number"
	m.jump.CharLimit = 40

	debug.Log("ui: model ready, %d sections, start %s", len(d.Sections), start)
	return m, nil
}

func (m Model) newController(d *deck.Deck, start string) (*nav.Controller, error) {
	ctrl, err := nav.New(d.NavSections(), start)
	if err != nil {
		return nil, err
	}
	flag := m.scroll
	ctrl.OnScrollReset(func() { flag.reset = true })
	return ctrl, nil
}

// waitForReloadCmd blocks until the watcher publishes a reload.
func waitForReloadCmd(r *watcher.Reloader) tea.Cmd {
	return func() tea.Msg {
		rl, ok := r.Wait()
		return reloadMsg{reload: rl, ok: ok}
	}
}

func fadeCmd(seq int) tea.Cmd {
	return tea.Tick(fadeDuration, func(time.Time) tea.Msg { return fadeMsg{seq: seq} })
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle(m.deck.Title)}
	if m.reloader != nil {
		cmds = append(cmds, waitForReloadCmd(m.reloader))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.ready = true
		cmds = append(cmds, m.mount())

	case frameMsg:
		if msg.seq != m.frameSeq {
			break
		}
		m.frameScheduled = false
		stop := metrics.Timer(metrics.FrameSample)
		now := m.clock()
		for _, c := range m.counters {
			c.anim.Sample(now)
		}
		stop()
		m.refreshContent()
		cmds = append(cmds, m.scheduleFrame())

	case fadeMsg:
		if msg.seq == m.fadeSeq {
			m.fading = false
		}

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.setStatus("export failed: "+msg.err.Error(), true)
		} else {
			m.setStatus(msg.res.Summary(), false)
		}

	case copyDoneMsg:
		if msg.err != nil {
			m.setStatus("copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("copied "+msg.label+" as markdown", false)
		}

	case reloadMsg:
		if !msg.ok {
			break
		}
		cmds = append(cmds, m.applyReload(msg.reload))
		if m.reloader != nil {
			cmds = append(cmds, waitForReloadCmd(m.reloader))
		}

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			m.unmount()
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		case "ctrl+c":
			return nil, true
		}
		return nil, false
	}

	if m.jump.Focused() {
		return m.handleJumpKey(msg), false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Next):
		return m.step(nav.Forward), false
	case key.Matches(msg, m.keys.Prev):
		return m.step(nav.Backward), false
	case key.Matches(msg, m.keys.PageDown):
		return m.scrollBy(m.viewport.Height), false
	case key.Matches(msg, m.keys.PageUp):
		return m.scrollBy(-m.viewport.Height), false
	case key.Matches(msg, m.keys.HalfDown):
		return m.scrollBy(m.viewport.Height / 2), false
	case key.Matches(msg, m.keys.HalfUp):
		return m.scrollBy(-m.viewport.Height / 2), false
	case key.Matches(msg, m.keys.Top):
		return m.scrollTo(0), false
	case key.Matches(msg, m.keys.Bottom):
		return m.scrollTo(m.viewport.TotalLineCount()), false
	case key.Matches(msg, m.keys.Left):
		return m.cycleSelection(-1), false
	case key.Matches(msg, m.keys.Right):
		return m.cycleSelection(1), false
	case key.Matches(msg, m.keys.Jump):
		m.jump.SetValue("")
		m.nav.SetInputFocus(true)
		return m.jump.Focus(), false
	case key.Matches(msg, m.keys.Copy):
		return m.copySection(), false
	case key.Matches(msg, m.keys.Export):
		return m.startExport(), false
	}
	return nil, false
}

func (m *Model) handleJumpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.blurJump()
		return nil
	case tea.KeyEnter:
		query := m.jump.Value()
		m.blurJump()
		id, ok := m.matchSection(query)
		if !ok {
			m.setStatus(fmt.Sprintf("no section matches %q", query), true)
			return nil
		}
		return m.navigate(id)
	case tea.KeyCtrlC:
		m.blurJump()
		return tea.Quit
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return cmd
}

func (m *Model) blurJump() {
	m.jump.Blur()
	m.nav.SetInputFocus(false)
}

// matchSection resolves a jump query: a 1-based number, an exact id, a label
// prefix, then a label substring.
func (m Model) matchSection(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}
	sections := m.nav.Sections()
	if n, err := strconv.Atoi(q); err == nil {
		if n >= 1 && n <= len(sections) {
			return sections[n-1].ID, true
		}
		return "", false
	}
	for _, s := range sections {
		if strings.ToLower(s.ID) == q {
			return s.ID, true
		}
	}
	for _, s := range sections {
		if strings.HasPrefix(strings.ToLower(s.Label), q) {
			return s.ID, true
		}
	}
	for _, s := range sections {
		if strings.Contains(strings.ToLower(s.Label), q) {
			return s.ID, true
		}
	}
	return "", false
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.ready || m.showHelp {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.scrollBy(-wheelStep)
	case tea.MouseButtonWheelDown:
		return m.scrollBy(wheelStep)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
	default:
		return nil
	}

	railW := m.railWidth()
	if msg.X < railW {
		rl := newRailLayout(len(m.nav.Sections()))
		if i, ok := rl.entryAt(msg.Y); ok {
			return m.navigate(m.nav.Sections()[i].ID)
		}
		if msg.Y == rl.exportRow {
			return m.startExport()
		}
		return nil
	}

	if m.layout == nil || msg.Y >= m.viewport.Height {
		return nil
	}
	line := msg.Y + m.viewport.YOffset
	if h, ok := m.layout.hitAt(line, msg.X-m.contentX()); ok {
		return m.selectItem(h.block, h.index)
	}
	return nil
}

// step moves to the neighbouring section.
func (m *Model) step(dir nav.Direction) tea.Cmd {
	prev := m.nav.Active().ID
	if !m.nav.Step(dir) {
		return nil
	}
	return m.afterNavigate(prev)
}

// navigate activates id. Re-selecting the active section keeps scroll and
// counters as they are.
func (m *Model) navigate(id string) tea.Cmd {
	prev := m.nav.Active().ID
	if !m.nav.NavigateTo(id) {
		return nil
	}
	return m.afterNavigate(prev)
}

func (m *Model) afterNavigate(prev string) tea.Cmd {
	if m.nav.Active().ID == prev {
		m.scroll.reset = false
		return nil
	}
	debug.Log("ui: %s -> %s (progress %.0f%%)", prev, m.nav.Active().ID, m.nav.Progress())
	m.unmount()
	m.status = ""
	m.fadeSeq++
	m.fading = true
	return tea.Batch(fadeCmd(m.fadeSeq), m.mount())
}

// selectionKey identifies the local selection of one selectable block.
func (m Model) selectionKey(block int) string {
	return m.nav.Active().ID + "/" + strconv.Itoa(block)
}

// selectableBlock returns the first phases or cities block of the active
// section, and its item count.
func (m Model) selectableBlock() (int, int) {
	s := m.deck.Section(m.nav.Active().ID)
	if s == nil {
		return -1, 0
	}
	for i, b := range s.Blocks {
		switch b.Kind {
		case deck.KindPhases:
			return i, len(b.Phases)
		case deck.KindCities:
			return i, len(b.Cities)
		}
	}
	return -1, 0
}

func (m *Model) cycleSelection(delta int) tea.Cmd {
	block, n := m.selectableBlock()
	if block < 0 || n == 0 {
		return nil
	}
	cur := m.selection[m.selectionKey(block)]
	next := min(max(cur+delta, 0), n-1)
	return m.selectItem(block, next)
}

// selectItem changes the local selection of block. Only the section's own
// content is re-mounted; navigation state is untouched.
func (m *Model) selectItem(block, index int) tea.Cmd {
	k := m.selectionKey(block)
	if m.selection[k] == index {
		return nil
	}
	m.selection[k] = index
	return m.mount()
}

func (m *Model) scrollBy(delta int) tea.Cmd {
	return m.scrollTo(m.viewport.YOffset + delta)
}

func (m *Model) scrollTo(offset int) tea.Cmd {
	m.viewport.SetYOffset(offset)
	m.observer.Scroll(m.viewport.YOffset, m.viewport.Height)
	return m.scheduleFrame()
}

func (m *Model) copySection() tea.Cmd {
	s := m.deck.Section(m.nav.Active().ID)
	if s == nil {
		return nil
	}
	text := export.SectionMarkdown(s)
	write := m.clipboard
	label := s.Label
	return func() tea.Msg {
		return copyDoneMsg{label: label, err: write(text)}
	}
}

func (m *Model) startExport() tea.Cmd {
	if m.exporting {
		return nil
	}
	m.exporting = true
	m.setStatus("exporting to "+m.cfg.Export.Dir+"…", false)
	d := m.deck
	opts := export.Options{Dir: m.cfg.Export.Dir, Formats: m.cfg.Export.Formats}
	return func() tea.Msg {
		res, err := export.All(context.Background(), d, opts)
		return exportDoneMsg{res: res, err: err}
	}
}

// applyReload swaps in a reloaded deck. A failed reload keeps the deck on
// screen and only reports the error.
func (m *Model) applyReload(rl watcher.Reload) tea.Cmd {
	if rl.Err != nil {
		m.setStatus("reload failed, keeping previous deck: "+rl.Err.Error(), true)
		return nil
	}
	if rl.Deck == nil {
		return nil
	}

	prev := m.nav.Active().ID
	start := prev
	if rl.Deck.Section(start) == nil {
		start = rl.Deck.Sections[0].ID
	}
	ctrl, err := m.newController(rl.Deck, start)
	if err != nil {
		m.setStatus("reload failed, keeping previous deck: "+err.Error(), true)
		return nil
	}
	for _, s := range m.nav.Sections() {
		if m.nav.IsVisited(s.ID) && rl.Deck.Section(s.ID) != nil {
			ctrl.NavigateTo(s.ID)
		}
	}
	ctrl.NavigateTo(start)

	m.unmount()
	m.deck = rl.Deck
	m.source = rl.Source
	m.nav = ctrl
	m.setStatus("deck reloaded: "+rl.Diff.Summary(), false)
	return m.mount()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// mount lays out the active section and subscribes every parseable stat to
// the visibility observer. Counters that survive a re-layout keep their
// state; counters no longer on screen are released.
func (m *Model) mount() tea.Cmd {
	if !m.ready {
		return nil
	}
	if m.scroll.reset {
		m.viewport.SetYOffset(0)
		m.scroll.reset = false
	}
	m.refreshContent()

	if m.observer == nil {
		m.observer = anim.NewObserver(m.viewport.Height)
	}
	m.observer.Scroll(m.viewport.YOffset, m.viewport.Height)

	live := make(map[string]bool, len(m.layout.spots))
	duration := m.cfg.UI.AnimationDuration()
	for _, spot := range m.layout.spots {
		v, ok := stat.Parse(spot.raw)
		if !ok {
			continue
		}
		live[spot.key] = true
		c := m.counters[spot.key]
		if c == nil {
			c = &counter{value: v, anim: anim.New(v.Magnitude, duration)}
			m.counters[spot.key] = c
		} else if c.value != v {
			c.value = v
			c.anim.SetTarget(v.Magnitude)
		}
		c.sub.Release()
		a, clock := c.anim, m.clock
		sub, err := m.observer.Observe(spot.region, func(ratio float64) {
			a.Observe(ratio, clock())
		})
		if err != nil {
			debug.Log("ui: %s: %v, showing final value", spot.key, err)
			c.anim.Degrade()
		}
		c.sub = sub
	}
	for k, c := range m.counters {
		if !live[k] {
			c.sub.Release()
			c.anim.Release()
			delete(m.counters, k)
		}
	}

	m.refreshContent()
	return m.scheduleFrame()
}

// unmount releases every counter of the current section.
func (m *Model) unmount() {
	for k, c := range m.counters {
		c.sub.Release()
		c.anim.Release()
		delete(m.counters, k)
	}
	m.observer = nil
	m.frameScheduled = false
	m.frameSeq++
}

// scheduleFrame starts the frame loop when a counter is running and none is
// pending.
func (m *Model) scheduleFrame() tea.Cmd {
	if m.frameScheduled || !m.anyRunning() {
		return nil
	}
	m.frameScheduled = true
	seq := m.frameSeq
	return tea.Tick(m.cfg.UI.FrameInterval(), func(time.Time) tea.Msg { return frameMsg{seq: seq} })
}

func (m Model) anyRunning() bool {
	for _, c := range m.counters {
		if c.anim.Running() {
			return true
		}
	}
	return false
}

// value is the display text of the stat at key.
func (m Model) value(key, raw string) string {
	if c, ok := m.counters[key]; ok {
		return c.value.Format(c.anim.Value())
	}
	if v, ok := stat.Parse(raw); ok {
		return v.Format(0)
	}
	return raw
}

func (m Model) renderer() sectionRenderer {
	return sectionRenderer{
		theme: m.theme,
		width: m.viewport.Width,
		md:    m.md,
		value: m.value,
		selected: func(block int) int {
			return m.selection[m.selectionKey(block)]
		},
	}
}

// refreshContent re-renders the active section with current counter values.
func (m *Model) refreshContent() {
	defer metrics.Timer(metrics.UIRender)()
	m.layout = m.renderer().render(m.deck.Section(m.nav.Active().ID))
	m.viewport.SetContent(m.layout.String())
}

func (m Model) railWidth() int {
	w := m.cfg.UI.RailWidth
	if w <= 0 {
		w = config.DefaultConfig().UI.RailWidth
	}
	return max(min(w, m.width/2), 12)
}

// contentX is the screen column of content column 0.
func (m Model) contentX() int {
	return m.railWidth() + 1
}

func (m *Model) resize() {
	w := max(m.width-m.contentX(), 10)
	h := max(m.height-1, 1)
	m.viewport.Width = w
	m.viewport.Height = h
	if m.md == nil || m.md.Width() != w {
		m.md = NewMarkdownRenderer(w)
	}
	m.help.Width = w
	m.jump.Width = max(w-4, 10)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading deck…"
	}

	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			RenderHelp(m.theme, m.help, m.keys, m.width))
	}

	rail := renderRail(m.theme, m.deck.Title, m.deck.Subtitle, m.nav, m.keys, m.railWidth(), m.height)

	content := m.viewport.View()
	if m.fading {
		content = m.theme.MutedText.Faint(true).Render(ansi.Strip(content))
	}
	right := m.theme.Renderer.NewStyle().PaddingLeft(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, content, m.statusLine()))

	return lipgloss.JoinHorizontal(lipgloss.Top, rail, right)
}

func (m Model) statusLine() string {
	w := m.viewport.Width
	switch {
	case m.jump.Focused():
		return m.jump.View()
	case m.status != "":
		style := m.theme.StatusOK
		if m.statusErr {
			style = m.theme.StatusError
		}
		return style.Render(truncate(m.status, w))
	default:
		section := m.nav.Active()
		pos := fmt.Sprintf("%d/%d %s", m.nav.ActiveIndex()+1, len(m.nav.Sections()), section.Label)
		hints := m.help.ShortHelpView(m.keys.ShortHelp())
		room := w - lipgloss.Width(pos) - 3
		if room < 10 {
			return m.theme.MutedText.Render(truncate(pos, w))
		}
		return m.theme.SubText.Render(pos) + "   " + ansi.Truncate(hints, room, "…")
	}
}

// Active returns the id of the section on screen.
func (m Model) Active() string {
	return m.nav.Active().ID
}

// Source describes where the deck on screen was loaded from.
func (m Model) Source() datasource.DataSource {
	return m.source
}

// Progress returns the reading progress in percent.
func (m Model) Progress() float64 {
	return m.nav.Progress()
}
