package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"testament.dev/pkg/testament/internal/adapter"
	"testament.dev/pkg/testament/internal/domain"
	m "testament.dev/pkg/testament/internal/model"
)

// TUI implements UI with an interactive Bubble Tea session: a navigable test
// tree, live run output, and failure details, with optional file watching.
type TUI struct {
	executor *domain.Executor
}

// NewTUI creates a TUI running tests through executor.
func NewTUI(executor *domain.Executor) *TUI {
	return &TUI{executor: executor}
}

// Run drives the session until the user quits.
func (t *TUI) Run(ctx context.Context, params SessionParams) error {
	model := newSessionModel(ctx, t.executor, params)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}

	return nil
}

type (
	discoveryMsg    struct{ event m.DiscoveryEvent }
	discoveryClosed struct{}
	execMsg         struct{ event m.ExecEvent }
	execClosed      struct{}
	pulseMsg        struct{}
	watchFailedMsg  struct{ err error }
)

func waitDiscovery(ch <-chan m.DiscoveryEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return discoveryClosed{}
		}

		return discoveryMsg{event: event}
	}
}

func waitExec(ch <-chan m.ExecEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return execClosed{}
		}

		return execMsg{event: event}
	}
}

func waitPulse(fw *adapter.FileWatcher) tea.Cmd {
	return func() tea.Msg {
		<-fw.Pulse()

		return pulseMsg{}
	}
}

const (
	rowProject = iota
	rowClass
	rowTest
)

// row addresses one visible line of the tree by index into the project
// slice.
type row struct {
	kind    int
	project int
	class   int
	test    int
}

type focusArea int

const (
	focusTree focusArea = iota
	focusOutput
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	passedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	focusedPane   = paneStyle.BorderForeground(lipgloss.Color("12"))
)

type sessionModel struct {
	ctx      context.Context
	executor *domain.Executor
	params   SessionParams

	projects    []m.Project
	failures    map[int]string
	discovering bool

	rows      []row
	cursor    int
	collapsed map[string]bool
	selected  map[string]bool

	filter     string
	filterMode bool

	focus       focusArea
	output      viewport.Model
	outputLines []string
	spin        spinner.Model

	running     bool
	building    bool
	runEvents   <-chan m.ExecEvent
	runProject  int
	runSelected []string
	runProgress int
	runTotal    int
	runQueue    []int

	watch   bool
	watcher *adapter.FileWatcher

	summary *domain.RunSummary
	status  string

	width  int
	height int
	ready  bool
}

func newSessionModel(ctx context.Context, executor *domain.Executor, params SessionParams) *sessionModel {
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	return &sessionModel{
		ctx:         ctx,
		executor:    executor,
		params:      params,
		projects:    params.Projects,
		failures:    map[int]string{},
		discovering: true,
		collapsed:   map[string]bool{},
		selected:    map[string]bool{},
		spin:        spin,
		runProject:  -1,
	}
}

func (sm *sessionModel) Init() tea.Cmd {
	cmds := []tea.Cmd{sm.spin.Tick, waitDiscovery(sm.params.Discovery)}

	if sm.params.Watch {
		cmds = append(cmds, sm.startWatching())
	}

	return tea.Batch(cmds...)
}

func (sm *sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		sm.resize(msg.Width, msg.Height)

		return sm, nil

	case spinner.TickMsg:
		if !sm.discovering && !sm.running && !sm.building {
			return sm, nil
		}

		var cmd tea.Cmd
		sm.spin, cmd = sm.spin.Update(msg)

		return sm, cmd

	case discoveryMsg:
		sm.applyDiscovery(msg.event)

		return sm, waitDiscovery(sm.params.Discovery)

	case discoveryClosed:
		sm.discovering = false

		return sm, nil

	case execMsg:
		cmd := sm.applyExec(msg.event)

		return sm, tea.Batch(cmd, waitExec(sm.runEvents))

	case execClosed:
		return sm, sm.finishRun()

	case pulseMsg:
		return sm, sm.onPulse()

	case watchFailedMsg:
		sm.watch = false
		sm.status = fmt.Sprintf("watch failed: %v", msg.err)

		return sm, nil

	case tea.KeyMsg:
		return sm.handleKey(msg)
	}

	return sm, nil
}

func (sm *sessionModel) resize(width, height int) {
	sm.width = width
	sm.height = height

	outputWidth := width - sm.treeWidth() - 4
	if outputWidth < 10 {
		outputWidth = 10
	}

	bodyHeight := sm.bodyHeight()

	if !sm.ready {
		sm.output = viewport.New(outputWidth, bodyHeight)
		sm.ready = true
	} else {
		sm.output.Width = outputWidth
		sm.output.Height = bodyHeight
	}

	sm.refreshOutput()
}

func (sm *sessionModel) treeWidth() int {
	half := sm.width / 2
	if half < 20 {
		return 20
	}

	return half
}

func (sm *sessionModel) bodyHeight() int {
	// Header, status bar, help line, pane borders.
	reserved := 7

	height := sm.height - reserved
	if height < 3 {
		return 3
	}

	return height
}

func (sm *sessionModel) applyDiscovery(event m.DiscoveryEvent) {
	switch e := event.(type) {
	case m.ProjectDiscovered:
		classes := e.Classes
		if len(sm.params.Preselected) > 0 {
			classes = domain.FilterClassesToTests(classes, sm.params.Preselected)
		}

		sm.projects[e.Index].Classes = classes
	case m.ProjectFailed:
		sm.failures[e.Index] = e.Message
	case m.DiscoveryComplete:
		sm.discovering = false
		sm.ensurePreselection()
	}

	sm.rebuildRows()
}

// ensurePreselection keeps a preselected session usable even when discovery
// found none of the changed tests: the changed set itself becomes the tree.
func (sm *sessionModel) ensurePreselection() {
	if len(sm.params.Preselected) == 0 {
		return
	}

	total := 0
	for i := range sm.projects {
		total += sm.projects[i].TestCount()
	}

	if total > 0 {
		return
	}

	synthetic := m.NewProject("changed tests", "")
	synthetic.Classes = domain.BuildSyntheticClasses(sm.params.Preselected)

	sm.projects = append(sm.projects, synthetic)
}

func (sm *sessionModel) applyExec(event m.ExecEvent) tea.Cmd {
	switch e := event.(type) {
	case m.ExecOutput:
		sm.appendOutput(e.Line)
	case m.ExecProgress:
		sm.runProgress++
	case m.ExecBuildDone:
		if e.Success {
			sm.appendOutput("build succeeded")
		} else {
			sm.appendOutput("build failed")
		}
	case m.ExecCompleted:
		if sm.runProject >= 0 && sm.runProject < len(sm.projects) {
			summary := domain.Correlate(&sm.projects[sm.runProject], e.Records)
			sm.summary = &summary
		}

		domain.ResetRunning(sm.projects)
		sm.rebuildRows()
	case m.ExecFailed:
		sm.appendOutput(e.Message)
		sm.status = e.Message

		domain.ResetRunning(sm.projects)
		sm.rebuildRows()
	}

	return nil
}

func (sm *sessionModel) finishRun() tea.Cmd {
	sm.running = false
	sm.building = false
	sm.runEvents = nil

	if len(sm.runQueue) > 0 {
		next := sm.runQueue[0]
		sm.runQueue = sm.runQueue[1:]

		return sm.startRun(next, nil)
	}

	return nil
}

func (sm *sessionModel) onPulse() tea.Cmd {
	if sm.watcher == nil {
		return nil
	}

	cmds := []tea.Cmd{waitPulse(sm.watcher)}

	if !sm.running && !sm.building && !sm.discovering && sm.runProject >= 0 {
		sm.status = "change detected, re-running"
		cmds = append(cmds, sm.startRun(sm.runProject, sm.runSelected))
	}

	return tea.Batch(cmds...)
}

func (sm *sessionModel) startWatching() tea.Cmd {
	debounceMS := sm.params.WatchDebounce
	if debounceMS <= 0 {
		debounceMS = 500
	}

	fw, err := adapter.NewFileWatcher(sm.params.SolutionDir, time.Duration(debounceMS)*time.Millisecond)
	if err != nil {
		return func() tea.Msg { return watchFailedMsg{err: err} }
	}

	sm.watcher = fw
	sm.watch = true

	return waitPulse(fw)
}

func (sm *sessionModel) stopWatching() {
	if sm.watcher != nil {
		_ = sm.watcher.Close()
		sm.watcher = nil
	}

	sm.watch = false
}

func (sm *sessionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if sm.filterMode {
		return sm.handleFilterKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		sm.stopWatching()

		return sm, tea.Quit

	case "tab", "shift+tab":
		if sm.focus == focusTree {
			sm.focus = focusOutput
		} else {
			sm.focus = focusTree
		}

	case "up", "k", "down", "j", "pgup", "pgdown":
		if sm.focus == focusOutput {
			var cmd tea.Cmd
			sm.output, cmd = sm.output.Update(msg)

			return sm, cmd
		}

		switch msg.String() {
		case "up", "k":
			if sm.cursor > 0 {
				sm.cursor--
			}
		case "down", "j":
			if sm.cursor < len(sm.rows)-1 {
				sm.cursor++
			}
		case "pgup":
			sm.cursor -= sm.bodyHeight()
			if sm.cursor < 0 {
				sm.cursor = 0
			}
		case "pgdown":
			sm.cursor += sm.bodyHeight()
			if sm.cursor > len(sm.rows)-1 {
				sm.cursor = len(sm.rows) - 1
			}
		}

	case "left", "h":
		sm.collapseAtCursor()

	case "right", "l":
		sm.expandAtCursor()

	case "c":
		sm.toggleCollapseAtCursor()

	case "C":
		for i := range sm.projects {
			sm.collapsed[sm.projectKey(i)] = true
		}

		sm.rebuildRows()

	case " ":
		sm.toggleSelectAtCursor()

	case "x":
		sm.selected = map[string]bool{}

	case "/":
		sm.filterMode = true

	case "r":
		return sm, sm.runAtCursor()

	case "R":
		return sm, sm.runProjectAtCursor()

	case "a":
		return sm, sm.runEverything()

	case "f":
		return sm, sm.rerunFailed()

	case "b":
		return sm, sm.buildAtCursor()

	case "w":
		if sm.watch {
			sm.stopWatching()

			return sm, nil
		}

		return sm, sm.startWatching()
	}

	return sm, nil
}

func (sm *sessionModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		sm.filterMode = false
		sm.filter = ""
		sm.rebuildRows()
	case tea.KeyEnter:
		sm.filterMode = false
	case tea.KeyBackspace:
		if sm.filter != "" {
			sm.filter = sm.filter[:len(sm.filter)-1]
			sm.rebuildRows()
		}
	case tea.KeyRunes, tea.KeySpace:
		sm.filter += string(msg.Runes)
		sm.rebuildRows()
	default:
	}

	return sm, nil
}

func (sm *sessionModel) projectKey(i int) string {
	return fmt.Sprintf("p:%d", i)
}

func (sm *sessionModel) classKey(p int, c int) string {
	return fmt.Sprintf("c:%d:%s", p, sm.projects[p].Classes[c].FullName())
}

func (sm *sessionModel) testKey(p int, c int, t int) string {
	return fmt.Sprintf("t:%s:%s", sm.projects[p].Path, sm.projects[p].Classes[c].Tests[t].FullName)
}

// matchesFilter reports whether a test survives the current filter text.
func (sm *sessionModel) matchesFilter(class m.Class, test m.Test) bool {
	if sm.filter == "" {
		return true
	}

	needle := strings.ToLower(sm.filter)

	return strings.Contains(strings.ToLower(test.FullName), needle) ||
		strings.Contains(strings.ToLower(class.FullName()), needle)
}

func (sm *sessionModel) rebuildRows() {
	sm.rows = sm.rows[:0]

	for pi := range sm.projects {
		sm.rows = append(sm.rows, row{kind: rowProject, project: pi})

		if sm.collapsed[sm.projectKey(pi)] {
			continue
		}

		for ci := range sm.projects[pi].Classes {
			class := &sm.projects[pi].Classes[ci]

			visible := 0
			for ti := range class.Tests {
				if sm.matchesFilter(*class, class.Tests[ti]) {
					visible++
				}
			}

			if sm.filter != "" && visible == 0 {
				continue
			}

			sm.rows = append(sm.rows, row{kind: rowClass, project: pi, class: ci})

			if sm.collapsed[sm.classKey(pi, ci)] {
				continue
			}

			for ti := range class.Tests {
				if sm.matchesFilter(*class, class.Tests[ti]) {
					sm.rows = append(sm.rows, row{kind: rowTest, project: pi, class: ci, test: ti})
				}
			}
		}
	}

	if sm.cursor >= len(sm.rows) {
		sm.cursor = len(sm.rows) - 1
	}

	if sm.cursor < 0 {
		sm.cursor = 0
	}
}

func (sm *sessionModel) cursorRow() (row, bool) {
	if sm.cursor < 0 || sm.cursor >= len(sm.rows) {
		return row{}, false
	}

	return sm.rows[sm.cursor], true
}

func (sm *sessionModel) collapseAtCursor() {
	r, ok := sm.cursorRow()
	if !ok {
		return
	}

	switch r.kind {
	case rowProject:
		sm.collapsed[sm.projectKey(r.project)] = true
	case rowClass:
		sm.collapsed[sm.classKey(r.project, r.class)] = true
	case rowTest:
		sm.collapsed[sm.classKey(r.project, r.class)] = true
	}

	sm.rebuildRows()
}

func (sm *sessionModel) expandAtCursor() {
	r, ok := sm.cursorRow()
	if !ok {
		return
	}

	switch r.kind {
	case rowProject:
		delete(sm.collapsed, sm.projectKey(r.project))
	case rowClass, rowTest:
		delete(sm.collapsed, sm.classKey(r.project, r.class))
	}

	sm.rebuildRows()
}

func (sm *sessionModel) toggleCollapseAtCursor() {
	r, ok := sm.cursorRow()
	if !ok {
		return
	}

	var key string

	switch r.kind {
	case rowProject:
		key = sm.projectKey(r.project)
	case rowClass, rowTest:
		key = sm.classKey(r.project, r.class)
	}

	if sm.collapsed[key] {
		delete(sm.collapsed, key)
	} else {
		sm.collapsed[key] = true
	}

	sm.rebuildRows()
}

func (sm *sessionModel) toggleSelectAtCursor() {
	r, ok := sm.cursorRow()
	if !ok {
		return
	}

	toggle := func(p, c, t int) {
		key := sm.testKey(p, c, t)
		if sm.selected[key] {
			delete(sm.selected, key)
		} else {
			sm.selected[key] = true
		}
	}

	switch r.kind {
	case rowTest:
		toggle(r.project, r.class, r.test)
	case rowClass:
		for ti := range sm.projects[r.project].Classes[r.class].Tests {
			toggle(r.project, r.class, ti)
		}
	case rowProject:
		for ci := range sm.projects[r.project].Classes {
			for ti := range sm.projects[r.project].Classes[ci].Tests {
				toggle(r.project, ci, ti)
			}
		}
	}
}

// selectionFor returns the selected test full names inside one project.
func (sm *sessionModel) selectionFor(projectIdx int) []string {
	var names []string

	project := &sm.projects[projectIdx]
	for ci := range project.Classes {
		for ti := range project.Classes[ci].Tests {
			if sm.selected[sm.testKey(projectIdx, ci, ti)] {
				names = append(names, project.Classes[ci].Tests[ti].FullName)
			}
		}
	}

	return names
}

func (sm *sessionModel) runAtCursor() tea.Cmd {
	r, ok := sm.cursorRow()
	if !ok || sm.running || sm.building || sm.projects[r.project].Path == "" {
		return nil
	}

	tests := sm.selectionFor(r.project)

	if len(tests) == 0 {
		switch r.kind {
		case rowTest:
			tests = []string{sm.projects[r.project].Classes[r.class].Tests[r.test].FullName}
		case rowClass:
			for _, test := range sm.projects[r.project].Classes[r.class].Tests {
				tests = append(tests, test.FullName)
			}
		case rowProject:
			// Whole project: empty selection runs everything.
		}
	}

	return sm.startRun(r.project, tests)
}

func (sm *sessionModel) runProjectAtCursor() tea.Cmd {
	r, ok := sm.cursorRow()
	if !ok || sm.running || sm.building || sm.projects[r.project].Path == "" {
		return nil
	}

	return sm.startRun(r.project, nil)
}

func (sm *sessionModel) runEverything() tea.Cmd {
	if sm.running || sm.building || len(sm.projects) == 0 {
		return nil
	}

	var runnable []int

	for i := range sm.projects {
		if sm.projects[i].Path != "" && sm.failures[i] == "" {
			runnable = append(runnable, i)
		}
	}

	if len(runnable) == 0 {
		return nil
	}

	sm.runQueue = runnable[1:]

	return sm.startRun(runnable[0], nil)
}

// rerunFailed repeats the last run narrowed to the tests it reported failing.
func (sm *sessionModel) rerunFailed() tea.Cmd {
	if sm.running || sm.building || sm.summary == nil || len(sm.summary.FailedNames) == 0 {
		return nil
	}

	if sm.runProject < 0 || sm.projects[sm.runProject].Path == "" {
		return nil
	}

	return sm.startRun(sm.runProject, sm.summary.FailedNames)
}

func (sm *sessionModel) buildAtCursor() tea.Cmd {
	r, ok := sm.cursorRow()
	if !ok || sm.running || sm.building || sm.projects[r.project].Path == "" {
		return nil
	}

	sm.building = true
	sm.status = "building " + sm.projects[r.project].Name
	sm.runEvents = sm.executor.Build(sm.ctx, sm.projects[r.project].Path)

	return tea.Batch(sm.spin.Tick, waitExec(sm.runEvents))
}

func (sm *sessionModel) startRun(projectIdx int, tests []string) tea.Cmd {
	project := &sm.projects[projectIdx]

	sm.running = true
	sm.runProject = projectIdx
	sm.runSelected = tests
	sm.runProgress = 0
	sm.summary = nil
	sm.status = "running " + project.Name

	sm.markRunning(projectIdx, tests)
	sm.rebuildRows()

	sm.runTotal = sm.countRunning(projectIdx)
	sm.runEvents = sm.executor.Run(sm.ctx, project.Path, tests)

	return tea.Batch(sm.spin.Tick, waitExec(sm.runEvents))
}

func (sm *sessionModel) markRunning(projectIdx int, tests []string) {
	wanted := map[string]bool{}
	for _, name := range tests {
		wanted[name] = true
	}

	project := &sm.projects[projectIdx]
	for ci := range project.Classes {
		for ti := range project.Classes[ci].Tests {
			test := &project.Classes[ci].Tests[ti]
			if len(wanted) == 0 || wanted[test.FullName] {
				test.Status = m.StatusRunning
			}
		}
	}
}

func (sm *sessionModel) countRunning(projectIdx int) int {
	count := 0

	project := &sm.projects[projectIdx]
	for ci := range project.Classes {
		for ti := range project.Classes[ci].Tests {
			if project.Classes[ci].Tests[ti].Status == m.StatusRunning {
				count++
			}
		}
	}

	return count
}

func (sm *sessionModel) appendOutput(line string) {
	sm.outputLines = append(sm.outputLines, line)

	const maxOutputLines = 2000
	if len(sm.outputLines) > maxOutputLines {
		sm.outputLines = sm.outputLines[len(sm.outputLines)-maxOutputLines:]
	}

	sm.refreshOutput()
}

func (sm *sessionModel) refreshOutput() {
	if !sm.ready {
		return
	}

	sm.output.SetContent(strings.Join(sm.outputLines, "\n"))
	sm.output.GotoBottom()
}

func statusGlyph(status m.TestStatus, spin string) string {
	switch status {
	case m.StatusPassed:
		return passedStyle.Render("✓")
	case m.StatusFailed:
		return failedStyle.Render("✗")
	case m.StatusSkipped:
		return skippedStyle.Render("∅")
	case m.StatusRunning:
		return runningStyle.Render(spin)
	default:
		return dimStyle.Render("·")
	}
}

func (sm *sessionModel) View() string {
	if !sm.ready {
		return "loading..."
	}

	var b strings.Builder

	b.WriteString(sm.renderHeader())
	b.WriteString("\n")

	tree := sm.renderTree()
	output := sm.renderOutputPane()

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tree, output))
	b.WriteString("\n")
	b.WriteString(sm.renderStatus())
	b.WriteString("\n")
	b.WriteString(sm.renderHelp())

	return b.String()
}

func (sm *sessionModel) renderHeader() string {
	title := "testament"
	if sm.params.Label != "" {
		title += " — " + sm.params.Label
	}

	if sm.discovering {
		title += "  " + sm.spin.View() + " discovering"
	}

	if sm.watch {
		title += "  [watching]"
	}

	return headerStyle.Render(title)
}

func (sm *sessionModel) renderTree() string {
	var b strings.Builder

	height := sm.bodyHeight()
	start := 0

	if sm.cursor >= height {
		start = sm.cursor - height + 1
	}

	end := start + height
	if end > len(sm.rows) {
		end = len(sm.rows)
	}

	for i := start; i < end; i++ {
		line := sm.renderRow(sm.rows[i])

		if i == sm.cursor && sm.focus == focusTree {
			line = cursorStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(sm.rows) == 0 {
		b.WriteString(dimStyle.Render("no tests discovered yet"))
	}

	style := paneStyle
	if sm.focus == focusTree {
		style = focusedPane
	}

	return style.Width(sm.treeWidth()).Height(height).Render(strings.TrimRight(b.String(), "\n"))
}

func (sm *sessionModel) renderRow(r row) string {
	project := &sm.projects[r.project]

	switch r.kind {
	case rowProject:
		marker := "▾"
		if sm.collapsed[sm.projectKey(r.project)] {
			marker = "▸"
		}

		line := fmt.Sprintf("%s %s (%d)", marker, project.Name, project.TestCount())
		if message, failed := sm.failures[r.project]; failed {
			line = fmt.Sprintf("%s %s — %s", marker, project.Name, failedStyle.Render(message))
		}

		return line

	case rowClass:
		class := &project.Classes[r.class]

		marker := "▾"
		if sm.collapsed[sm.classKey(r.project, r.class)] {
			marker = "▸"
		}

		name := class.FullName()
		if name == "" {
			name = "(uncategorized)"
		}

		return fmt.Sprintf("  %s %s", marker, name)

	default:
		test := &project.Classes[r.class].Tests[r.test]

		mark := " "
		if sm.selected[sm.testKey(r.project, r.class, r.test)] {
			mark = selectedStyle.Render("●")
		}

		name := test.Name
		if test.DurationMS > 0 && test.Status != m.StatusRunning {
			name = fmt.Sprintf("%s %s", name, dimStyle.Render(fmt.Sprintf("(%dms)", test.DurationMS)))
		}

		return fmt.Sprintf("    %s %s %s", mark, statusGlyph(test.Status, sm.spin.View()), name)
	}
}

func (sm *sessionModel) renderOutputPane() string {
	content := sm.output.View()

	if detail := sm.cursorFailureDetail(); detail != "" {
		limit := sm.bodyHeight() / 2

		lines := strings.Split(detail, "\n")
		if len(lines) > limit {
			lines = lines[:limit]
		}

		content = failedStyle.Render(strings.Join(lines, "\n")) + "\n" + dimStyle.Render(strings.Repeat("─", 8)) + "\n" + content
	}

	style := paneStyle
	if sm.focus == focusOutput {
		style = focusedPane
	}

	return style.Width(sm.output.Width).Height(sm.bodyHeight()).Render(content)
}

func (sm *sessionModel) cursorFailureDetail() string {
	r, ok := sm.cursorRow()
	if !ok || r.kind != rowTest {
		return ""
	}

	test := &sm.projects[r.project].Classes[r.class].Tests[r.test]
	if test.Status != m.StatusFailed || test.FailureDetail == "" {
		return ""
	}

	return test.FailureDetail
}

func (sm *sessionModel) renderStatus() string {
	if sm.filterMode {
		return "filter: " + sm.filter + "▌"
	}

	if sm.running {
		progress := fmt.Sprintf("%s %s  %d", sm.spin.View(), sm.status, sm.runProgress)
		if sm.runTotal > 0 {
			progress = fmt.Sprintf("%s %s  %d/%d", sm.spin.View(), sm.status, sm.runProgress, sm.runTotal)
		}

		return progress
	}

	if sm.building {
		return fmt.Sprintf("%s %s", sm.spin.View(), sm.status)
	}

	if sm.summary != nil {
		parts := []string{
			passedStyle.Render(fmt.Sprintf("%d passed", sm.summary.Passed)),
			failedStyle.Render(fmt.Sprintf("%d failed", sm.summary.Failed)),
			skippedStyle.Render(fmt.Sprintf("%d skipped", sm.summary.Skipped)),
		}

		return strings.Join(parts, "  ")
	}

	if sm.filter != "" {
		return "filter: " + sm.filter + "  (esc to clear)"
	}

	return sm.status
}

func (sm *sessionModel) renderHelp() string {
	return dimStyle.Render("↑/↓ move  space select  r run  R project  a all  f failed  b build  w watch  / filter  c/C collapse  tab pane  q quit")
}
