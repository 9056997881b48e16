// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/jeranaias/wayne-tui/internal/api"
	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/session"
	"github.com/jeranaias/wayne-tui/internal/store"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
	"github.com/jeranaias/wayne-tui/internal/ui/views"
)

// Notices shown on the login screen when a session ends on its own.
const (
	NoticeExpired  = "Sessão expirada. Faça login novamente."
	NoticeExternal = "Sessão encerrada em outro terminal."
	NoticeLogout   = "Sessão encerrada."
)

// DefaultSessionCheck is how often the token expiry is checked.
const DefaultSessionCheck = 30 * time.Second

// Deps are the components the App drives.
type Deps struct {
	Client    *api.Client
	Sessions  *session.Manager
	Resources *store.Resources
	Incidents *store.Incidents
	// Changes is the storage watcher channel. nil disables external
	// login/logout detection.
	Changes <-chan struct{}
	Theme   *styles.Theme
	// Refresh is the periodic reload interval. 0 disables it.
	Refresh      time.Duration
	SessionCheck time.Duration
	Log          logrus.FieldLogger
}

// =============================================================================
// APP MODEL
// =============================================================================

// App is the Bubble Tea model of the dashboard.
type App struct {
	ctx       context.Context
	client    *api.Client
	sessions  *session.Manager
	resources *store.Resources
	incidents *store.Incidents
	changes   <-chan struct{}
	theme     *styles.Theme
	keys      KeyMap
	log       logrus.FieldLogger

	refresh      time.Duration
	sessionCheck time.Duration

	width  int
	height int
	screen views.Screen

	// Login
	username textinput.Model
	password textinput.Model
	loginErr string
	notice   string

	// Data
	stats    *model.Stats
	resTable table.Model
	incTable table.Model
	form     *addForm
	confirm  *pendingRemove
	help     viewport.Model

	spinner spinner.Model
	pending int

	status    string
	statusErr bool
}

type pendingRemove struct {
	kind views.Kind
	id   int
	name string
}

// New creates the App. If deps.Sessions already holds a session (restored
// from storage) the app opens on the dashboard.
func New(ctx context.Context, deps Deps) *App {
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme(styles.ModeAuto)
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.SessionCheck <= 0 {
		deps.SessionCheck = DefaultSessionCheck
	}

	user := textinput.New()
	user.Prompt = "> "
	user.Placeholder = "usuário"
	user.CharLimit = 50
	user.Focus()

	pass := textinput.New()
	pass.Prompt = "> "
	pass.Placeholder = "senha"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.WayneGold)

	a := &App{
		ctx:          ctx,
		client:       deps.Client,
		sessions:     deps.Sessions,
		resources:    deps.Resources,
		incidents:    deps.Incidents,
		changes:      deps.Changes,
		theme:        deps.Theme,
		keys:         DefaultKeyMap(),
		log:          deps.Log,
		refresh:      deps.Refresh,
		sessionCheck: deps.SessionCheck,
		width:        deps.Theme.Width,
		height:       deps.Theme.Height,
		screen:       views.ScreenLogin,
		username:     user,
		password:     pass,
		spinner:      sp,
		help:         viewport.New(deps.Theme.Width, deps.Theme.Height-4),
	}
	a.resTable = a.newTable(views.KindResources)
	a.incTable = a.newTable(views.KindIncidents)
	if a.sessions.Current() != nil {
		a.screen = views.ScreenDashboard
	}
	return a
}

func (a *App) newTable(kind views.Kind) table.Model {
	return table.New(
		table.WithColumns(views.Columns(kind, a.width)),
		table.WithHeight(a.tableHeight()),
		table.WithFocused(true),
		table.WithStyles(views.TableStyles(a.theme)),
	)
}

func (a *App) tableHeight() int {
	// header + controls + status bar + table header
	h := a.height - 6
	if h < 3 {
		h = 3
	}
	return h
}

// Screen returns the current screen.
func (a *App) Screen() views.Screen {
	return a.screen
}

// State returns the snapshot the renderers draw from.
func (a *App) State() views.AppState {
	var stats *model.Stats
	if a.stats != nil {
		s := *a.stats
		stats = &s
	}
	return views.AppState{
		Session:   a.sessions.Current(),
		Resources: a.resources.Items(),
		Incidents: a.incidents.Items(),
		Stats:     stats,
		Theme:     a.theme,
		Width:     a.width,
		Height:    a.height,
	}
}

// Init starts the background loops and, with a restored session, the first
// load.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		session.TickCmd(a.sessionCheck),
		waitForStorage(a.changes),
		refreshTick(a.refresh),
	}
	if a.screen != views.ScreenLogin {
		cmds = append(cmds, a.refreshAll())
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleResize(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case LoginResultMsg:
		a.done()
		return a.handleLoginResult(msg)

	case LogoutMsg:
		a.done()
		if msg.Err != nil {
			a.log.WithError(msg.Err).Warn("logout did not clear stored token")
		}
		return a, a.toLogin(NoticeLogout)

	case LoadedMsg:
		a.done()
		if msg.Err != nil {
			return a, a.handleError(msg.Err)
		}
		a.syncTables()
		return a, nil

	case StatsMsg:
		a.done()
		if a.screen == views.ScreenLogin {
			return a, nil
		}
		if msg.Err != nil {
			// The dashboard falls back to stats computed from the caches.
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				return a, a.handleError(msg.Err)
			}
			a.log.WithError(msg.Err).Debug("stats unavailable")
			a.stats = nil
			return a, nil
		}
		a.stats = msg.Stats
		return a, nil

	case MutationMsg:
		a.done()
		return a.handleMutation(msg)

	case StorageChangedMsg:
		return a, tea.Batch(a.handleStorageChange(), waitForStorage(a.changes))

	case session.TickMsg:
		return a, a.sessions.HandleTick(a.ctx, a.sessionCheck)

	case session.ExpiredMsg:
		if a.screen == views.ScreenLogin {
			return a, nil
		}
		return a, a.toLogin(NoticeExpired)

	case RefreshTickMsg:
		var cmd tea.Cmd
		if a.screen != views.ScreenLogin && a.form == nil {
			cmd = a.refreshAll()
		}
		return a, tea.Batch(cmd, refreshTick(a.refresh))

	case spinner.TickMsg:
		if a.pending == 0 {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Cursor blink and other component messages.
	return a, a.updateFocused(msg)
}

func (a *App) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height
	a.theme.SetSize(msg.Width, msg.Height)

	for kind, t := range map[views.Kind]*table.Model{views.KindResources: &a.resTable, views.KindIncidents: &a.incTable} {
		t.SetRows(nil)
		t.SetColumns(views.Columns(kind, a.width))
		t.SetHeight(a.tableHeight())
	}
	a.syncTables()

	a.help.Width = msg.Width
	a.help.Height = msg.Height - 4
	if a.screen == views.ScreenHelp {
		a.help.SetContent(views.Help(a.State()))
	}
	return a, nil
}

// syncTables copies the caches into the tables.
func (a *App) syncTables() {
	state := a.State()
	a.resTable.SetRows(views.Rows(views.KindResources, state))
	a.incTable.SetRows(views.Rows(views.KindIncidents, state))
}

func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.screen == views.ScreenLogin:
		var c1, c2 tea.Cmd
		a.username, c1 = a.username.Update(msg)
		a.password, c2 = a.password.Update(msg)
		cmd = tea.Batch(c1, c2)
	case a.form != nil:
		cmd = a.form.update(msg)
	}
	return cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		return a, tea.Quit
	}

	switch {
	case a.screen == views.ScreenLogin:
		return a.handleLoginKey(msg)
	case a.form != nil:
		return a.handleFormKey(msg)
	case a.confirm != nil:
		return a.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Logout):
		return a, a.track(a.logoutCmd())
	case key.Matches(msg, a.keys.Refresh):
		a.setStatus("", false)
		return a, a.refreshAll()
	case key.Matches(msg, a.keys.NextTab):
		return a, a.cycleScreen(1)
	case key.Matches(msg, a.keys.PrevTab):
		return a, a.cycleScreen(-1)
	case key.Matches(msg, a.keys.GoTo):
		n, _ := strconv.Atoi(msg.String())
		visible := views.VisibleScreens(a.State())
		if n >= 1 && n <= len(visible) {
			a.switchTo(visible[n-1])
		}
		return a, nil
	}

	if kind, ok := a.tableKind(); ok {
		switch {
		case key.Matches(msg, a.keys.Add):
			return a, a.openForm(kind)
		case key.Matches(msg, a.keys.Remove):
			a.askRemove(kind)
			return a, nil
		}
		var cmd tea.Cmd
		if kind == views.KindIncidents {
			a.incTable, cmd = a.incTable.Update(msg)
		} else {
			a.resTable, cmd = a.resTable.Update(msg)
		}
		return a, cmd
	}

	if a.screen == views.ScreenHelp {
		var cmd tea.Cmd
		a.help, cmd = a.help.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) tableKind() (views.Kind, bool) {
	switch a.screen {
	case views.ScreenResources:
		return views.KindResources, true
	case views.ScreenIncidents:
		return views.KindIncidents, true
	}
	return 0, false
}

func (a *App) cycleScreen(delta int) tea.Cmd {
	visible := views.VisibleScreens(a.State())
	if len(visible) == 0 {
		return nil
	}
	idx := 0
	for i, s := range visible {
		if s == a.screen {
			idx = i
		}
	}
	idx = ((idx+delta)%len(visible) + len(visible)) % len(visible)
	a.switchTo(visible[idx])
	return nil
}

func (a *App) switchTo(s views.Screen) {
	if !s.Allowed(a.State()) {
		a.setStatus(model.MsgPermissionDenied, true)
		return
	}
	a.screen = s
	if s == views.ScreenHelp {
		a.help.SetContent(views.Help(a.State()))
		a.help.GotoTop()
	}
}

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Submit):
		if a.pending > 0 {
			return a, nil
		}
		if a.username.Focused() {
			a.username.Blur()
			return a, a.password.Focus()
		}
		user := strings.TrimSpace(a.username.Value())
		pass := a.password.Value()
		if user == "" || pass == "" {
			a.loginErr = model.MsgInvalidCredentials
			return a, nil
		}
		a.loginErr = ""
		a.notice = ""
		return a, a.track(a.loginCmd(user, pass))

	case key.Matches(msg, a.keys.NextField), key.Matches(msg, a.keys.PrevField):
		if a.username.Focused() {
			a.username.Blur()
			return a, a.password.Focus()
		}
		a.password.Blur()
		return a, a.username.Focus()
	}

	var cmd tea.Cmd
	if a.username.Focused() {
		a.username, cmd = a.username.Update(msg)
	} else {
		a.password, cmd = a.password.Update(msg)
	}
	return a, cmd
}

func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.form.busy {
		return a, nil
	}
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.form = nil
		return a, nil
	case key.Matches(msg, a.keys.NextField):
		return a, a.form.next()
	case key.Matches(msg, a.keys.PrevField):
		return a, a.form.prev()
	case key.Matches(msg, a.keys.Submit):
		return a, a.submitForm()
	}
	return a, a.form.update(msg)
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.confirm
	switch {
	case key.Matches(msg, a.keys.Confirm):
		a.confirm = nil
		if !a.sessions.HasPermission(p.kind.RemoveAction()) {
			a.setStatus(model.MsgPermissionDenied, true)
			return a, nil
		}
		return a, a.track(a.removeCmd(p.kind, p.id))
	case key.Matches(msg, a.keys.Deny):
		a.confirm = nil
		a.setStatus("", false)
	}
	return a, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

func (a *App) openForm(kind views.Kind) tea.Cmd {
	if !a.sessions.HasPermission(kind.AddAction()) {
		a.setStatus(model.MsgPermissionDenied, true)
		return nil
	}
	if kind == views.KindIncidents {
		a.form = newIncidentForm()
	} else {
		a.form = newResourceForm()
	}
	a.setStatus("", false)
	return textinput.Blink
}

func (a *App) submitForm() tea.Cmd {
	f := a.form
	if !a.sessions.HasPermission(f.kind.AddAction()) {
		f.err = model.MsgPermissionDenied
		return nil
	}

	var cmd tea.Cmd
	if f.kind == views.KindIncidents {
		in, err := f.incidentInput()
		if err != nil {
			f.err = model.UserMessage(err)
			return nil
		}
		cmd = a.addIncidentCmd(in)
	} else {
		in, err := f.resourceInput()
		if err != nil {
			f.err = model.UserMessage(err)
			return nil
		}
		cmd = a.addResourceCmd(in)
	}
	f.err = ""
	f.busy = true
	return a.track(cmd)
}

func (a *App) askRemove(kind views.Kind) {
	if !a.sessions.HasPermission(kind.RemoveAction()) {
		a.setStatus(model.MsgPermissionDenied, true)
		return
	}
	t := &a.resTable
	if kind == views.KindIncidents {
		t = &a.incTable
	}
	row := t.SelectedRow()
	if len(row) < 2 {
		return
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return
	}
	a.confirm = &pendingRemove{kind: kind, id: id, name: row[1]}
	if kind == views.KindResources {
		a.confirm.name = row[2]
	}
}

func (a *App) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.loginErr = api.UserMessage(msg.Err)
		if errors.Is(msg.Err, session.ErrNoSubject) || errors.Is(msg.Err, session.ErrEmptyToken) {
			a.loginErr = model.MsgInvalidCredentials
		}
		a.password.SetValue("")
		return a, nil
	}
	a.loginErr = ""
	a.notice = ""
	a.username.SetValue("")
	a.password.SetValue("")
	a.screen = views.ScreenDashboard
	a.setStatus(fmt.Sprintf("Bem-vindo, %s.", msg.Session.Username), false)
	return a, a.refreshAll()
}

func (a *App) handleMutation(msg MutationMsg) (tea.Model, tea.Cmd) {
	if a.form != nil {
		a.form.busy = false
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			return a, a.handleError(msg.Err)
		}
		text := api.UserMessage(msg.Err)
		if a.form != nil && msg.Op == OpAdd {
			a.form.err = text
			return a, nil
		}
		a.setStatus(text, true)
		return a, nil
	}

	a.syncTables()
	switch {
	case msg.Op == OpAdd && msg.Kind == views.KindIncidents:
		a.form = nil
		a.setStatus("Incidente registrado.", false)
	case msg.Op == OpAdd:
		a.form = nil
		a.setStatus("Recurso salvo.", false)
	case msg.Kind == views.KindIncidents:
		a.setStatus(fmt.Sprintf("Incidente %d removido.", msg.ID), false)
	default:
		a.setStatus(fmt.Sprintf("Recurso %d removido.", msg.ID), false)
	}
	return a, a.track(a.statsCmd())
}

// handleError routes a failed request: a 401 ends the session, anything
// else is shown in the status bar.
func (a *App) handleError(err error) tea.Cmd {
	if errors.Is(err, api.ErrUnauthorized) {
		// A 401 for the current token has already ended the session. One
		// that left a session behind answered an older token.
		if a.screen == views.ScreenLogin || a.sessions.Current() != nil {
			return nil
		}
		return a.toLogin(NoticeExpired)
	}
	a.setStatus(api.UserMessage(err), true)
	return nil
}

func (a *App) handleStorageChange() tea.Cmd {
	changed, err := a.sessions.Sync(a.ctx)
	if err != nil {
		a.log.WithError(err).Debug("stored token not usable")
	}
	if !changed {
		return nil
	}
	current := a.sessions.Current()
	switch {
	case current == nil && a.screen != views.ScreenLogin:
		return a.toLogin(NoticeExternal)
	case current != nil && a.screen == views.ScreenLogin:
		a.screen = views.ScreenDashboard
		a.setStatus(fmt.Sprintf("Sessão de %s retomada.", current.Username), false)
		return a.refreshAll()
	case current != nil:
		// Another user logged in elsewhere; the caches belong to the old one.
		a.resources.Clear()
		a.incidents.Clear()
		a.stats = nil
		a.switchTo(views.ScreenDashboard)
		return a.refreshAll()
	}
	return nil
}

// toLogin drops all per-session state and shows the login screen.
func (a *App) toLogin(notice string) tea.Cmd {
	if a.sessions.Current() != nil {
		if err := a.sessions.End(a.ctx); err != nil {
			a.log.WithError(err).Warn("failed to clear token")
		}
	}
	a.resources.Clear()
	a.incidents.Clear()
	a.syncTables()
	a.stats = nil
	a.form = nil
	a.confirm = nil
	a.screen = views.ScreenLogin
	a.notice = notice
	a.loginErr = ""
	a.setStatus("", false)
	a.password.SetValue("")
	a.password.Blur()
	return a.username.Focus()
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusErr = isErr
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the current screen.
func (a *App) View() string {
	state := a.State()
	frame := ""
	if a.pending > 0 {
		frame = a.spinner.View()
	}

	if a.screen == views.ScreenLogin {
		return views.Login(state, views.LoginView{
			Username: a.username.View(),
			Password: a.password.View(),
			Error:    a.loginErr,
			Busy:     frame,
			Notice:   a.notice,
		})
	}

	var body string
	switch a.screen {
	case views.ScreenDashboard:
		body = views.Dashboard(state)
	case views.ScreenResources, views.ScreenIncidents:
		body = a.tableView(state)
	case views.ScreenReports:
		body = views.Reports(state)
	case views.ScreenHelp:
		body = a.help.View()
	}

	bindings := a.keys.ShortHelp(a.screen)
	if a.form != nil {
		bindings = a.keys.FormHelp()
	}
	status := a.status
	if frame != "" && a.form == nil {
		status = strings.TrimSpace(frame + " carregando... " + status)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		views.Header(state, a.screen),
		body,
		views.StatusBar(state, bindings, status, a.statusErr),
	)
}

func (a *App) tableView(state views.AppState) string {
	kind, _ := a.tableKind()
	if a.form != nil && a.form.kind == kind {
		frame := ""
		if a.pending > 0 {
			frame = a.spinner.View()
		}
		return views.Form(state, a.form.view(frame))
	}

	var b strings.Builder
	rows := len(state.Resources)
	t := a.resTable
	if kind == views.KindIncidents {
		rows = len(state.Incidents)
		t = a.incTable
	}
	if rows == 0 {
		b.WriteString(views.EmptyTable(state, kind))
	} else {
		b.WriteString(t.View())
	}
	b.WriteString("\n")
	if p := a.confirm; p != nil {
		b.WriteString(a.theme.WarningStyle.Render(fmt.Sprintf("Remover #%d %q? (s/n)", p.id, p.name)))
	} else {
		b.WriteString(views.Controls(state, kind, a.keys.Add, a.keys.Remove))
	}
	return b.String()
}
