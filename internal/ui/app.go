package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"forecastconsole/internal/ui/textutil"
)

// Options configures the console.
type Options struct {
	Backend Backend
	Logger  *zap.Logger
	Locale  string

	// RefreshInterval reloads the current page periodically; 0 disables.
	RefreshInterval time.Duration

	// DetailStyle is the glamour style of the record detail overlay.
	DetailStyle string

	Context context.Context
	Now     func() time.Time
}

// AppModel is the root of the console: a sidebar of pages, the active page,
// a stack of modal overlays and a status line.
type AppModel struct {
	Nav        *Navigator
	Dashboard  *DashboardView
	Pages      map[Page]*ResourcePage
	Specs      map[Page]*PageSpec
	Overlays   OverlayStack
	KeyHandler *KeyHandler

	Status        string
	StatusIsError bool

	backend     Backend
	log         *zap.Logger
	ctx         context.Context
	refresh     time.Duration
	detailStyle string
	width       int
	height      int
}

// NewAppModel creates the console on the dashboard.
func NewAppModel(opts Options) *AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.DetailStyle == "" {
		opts.DetailStyle = "dark"
	}
	a := &AppModel{
		Nav:         NewNavigator(allPages),
		Dashboard:   NewDashboardView(opts.Locale),
		Pages:       make(map[Page]*ResourcePage),
		Specs:       PageSpecs(),
		backend:     opts.Backend,
		log:         opts.Logger,
		ctx:         opts.Context,
		refresh:     opts.RefreshInterval,
		detailStyle: opts.DetailStyle,
	}
	for p, spec := range a.Specs {
		a.Pages[p] = NewResourcePage(spec, opts.Locale, opts.Now)
	}
	a.KeyHandler = NewKeyHandler(newRegistry())
	return a
}

func newRegistry() *KeybindRegistry {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", tea.Quit, "Quit")
	reg.BindWithDesc("ctrl+c", tea.Quit, "Quit")
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDesc("SPC r", func() tea.Msg { return RefreshMsg{} }, "Refresh")
	reg.BindWithDesc("tab", func() tea.Msg { return NextPageMsg{} }, "Next page")
	reg.BindWithDesc("shift+tab", func() tea.Msg { return PrevPageMsg{} }, "Previous page")
	for _, p := range allPages {
		reg.BindWithDesc("SPC g "+p.JumpKey(), func() tea.Msg { return GotoPageMsg{Page: p} }, p.String())
	}
	return reg
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (a *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: a}
}

// Current returns the active page.
func (a *AppModel) Current() Page {
	return a.Nav.Current
}

// currentView returns the view of the active page.
func (a *AppModel) currentView() View {
	if p, ok := a.Pages[a.Nav.Current]; ok {
		return p
	}
	return a.Dashboard
}

// load starts loading page.
func (a *AppModel) load(page Page) tea.Cmd {
	if a.backend == nil {
		return nil
	}
	if page == PageDashboard {
		return tea.Batch(a.Dashboard.StartLoading(), loadDashboardCmd(a.ctx, a.backend))
	}
	p, ok := a.Pages[page]
	if !ok {
		return nil
	}
	return tea.Batch(p.StartLoading(), loadPageCmd(a.ctx, a.backend, p.Spec))
}

func (a *AppModel) setStatus(s string) {
	a.Status = s
	a.StatusIsError = false
}

func (a *AppModel) setError(op string, err error) {
	a.Status = fmt.Sprintf("%s: %v", op, err)
	a.StatusIsError = true
	a.log.Error("api operation failed", zap.String("op", op), zap.Error(err))
}

var _ tea.Model = (*appModelAdapter)(nil)

type appModelAdapter struct {
	*AppModel
}

// Init loads the first page and starts the refresh timer.
func (a *appModelAdapter) Init() tea.Cmd {
	cmds := []tea.Cmd{a.load(a.Nav.Current)}
	if a.refresh > 0 {
		cmds = append(cmds, tickCmd(a.refresh))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		cmds := []tea.Cmd{a.Overlays.Broadcast(msg)}
		_, cmd := a.Dashboard.Update(msg)
		cmds = append(cmds, cmd)
		for _, p := range a.Pages {
			_, cmd := p.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case GotoPageMsg:
		if a.Nav.SetPage(msg.Page) {
			return a, a.load(msg.Page)
		}
		return a, nil
	case NextPageMsg:
		return a, a.load(a.Nav.Next())
	case PrevPageMsg:
		return a, a.load(a.Nav.Prev())

	case RefreshMsg:
		if a.backend != nil {
			a.backend.Purge()
		}
		a.setStatus("Refreshed " + a.Nav.Current.String())
		return a, a.load(a.Nav.Current)
	case tickMsg:
		if a.Overlays.Len() > 0 {
			return a, tickCmd(a.refresh)
		}
		return a, tea.Batch(a.load(a.Nav.Current), tickCmd(a.refresh))

	case PageLoadedMsg:
		if p, ok := a.Pages[msg.Page]; ok {
			p.Update(msg)
		}
		if msg.Err != nil {
			a.setError("load "+msg.Page.String(), msg.Err)
		}
		return a, nil
	case DashboardLoadedMsg:
		a.Dashboard.Update(msg)
		for _, err := range msg.Errs {
			a.setError("load dashboard", err)
		}
		return a, nil

	case ShowFormMsg:
		return a, a.showForm(msg)
	case ShowDetailMsg:
		title := msg.Page.String()
		if spec, ok := a.Specs[msg.Page]; ok {
			title = spec.Singular
		}
		d := NewDetailModal(title, msg.Record, a.detailStyle)
		if a.width > 0 {
			d.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		}
		a.Overlays.Push(Overlay{View: d})
		return a, d.Init()
	case ShowDeleteMsg:
		spec, ok := a.Specs[msg.Page]
		if !ok {
			return a, nil
		}
		id, ok := recordID(msg.Record, spec.IDKey)
		if !ok {
			a.setError("delete "+spec.Singular, fmt.Errorf("record has no %s", spec.IDKey))
			return a, nil
		}
		a.Overlays.Push(Overlay{View: NewDeleteConfirmModal(spec, msg.Record, id)})
		return a, nil

	case SubmitFormMsg:
		spec, ok := a.Specs[msg.Page]
		if !ok || a.backend == nil {
			return a, nil
		}
		a.setStatus("Saving...")
		return a, saveCmd(a.ctx, a.backend, spec, msg.ID, msg.Payload)
	case ConfirmDeleteMsg:
		a.Overlays.Pop()
		spec, ok := a.Specs[msg.Page]
		if !ok || a.backend == nil {
			return a, nil
		}
		a.setStatus("Deleting...")
		return a, deleteCmd(a.ctx, a.backend, spec, msg.ID)

	case RecordSavedMsg:
		if form, ok := a.savingForm(); ok && form.Page == msg.Page {
			a.Overlays.Pop()
		}
		verb := "updated"
		if msg.Created {
			verb = "created"
		}
		a.setStatus(fmt.Sprintf("%s %s", a.Specs[msg.Page].Singular, verb))
		return a, a.load(msg.Page)
	case RecordDeletedMsg:
		a.setStatus(fmt.Sprintf("%s #%d deleted", a.Specs[msg.Page].Singular, msg.ID))
		return a, a.load(msg.Page)
	case ErrorMsg:
		if form, ok := a.savingForm(); ok {
			form.SaveFailed()
		}
		a.setError(msg.Op, msg.Err)
		return a, nil

	case DismissModalMsg:
		a.Overlays.Pop()
		return a, nil
	}

	// spinner ticks, cursor blinks
	if cmd, ok := a.Overlays.UpdateTop(msg); ok {
		_, pageCmd := a.currentView().Update(msg)
		return a, tea.Batch(cmd, pageCmd)
	}
	_, cmd := a.currentView().Update(msg)
	return a, cmd
}

// savingForm returns the top overlay when it is a form waiting on a save.
func (a *AppModel) savingForm() (*FormModal, bool) {
	top, ok := a.Overlays.Peek()
	if !ok {
		return nil, false
	}
	form, ok := top.View.(*FormModal)
	if !ok || !form.Submitting() {
		return nil, false
	}
	return form, true
}

func (a *AppModel) showForm(msg ShowFormMsg) tea.Cmd {
	spec, ok := a.Specs[msg.Page]
	if !ok || len(spec.Fields) == 0 {
		return nil
	}
	page := a.Pages[msg.Page]
	title := "Add " + spec.Singular
	id := 0
	if msg.Record != nil {
		var ok bool
		if id, ok = recordID(msg.Record, spec.IDKey); !ok {
			a.setError("edit "+spec.Singular, fmt.Errorf("record has no %s", spec.IDKey))
			return nil
		}
		title = fmt.Sprintf("Edit %s #%d", spec.Singular, id)
	}
	form := NewFormModal(msg.Page, title, spec.Fields, page.Lookups(), msg.Record, id)
	a.Overlays.Push(Overlay{View: form})
	return form.Init()
}

// handleKey routes a key: overlays first, then an active search box, then
// the keybind registry, then the page.
func (a *AppModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if cmd, ok := a.Overlays.UpdateTop(msg); ok {
		return cmd
	}
	if p, ok := a.Pages[a.Nav.Current]; ok && p.Table.Searching() {
		_, cmd := p.Update(msg)
		return cmd
	}
	if consumed, cmd := a.KeyHandler.Handle(msg); consumed {
		return cmd
	}
	_, cmd := a.currentView().Update(msg)
	return cmd
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	layout := ComputeLayout(a.width, a.height)

	content := a.currentView().View()
	if top, ok := a.Overlays.Peek(); ok {
		content = top.View.View()
		if layout.ContentWidth > 0 && layout.ContentHeight > 0 {
			content = lipgloss.Place(layout.ContentWidth, layout.ContentHeight, lipgloss.Center, lipgloss.Center, content)
		}
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(layout), content)

	var footer string
	if a.KeyHandler.LeaderWaiting {
		footer = RenderKeybindHelp(a.KeyHandler, a.Nav.Current)
	} else {
		searching := false
		if p, ok := a.Pages[a.Nav.Current]; ok {
			searching = p.Table.Searching()
		}
		footer = RenderPageHelp(a.Nav.Current, searching)
	}
	return body + "\n" + a.renderStatus() + "\n" + footer
}

func (a *AppModel) renderSidebar(layout Layout) string {
	inner := layout.SidebarWidth - 3
	lines := []string{Styles.Title.Render(textutil.Truncate("Forecasts Console", inner)), ""}
	for _, p := range a.Nav.Order {
		label := textutil.PadRight(p.JumpKey()+" "+p.String(), inner)
		if p == a.Nav.Current {
			lines = append(lines, Styles.SidebarActive.Render(label))
		} else {
			lines = append(lines, Styles.SidebarItem.Render(label))
		}
	}
	return Styles.Sidebar.Render(strings.Join(lines, "\n"))
}

func (a *AppModel) renderStatus() string {
	if a.Status == "" {
		return ""
	}
	s := a.Status
	if a.width > 0 {
		s = textutil.Truncate(s, a.width)
	}
	if a.StatusIsError {
		return Styles.Error.Render(s)
	}
	return Styles.Status.Render(s)
}
