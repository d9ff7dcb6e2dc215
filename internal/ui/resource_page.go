package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"forecastconsole/internal/table"
)

// ResourcePage lists one API collection in a table. Row actions turn into
// Show*Msg messages handled by the app.
type ResourcePage struct {
	Spec  *PageSpec
	Table *table.Model

	lookups   Lookups
	formatter *table.Formatter
	now       func() time.Time
	loaded    bool
	err       error
}

var _ View = (*ResourcePage)(nil)

// NewResourcePage creates an empty page for spec. Records arrive through
// PageLoadedMsg.
func NewResourcePage(spec *PageSpec, locale string, now func() time.Time) *ResourcePage {
	if now == nil {
		now = time.Now
	}
	f := table.NewFormatter(locale)
	t := table.New(spec.Title, f)
	if spec.SearchPlaceholder != "" {
		t.SetSearchPlaceholder(spec.SearchPlaceholder)
	}
	p := &ResourcePage{Spec: spec, Table: t, formatter: f, now: now, lookups: Lookups{}}

	page := spec.Page
	t.OnView = func(rec table.Record) tea.Cmd {
		return func() tea.Msg { return ShowDetailMsg{Page: page, Record: rec} }
	}
	if spec.CanCreate {
		t.OnAdd = func() tea.Cmd {
			return func() tea.Msg { return ShowFormMsg{Page: page} }
		}
	}
	if spec.CanEdit {
		t.OnEdit = func(rec table.Record) tea.Cmd {
			return func() tea.Msg { return ShowFormMsg{Page: page, Record: rec} }
		}
	}
	if spec.CanDelete {
		t.OnDelete = func(rec table.Record) tea.Cmd {
			return func() tea.Msg { return ShowDeleteMsg{Page: page, Record: rec} }
		}
	}
	t.SetColumns(spec.Columns(p.env()))
	return p
}

func (p *ResourcePage) env() ColumnEnv {
	return ColumnEnv{Lookups: p.lookups, Formatter: p.formatter, Now: p.now()}
}

// Lookups returns the related collections loaded with the page.
func (p *ResourcePage) Lookups() Lookups { return p.lookups }

// Loaded reports whether the page has received data at least once.
func (p *ResourcePage) Loaded() bool { return p.loaded }

// Err returns the error of the last load, if it failed.
func (p *ResourcePage) Err() error { return p.err }

// StartLoading shows the spinner and returns its tick.
func (p *ResourcePage) StartLoading() tea.Cmd {
	p.Table.Loading = true
	return p.Table.Init()
}

// SetData installs freshly loaded records and lookups. Columns are rebuilt
// so that renderers see the new lookups.
func (p *ResourcePage) SetData(records []table.Record, lk Lookups) {
	if lk == nil {
		lk = Lookups{}
	}
	p.lookups = lk
	env := p.env()
	if p.Spec.Derive != nil {
		derived := make([]table.Record, len(records))
		for i, rec := range records {
			derived[i] = p.Spec.Derive(env, rec)
		}
		records = derived
	}
	p.Table.SetColumns(p.Spec.Columns(env))
	p.Table.SetRecords(records)
	p.Table.Loading = false
	p.loaded = true
	p.err = nil
}

// Init implements View.
func (p *ResourcePage) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (p *ResourcePage) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		if msg.Page != p.Spec.Page {
			return p, nil
		}
		if msg.Err != nil {
			p.Table.Loading = false
			p.err = msg.Err
			return p, nil
		}
		p.SetData(msg.Records, msg.Lookups)
		return p, nil
	case tea.WindowSizeMsg:
		p.Table.SetWidth(ComputeLayout(msg.Width, msg.Height).ContentWidth)
		return p, nil
	}
	var cmd tea.Cmd
	p.Table, cmd = p.Table.Update(msg)
	return p, cmd
}

// View implements View.
func (p *ResourcePage) View() string {
	out := p.Table.View()
	if p.err != nil {
		out += "\n\n" + Styles.Error.Render("Failed to load: "+p.err.Error())
	}
	return out
}
