package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"forecastconsole/internal/api"
	"forecastconsole/internal/table"
)

var dashboardLabels = map[api.Resource][2]string{
	api.AssetTypes: {"Asset Types", "Cryptocurrency categories"},
	api.Assets:     {"Assets", "Individual cryptocurrencies"},
	api.Schedules:  {"Schedules", "Automated query plans"},
	api.Forecasts:  {"Forecasts", "Generated forecasts"},
}

// DashboardView summarizes the system: collection counts, API health and
// the first assets.
type DashboardView struct {
	Counts  map[api.Resource]int
	Healthy bool
	Recent  *table.Model

	loading bool
	loaded  bool
	health  error
	spinner spinner.Model
}

var _ View = (*DashboardView)(nil)

// NewDashboardView creates an empty dashboard; data arrives through
// DashboardLoadedMsg.
func NewDashboardView(locale string) *DashboardView {
	recent := table.New("Recent Assets", table.NewFormatter(locale))
	recent.Searchable = false
	recent.SetColumns([]table.Column{
		{Key: "asset_id", Title: "ID"},
		{Key: "asset_name", Title: "Name"},
		{Key: "asset_symbol", Title: "Symbol"},
		{Key: "description", Title: "Description", Render: func(v any, _ table.Record) string {
			if s, _ := v.(string); s != "" {
				return s
			}
			return "No description"
		}},
	})
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Styles.Status
	return &DashboardView{Counts: map[api.Resource]int{}, Recent: recent, spinner: s}
}

// StartLoading shows the spinner and returns its tick.
func (d *DashboardView) StartLoading() tea.Cmd {
	d.loading = true
	return d.spinner.Tick
}

// Init implements View.
func (d *DashboardView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (d *DashboardView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case DashboardLoadedMsg:
		d.loading = false
		d.loaded = true
		d.Counts = msg.Counts
		d.Healthy = msg.Healthy
		d.health = msg.HealthErr
		d.Recent.SetRecords(msg.Recent)
		return d, nil
	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	case tea.WindowSizeMsg:
		d.Recent.SetWidth(ComputeLayout(msg.Width, msg.Height).ContentWidth)
	}
	return d, nil
}

// View implements View.
func (d *DashboardView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Dashboard") + "\n")
	b.WriteString(Styles.Muted.Render("Overview of the crypto forecasting system") + "\n\n")
	if d.loading && !d.loaded {
		b.WriteString(d.spinner.View() + " Loading...")
		return b.String()
	}

	cards := make([]string, 0, len(dashboardCounts))
	for _, r := range dashboardCounts {
		label := dashboardLabels[r]
		cards = append(cards, Styles.Card.Render(
			Styles.Muted.Render(label[0])+"\n"+
				Styles.CardValue.Render(strconv.Itoa(d.Counts[r]))+"\n"+
				Styles.Hint.Render(label[1])))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n\n")

	status := Styles.Success.Render("Connected")
	if !d.Healthy {
		status = Styles.Error.Render("Unreachable")
		if d.health != nil {
			status += Styles.Muted.Render("  " + d.health.Error())
		}
	}
	b.WriteString(Styles.Label.Render("API connection  ") + status + "\n\n")

	if len(d.Recent.Records()) == 0 {
		b.WriteString(Styles.Title.Render("Recent Assets") + "\n")
		b.WriteString(Styles.Empty.Render("No assets created yet"))
		return b.String()
	}
	b.WriteString(d.Recent.View())
	return b.String()
}
