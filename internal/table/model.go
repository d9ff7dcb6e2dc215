package table

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
)

// maxCellWidth bounds a rendered cell so one long value cannot push the
// remaining columns off screen.
const maxCellWidth = 40

// Model is an interactive table view: a title bar with an optional add
// affordance, a search box, and the filtered, sorted rows with an optional
// actions column.
//
// Keys: "/" search, esc/enter leave search, j/k g/G move, 1-9 toggle the sort
// of the n-th column, v/e/d row actions, a add.
type Model struct {
	Title      string
	Searchable bool
	Loading    bool

	OnView   func(Record) tea.Cmd
	OnEdit   func(Record) tea.Cmd
	OnDelete func(Record) tea.Cmd
	OnAdd    func() tea.Cmd

	records   []Record
	columns   []Column
	sort      SortState
	search    textinput.Model
	searching bool
	cursor    int
	width     int

	formatter *Formatter
	spinner   spinner.Model

	rows  []Record
	dirty bool
}

// New creates a searchable table with the given title. A nil formatter uses
// English.
func New(title string, f *Formatter) *Model {
	if f == nil {
		f = NewFormatter("en")
	}
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = f.Text(msgSearch)
	ti.Width = 30

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Accent

	return &Model{
		Title:      title,
		Searchable: true,
		search:     ti,
		formatter:  f,
		spinner:    s,
		dirty:      true,
	}
}

// SetRecords replaces the record set. The cursor is clamped on the next
// Rows call.
func (m *Model) SetRecords(records []Record) {
	m.records = records
	m.dirty = true
}

// SetColumns replaces the column schema. A sort on a column that no longer
// exists or is no longer sortable is cleared.
func (m *Model) SetColumns(cols []Column) {
	m.columns = cols
	if m.sort.Active() {
		if i := indexOf(cols, m.sort.Key); i < 0 || !cols[i].Sortable {
			m.sort = SortState{}
		}
	}
	m.dirty = true
}

// SetSearchPlaceholder overrides the localized default placeholder.
func (m *Model) SetSearchPlaceholder(s string) {
	m.search.Placeholder = s
}

// SetWidth sets the available render width; 0 means unbounded.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// Records returns the caller-supplied records.
func (m *Model) Records() []Record { return m.records }

// Columns returns the caller-supplied columns.
func (m *Model) Columns() []Column { return m.columns }

// Sort returns the current sort state.
func (m *Model) Sort() SortState { return m.sort }

// SearchTerm returns the current search text.
func (m *Model) SearchTerm() string { return m.search.Value() }

// SetSearch replaces the search text.
func (m *Model) SetSearch(term string) {
	m.search.SetValue(term)
	m.cursor = 0
	m.dirty = true
}

// Searching reports whether the search box has focus. While it does, the
// table consumes all keys.
func (m *Model) Searching() bool { return m.searching }

// ClickHeader activates the header of the i-th column. It returns false when
// the click was a no-op (out of range or not sortable).
func (m *Model) ClickHeader(i int) bool {
	if i < 0 || i >= len(m.columns) || !m.columns[i].Sortable {
		return false
	}
	m.sort = m.sort.Toggle(m.columns[i])
	m.dirty = true
	return true
}

// Rows returns the displayed sequence, sort(filter(records)). The result is
// memoized until records, columns, search or sort change.
func (m *Model) Rows() []Record {
	if m.dirty {
		filtered := m.records
		if m.Searchable {
			filtered = Filter(m.records, m.columns, m.search.Value())
		}
		m.rows = m.formatter.Sort(filtered, m.columns, m.sort)
		m.dirty = false
		if m.cursor >= len(m.rows) {
			m.cursor = max(len(m.rows)-1, 0)
		}
	}
	return m.rows
}

// Cursor returns the index of the selected row within Rows.
func (m *Model) Cursor() int { return m.cursor }

// Selected returns the record under the cursor.
func (m *Model) Selected() (Record, bool) {
	rows := m.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil, false
	}
	return rows[m.cursor], true
}

// HasActions reports whether the actions column is shown.
func (m *Model) HasActions() bool {
	return m.OnView != nil || m.OnEdit != nil || m.OnDelete != nil
}

// PlaceholderSpan is the number of columns the "no data" row spans. Zero
// means there is nothing to lay out and View reports that no columns exist.
// lipgloss tables have no column spans, so View draws the placeholder as a
// single line under the table, as wide as the table.
func (m *Model) PlaceholderSpan() int {
	n := len(m.columns)
	if m.HasActions() {
		n++
	}
	return n
}

// CellText exposes the formatter's rendering of a cell.
func (m *Model) CellText(col Column, rec Record) string {
	return m.formatter.CellText(col, rec)
}

// Init starts the spinner so that the loading state animates.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles navigation, search, sort and action keys.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.cursor = 0
		m.dirty = true
	}
	return m, cmd
}

func (m *Model) updateKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	s := msg.String()
	switch s {
	case "/":
		if m.Searchable {
			m.searching = true
			return m, m.search.Focus()
		}
	case "j", "down":
		if m.cursor < len(m.Rows())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(len(m.Rows())-1, 0)
	case "a":
		if m.OnAdd != nil {
			return m, m.OnAdd()
		}
	case "v":
		return m, m.rowAction(m.OnView)
	case "e":
		return m, m.rowAction(m.OnEdit)
	case "d":
		return m, m.rowAction(m.OnDelete)
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			m.ClickHeader(int(s[0] - '1'))
		}
	}
	return m, nil
}

func (m *Model) rowAction(fn func(Record) tea.Cmd) tea.Cmd {
	if fn == nil {
		return nil
	}
	rec, ok := m.Selected()
	if !ok {
		return nil
	}
	return fn(rec)
}

// View renders the table.
func (m *Model) View() string {
	var b strings.Builder

	header := styles.Title.Render(m.Title)
	if m.OnAdd != nil {
		header += "  " + styles.Hint.Render("[a] "+m.formatter.Text(msgAddNew))
	}
	b.WriteString(header + "\n")
	if m.Searchable {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString("\n")

	if m.Loading {
		b.WriteString(m.spinner.View() + " " + styles.Muted.Render(m.formatter.Text(msgLoading)))
		return b.String()
	}

	if m.PlaceholderSpan() == 0 {
		b.WriteString(styles.Empty.Render(m.formatter.Text(msgNoColumns)))
		return b.String()
	}

	rows := m.Rows()
	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers(m.headers()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return styles.Header
			case row == m.cursor:
				return styles.Selected
			default:
				return styles.Cell
			}
		})
	if m.width > 0 {
		t.Width(m.width)
	}
	for _, rec := range rows {
		t.Row(m.cells(rec)...)
	}
	rendered := t.String()
	b.WriteString(rendered)

	if len(rows) == 0 {
		width := lipgloss.Width(rendered)
		if width == 0 {
			width = lipgloss.Width(m.formatter.Text(msgNoData))
		}
		b.WriteString("\n" + m.placeholder(width))
	}
	return b.String()
}

func (m *Model) headers() []string {
	out := make([]string, 0, len(m.columns)+1)
	for i, col := range m.columns {
		title := col.Title
		if col.Sortable {
			if i < 9 {
				title = styles.Hint.Render(string(rune('1'+i))+" ") + title
			}
			if m.sort.Active() && m.sort.Key == col.Key {
				if m.sort.Direction == Ascending {
					title += " ▲"
				} else {
					title += " ▼"
				}
			}
		}
		out = append(out, title)
	}
	if m.HasActions() {
		out = append(out, m.formatter.Text(msgActions))
	}
	return out
}

func (m *Model) cells(rec Record) []string {
	out := make([]string, 0, len(m.columns)+1)
	for _, col := range m.columns {
		text := strings.ReplaceAll(m.formatter.CellText(col, rec), "\n", " ")
		out = append(out, ansi.Truncate(text, maxCellWidth, "…"))
	}
	if m.HasActions() {
		var actions []string
		if m.OnView != nil {
			actions = append(actions, "v "+m.formatter.Text(msgView))
		}
		if m.OnEdit != nil {
			actions = append(actions, "e "+m.formatter.Text(msgEdit))
		}
		if m.OnDelete != nil {
			actions = append(actions, styles.Danger.Render("d "+m.formatter.Text(msgDelete)))
		}
		out = append(out, strings.Join(actions, " · "))
	}
	return out
}

// placeholder renders the "no data" row across width cells of the table.
func (m *Model) placeholder(width int) string {
	return styles.Empty.Width(width).Align(lipgloss.Center).Render(m.formatter.Text(msgNoData))
}
