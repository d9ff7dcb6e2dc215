package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"forecastconsole/internal/jsonutil"
	"forecastconsole/internal/table"
)

// FieldKind selects the input widget and the validation of a form field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldMultiline
	FieldNumber
	FieldOptionalNumber
	FieldTime // HH:MM:SS, HH:MM accepted
	FieldSelect
	FieldBool
)

// Option is one choice of a select field.
type Option struct {
	Label string
	Value any
}

// Field describes one input of a resource form.
type Field struct {
	Key         string
	Label       string
	Kind        FieldKind
	Required    bool
	Min         *int // numbers only
	Placeholder string
	Default     any
	Options     func(Lookups) []Option // select only
}

func atLeast(n int) *int { return &n }

type formInput struct {
	field   Field
	text    textinput.Model
	area    textarea.Model
	options []Option
	choice  int
	checked bool
}

// FormModal edits one record. Tab and shift+tab move between fields, ←/→
// change a select or boolean, enter advances (submits on the last field),
// ctrl+s submits and esc cancels.
type FormModal struct {
	Title string
	Page  Page
	ID    int // 0 when creating

	inputs     []*formInput
	focus      int
	errors     map[string]string
	submitting bool
}

var _ View = (*FormModal)(nil)

const formInputWidth = 48

// NewFormModal builds a form for fields. A nil rec creates a new record;
// otherwise the inputs are pre-filled from rec and id is sent with the
// update.
func NewFormModal(page Page, title string, fields []Field, lk Lookups, rec table.Record, id int) *FormModal {
	m := &FormModal{Title: title, Page: page, ID: id, errors: map[string]string{}}
	for _, f := range fields {
		in := &formInput{field: f, choice: -1}
		var v any
		if rec != nil {
			v = rec[f.Key]
		} else {
			v = f.Default
		}
		switch f.Kind {
		case FieldMultiline:
			in.area = textarea.New()
			in.area.ShowLineNumbers = false
			in.area.Placeholder = f.Placeholder
			in.area.SetWidth(formInputWidth)
			in.area.SetHeight(4)
			in.area.CharLimit = 0
			if v != nil {
				in.area.SetValue(jsonutil.ToString(v))
			}
		case FieldSelect:
			if f.Options != nil {
				in.options = f.Options(lk)
			}
			if !f.Required {
				in.options = append([]Option{{Label: "None", Value: nil}}, in.options...)
			}
			in.choice = indexOfOption(in.options, v)
			if in.choice < 0 && len(in.options) > 0 && (v == nil || rec == nil) {
				in.choice = 0
			}
		case FieldBool:
			b, _ := v.(bool)
			in.checked = b
		default:
			in.text = textinput.New()
			in.text.Prompt = ""
			in.text.Placeholder = f.Placeholder
			in.text.Width = formInputWidth
			in.text.CharLimit = 0
			if v != nil {
				in.text.SetValue(jsonutil.ToString(v))
			}
		}
		m.inputs = append(m.inputs, in)
	}
	m.focusInput(0)
	return m
}

func indexOfOption(opts []Option, v any) int {
	for i, o := range opts {
		if sameValue(o.Value, v) {
			return i
		}
	}
	return -1
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aok := jsonutil.ToFloat(a)
	bf, bok := jsonutil.ToFloat(b)
	if aok && bok {
		return af == bf
	}
	return jsonutil.ToString(a) == jsonutil.ToString(b)
}

// Focused returns the index of the focused field.
func (m *FormModal) Focused() int { return m.focus }

// Errors returns the validation errors of the last submit, keyed by field.
func (m *FormModal) Errors() map[string]string { return m.errors }

// SetValue replaces the text of a text-like field. It is a no-op for
// selects and booleans.
func (m *FormModal) SetValue(key, value string) {
	for _, in := range m.inputs {
		if in.field.Key != key {
			continue
		}
		switch in.field.Kind {
		case FieldMultiline:
			in.area.SetValue(value)
		case FieldSelect, FieldBool:
		default:
			in.text.SetValue(value)
		}
	}
}

func (m *FormModal) focusInput(i int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	if cur := m.inputs[m.focus]; cur != nil {
		cur.text.Blur()
		cur.area.Blur()
	}
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	in := m.inputs[m.focus]
	switch in.field.Kind {
	case FieldMultiline:
		return in.area.Focus()
	case FieldSelect, FieldBool:
		return nil
	default:
		return in.text.Focus()
	}
}

// Init implements View.
func (m *FormModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements View.
func (m *FormModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if len(m.inputs) == 0 {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
			return m, dismiss
		}
		return m, nil
	}
	in := m.inputs[m.focus]
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		// cursor blinks
		var cmd tea.Cmd
		switch in.field.Kind {
		case FieldMultiline:
			in.area, cmd = in.area.Update(msg)
		case FieldSelect, FieldBool:
		default:
			in.text, cmd = in.text.Update(msg)
		}
		return m, cmd
	}
	switch km.String() {
	case "esc":
		return m, dismiss
	case "ctrl+s":
		return m, m.Submit()
	case "tab":
		return m, m.focusInput(m.focus + 1)
	case "shift+tab":
		return m, m.focusInput(m.focus - 1)
	case "enter":
		if in.field.Kind != FieldMultiline {
			if m.focus == len(m.inputs)-1 {
				return m, m.Submit()
			}
			return m, m.focusInput(m.focus + 1)
		}
	}

	switch in.field.Kind {
	case FieldSelect:
		if n := len(in.options); n > 0 {
			switch km.String() {
			case "left", "h":
				in.choice = (in.choice - 1 + n) % n
			case "right", "l", " ":
				in.choice = (in.choice + 1) % n
			}
		}
		return m, nil
	case FieldBool:
		switch km.String() {
		case "left", "right", " ", "h", "l":
			in.checked = !in.checked
		case "y":
			in.checked = true
		case "n":
			in.checked = false
		}
		return m, nil
	case FieldMultiline:
		var cmd tea.Cmd
		in.area, cmd = in.area.Update(km)
		return m, cmd
	default:
		var cmd tea.Cmd
		in.text, cmd = in.text.Update(km)
		return m, cmd
	}
}

func dismiss() tea.Msg { return DismissModalMsg{} }

// Submit validates the form. On success it returns a command producing a
// SubmitFormMsg; otherwise the errors are kept for display and it returns
// nil. While a save is in flight further submits are ignored.
func (m *FormModal) Submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	payload, errs := m.Values()
	m.errors = errs
	if len(errs) > 0 {
		return nil
	}
	m.submitting = true
	page, id := m.Page, m.ID
	return func() tea.Msg {
		return SubmitFormMsg{Page: page, ID: id, Payload: payload}
	}
}

// Submitting reports whether a submitted payload is awaiting the API.
func (m *FormModal) Submitting() bool { return m.submitting }

// SaveFailed re-enables submitting after the API rejected the payload.
func (m *FormModal) SaveFailed() { m.submitting = false }

// Values converts the inputs to a JSON payload, collecting one error per
// invalid field.
func (m *FormModal) Values() (map[string]any, map[string]string) {
	payload := make(map[string]any, len(m.inputs))
	errs := map[string]string{}
	for _, in := range m.inputs {
		f := in.field
		v, err := in.value()
		if err != nil {
			errs[f.Key] = err.Error()
			continue
		}
		payload[f.Key] = v
	}
	return payload, errs
}

func (in *formInput) value() (any, error) {
	f := in.field
	switch f.Kind {
	case FieldBool:
		return in.checked, nil
	case FieldSelect:
		if in.choice < 0 || in.choice >= len(in.options) || in.options[in.choice].Value == nil {
			if f.Required {
				return nil, fmt.Errorf("%s is required", f.Label)
			}
			return nil, nil
		}
		return in.options[in.choice].Value, nil
	}

	var raw string
	if f.Kind == FieldMultiline {
		raw = in.area.Value()
	} else {
		raw = in.text.Value()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if f.Required {
			return nil, fmt.Errorf("%s is required", f.Label)
		}
		return nil, nil
	}

	switch f.Kind {
	case FieldNumber, FieldOptionalNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number", f.Label)
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Errorf("%s must be at least %d", f.Label, *f.Min)
		}
		return n, nil
	case FieldTime:
		for _, layout := range []string{time.TimeOnly, "15:04"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(time.TimeOnly), nil
			}
		}
		return nil, fmt.Errorf("%s must be a time as HH:MM:SS", f.Label)
	}
	return raw, nil
}

// View implements View.
func (m *FormModal) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render(m.Title) + "\n\n")
	for i, in := range m.inputs {
		label := in.field.Label
		if in.field.Required {
			label += " *"
		}
		if i == m.focus {
			b.WriteString(Styles.Selected.Render("› "+label) + "\n")
		} else {
			b.WriteString(Styles.Label.Render("  "+label) + "\n")
		}
		b.WriteString(in.view(i == m.focus) + "\n")
		if e, ok := m.errors[in.field.Key]; ok {
			b.WriteString(Styles.Error.Render("  "+e) + "\n")
		}
	}
	if m.submitting {
		b.WriteString("\n" + Styles.Muted.Render("Saving..."))
		return Styles.Box.Render(b.String())
	}
	b.WriteString("\n" + Styles.Hint.Render("tab/shift+tab move · ←/→ choose · enter next · ctrl+s save · esc cancel"))
	return Styles.Box.Render(b.String())
}

func (in *formInput) view(focused bool) string {
	switch in.field.Kind {
	case FieldMultiline:
		return in.area.View()
	case FieldSelect:
		label := Styles.Empty.Render("no options")
		if in.choice >= 0 && in.choice < len(in.options) {
			label = in.options[in.choice].Label
		}
		if focused {
			return "  ‹ " + Styles.Selected.Render(label) + " ›"
		}
		return "    " + label
	case FieldBool:
		if in.checked {
			return "  [x] Yes"
		}
		return "  [ ] No"
	default:
		return "  " + in.text.View()
	}
}
