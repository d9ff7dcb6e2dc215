package table

import (
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"forecastconsole/internal/jsonutil"
)

// Placeholder shown for nil cell values.
const Placeholder = "-"

// Message keys translated through the x/text catalog.
const (
	msgYes       = "Yes"
	msgNo        = "No"
	msgNoData    = "No data available"
	msgLoading   = "Loading..."
	msgActions   = "Actions"
	msgAddNew    = "Add New"
	msgSearch    = "Search..."
	msgView      = "view"
	msgEdit      = "edit"
	msgDelete    = "delete"
	msgNoColumns = "No columns"
)

func init() {
	translations := map[language.Tag]map[string]string{
		language.German: {
			msgYes: "Ja", msgNo: "Nein", msgNoData: "Keine Daten verfügbar",
			msgLoading: "Wird geladen...", msgActions: "Aktionen", msgAddNew: "Neu anlegen",
			msgSearch: "Suchen...", msgView: "ansehen", msgEdit: "bearbeiten", msgDelete: "löschen",
			msgNoColumns: "Keine Spalten",
		},
		language.French: {
			msgYes: "Oui", msgNo: "Non", msgNoData: "Aucune donnée disponible",
			msgLoading: "Chargement...", msgActions: "Actions", msgAddNew: "Ajouter",
			msgSearch: "Rechercher...", msgView: "voir", msgEdit: "modifier", msgDelete: "supprimer",
			msgNoColumns: "Aucune colonne",
		},
		language.Spanish: {
			msgYes: "Sí", msgNo: "No", msgNoData: "No hay datos disponibles",
			msgLoading: "Cargando...", msgActions: "Acciones", msgAddNew: "Añadir",
			msgSearch: "Buscar...", msgView: "ver", msgEdit: "editar", msgDelete: "eliminar",
			msgNoColumns: "Sin columnas",
		},
	}
	for tag, entries := range translations {
		for key, msg := range entries {
			_ = message.SetString(tag, key, msg)
		}
	}
}

// dateTimePrefix matches strings that start like an ISO-8601 date-time.
var dateTimePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

// dateTimeLayouts are tried in order; naive timestamps are read as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
}

func isDateTime(s string) bool {
	return dateTimePrefix.MatchString(s)
}

func parseDateTime(s string) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// ParseTime reads an ISO-8601 date-time cell value. Naive values are UTC.
func ParseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || !isDateTime(s) {
		return time.Time{}, false
	}
	t, err := parseDateTime(s)
	return t, err == nil
}

// dateLayouts maps a base language to its short date layout.
var dateLayouts = map[string]string{
	"en": "1/2/2006",
	"de": "02.01.2006",
	"fr": "02/01/2006",
	"es": "02/01/2006",
}

// Formatter renders and compares cell values for one locale. It is not safe
// for concurrent use; each table owns its own.
type Formatter struct {
	tag        language.Tag
	dateLayout string
	collator   *collate.Collator
	printer    *message.Printer
}

// NewFormatter returns a formatter for a BCP 47 locale such as "en" or
// "de-CH". Unknown or malformed locales fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	base, _ := tag.Base()
	layout, ok := dateLayouts[base.String()]
	if !ok {
		layout = time.DateOnly
	}
	return &Formatter{
		tag:        tag,
		dateLayout: layout,
		collator:   collate.New(tag),
		printer:    message.NewPrinter(tag),
	}
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Text returns the localized form of one of the table's fixed labels.
func (f *Formatter) Text(key string) string {
	return f.printer.Sprintf(key)
}

// FormatValue renders a raw value with the default typed rules.
func (f *Formatter) FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return Placeholder
	case bool:
		if val {
			return f.Text(msgYes)
		}
		return f.Text(msgNo)
	case string:
		if isDateTime(val) {
			if t, err := parseDateTime(val); err == nil {
				return t.Format(f.dateLayout)
			}
		}
		return val
	}
	return jsonutil.ToString(v)
}

// CellText returns the displayed text of col for rec.
func (f *Formatter) CellText(col Column, rec Record) string {
	v := rec[col.Key]
	if col.Render != nil {
		return col.Render(v, rec)
	}
	return f.FormatValue(v)
}

// SearchText builds the lower-cased text a search term is matched against:
// one entry per column joined by single spaces.
func SearchText(rec Record, cols []Column) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		v := rec[col.Key]
		switch {
		case col.SearchValue != nil:
			parts[i] = col.SearchValue(v, rec)
		case col.Render != nil && !strings.EqualFold(col.Title, statusTitle):
			parts[i] = ansi.Strip(col.Render(v, rec))
		default:
			parts[i] = plainText(v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Filter keeps the records whose search text contains term, ignoring case.
// An empty term returns records unchanged.
func Filter(records []Record, cols []Column, term string) []Record {
	needle := strings.ToLower(term)
	if needle == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if strings.Contains(SearchText(rec, cols), needle) {
			out = append(out, rec)
		}
	}
	return out
}

func plainText(v any) string {
	return jsonutil.ToString(v)
}

func toNumber(v any) (float64, bool) {
	return jsonutil.ToFloat(v)
}
