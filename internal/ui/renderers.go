package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"forecastconsole/internal/api"
	"forecastconsole/internal/jsonutil"
	"forecastconsole/internal/table"
)

// ColumnEnv is what column renderers may read besides the record itself.
type ColumnEnv struct {
	Lookups   Lookups
	Formatter *table.Formatter
	Now       time.Time
}

// timestampLayout renders date-times where the time of day matters.
const timestampLayout = "2006-01-02 15:04 MST"

// orDash renders empty strings like missing values.
func orDash(v any, _ table.Record) string {
	if s := jsonutil.ToString(v); s != "" {
		return s
	}
	return table.Placeholder
}

// preview shortens text to n runes followed by "...".
func preview(n int) table.RenderFunc {
	return func(v any, _ table.Record) string {
		s := jsonutil.ToString(v)
		if s == "" {
			return table.Placeholder
		}
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n]) + "..."
	}
}

// lookupName resolves a foreign key through env's lookups. Unresolved keys
// render through fallback.
func lookupName(env ColumnEnv, r api.Resource, idKey, nameKey string, fallback func(v any) string) table.RenderFunc {
	return func(v any, _ table.Record) string {
		if name := env.Lookups.Name(r, idKey, nameKey, v); name != "" {
			return name
		}
		return fallback(v)
	}
}

func unknown(any) string { return "Unknown" }

func labelled(prefix string) func(any) string {
	return func(v any) string {
		if v == nil {
			return table.Placeholder
		}
		return prefix + " " + jsonutil.ToString(v)
	}
}

// timestamp renders an ISO date-time with its time of day in UTC.
func timestamp(v any, _ table.Record) string {
	if v == nil {
		return table.Placeholder
	}
	if t, ok := table.ParseTime(v); ok {
		return t.UTC().Format(timestampLayout)
	}
	return jsonutil.ToString(v)
}

// relativeTime renders a date-time relative to env.Now ("3 hours ago").
func relativeTime(env ColumnEnv) table.RenderFunc {
	return func(v any, _ table.Record) string {
		t, ok := table.ParseTime(v)
		if !ok {
			return orDash(v, nil)
		}
		return humanize.RelTime(t, env.Now, "ago", "from now")
	}
}

// percent renders a 0..1 ratio as a percentage with one decimal.
func percent(v any, _ table.Record) string {
	f, ok := jsonutil.ToFloat(v)
	if !ok {
		return table.Placeholder
	}
	return fmt.Sprintf("%.1f%%", f*100)
}

// bytesSize renders a byte count in SI units.
func bytesSize(v any, _ table.Record) string {
	f, ok := jsonutil.ToFloat(v)
	if !ok || f < 0 {
		return table.Placeholder
	}
	return humanize.Bytes(uint64(f))
}

func withUnit(unit string) table.RenderFunc {
	return func(v any, _ table.Record) string {
		if v == nil {
			return table.Placeholder
		}
		return jsonutil.ToString(v) + unit
	}
}

// badge colors a fixed vocabulary of values. Unlisted values render muted.
func badge(colors map[string]string) table.RenderFunc {
	return func(v any, _ table.Record) string {
		s := jsonutil.ToString(v)
		if s == "" {
			return table.Placeholder
		}
		color, ok := colors[strings.ToUpper(s)]
		if !ok {
			return Styles.Muted.Render(s)
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
	}
}

var queryStatusColors = map[string]string{
	"PLANNED":   ColorMuted,
	"RUNNING":   "33",
	"SUCCEEDED": ColorSuccess,
	"FAILED":    ColorDanger,
	"CANCELLED": "220",
}

var actionColors = map[string]string{
	"BUY":  ColorSuccess,
	"SELL": ColorDanger,
	"HOLD": "220",
}

var ruleStateColors = map[string]string{
	"ENABLED":  ColorSuccess,
	"DISABLED": ColorMuted,
}

// activeBadge renders a boolean as Active/Inactive.
func activeBadge(v any, _ table.Record) string {
	if b, _ := v.(bool); b {
		return Styles.Success.Render("Active")
	}
	return Styles.Error.Render("Inactive")
}
