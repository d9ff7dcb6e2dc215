package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrUnsupported is returned by Next for expressions that cannot be
// evaluated, such as cron fields using L, W or #.
var ErrUnsupported = errors.New("unsupported schedule expression")

// Next returns the first fire time of expr strictly after from.
func Next(expr string, from time.Time) (time.Time, error) {
	if f, ok := cronFields(expr); ok {
		spec, err := standardSpec(f)
		if err != nil {
			return time.Time{}, err
		}
		sched, err := cron.ParseStandard("CRON_TZ=UTC " + spec)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s: %v", ErrUnsupported, expr, err)
		}
		next := sched.Next(from)
		if next.IsZero() {
			return time.Time{}, fmt.Errorf("%w: %s never fires", ErrUnsupported, expr)
		}
		return next, nil
	}

	if m := rateExpr.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("%w: %s", ErrUnsupported, expr)
		}
		unit, err := rateUnit(m[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", err, expr)
		}
		return from.Add(time.Duration(n) * unit), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnsupported, expr)
}

func rateUnit(u string) (time.Duration, error) {
	switch strings.TrimSuffix(strings.ToLower(u), "s") {
	case "minute":
		return time.Minute, nil
	case "hour":
		return time.Hour, nil
	case "day":
		return 24 * time.Hour, nil
	default:
		return 0, ErrUnsupported
	}
}

// standardSpec converts the first five EventBridge cron fields to the
// standard five-field form: "?" becomes "*", the year is dropped and numeric
// days of week move from 1-7 (Sunday first) to 0-6.
func standardSpec(f []string) (string, error) {
	out := make([]string, 5)
	for i := range 5 {
		field := f[i]
		if strings.ContainsAny(field, "LW#") && !isDayNameField(field) {
			return "", fmt.Errorf("%w: field %q", ErrUnsupported, field)
		}
		if field == "?" {
			field = "*"
		}
		out[i] = field
	}
	dow, err := shiftWeekdays(out[4])
	if err != nil {
		return "", err
	}
	out[4] = dow
	return strings.Join(out, " "), nil
}

// isDayNameField reports whether field only uses day or month names, which
// may legitimately contain the letters L and W (JUL, WED).
func isDayNameField(field string) bool {
	if strings.Contains(field, "#") {
		return false
	}
	for _, tok := range strings.FieldsFunc(field, func(r rune) bool { return r == ',' || r == '-' || r == '/' }) {
		if len(tok) != 3 {
			return false
		}
	}
	return true
}

func shiftWeekdays(field string) (string, error) {
	if field == "*" {
		return field, nil
	}
	var b strings.Builder
	num := -1
	flush := func() error {
		if num < 0 {
			return nil
		}
		if num < 1 || num > 7 {
			return fmt.Errorf("%w: day of week %d", ErrUnsupported, num)
		}
		b.WriteString(strconv.Itoa(num - 1))
		num = -1
		return nil
	}
	afterSlash := false
	for _, r := range field {
		switch {
		case r >= '0' && r <= '9' && !afterSlash:
			if num < 0 {
				num = 0
			}
			num = num*10 + int(r-'0')
		default:
			if err := flush(); err != nil {
				return "", err
			}
			if r == '/' {
				afterSlash = true
			} else if r == ',' {
				afterSlash = false
			}
			b.WriteRune(r)
		}
	}
	if err := flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}
