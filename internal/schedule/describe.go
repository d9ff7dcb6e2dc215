// Package schedule turns EventBridge schedule expressions into readable text
// and computes their next fire time.
//
// Two forms are understood:
//
//	cron(minutes hours day-of-month month day-of-week year)
//	rate(value unit)
//
// All times are UTC.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	cronExpr = regexp.MustCompile(`^\s*cron\((.+)\)\s*$`)
	rateExpr = regexp.MustCompile(`^\s*rate\((\d+)\s+(\w+)\)\s*$`)
)

var dayNames = map[string]string{
	"SUN": "Sunday",
	"MON": "Monday",
	"TUE": "Tuesday",
	"WED": "Wednesday",
	"THU": "Thursday",
	"FRI": "Friday",
	"SAT": "Saturday",
}

var monthNames = map[string]string{
	"1": "January", "2": "February", "3": "March", "4": "April",
	"5": "May", "6": "June", "7": "July", "8": "August",
	"9": "September", "10": "October", "11": "November", "12": "December",
}

// cronFields splits the body of a cron(...) expression. ok is false when
// expr is not a six-field cron expression.
func cronFields(expr string) (fields []string, ok bool) {
	m := cronExpr.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	fields = strings.Fields(m[1])
	if len(fields) < 6 {
		return nil, false
	}
	return fields, true
}

// Describe renders expr for humans, e.g.
//
//	cron(29 13 ? * MON-FRI *)  -> "1:29PM UTC Monday-Friday"
//	cron(0 8 5 3 ? *)          -> "8:00AM UTC on the 5th of the month in March"
//	rate(5 minutes)            -> "Every 5 minutes"
//
// An empty expression yields "No schedule"; anything unrecognised is returned
// unchanged.
func Describe(expr string) string {
	if strings.TrimSpace(expr) == "" {
		return "No schedule"
	}

	if f, ok := cronFields(expr); ok {
		minute, hour, dom, month, dow := f[0], f[1], f[2], f[3], f[4]

		days := describeDays(dow)
		if dom != "*" && dom != "?" {
			if _, interval, found := strings.Cut(dom, "/"); found {
				days = "every " + interval + " days"
			} else {
				days = "on the " + dom + ordinalSuffix(dom) + " of the month"
			}
		}

		var in string
		if month != "*" {
			name, ok := monthNames[month]
			if !ok {
				name = month
			}
			in = " in " + name
		}
		return describeTime(hour, minute) + " UTC " + days + in
	}

	if m := rateExpr.FindStringSubmatch(expr); m != nil {
		return "Every " + m[1] + " " + m[2]
	}
	return expr
}

// describeTime formats a 24h hour/minute pair as h:mmAM/PM. Fields that are
// not plain numbers (wildcards, lists) are shown as given.
func describeTime(hour, minute string) string {
	h, errH := strconv.Atoi(hour)
	m, errM := strconv.Atoi(minute)
	if errH != nil || errM != nil {
		return hour + ":" + minute
	}
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d%s", h, m, suffix)
}

func describeDays(dow string) string {
	switch {
	case dow == "?" || dow == "*":
		return "every day"
	case dow == "MON-FRI":
		return "Monday-Friday"
	case dow == "SAT,SUN":
		return "Saturday-Sunday"
	case strings.Contains(dow, "-"):
		start, end, _ := strings.Cut(dow, "-")
		return dayName(start) + "-" + dayName(end)
	case strings.Contains(dow, ","):
		parts := strings.Split(dow, ",")
		for i, p := range parts {
			parts[i] = dayName(strings.TrimSpace(p))
		}
		return strings.Join(parts, ", ")
	default:
		return dayName(dow)
	}
}

func dayName(abbr string) string {
	if name, ok := dayNames[strings.ToUpper(abbr)]; ok {
		return name
	}
	return abbr
}

func ordinalSuffix(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return ""
	}
	j, k := n%10, n%100
	switch {
	case j == 1 && k != 11:
		return "st"
	case j == 2 && k != 12:
		return "nd"
	case j == 3 && k != 13:
		return "rd"
	default:
		return "th"
	}
}
