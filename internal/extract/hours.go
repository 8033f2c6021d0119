package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var dayAliases = map[string]int{
	"mo": 0, "mon": 0, "monday": 0,
	"tu": 1, "tue": 1, "tues": 1, "tuesday": 1,
	"we": 2, "wed": 2, "wednesday": 2,
	"th": 3, "thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fr": 4, "fri": 4, "friday": 4,
	"sa": 5, "sat": 5, "saturday": 5,
	"su": 6, "sun": 6, "sunday": 6,
}

const dayPattern = `monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun`

var (
	hoursLineRe = regexp.MustCompile(`(?i)\b(` + dayPattern + `)\b\.?` +
		`(?:\s*(?:-|–|to|through)\s*\b(` + dayPattern + `)\b\.?)?` +
		`\s*:?\s*` +
		`(closed|open 24 hours|24 hours|\d{1,2}(?::\d{2})?\s*(?:am|pm|a\.m\.|p\.m\.)?\s*(?:-|–|to)\s*\d{1,2}(?::\d{2})?\s*(?:am|pm|a\.m\.|p\.m\.)?)`)

	// schema.org openingHours shorthand: "Mo-Fr 09:00-17:00", "Mo,We,Fr 09:00-12:00",
	// "Mo-Fr,Su 10:00-14:00".
	ldHoursRe = regexp.MustCompile(`^([A-Za-z]{2}(?:\s*-\s*[A-Za-z]{2})?(?:\s*,\s*[A-Za-z]{2}(?:\s*-\s*[A-Za-z]{2})?)*)\s+(\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2})$`)
)

// OpeningHours reads JSON-LD opening hours first, then day/time patterns
// from hours-like sections (or the whole page). Returns nil when no day
// was found; partial weeks are allowed.
func OpeningHours(p *Page) map[string]string {
	out := map[string]string{}
	for _, n := range p.JSONLD() {
		ldOpeningHours(n, out)
	}
	if len(out) > 0 {
		return out
	}

	var scoped strings.Builder
	p.Doc.Find(`[class*="hours"], [id*="hours"], [class*="opening"], [class*="schedule"], [itemprop="openingHours"], table`).Each(func(_ int, s *goquery.Selection) {
		scoped.WriteString(nodeText(s))
		scoped.WriteString(" ")
	})
	parseHoursText(scoped.String(), out)
	if len(out) == 0 {
		parseHoursText(p.Text(), out)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func ldOpeningHours(n gjson.Result, out map[string]string) {
	for _, spec := range n.Get("openingHoursSpecification").Array() {
		opens, closes := spec.Get("opens").String(), spec.Get("closes").String()
		if opens == "" || closes == "" {
			continue
		}
		days := spec.Get("dayOfWeek")
		var names []string
		if days.IsArray() {
			for _, d := range days.Array() {
				names = append(names, d.String())
			}
		} else {
			names = append(names, days.String())
		}
		for _, d := range names {
			d = d[strings.LastIndex(d, "/")+1:]
			if i, ok := dayAliases[strings.ToLower(d)]; ok {
				setDay(out, i, trimSeconds(opens)+" - "+trimSeconds(closes))
			}
		}
	}

	hours := n.Get("openingHours")
	var lines []string
	if hours.IsArray() {
		for _, h := range hours.Array() {
			lines = append(lines, h.String())
		}
	} else if hours.Exists() {
		lines = strings.Split(hours.String(), ";")
	}
	for _, line := range lines {
		m := ldHoursRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		for _, i := range ldDays(m[1]) {
			setDay(out, i, strings.ReplaceAll(m[2], " ", ""))
		}
	}
}

// ldDays expands a comma-separated list of two-letter days and day ranges.
// Unknown tokens are skipped.
func ldDays(part string) []int {
	var days []int
	for _, tok := range strings.Split(part, ",") {
		fromTok, toTok, isRange := strings.Cut(tok, "-")
		from, ok := dayAliases[strings.ToLower(strings.TrimSpace(fromTok))]
		if !ok {
			continue
		}
		to := from
		if isRange {
			if to, ok = dayAliases[strings.ToLower(strings.TrimSpace(toTok))]; !ok {
				continue
			}
		}
		days = append(days, dayRange(from, to)...)
	}
	return days
}

func parseHoursText(text string, out map[string]string) {
	for _, m := range hoursLineRe.FindAllStringSubmatch(text, -1) {
		from, ok := dayAliases[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		to := from
		if m[2] != "" {
			if t, ok := dayAliases[strings.ToLower(m[2])]; ok {
				to = t
			}
		}
		value := collapseSpace(m[3])
		if strings.EqualFold(value, "closed") {
			value = "Closed"
		}
		for _, i := range dayRange(from, to) {
			setDay(out, i, value)
		}
	}
}

// dayRange expands an inclusive weekday range, wrapping past Sunday.
func dayRange(from, to int) []int {
	days := []int{from}
	for i := from; i != to; {
		i = (i + 1) % 7
		days = append(days, i)
	}
	return days
}

// setDay keeps the first value seen for a day.
func setDay(out map[string]string, i int, value string) {
	if _, ok := out[weekdays[i]]; !ok {
		out[weekdays[i]] = value
	}
}

func trimSeconds(t string) string {
	if len(t) == 8 && strings.Count(t, ":") == 2 {
		return t[:5]
	}
	return t
}
