// internal/domain/trip/model.go

package trip

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Month is a calendar month number (1-12)
type Month int

// Label returns the English month name
func (m Month) Label() string {
	if m < 1 || m > 12 {
		return strconv.Itoa(int(m))
	}
	return time.Month(m).String()
}

// Weekday is a day-of-week label
type Weekday string

// Weekday labels
const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays is the fixed chart ordering of weekday labels
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the position of w in Weekdays, or -1
func (w Weekday) Index() int {
	for i, d := range Weekdays {
		if d == w {
			return i
		}
	}
	return -1
}

// Base is a named pickup dispatch location
type Base string

// Known bases
const (
	Unter     Base = "Unter"
	Hinter    Base = "Hinter"
	Weiter    Base = "Weiter"
	Schmecken Base = "Schmecken"
	DanachNY  Base = "Danach-NY"
)

// Bases lists the dispatch bases offered by the dashboard
var Bases = []Base{Unter, Hinter, Weiter, Schmecken, DanachNY}

// baseCodes maps TLC dispatch base codes to base names
var baseCodes = map[string]Base{
	"B02512": Unter,
	"B02598": Hinter,
	"B02617": Weiter,
	"B02682": Schmecken,
	"B02764": DanachNY,
}

// Months lists the months covered by the dataset
var Months = []Month{4, 5, 6, 7, 8, 9}

// HoursPerDay is the size of the hour domain
const HoursPerDay = 24

// Trip is a single pickup record
type Trip struct {
	Month   Month
	Day     int
	Weekday Weekday
	Hour    int
	Base    Base
	Lat     float64
	Lon     float64
}

// Location is a pickup coordinate
type Location struct {
	Lat float64
	Lon float64
}

// HourCounts holds ride counts per hour of the day
type HourCounts [HoursPerDay]int

// Total returns the sum of all hourly counts
func (h HourCounts) Total() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// WeekdayCount is the ride count for one weekday
type WeekdayCount struct {
	Weekday Weekday
	Count   int
}

// WeekdaySeries is the hourly ride count for one weekday
type WeekdaySeries struct {
	Weekday Weekday
	Hours   HourCounts
}

// Filters are the values selected in the dashboard controls
type Filters struct {
	Month   Month   `json:"month"`
	Weekday Weekday `json:"weekday"`
	Base    Base    `json:"base"`
	Hour    int     `json:"hour"`
}

// DefaultFilters returns the initial control values
func DefaultFilters() Filters {
	return Filters{
		Month:   4,
		Weekday: Monday,
		Base:    Unter,
		Hour:    0,
	}
}

// Query selects trips by any combination of columns. Nil fields do not restrict.
// Limit caps the number of trips returned by Store.Trips; zero means no cap.
type Query struct {
	Month   *Month
	Weekday *Weekday
	Base    *Base
	Hour    *int
	Limit   int
}

// IsEmpty reports whether the query has no restrictions
func (q Query) IsEmpty() bool {
	return q.Month == nil && q.Weekday == nil && q.Base == nil && q.Hour == nil
}

// String renders the query for logs and export summaries
func (q Query) String() string {
	var parts []string
	if q.Month != nil {
		parts = append(parts, "month="+q.Month.Label())
	}
	if q.Weekday != nil {
		parts = append(parts, "weekday="+string(*q.Weekday))
	}
	if q.Base != nil {
		parts = append(parts, "base="+string(*q.Base))
	}
	if q.Hour != nil {
		parts = append(parts, "hour="+strconv.Itoa(*q.Hour))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}

// ParseMonth accepts a month number ("4") or an English month name ("April")
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Month(n), nil
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), s) {
			return Month(m), nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

// ParseWeekday normalizes a weekday label case-insensitively. It is safe for
// concurrent use; a Caser keeps state and is created per call.
func ParseWeekday(s string) (Weekday, bool) {
	w := Weekday(cases.Title(language.English).String(strings.TrimSpace(s)))
	if w.Index() < 0 {
		return Weekday(s), false
	}
	return w, true
}

// ParseBase resolves a base name (case-insensitive) or TLC dispatch code
func ParseBase(s string) (Base, bool) {
	s = strings.TrimSpace(s)
	if b, ok := baseCodes[strings.ToUpper(s)]; ok {
		return b, true
	}
	for _, b := range Bases {
		if strings.EqualFold(string(b), s) {
			return b, true
		}
	}
	return Base(s), false
}
