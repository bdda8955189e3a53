package trip

import (
	"sync"
	"testing"
)

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in      string
		want    Month
		wantErr bool
	}{
		{"4", 4, false},
		{" 9 ", 9, false},
		{"April", 4, false},
		{"september", 9, false},
		{"13", 13, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseMonth(c.in)
		if (err != nil) != c.wantErr {
			t.Fatalf("ParseMonth(%q) err=%v wantErr=%v", c.in, err, c.wantErr)
		}
		if !c.wantErr && got != c.want {
			t.Fatalf("ParseMonth(%q)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	for _, in := range []string{"Monday", "monday", "MONDAY", " monday "} {
		w, ok := ParseWeekday(in)
		if !ok || w != Monday {
			t.Fatalf("ParseWeekday(%q)=%q,%v", in, w, ok)
		}
	}
	if w, ok := ParseWeekday("Funday"); ok || w != "Funday" {
		t.Fatalf("unexpected weekday %q ok=%v", w, ok)
	}
}

func TestParseWeekdayConcurrent(t *testing.T) {
	inputs := map[string]Weekday{
		"monday":    Monday,
		"SATURDAY":  Saturday,
		"wednesday": Wednesday,
		" Sunday ":  Sunday,
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				for in, want := range inputs {
					if got, ok := ParseWeekday(in); !ok || got != want {
						errs <- in + " parsed as " + string(got)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}

func TestParseBase(t *testing.T) {
	cases := map[string]Base{
		"Unter":     Unter,
		"danach-ny": DanachNY,
		"B02682":    Schmecken,
		"b02512":    Unter,
	}
	for in, want := range cases {
		got, ok := ParseBase(in)
		if !ok || got != want {
			t.Fatalf("ParseBase(%q)=%q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseBase("Nowhere"); ok {
		t.Fatal("expected unknown base")
	}
}

func TestWeekdayOrder(t *testing.T) {
	if len(Weekdays) != 7 {
		t.Fatalf("want 7 weekdays, got %d", len(Weekdays))
	}
	if Monday.Index() != 0 || Sunday.Index() != 6 || Weekday("x").Index() != -1 {
		t.Fatal("unexpected weekday index")
	}
}

func TestMonthLabel(t *testing.T) {
	if Month(4).Label() != "April" || Month(9).Label() != "September" {
		t.Fatal("unexpected month label")
	}
	if Month(0).Label() != "0" {
		t.Fatal("out-of-range month should render as number")
	}
}

func TestQueryString(t *testing.T) {
	if (Query{}).String() != "all" || !(Query{}).IsEmpty() {
		t.Fatal("empty query")
	}
	m, h, b := Month(5), 7, Hinter
	q := Query{Month: &m, Hour: &h, Base: &b}
	if got := q.String(); got != "month=May base=Hinter hour=7" {
		t.Fatalf("got %q", got)
	}
}

func TestDefaultFilters(t *testing.T) {
	f := DefaultFilters()
	if f.Month != 4 || f.Weekday != Monday || f.Base != Unter || f.Hour != 0 {
		t.Fatalf("unexpected defaults %+v", f)
	}
}
