// internal/adapter/storage/trip_store.go

package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"tripdash/internal/domain/trip"
)

// Dataset column names
const (
	ColDateTime = "Date/Time"
	ColLat      = "Lat"
	ColLon      = "Lon"
	ColBase     = "Base"
	ColDay      = "day"
	ColWeekday  = "weekday"
	ColHour     = "hour"
	ColMonth    = "month"
)

// requiredColumns must be present once the dataset is normalized
var requiredColumns = []string{ColLat, ColLon, ColBase, ColDay, ColWeekday, ColHour, ColMonth}

// TripStore implements trip.Store over an in-memory data frame.
// The frame is never modified after construction.
type TripStore struct {
	df dataframe.DataFrame
}

// NewTripStore wraps an already normalized data frame
func NewTripStore(df dataframe.DataFrame) (*TripStore, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("invalid data frame: %w", df.Err)
	}

	names := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		names[n] = true
	}
	for _, col := range requiredColumns {
		if !names[col] {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	return &TripStore{
		df: df,
	}, nil
}

// Len returns the number of trips in the dataset
func (s *TripStore) Len() int {
	return s.df.Nrow()
}

// CountByWeekday returns ride counts per weekday for a month, in weekday order
func (s *TripStore) CountByWeekday(ctx context.Context, month trip.Month) ([]trip.WeekdayCount, error) {
	sub, err := s.subset(ctx, trip.Query{Month: &month})
	if err != nil {
		return nil, err
	}

	counts := make([]trip.WeekdayCount, len(trip.Weekdays))
	for i, w := range trip.Weekdays {
		counts[i].Weekday = w
	}
	for _, w := range sub.Col(ColWeekday).Records() {
		if i := trip.Weekday(w).Index(); i >= 0 {
			counts[i].Count++
		}
	}

	return counts, nil
}

// HourHistogram returns ride counts per hour for a weekday
func (s *TripStore) HourHistogram(ctx context.Context, weekday trip.Weekday) (trip.HourCounts, error) {
	var hist trip.HourCounts

	sub, err := s.subset(ctx, trip.Query{Weekday: &weekday})
	if err != nil {
		return hist, err
	}

	for _, v := range sub.Col(ColHour).Float() {
		if h, ok := hourOf(v); ok {
			hist[h]++
		}
	}

	return hist, nil
}

// RushByWeekday returns hourly ride counts for every weekday of a month
func (s *TripStore) RushByWeekday(ctx context.Context, month trip.Month) ([]trip.WeekdaySeries, error) {
	sub, err := s.subset(ctx, trip.Query{Month: &month})
	if err != nil {
		return nil, err
	}

	out := make([]trip.WeekdaySeries, len(trip.Weekdays))
	for i, w := range trip.Weekdays {
		out[i].Weekday = w
	}

	weekdays := sub.Col(ColWeekday).Records()
	hours := sub.Col(ColHour).Float()
	for i := range weekdays {
		d := trip.Weekday(weekdays[i]).Index()
		h, ok := hourOf(hours[i])
		if d < 0 || !ok {
			continue
		}
		out[d].Hours[h]++
	}

	return out, nil
}

// Locations returns pickup coordinates for a base, hour and weekday
func (s *TripStore) Locations(ctx context.Context, base trip.Base, hour int, weekday trip.Weekday) ([]trip.Location, error) {
	sub, err := s.subset(ctx, trip.Query{Base: &base, Hour: &hour, Weekday: &weekday})
	if err != nil {
		return nil, err
	}

	lats := sub.Col(ColLat).Float()
	lons := sub.Col(ColLon).Float()

	locations := make([]trip.Location, 0, len(lats))
	for i := range lats {
		if math.IsNaN(lats[i]) || math.IsNaN(lons[i]) {
			continue
		}
		locations = append(locations, trip.Location{Lat: lats[i], Lon: lons[i]})
	}

	return locations, nil
}

// Trips returns the trips matching a query, at most q.Limit of them when set
func (s *TripStore) Trips(ctx context.Context, q trip.Query) ([]trip.Trip, error) {
	sub, err := s.subset(ctx, q)
	if err != nil {
		return nil, err
	}

	if q.Limit > 0 && sub.Nrow() > q.Limit {
		rows := make([]int, q.Limit)
		for i := range rows {
			rows[i] = i
		}
		sub = sub.Subset(rows)
		if sub.Err != nil {
			return nil, fmt.Errorf("error limiting trips (%s): %w", q, sub.Err)
		}
	}

	months := sub.Col(ColMonth).Float()
	days := sub.Col(ColDay).Float()
	weekdays := sub.Col(ColWeekday).Records()
	hours := sub.Col(ColHour).Float()
	bases := sub.Col(ColBase).Records()
	lats := sub.Col(ColLat).Float()
	lons := sub.Col(ColLon).Float()

	trips := make([]trip.Trip, sub.Nrow())
	for i := range trips {
		trips[i] = trip.Trip{
			Month:   trip.Month(intOrZero(months[i])),
			Day:     intOrZero(days[i]),
			Weekday: trip.Weekday(weekdays[i]),
			Hour:    intOrZero(hours[i]),
			Base:    trip.Base(bases[i]),
			Lat:     lats[i],
			Lon:     lons[i],
		}
	}

	return trips, nil
}

// subset applies the query as a conjunction of column predicates
func (s *TripStore) subset(ctx context.Context, q trip.Query) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	var filters []dataframe.F
	if q.Month != nil {
		filters = append(filters, dataframe.F{Colname: ColMonth, Comparator: series.Eq, Comparando: int(*q.Month)})
	}
	if q.Weekday != nil {
		filters = append(filters, dataframe.F{Colname: ColWeekday, Comparator: series.Eq, Comparando: string(*q.Weekday)})
	}
	if q.Base != nil {
		filters = append(filters, dataframe.F{Colname: ColBase, Comparator: series.Eq, Comparando: string(*q.Base)})
	}
	if q.Hour != nil {
		filters = append(filters, dataframe.F{Colname: ColHour, Comparator: series.Eq, Comparando: *q.Hour})
	}

	if len(filters) == 0 {
		return s.df, nil
	}

	sub := s.df.FilterAggregation(dataframe.And, filters...)
	if sub.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error filtering trips (%s): %w", q, sub.Err)
	}

	return sub, nil
}

func hourOf(v float64) (int, bool) {
	if math.IsNaN(v) {
		return 0, false
	}
	h := int(v)
	if h < 0 || h >= trip.HoursPerDay {
		return 0, false
	}
	return h, true
}

func intOrZero(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(v)
}
