// internal/domain/trip/store.go

package trip

import (
	"context"
)

// Store defines read access to the loaded trip dataset
type Store interface {
	// Len returns the number of trips in the dataset
	Len() int

	// CountByWeekday returns ride counts per weekday for a month, in weekday order
	CountByWeekday(ctx context.Context, month Month) ([]WeekdayCount, error)

	// HourHistogram returns ride counts per hour for a weekday
	HourHistogram(ctx context.Context, weekday Weekday) (HourCounts, error)

	// RushByWeekday returns hourly ride counts for every weekday of a month
	RushByWeekday(ctx context.Context, month Month) ([]WeekdaySeries, error)

	// Locations returns pickup coordinates for a base, hour and weekday
	Locations(ctx context.Context, base Base, hour int, weekday Weekday) ([]Location, error)

	// Trips returns the trips matching a query
	Trips(ctx context.Context, q Query) ([]Trip, error)
}
