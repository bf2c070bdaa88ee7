package repository

import (
	"context"
	"testing"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sched(id, orig, dest, dep, arr string) entity.Schedule {
	return entity.Schedule{FlightID: id, Origin: orig, Destination: dest, DepTime: dep, ArrTime: arr, Airline: id[:2]}
}

func TestScheduleUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewGormScheduleRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, []entity.Schedule{
		sched("LH400", "FRA", "JFK", "10:00", "12:45"),
		sched("LH400", "FRA", "JFK", "10:05", "12:50"),
	}))
	require.NoError(t, repo.Upsert(ctx, []entity.Schedule{sched("LH400", "FRA", "JFK", "10:10", "13:00")}))

	rows, err := repo.Find(ctx, repository.ScheduleFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "10:10", rows[0].DepTime)

	ok, err := repo.Exists(ctx, "LH400")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, "LH401")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduleFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormScheduleRepository(newTestDB(t))
	require.NoError(t, repo.Upsert(ctx, []entity.Schedule{
		sched("LH400", "FRA", "JFK", "10:00", "12:45"),
		sched("UA961", "FRA", "EWR", "07:30", "10:00"),
		sched("LH454", "MUC", "JFK", "15:20", "18:10"),
		sched("DL15", "MUC", "ATL", "11:00", "16:00"),
	}))

	tests := []struct {
		name   string
		filter repository.ScheduleFilter
		want   []string
	}{
		{"all ordered by departure", repository.ScheduleFilter{}, []string{"UA961", "LH400", "DL15", "LH454"}},
		{"origins", repository.ScheduleFilter{Origins: []string{"MUC"}}, []string{"DL15", "LH454"}},
		{"origin and destination", repository.ScheduleFilter{Origins: []string{"FRA", "MUC"}, Destinations: []string{"JFK"}}, []string{"LH400", "LH454"}},
		{"departure lower bound", repository.ScheduleFilter{MinDepTime: "10:00"}, []string{"LH400", "DL15", "LH454"}},
		{"arrival upper bound", repository.ScheduleFilter{Destinations: []string{"JFK", "EWR"}, MaxArrTime: "12:45"}, []string{"UA961", "LH400"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.Find(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(rows))
			for _, r := range rows {
				got = append(got, r.FlightID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
