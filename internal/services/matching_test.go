package services

import (
	"testing"
	"time"

	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchQuery(t *testing.T) {
	t.Run("valid query", func(t *testing.T) {
		q, err := ParseSearchQuery("Accra", "Kumasi", "2", "2026-03-14", "AC,No Smoking", "price", "6_to_12")
		require.NoError(t, err)
		assert.Equal(t, "Accra", q.From)
		assert.Equal(t, "Kumasi", q.To)
		assert.Equal(t, 2, q.MinSeats)
		assert.Equal(t, []string{"AC", "No Smoking"}, q.Tags)
		assert.Equal(t, SortByPrice, q.SortBy)
		assert.Equal(t, []string{Bucket6To12}, q.Buckets)

		wantDay := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
		assert.True(t, q.Date.Equal(wantDay))
	})

	t.Run("minimal query", func(t *testing.T) {
		q, err := ParseSearchQuery("a", "b", "1", "2026-01-01", "", "", "")
		require.NoError(t, err)
		assert.Empty(t, q.Tags)
		assert.Empty(t, q.Buckets)
		assert.Empty(t, q.SortBy)
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		q, err := ParseSearchQuery("  Accra ", " Kumasi", "1", "2026-01-01", "", "", "")
		require.NoError(t, err)
		assert.Equal(t, "Accra", q.From)
		assert.Equal(t, "Kumasi", q.To)
	})

	invalid := []struct {
		name  string
		from  string
		to    string
		seat  string
		date  string
		tags  string
		sort  string
		dep   string
		field string
	}{
		{"missing from", "", "Kumasi", "1", "2026-01-01", "", "", "", "from"},
		{"undefined from", "undefined", "Kumasi", "1", "2026-01-01", "", "", "", "from"},
		{"missing to", "Accra", "  ", "1", "2026-01-01", "", "", "", "to"},
		{"undefined to", "Accra", "undefined", "1", "2026-01-01", "", "", "", "to"},
		{"missing seat", "Accra", "Kumasi", "", "2026-01-01", "", "", "", "seat"},
		{"zero seat", "Accra", "Kumasi", "0", "2026-01-01", "", "", "", "seat"},
		{"negative seat", "Accra", "Kumasi", "-1", "2026-01-01", "", "", "", "seat"},
		{"non-numeric seat", "Accra", "Kumasi", "two", "2026-01-01", "", "", "", "seat"},
		{"missing date", "Accra", "Kumasi", "1", "", "", "", "", "date"},
		{"bad date", "Accra", "Kumasi", "1", "14-03-2026", "", "", "", "date"},
		{"unknown tag", "Accra", "Kumasi", "1", "2026-01-01", "Turbo", "", "", "tags"},
		{"unknown sort", "Accra", "Kumasi", "1", "2026-01-01", "", "rating", "", "sort"},
		{"unknown bucket", "Accra", "Kumasi", "1", "2026-01-01", "", "", "18_to_24", "depart"},
	}

	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			q, err := ParseSearchQuery(tc.from, tc.to, tc.seat, tc.date, tc.tags, tc.sort, tc.dep)
			require.Error(t, err)
			assert.Nil(t, q)

			var iqe *InvalidQueryError
			require.ErrorAs(t, err, &iqe)
			assert.Equal(t, tc.field, iqe.Field)
		})
	}
}

func TestSearchWindow(t *testing.T) {
	t.Run("ordinary day spans 24 hours", func(t *testing.T) {
		start, end := searchWindow(time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local))
		assert.Equal(t, 24*time.Hour, end.Sub(start))
	})

	t.Run("window ends on the next midnight across DST", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("tzdata unavailable")
		}

		// 2026-03-08 is the US spring-forward date: the day is 23 hours long.
		start, end := searchWindow(time.Date(2026, 3, 8, 0, 0, 0, 0, loc))
		assert.Equal(t, 23*time.Hour, end.Sub(start))
		assert.Equal(t, 0, end.Hour(), "upper bound is a real midnight")
		assert.Equal(t, 9, end.Day())
	})
}

func TestDepartureBucket(t *testing.T) {
	day := func(hour int) time.Time {
		return time.Date(2026, 3, 14, hour, 30, 0, 0, time.Local)
	}

	assert.Equal(t, BucketBefore6, DepartureBucket(day(0)))
	assert.Equal(t, BucketBefore6, DepartureBucket(day(5)))
	assert.Equal(t, Bucket6To12, DepartureBucket(day(6)))
	assert.Equal(t, Bucket6To12, DepartureBucket(day(11)))
	assert.Equal(t, Bucket12To18, DepartureBucket(day(12)))
	assert.Equal(t, Bucket12To18, DepartureBucket(day(17)))
	assert.Equal(t, "", DepartureBucket(day(18)))
	assert.Equal(t, "", DepartureBucket(day(23)))
}

func TestFilterByDepartureBuckets(t *testing.T) {
	at := func(hour int) models.Ride {
		return models.Ride{StartTime: time.Date(2026, 3, 14, hour, 0, 0, 0, time.Local)}
	}
	rides := []models.Ride{at(5), at(8), at(14), at(20)}

	t.Run("no buckets keeps everything", func(t *testing.T) {
		assert.Len(t, FilterByDepartureBuckets(rides, nil), 4)
	})

	t.Run("single bucket", func(t *testing.T) {
		out := FilterByDepartureBuckets(rides, []string{Bucket6To12})
		require.Len(t, out, 1)
		assert.Equal(t, 8, out[0].StartTime.Hour())
	})

	t.Run("any-of over several buckets", func(t *testing.T) {
		out := FilterByDepartureBuckets(rides, []string{BucketBefore6, Bucket12To18})
		require.Len(t, out, 2)
		assert.Equal(t, 5, out[0].StartTime.Hour())
		assert.Equal(t, 14, out[1].StartTime.Hour())
	})

	t.Run("evening rides never match", func(t *testing.T) {
		out := FilterByDepartureBuckets(
			[]models.Ride{at(19)},
			[]string{BucketBefore6, Bucket6To12, Bucket12To18},
		)
		assert.Empty(t, out)
	})
}

func TestSortRides(t *testing.T) {
	base := time.Date(2026, 3, 14, 6, 0, 0, 0, time.Local)
	mk := func(id uint, price float64, offset time.Duration) models.Ride {
		r := models.Ride{Price: price, StartTime: base.Add(offset)}
		r.ID = id
		return r
	}

	t.Run("by price", func(t *testing.T) {
		rides := []models.Ride{mk(1, 30, 0), mk(2, 10, time.Hour), mk(3, 20, 2*time.Hour)}
		out := SortRides(rides, SortByPrice)
		assert.Equal(t, []uint{2, 3, 1}, []uint{out[0].ID, out[1].ID, out[2].ID})
	})

	t.Run("by departure", func(t *testing.T) {
		rides := []models.Ride{mk(1, 30, 2*time.Hour), mk(2, 10, 0), mk(3, 20, time.Hour)}
		out := SortRides(rides, SortByDeparture)
		assert.Equal(t, []uint{2, 3, 1}, []uint{out[0].ID, out[1].ID, out[2].ID})
	})

	t.Run("equal keys keep repository order", func(t *testing.T) {
		rides := []models.Ride{mk(1, 10, 0), mk(2, 10, 0), mk(3, 10, 0)}
		out := SortRides(rides, SortByPrice)
		assert.Equal(t, []uint{1, 2, 3}, []uint{out[0].ID, out[1].ID, out[2].ID})
	})

	t.Run("empty key leaves order untouched", func(t *testing.T) {
		rides := []models.Ride{mk(3, 30, 0), mk(1, 10, time.Hour)}
		out := SortRides(rides, "")
		assert.Equal(t, uint(3), out[0].ID)
	})
}
