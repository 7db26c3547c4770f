package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sharewheels/carpool-backend/internal/models"
	"gorm.io/gorm"
)

// Departure-hour buckets a searcher may filter on. A ride matches when its
// departure hour falls in any selected bucket.
const (
	BucketBefore6 = "before_6"
	Bucket6To12   = "6_to_12"
	Bucket12To18  = "12_to_18"
)

const (
	SortByPrice     = "price"
	SortByDeparture = "departure"
)

// InvalidQueryError reports which search field failed validation.
type InvalidQueryError struct {
	Field   string
	Message string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SearchQuery is a validated ride search.
type SearchQuery struct {
	From     string
	To       string
	Date     time.Time
	MinSeats int
	Tags     []string
	SortBy   string
	Buckets  []string
}

// ParseSearchQuery validates the raw query parameters of a ride search.
// from, to, seat and date are required; tags, sort and depart are optional.
func ParseSearchQuery(from, to, seat, date, tags, sortBy, depart string) (*SearchQuery, error) {
	if strings.TrimSpace(from) == "" || from == "undefined" {
		return nil, &InvalidQueryError{Field: "from", Message: "origin location is required"}
	}
	if strings.TrimSpace(to) == "" || to == "undefined" {
		return nil, &InvalidQueryError{Field: "to", Message: "destination location is required"}
	}

	minSeats, err := strconv.Atoi(seat)
	if err != nil || minSeats <= 0 {
		return nil, &InvalidQueryError{Field: "seat", Message: "valid number of seats is required"}
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, &InvalidQueryError{Field: "date", Message: "valid date is required"}
	}

	q := &SearchQuery{
		From:     strings.TrimSpace(from),
		To:       strings.TrimSpace(to),
		Date:     day,
		MinSeats: minSeats,
	}

	if tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if !models.IsValidRideTag(tag) {
				return nil, &InvalidQueryError{Field: "tags", Message: fmt.Sprintf("unknown tag %q", tag)}
			}
			q.Tags = append(q.Tags, tag)
		}
	}

	switch sortBy {
	case "", SortByPrice, SortByDeparture:
		q.SortBy = sortBy
	default:
		return nil, &InvalidQueryError{Field: "sort", Message: "sort must be price or departure"}
	}

	if depart != "" {
		for _, b := range strings.Split(depart, ",") {
			b = strings.TrimSpace(b)
			switch b {
			case BucketBefore6, Bucket6To12, Bucket12To18:
				q.Buckets = append(q.Buckets, b)
			case "":
			default:
				return nil, &InvalidQueryError{Field: "depart", Message: fmt.Sprintf("unknown bucket %q", b)}
			}
		}
	}

	return q, nil
}

// FindRides runs the repository part of a search: case-insensitive substring
// match on both place names, a minimum seat count, departure within the
// 24-hour window anchored at the query date's local midnight, and all-of
// semantics over the requested tags. Results come back in id order so a
// repeated query over unchanged data is deterministic.
func FindRides(db *gorm.DB, q *SearchQuery) ([]models.Ride, error) {
	dayStart, dayEnd := searchWindow(q.Date)

	query := db.Preload("Creator").
		Where("LOWER(origin_place) LIKE ?", "%"+strings.ToLower(q.From)+"%").
		Where("LOWER(destination_place) LIKE ?", "%"+strings.ToLower(q.To)+"%").
		Where("available_seats >= ?", q.MinSeats).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd)

	if len(q.Tags) > 0 {
		query = query.Where("tags @> ?", pq.Array(q.Tags))
	}

	var rides []models.Ride
	if err := query.Order("id ASC").Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

// searchWindow bounds a search at the query date's midnight and the next
// calendar day's midnight. AddDate keeps the bound on a real midnight across
// DST transitions, where the day is not 24 hours long.
func searchWindow(date time.Time) (time.Time, time.Time) {
	return date, date.AddDate(0, 0, 1)
}

// DepartureBucket classifies a ride by its local departure hour. Rides
// leaving at 18:00 or later fall outside every bucket.
func DepartureBucket(startTime time.Time) string {
	switch hour := startTime.Local().Hour(); {
	case hour < 6:
		return BucketBefore6
	case hour < 12:
		return Bucket6To12
	case hour < 18:
		return Bucket12To18
	default:
		return ""
	}
}

// FilterByDepartureBuckets keeps rides whose departure hour matches any of
// the selected buckets. With no buckets selected every ride passes.
func FilterByDepartureBuckets(rides []models.Ride, buckets []string) []models.Ride {
	if len(buckets) == 0 {
		return rides
	}

	selected := make(map[string]bool, len(buckets))
	for _, b := range buckets {
		selected[b] = true
	}

	out := make([]models.Ride, 0, len(rides))
	for _, r := range rides {
		if selected[DepartureBucket(r.StartTime)] {
			out = append(out, r)
		}
	}
	return out
}

// SortRides orders rides by the requested key. The sort is stable, so rides
// with equal keys keep their repository order; an empty key leaves the
// sequence untouched.
func SortRides(rides []models.Ride, sortBy string) []models.Ride {
	switch sortBy {
	case SortByPrice:
		sort.SliceStable(rides, func(i, j int) bool {
			return rides[i].Price < rides[j].Price
		})
	case SortByDeparture:
		sort.SliceStable(rides, func(i, j int) bool {
			return rides[i].StartTime.Before(rides[j].StartTime)
		})
	}
	return rides
}
