package circulation

import (
	"sort"
	"time"
)

// Derived reporting: pure functions over a borrow-record collection. None of
// these mutate their inputs or touch a store.

// Partition splits records by status, preserving the source collection's
// order within each half.
type Partition struct {
	Active   []BorrowRecord
	Returned []BorrowRecord
}

// PartitionByStatus splits records into active (no return date) and returned
// (return date set). Order within each partition is the input order.
func PartitionByStatus(records []BorrowRecord) Partition {
	var p Partition
	for _, r := range records {
		if r.ReturnDate == nil {
			p.Active = append(p.Active, r)
		} else {
			p.Returned = append(p.Returned, r)
		}
	}
	return p
}

// Overdue returns the active records whose due date lies strictly before
// asOf. Always a subset of the active partition; returned records are never
// overdue no matter how late they came back.
func Overdue(records []BorrowRecord, asOf time.Time) []BorrowRecord {
	var out []BorrowRecord
	for _, r := range records {
		if r.IsOverdue(asOf) {
			out = append(out, r)
		}
	}
	return out
}

// Summary holds the partition sizes for dashboards. Overdue counts against
// Active, never against Returned.
type Summary struct {
	ActiveCount   int `json:"active_count"`
	ReturnedCount int `json:"returned_count"`
	OverdueCount  int `json:"overdue_count"`
}

// SummaryCounts computes the partition sizes as of the given instant.
func SummaryCounts(records []BorrowRecord, asOf time.Time) Summary {
	var s Summary
	for _, r := range records {
		if r.ReturnDate != nil {
			s.ReturnedCount++
			continue
		}
		s.ActiveCount++
		if r.IsOverdue(asOf) {
			s.OverdueCount++
		}
	}
	return s
}

// GenrePopularity ranks a genre by how many borrows its books accumulated.
type GenrePopularity struct {
	GenreID     int64  `json:"genre_id"`
	Name        string `json:"name"`
	BorrowCount int    `json:"borrow_count"`
}

// PopularGenres correlates records against books and genres by id and ranks
// genres by total borrow count, descending; ties break on name. Genres with
// no borrows are included at zero so the report covers the whole catalog.
func PopularGenres(records []BorrowRecord, books []Book, genres []Genre) []GenrePopularity {
	genreOfBook := make(map[int64]int64, len(books))
	for _, b := range books {
		genreOfBook[b.ID] = b.GenreID
	}

	counts := make(map[int64]int, len(genres))
	for _, r := range records {
		if gid, ok := genreOfBook[r.BookID]; ok {
			counts[gid]++
		}
	}

	out := make([]GenrePopularity, 0, len(genres))
	for _, g := range genres {
		out = append(out, GenrePopularity{GenreID: g.ID, Name: g.Name, BorrowCount: counts[g.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BorrowCount != out[j].BorrowCount {
			return out[i].BorrowCount > out[j].BorrowCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
