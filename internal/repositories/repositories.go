package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a versioned update lost a race
	// against another write to the same record.
	ErrVersionConflict = errors.New("record was modified concurrently")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// Page selects a slice of a listing. Number is 1-indexed.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of records skipped before this page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// window returns the [start, end) bounds of the page within n records.
func (p Page) window(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.Size
	if end > n {
		end = n
	}
	return start, end
}
