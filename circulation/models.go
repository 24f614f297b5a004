package circulation

import "time"

// BorrowStatus is the derived lifecycle state of a BorrowRecord.
type BorrowStatus string

const (
	StatusActive   BorrowStatus = "active"
	StatusReturned BorrowStatus = "returned"
)

// Role identifies the kind of staff account performing an operation.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
)

// Staff account states. Inactive accounts cannot authenticate.
const (
	StaffActive   = "active"
	StaffInactive = "inactive"
)

// Book represents a catalog entry. AvailableCopies counts un-borrowed
// copies; it is never negative. There is no stored total-copies ceiling,
// only the running counter.
type Book struct {
	ID              int64  `db:"id" json:"id"`
	Title           string `db:"title" json:"title"`
	Author          string `db:"author" json:"author"`
	PublishedYear   int    `db:"published_year" json:"published_year,omitempty"`
	GenreID         int64  `db:"genre_id" json:"genre_id"`
	AvailableCopies int    `db:"available_copies" json:"available_copies"`
}

// Genre is a catalog category referenced by books.
type Genre struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Member is a registered library member. JoinDate is set at creation and
// never changes afterwards.
type Member struct {
	ID       int64     `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Email    string    `db:"email" json:"email"`
	Phone    string    `db:"phone" json:"phone,omitempty"`
	JoinDate time.Time `db:"join_date" json:"join_date"`

	// ActiveBorrowCount is derived on reads: borrow records for this member
	// with no return date. Never stored.
	ActiveBorrowCount int `db:"active_borrow_count" json:"active_borrow_count"`
}

// BorrowRecord ties a book to a member for one lending. It holds weak
// references (ids) into the catalog and member directory, never ownership.
type BorrowRecord struct {
	ID         int64      `db:"id" json:"id"`
	BookID     int64      `db:"book_id" json:"book_id"`
	MemberID   int64      `db:"member_id" json:"member_id"`
	BorrowDate time.Time  `db:"borrow_date" json:"borrow_date"`
	DueDate    time.Time  `db:"due_date" json:"due_date"`
	ReturnDate *time.Time `db:"return_date" json:"return_date,omitempty"`
}

// Status reports Active while no return date is set, Returned afterwards.
func (r *BorrowRecord) Status() BorrowStatus {
	if r.ReturnDate == nil {
		return StatusActive
	}
	return StatusReturned
}

// IsOverdue reports whether the record is active and its due date lies
// strictly before asOf, compared at day granularity. A record due exactly on
// asOf is not overdue, and a record without a due date never is.
func (r *BorrowRecord) IsOverdue(asOf time.Time) bool {
	if r.ReturnDate != nil || r.DueDate.IsZero() {
		return false
	}
	return DateOf(r.DueDate).Before(DateOf(asOf))
}

// WasOverdue reports whether a returned record came back after its due date.
// It never feeds the overdue partition, which covers active records only.
func (r *BorrowRecord) WasOverdue() bool {
	if r.ReturnDate == nil || r.DueDate.IsZero() {
		return false
	}
	return DateOf(r.DueDate).Before(DateOf(*r.ReturnDate))
}

// HistoryEntry is a borrow record joined with its book title for display.
type HistoryEntry struct {
	BorrowRecord
	BookTitle string `db:"book_title" json:"book_title"`
}

// Staff is an administrative account. Outside circulation scope except as
// the subject of access policy checks and session issuance.
type Staff struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	Role         Role      `db:"role" json:"role"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	PasswordHash string    `db:"password_hash" json:"-"` // never serialized
}

// Session carries the caller's identity explicitly instead of being read
// from ambient storage. It is passed into every service operation.
type Session struct {
	Token    string `json:"token" yaml:"token"`
	StaffID  int64  `json:"staff_id" yaml:"staff_id"`
	Username string `json:"username" yaml:"username"`
	Role     Role   `json:"role" yaml:"role"`
}

// BookFilter narrows ListBooks. Zero values mean "no filter".
type BookFilter struct {
	Search        string // substring match on title or author
	GenreID       int64
	AvailableOnly bool
}

// BookUpdate is a partial book update; nil fields are left untouched.
type BookUpdate struct {
	Title           *string
	Author          *string
	PublishedYear   *int
	GenreID         *int64
	AvailableCopies *int
}

// MemberUpdate is a partial member update. JoinDate is immutable and has no
// counterpart here.
type MemberUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// StaffUpdate is a partial staff update.
type StaffUpdate struct {
	Email  *string
	Phone  *string
	Role   *Role
	Status *string
}

// DateOf truncates t to its calendar day in UTC. Due dates and overdue
// comparisons work at day granularity.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
