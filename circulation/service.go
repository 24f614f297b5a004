package circulation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Catalog owns the book and genre collections.
type Catalog interface {
	CreateBook(ctx context.Context, b *Book) error
	GetBook(ctx context.Context, id int64) (*Book, error)
	ListBooks(ctx context.Context, f BookFilter) ([]Book, error)
	UpdateBook(ctx context.Context, id int64, upd BookUpdate) (*Book, error)
	DeleteBook(ctx context.Context, id int64) error

	CreateGenre(ctx context.Context, g *Genre) error
	ListGenres(ctx context.Context) ([]Genre, error)
	UpdateGenre(ctx context.Context, id int64, name string) (*Genre, error)
	DeleteGenre(ctx context.Context, id int64) error
}

// AvailabilityGuard is the capability of a catalog that can adjust the
// availability counter itself. The decrement must be an atomic
// compare-and-decrement, never a read-then-write by the caller.
type AvailabilityGuard interface {
	DecrementAvailability(ctx context.Context, id int64) (*Book, error)
	IncrementAvailability(ctx context.Context, id int64) (*Book, error)
}

// MemberDirectory owns the member collection.
type MemberDirectory interface {
	CreateMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id int64) (*Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
	UpdateMember(ctx context.Context, id int64, upd MemberUpdate) (*Member, error)
	DeleteMember(ctx context.Context, id int64) error
	BorrowingHistory(ctx context.Context, memberID int64) ([]HistoryEntry, error)
}

// Ledger owns the borrow-record collection, read side.
type Ledger interface {
	GetRecord(ctx context.Context, id int64) (*BorrowRecord, error)
	ListRecords(ctx context.Context) ([]BorrowRecord, error)
	HasRecordsForBook(ctx context.Context, bookID int64) (bool, error)
	HasRecordsForMember(ctx context.Context, memberID int64) (bool, error)
}

// LedgerWriter is the capability of a ledger whose records the service
// mutates directly, with the availability adjustment as a separate,
// compensable step.
type LedgerWriter interface {
	CreateRecord(ctx context.Context, r *BorrowRecord) error
	MarkReturned(ctx context.Context, id int64, at time.Time) (*BorrowRecord, error)
	UndoReturn(ctx context.Context, id int64) error
}

// AtomicCirculator is the capability of a ledger whose backend performs the
// whole borrow or return mutation in one transaction. When present, the
// service delegates after running its own validation and policy checks.
type AtomicCirculator interface {
	BorrowAtomic(ctx context.Context, bookID, memberID int64, dueDate time.Time) (*BorrowRecord, error)
	ReturnAtomic(ctx context.Context, recordID int64) (*BorrowRecord, error)
}

// StaffDirectory owns staff accounts and credential verification.
type StaffDirectory interface {
	CreateStaff(ctx context.Context, s *Staff, password string) error
	ListStaff(ctx context.Context) ([]Staff, error)
	CountStaff(ctx context.Context) (int, error)
	UpdateStaff(ctx context.Context, id int64, upd StaffUpdate) (*Staff, error)
	DeleteStaff(ctx context.Context, id int64) error
	Authenticate(ctx context.Context, username, password string) (*Session, error)
}

// Service orchestrates the catalog, member directory, and ledger to run the
// borrow/return workflow. It is the only component external callers should
// invoke directly: validation and authorization are resolved here before any
// mutating call is issued.
type Service struct {
	catalog Catalog
	members MemberDirectory
	ledger  Ledger
	staff   StaffDirectory
	now     func() time.Time

	mu         sync.Mutex
	cached     []BorrowRecord
	cacheValid bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service's notion of "now". Tests use it to pin
// borrow dates and overdue evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStaffDirectory attaches staff management and authentication.
func WithStaffDirectory(sd StaffDirectory) Option {
	return func(s *Service) { s.staff = sd }
}

// NewService wires the stores together. The same concrete store may back
// several of the interfaces, as the SQLite Database does.
func NewService(catalog Catalog, members MemberDirectory, ledger Ledger, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		members: members,
		ledger:  ledger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) authorize(sess *Session, op Operation) error {
	if sess == nil {
		return &AuthorizationError{Role: "", Op: op}
	}
	if !CanPerform(sess.Role, op) {
		return &AuthorizationError{Role: sess.Role, Op: op}
	}
	return nil
}

// invalidate drops the record cache. Called after every mutating call and
// after any store conflict, so the next read re-syncs from the backend
// instead of trusting optimistic state.
func (s *Service) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.cacheValid = false
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Circulation workflow
// ---------------------------------------------------------------------------

// Borrow lends a book to a member until dueDate. The availability decrement
// and the record creation form one logical transaction: if the record cannot
// be created after the copy was reserved, the reservation is released again.
func (s *Service) Borrow(ctx context.Context, sess *Session, bookID, memberID int64, dueDate time.Time) (*BorrowRecord, error) {
	if err := s.authorize(sess, OpBorrow); err != nil {
		return nil, err
	}
	if dueDate.IsZero() {
		return nil, &ValidationError{Field: "due_date", Reason: "required"}
	}
	if DateOf(dueDate).Before(DateOf(s.now())) {
		return nil, &ValidationError{Field: "due_date", Reason: "must not be before today"}
	}
	if _, err := s.catalog.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	if _, err := s.members.GetMember(ctx, memberID); err != nil {
		return nil, err
	}

	if ac, ok := s.ledger.(AtomicCirculator); ok {
		rec, err := ac.BorrowAtomic(ctx, bookID, memberID, DateOf(dueDate))
		s.invalidate()
		return rec, err
	}

	writer, ok := s.ledger.(LedgerWriter)
	if !ok {
		return nil, errors.New("ledger supports neither atomic nor two-phase borrowing")
	}
	guard, ok := s.catalog.(AvailabilityGuard)
	if !ok {
		return nil, errors.New("catalog cannot guard availability")
	}

	// Reserve a copy, then commit the record. The conditional decrement is
	// the guard that keeps at most one active record per lent copy.
	if _, err := guard.DecrementAvailability(ctx, bookID); err != nil {
		s.invalidate()
		return nil, err
	}

	rec := &BorrowRecord{
		BookID:     bookID,
		MemberID:   memberID,
		BorrowDate: s.now(),
		DueDate:    DateOf(dueDate),
	}
	if err := writer.CreateRecord(ctx, rec); err != nil {
		// Release the reserved copy again; without this the counter drifts.
		if _, compErr := guard.IncrementAvailability(ctx, bookID); compErr != nil {
			err = errors.Wrapf(err, "compensating increment for book %d also failed: %v", bookID, compErr)
		}
		s.invalidate()
		return nil, err
	}

	s.invalidate()
	return rec, nil
}

// Return finalizes a borrow record and releases the copy. Setting the
// return date and incrementing availability both apply or neither does.
func (s *Service) Return(ctx context.Context, sess *Session, recordID int64) (*BorrowRecord, error) {
	if err := s.authorize(sess, OpReturn); err != nil {
		return nil, err
	}

	rec, err := s.ledger.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.ReturnDate != nil {
		return nil, &ConflictError{Reason: ReasonAlreadyReturned, Detail: "borrow record is already returned"}
	}

	if ac, ok := s.ledger.(AtomicCirculator); ok {
		ret, err := ac.ReturnAtomic(ctx, recordID)
		s.invalidate()
		return ret, err
	}

	writer, ok := s.ledger.(LedgerWriter)
	if !ok {
		return nil, errors.New("ledger supports neither atomic nor two-phase returning")
	}
	guard, ok := s.catalog.(AvailabilityGuard)
	if !ok {
		return nil, errors.New("catalog cannot guard availability")
	}

	at := s.now()
	if at.Before(rec.BorrowDate) {
		return nil, &ValidationError{Field: "return_date", Reason: "must not be before the borrow date"}
	}

	ret, err := writer.MarkReturned(ctx, recordID, at)
	if err != nil {
		s.invalidate()
		return nil, err
	}
	if _, err := guard.IncrementAvailability(ctx, rec.BookID); err != nil {
		if compErr := writer.UndoReturn(ctx, recordID); compErr != nil {
			err = errors.Wrapf(err, "compensating un-return of record %d also failed: %v", recordID, compErr)
		}
		s.invalidate()
		return nil, err
	}

	s.invalidate()
	return ret, nil
}

// Records returns all borrow records through a read-through cache. The
// backend stays the source of truth: the cache is dropped after every
// mutating call, so this never serves optimistic state across a mutation.
func (s *Service) Records(ctx context.Context) ([]BorrowRecord, error) {
	s.mu.Lock()
	if s.cacheValid {
		records := s.cached
		s.mu.Unlock()
		return records, nil
	}
	s.mu.Unlock()

	records, err := s.ledger.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = records
	s.cacheValid = true
	s.mu.Unlock()
	return records, nil
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

// ReportSummary returns the active/returned/overdue counts as of now.
func (s *Service) ReportSummary(ctx context.Context, sess *Session) (Summary, error) {
	if err := s.authorize(sess, OpViewReports); err != nil {
		return Summary{}, err
	}
	records, err := s.Records(ctx)
	if err != nil {
		return Summary{}, err
	}
	return SummaryCounts(records, s.now()), nil
}

// ReportOverdue returns the currently overdue records.
func (s *Service) ReportOverdue(ctx context.Context, sess *Session) ([]BorrowRecord, error) {
	if err := s.authorize(sess, OpViewReports); err != nil {
		return nil, err
	}
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return Overdue(records, s.now()), nil
}

// ReportPopularGenres ranks genres by borrow count, descending.
func (s *Service) ReportPopularGenres(ctx context.Context, sess *Session) ([]GenrePopularity, error) {
	if err := s.authorize(sess, OpViewReports); err != nil {
		return nil, err
	}
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	books, err := s.catalog.ListBooks(ctx, BookFilter{})
	if err != nil {
		return nil, err
	}
	genres, err := s.catalog.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	return PopularGenres(records, books, genres), nil
}

// ---------------------------------------------------------------------------
// Catalog operations
// ---------------------------------------------------------------------------

func validateBook(b *Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(b.Author) == "" {
		return &ValidationError{Field: "author", Reason: "required"}
	}
	if b.GenreID <= 0 {
		return &ValidationError{Field: "genre_id", Reason: "required"}
	}
	if b.AvailableCopies < 0 {
		return &ValidationError{Field: "available_copies", Reason: "must not be negative"}
	}
	return nil
}

// CreateBook validates and stores a new book. Copies default to 1.
func (s *Service) CreateBook(ctx context.Context, sess *Session, b *Book) error {
	if err := s.authorize(sess, OpCreateBook); err != nil {
		return err
	}
	if b.AvailableCopies == 0 {
		b.AvailableCopies = 1
	}
	if err := validateBook(b); err != nil {
		return err
	}
	return s.catalog.CreateBook(ctx, b)
}

// GetBook resolves a single book.
func (s *Service) GetBook(ctx context.Context, id int64) (*Book, error) {
	return s.catalog.GetBook(ctx, id)
}

// ListBooks lists the catalog, optionally filtered.
func (s *Service) ListBooks(ctx context.Context, f BookFilter) ([]Book, error) {
	return s.catalog.ListBooks(ctx, f)
}

// UpdateBook applies a partial update.
func (s *Service) UpdateBook(ctx context.Context, sess *Session, id int64, upd BookUpdate) (*Book, error) {
	if err := s.authorize(sess, OpUpdateBook); err != nil {
		return nil, err
	}
	if upd.AvailableCopies != nil && *upd.AvailableCopies < 0 {
		return nil, &ValidationError{Field: "available_copies", Reason: "must not be negative"}
	}
	return s.catalog.UpdateBook(ctx, id, upd)
}

// DeleteBook removes a book unless borrow records still reference it. The
// guard runs here so it holds for any backend, and the SQLite store checks
// again inside its transaction.
func (s *Service) DeleteBook(ctx context.Context, sess *Session, id int64) error {
	if err := s.authorize(sess, OpDeleteBook); err != nil {
		return err
	}
	referenced, err := s.ledger.HasRecordsForBook(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return &ConflictError{Reason: ReasonHasBorrowRecords, Detail: "book has borrow records"}
	}
	return s.catalog.DeleteBook(ctx, id)
}

// CreateGenre validates and stores a new genre.
func (s *Service) CreateGenre(ctx context.Context, sess *Session, g *Genre) error {
	if err := s.authorize(sess, OpCreateGenre); err != nil {
		return err
	}
	if strings.TrimSpace(g.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	return s.catalog.CreateGenre(ctx, g)
}

// ListGenres lists all genres.
func (s *Service) ListGenres(ctx context.Context) ([]Genre, error) {
	return s.catalog.ListGenres(ctx)
}

// UpdateGenre renames a genre.
func (s *Service) UpdateGenre(ctx context.Context, sess *Session, id int64, name string) (*Genre, error) {
	if err := s.authorize(sess, OpUpdateGenre); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	return s.catalog.UpdateGenre(ctx, id, name)
}

// DeleteGenre removes a genre unless books still reference it.
func (s *Service) DeleteGenre(ctx context.Context, sess *Session, id int64) error {
	if err := s.authorize(sess, OpDeleteGenre); err != nil {
		return err
	}
	return s.catalog.DeleteGenre(ctx, id)
}

// ---------------------------------------------------------------------------
// Member operations
// ---------------------------------------------------------------------------

func validateMember(m *Member) error {
	if strings.TrimSpace(m.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	email := strings.TrimSpace(m.Email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Reason: "malformed"}
	}
	return nil
}

// CreateMember validates and registers a member. JoinDate is set here, once.
func (s *Service) CreateMember(ctx context.Context, sess *Session, m *Member) error {
	if err := s.authorize(sess, OpCreateMember); err != nil {
		return err
	}
	if err := validateMember(m); err != nil {
		return err
	}
	m.JoinDate = s.now()
	return s.members.CreateMember(ctx, m)
}

// GetMember resolves a single member.
func (s *Service) GetMember(ctx context.Context, id int64) (*Member, error) {
	return s.members.GetMember(ctx, id)
}

// ListMembers lists all members.
func (s *Service) ListMembers(ctx context.Context) ([]Member, error) {
	return s.members.ListMembers(ctx)
}

// UpdateMember applies a partial update; the join date is immutable.
func (s *Service) UpdateMember(ctx context.Context, sess *Session, id int64, upd MemberUpdate) (*Member, error) {
	if err := s.authorize(sess, OpUpdateMember); err != nil {
		return nil, err
	}
	if upd.Email != nil && !strings.Contains(*upd.Email, "@") {
		return nil, &ValidationError{Field: "email", Reason: "malformed"}
	}
	return s.members.UpdateMember(ctx, id, upd)
}

// DeleteMember removes a member unless borrow records still reference them.
func (s *Service) DeleteMember(ctx context.Context, sess *Session, id int64) error {
	if err := s.authorize(sess, OpDeleteMember); err != nil {
		return err
	}
	referenced, err := s.ledger.HasRecordsForMember(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return &ConflictError{Reason: ReasonHasBorrowRecords, Detail: "member has borrow records"}
	}
	return s.members.DeleteMember(ctx, id)
}

// BorrowingHistory returns a member's records, most recent first. Empty
// history yields an empty slice, never an error.
func (s *Service) BorrowingHistory(ctx context.Context, memberID int64) ([]HistoryEntry, error) {
	return s.members.BorrowingHistory(ctx, memberID)
}

// ---------------------------------------------------------------------------
// Staff operations
// ---------------------------------------------------------------------------

func validateStaff(st *Staff, password string) error {
	if strings.TrimSpace(st.Username) == "" {
		return &ValidationError{Field: "username", Reason: "required"}
	}
	if !strings.Contains(st.Email, "@") {
		return &ValidationError{Field: "email", Reason: "malformed"}
	}
	if st.Role != RoleAdmin && st.Role != RoleLibrarian {
		return &ValidationError{Field: "role", Reason: "must be admin or librarian"}
	}
	if strings.TrimSpace(password) == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	return nil
}

// CreateStaff registers a staff account. As a bootstrap exception the very
// first account may be created without a session; it must be an admin.
func (s *Service) CreateStaff(ctx context.Context, sess *Session, st *Staff, password string) error {
	if s.staff == nil {
		return errors.New("no staff directory configured")
	}
	if sess == nil {
		n, err := s.staff.CountStaff(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return &AuthorizationError{Role: "", Op: OpManageStaff}
		}
		if st.Role != RoleAdmin {
			return &ValidationError{Field: "role", Reason: "the first account must be an admin"}
		}
	} else if err := s.authorize(sess, OpManageStaff); err != nil {
		return err
	}
	if err := validateStaff(st, password); err != nil {
		return err
	}
	return s.staff.CreateStaff(ctx, st, password)
}

// ListStaff lists staff accounts.
func (s *Service) ListStaff(ctx context.Context, sess *Session) ([]Staff, error) {
	if s.staff == nil {
		return nil, errors.New("no staff directory configured")
	}
	if err := s.authorize(sess, OpManageStaff); err != nil {
		return nil, err
	}
	return s.staff.ListStaff(ctx)
}

// UpdateStaff applies a partial update to an account.
func (s *Service) UpdateStaff(ctx context.Context, sess *Session, id int64, upd StaffUpdate) (*Staff, error) {
	if s.staff == nil {
		return nil, errors.New("no staff directory configured")
	}
	if err := s.authorize(sess, OpManageStaff); err != nil {
		return nil, err
	}
	if upd.Role != nil && *upd.Role != RoleAdmin && *upd.Role != RoleLibrarian {
		return nil, &ValidationError{Field: "role", Reason: "must be admin or librarian"}
	}
	if upd.Status != nil && *upd.Status != StaffActive && *upd.Status != StaffInactive {
		return nil, &ValidationError{Field: "status", Reason: "must be active or inactive"}
	}
	return s.staff.UpdateStaff(ctx, id, upd)
}

// DeleteStaff removes an account.
func (s *Service) DeleteStaff(ctx context.Context, sess *Session, id int64) error {
	if s.staff == nil {
		return errors.New("no staff directory configured")
	}
	if err := s.authorize(sess, OpManageStaff); err != nil {
		return err
	}
	return s.staff.DeleteStaff(ctx, id)
}

// Login verifies credentials and issues a session. No session is required.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if s.staff == nil {
		return nil, errors.New("no staff directory configured")
	}
	return s.staff.Authenticate(ctx, username, password)
}
