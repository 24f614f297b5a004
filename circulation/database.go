package circulation

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var dialect = goqu.Dialect("sqlite3")

// Database is the SQLite-backed implementation of the catalog store, member
// directory, circulation ledger, and staff directory.
type Database struct {
	db *sqlx.DB
}

// NewDatabase opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create db dir")
		}
	}

	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Database{db: db}, nil
}

// Close closes the underlying database.
func (d *Database) Close() error { return d.db.Close() }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return errors.Wrap(err, "enable WAL")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS genres (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            published_year INTEGER NOT NULL DEFAULT 0,
            genre_id INTEGER NOT NULL REFERENCES genres(id),
            available_copies INTEGER NOT NULL DEFAULT 1 CHECK(available_copies >= 0)
        );`,
		`CREATE TABLE IF NOT EXISTS members (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            join_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS borrow_records (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            book_id INTEGER NOT NULL REFERENCES books(id),
            member_id INTEGER NOT NULL REFERENCES members(id),
            borrow_date DATETIME NOT NULL,
            due_date DATETIME NOT NULL,
            return_date DATETIME
        );`,
		`CREATE TABLE IF NOT EXISTS staff (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'active',
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            password_hash TEXT NOT NULL
        );`,
		`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, schemaVersion); err != nil {
			return errors.Wrap(err, "apply migration")
		}
	}

	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ---------------------------------------------------------------------------
// Catalog: books
// ---------------------------------------------------------------------------

const bookColumns = `id, title, author, published_year, genre_id, available_copies`

// CreateBook inserts the book and fills in its id. Input validation happens
// in the service layer before this is called.
func (d *Database) CreateBook(ctx context.Context, b *Book) error {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO books(title, author, published_year, genre_id, available_copies) VALUES(?,?,?,?,?)`,
		b.Title, b.Author, b.PublishedYear, b.GenreID, b.AvailableCopies)
	if err != nil {
		return errors.Wrap(err, "insert book")
	}
	b.ID, err = res.LastInsertId()
	return err
}

// GetBook fetches a single book.
func (d *Database) GetBook(ctx context.Context, id int64) (*Book, error) {
	var b Book
	err := d.db.GetContext(ctx, &b, `SELECT `+bookColumns+` FROM books WHERE id=?`, id)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "book", ID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "get book")
	}
	return &b, nil
}

// ListBooks returns books in insertion order, narrowed by the filter.
func (d *Database) ListBooks(ctx context.Context, f BookFilter) ([]Book, error) {
	ds := dialect.From("books").
		Select("id", "title", "author", "published_year", "genre_id", "available_copies").
		Order(goqu.I("id").Asc())
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("title").Like(pattern),
			goqu.I("author").Like(pattern),
		))
	}
	if f.GenreID != 0 {
		ds = ds.Where(goqu.I("genre_id").Eq(f.GenreID))
	}
	if f.AvailableOnly {
		ds = ds.Where(goqu.I("available_copies").Gt(0))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build list query")
	}

	books := []Book{}
	if err := d.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	return books, nil
}

// UpdateBook applies the non-nil fields and returns the updated book.
func (d *Database) UpdateBook(ctx context.Context, id int64, upd BookUpdate) (*Book, error) {
	rec := goqu.Record{}
	if upd.Title != nil {
		rec["title"] = *upd.Title
	}
	if upd.Author != nil {
		rec["author"] = *upd.Author
	}
	if upd.PublishedYear != nil {
		rec["published_year"] = *upd.PublishedYear
	}
	if upd.GenreID != nil {
		rec["genre_id"] = *upd.GenreID
	}
	if upd.AvailableCopies != nil {
		rec["available_copies"] = *upd.AvailableCopies
	}
	if len(rec) == 0 {
		return d.GetBook(ctx, id)
	}

	query, args, err := dialect.Update("books").Set(rec).Where(goqu.I("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build update query")
	}
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "update book")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Entity: "book", ID: id}
	}
	return d.GetBook(ctx, id)
}

// DeleteBook removes the book. It fails with a ConflictError while any
// borrow record, active or historical, still references it.
func (d *Database) DeleteBook(ctx context.Context, id int64) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var referenced bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM borrow_records WHERE book_id=?)`, id).Scan(&referenced); err != nil {
		return errors.Wrap(err, "check book references")
	}
	if referenced {
		return &ConflictError{Reason: ReasonHasBorrowRecords, Detail: fmt.Sprintf("book %d has borrow records", id)}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id=?`, id)
	if err != nil {
		return errors.Wrap(err, "delete book")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "book", ID: id}
	}
	return tx.Commit()
}

// DecrementAvailability atomically decrements the availability counter by 1.
// The conditional update is the serialization point for concurrent borrows:
// it fails with NoCopiesAvailable when the counter is already zero at the
// moment of the attempt, so the count can never go negative.
func (d *Database) DecrementAvailability(ctx context.Context, id int64) (*Book, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies - 1 WHERE id=? AND available_copies > 0`, id)
	if err != nil {
		return nil, errors.Wrap(err, "decrement availability")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the book does not exist or it has no copies left.
		if _, err := d.GetBook(ctx, id); err != nil {
			return nil, err
		}
		return nil, &ConflictError{Reason: ReasonNoCopiesAvailable, Detail: fmt.Sprintf("book %d has no available copies", id)}
	}
	return d.GetBook(ctx, id)
}

// IncrementAvailability atomically increments the availability counter by 1.
// There is no upper bound: the schema stores no total-copies ceiling.
func (d *Database) IncrementAvailability(ctx context.Context, id int64) (*Book, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies + 1 WHERE id=?`, id)
	if err != nil {
		return nil, errors.Wrap(err, "increment availability")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Entity: "book", ID: id}
	}
	return d.GetBook(ctx, id)
}

// ---------------------------------------------------------------------------
// Catalog: genres
// ---------------------------------------------------------------------------

// CreateGenre inserts the genre and fills in its id. Genre names are unique.
func (d *Database) CreateGenre(ctx context.Context, g *Genre) error {
	res, err := d.db.ExecContext(ctx, `INSERT INTO genres(name) VALUES(?)`, g.Name)
	if isUniqueViolation(err) {
		return &ConflictError{Reason: ReasonDuplicateGenre, Detail: fmt.Sprintf("genre %q already exists", g.Name)}
	}
	if err != nil {
		return errors.Wrap(err, "insert genre")
	}
	g.ID, err = res.LastInsertId()
	return err
}

// ListGenres returns all genres in insertion order.
func (d *Database) ListGenres(ctx context.Context) ([]Genre, error) {
	genres := []Genre{}
	if err := d.db.SelectContext(ctx, &genres, `SELECT id, name FROM genres ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list genres")
	}
	return genres, nil
}

// UpdateGenre renames a genre.
func (d *Database) UpdateGenre(ctx context.Context, id int64, name string) (*Genre, error) {
	res, err := d.db.ExecContext(ctx, `UPDATE genres SET name=? WHERE id=?`, name, id)
	if isUniqueViolation(err) {
		return nil, &ConflictError{Reason: ReasonDuplicateGenre, Detail: fmt.Sprintf("genre %q already exists", name)}
	}
	if err != nil {
		return nil, errors.Wrap(err, "update genre")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Entity: "genre", ID: id}
	}
	return &Genre{ID: id, Name: name}, nil
}

// DeleteGenre removes the genre unless a book still references it.
func (d *Database) DeleteGenre(ctx context.Context, id int64) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var referenced bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE genre_id=?)`, id).Scan(&referenced); err != nil {
		return errors.Wrap(err, "check genre references")
	}
	if referenced {
		return &ConflictError{Reason: ReasonGenreInUse, Detail: fmt.Sprintf("genre %d is referenced by books", id)}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM genres WHERE id=?`, id)
	if err != nil {
		return errors.Wrap(err, "delete genre")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "genre", ID: id}
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Member directory
// ---------------------------------------------------------------------------

const memberColumns = `id, name, email, phone, join_date,
    (SELECT COUNT(*) FROM borrow_records br WHERE br.member_id = members.id AND br.return_date IS NULL) AS active_borrow_count`

// CreateMember inserts the member. JoinDate must already be set by the
// caller; it is immutable afterwards.
func (d *Database) CreateMember(ctx context.Context, m *Member) error {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO members(name, email, phone, join_date) VALUES(?,?,?,?)`,
		m.Name, m.Email, m.Phone, m.JoinDate)
	if err != nil {
		return errors.Wrap(err, "insert member")
	}
	m.ID, err = res.LastInsertId()
	return err
}

// GetMember fetches a single member with its derived active borrow count.
func (d *Database) GetMember(ctx context.Context, id int64) (*Member, error) {
	var m Member
	err := d.db.GetContext(ctx, &m, `SELECT `+memberColumns+` FROM members WHERE id=?`, id)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "member", ID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "get member")
	}
	return &m, nil
}

// ListMembers returns all members in insertion order.
func (d *Database) ListMembers(ctx context.Context) ([]Member, error) {
	members := []Member{}
	if err := d.db.SelectContext(ctx, &members, `SELECT `+memberColumns+` FROM members ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list members")
	}
	return members, nil
}

// UpdateMember applies the non-nil fields. The join date cannot be changed.
func (d *Database) UpdateMember(ctx context.Context, id int64, upd MemberUpdate) (*Member, error) {
	rec := goqu.Record{}
	if upd.Name != nil {
		rec["name"] = *upd.Name
	}
	if upd.Email != nil {
		rec["email"] = *upd.Email
	}
	if upd.Phone != nil {
		rec["phone"] = *upd.Phone
	}
	if len(rec) == 0 {
		return d.GetMember(ctx, id)
	}

	query, args, err := dialect.Update("members").Set(rec).Where(goqu.I("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build update query")
	}
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "update member")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Entity: "member", ID: id}
	}
	return d.GetMember(ctx, id)
}

// DeleteMember removes the member. Blocked while borrow records, active or
// historical, still reference them.
func (d *Database) DeleteMember(ctx context.Context, id int64) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var referenced bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM borrow_records WHERE member_id=?)`, id).Scan(&referenced); err != nil {
		return errors.Wrap(err, "check member references")
	}
	if referenced {
		return &ConflictError{Reason: ReasonHasBorrowRecords, Detail: fmt.Sprintf("member %d has borrow records", id)}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id=?`, id)
	if err != nil {
		return errors.Wrap(err, "delete member")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "member", ID: id}
	}
	return tx.Commit()
}

// BorrowingHistory returns the member's records, most recent first, joined
// with the book title. A member with no history (or an unknown id) yields an
// empty slice, never an error.
func (d *Database) BorrowingHistory(ctx context.Context, memberID int64) ([]HistoryEntry, error) {
	entries := []HistoryEntry{}
	err := d.db.SelectContext(ctx, &entries, `
        SELECT br.id, br.book_id, br.member_id, br.borrow_date, br.due_date, br.return_date,
               b.title AS book_title
        FROM borrow_records br
        JOIN books b ON b.id = br.book_id
        WHERE br.member_id = ?
        ORDER BY br.borrow_date DESC, br.id DESC`, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "borrowing history")
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Circulation ledger
// ---------------------------------------------------------------------------

const recordColumns = `id, book_id, member_id, borrow_date, due_date, return_date`

// CreateRecord inserts a borrow record and fills in its id.
func (d *Database) CreateRecord(ctx context.Context, r *BorrowRecord) error {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO borrow_records(book_id, member_id, borrow_date, due_date) VALUES(?,?,?,?)`,
		r.BookID, r.MemberID, r.BorrowDate, r.DueDate)
	if err != nil {
		return errors.Wrap(err, "insert borrow record")
	}
	r.ID, err = res.LastInsertId()
	return err
}

// GetRecord fetches a single borrow record.
func (d *Database) GetRecord(ctx context.Context, id int64) (*BorrowRecord, error) {
	var r BorrowRecord
	err := d.db.GetContext(ctx, &r, `SELECT `+recordColumns+` FROM borrow_records WHERE id=?`, id)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "borrow record", ID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "get borrow record")
	}
	return &r, nil
}

// ListRecords returns all borrow records in insertion order.
func (d *Database) ListRecords(ctx context.Context) ([]BorrowRecord, error) {
	records := []BorrowRecord{}
	if err := d.db.SelectContext(ctx, &records, `SELECT `+recordColumns+` FROM borrow_records ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list borrow records")
	}
	return records, nil
}

// MarkReturned sets the return date exactly once. The conditional update
// guards against a double return racing past the service's read.
func (d *Database) MarkReturned(ctx context.Context, id int64, at time.Time) (*BorrowRecord, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE borrow_records SET return_date=? WHERE id=? AND return_date IS NULL`, at, id)
	if err != nil {
		return nil, errors.Wrap(err, "mark returned")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := d.GetRecord(ctx, id); err != nil {
			return nil, err
		}
		return nil, &ConflictError{Reason: ReasonAlreadyReturned, Detail: fmt.Sprintf("borrow record %d is already returned", id)}
	}
	return d.GetRecord(ctx, id)
}

// UndoReturn clears the return date again. Compensation hook for a return
// whose availability increment failed; not part of the public workflow.
func (d *Database) UndoReturn(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, `UPDATE borrow_records SET return_date=NULL WHERE id=?`, id)
	if err != nil {
		return errors.Wrap(err, "undo return")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "borrow record", ID: id}
	}
	return nil
}

// HasRecordsForBook reports whether any borrow record references the book.
func (d *Database) HasRecordsForBook(ctx context.Context, bookID int64) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM borrow_records WHERE book_id=?)`, bookID).Scan(&exists)
	return exists, errors.Wrap(err, "check records for book")
}

// HasRecordsForMember reports whether any borrow record references the member.
func (d *Database) HasRecordsForMember(ctx context.Context, memberID int64) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM borrow_records WHERE member_id=?)`, memberID).Scan(&exists)
	return exists, errors.Wrap(err, "check records for member")
}

// ---------------------------------------------------------------------------
// Staff directory
// ---------------------------------------------------------------------------

const staffColumns = `id, username, email, phone, role, status, created_at, password_hash`

// CreateStaff hashes the password and inserts the account.
func (d *Database) CreateStaff(ctx context.Context, s *Staff, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	s.PasswordHash = string(hash)
	if s.Status == "" {
		s.Status = StaffActive
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT INTO staff(username, email, phone, role, status, created_at, password_hash) VALUES(?,?,?,?,?,?,?)`,
		s.Username, s.Email, s.Phone, s.Role, s.Status, s.CreatedAt, s.PasswordHash)
	if isUniqueViolation(err) {
		return &ConflictError{Reason: ReasonDuplicateUsername, Detail: fmt.Sprintf("username %q is taken", s.Username)}
	}
	if err != nil {
		return errors.Wrap(err, "insert staff")
	}
	s.ID, err = res.LastInsertId()
	return err
}

// ListStaff returns all staff accounts in insertion order.
func (d *Database) ListStaff(ctx context.Context) ([]Staff, error) {
	staff := []Staff{}
	if err := d.db.SelectContext(ctx, &staff, `SELECT `+staffColumns+` FROM staff ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list staff")
	}
	return staff, nil
}

// CountStaff returns the number of staff accounts. Used to allow creating
// the very first admin without an authenticated session.
func (d *Database) CountStaff(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff`).Scan(&n)
	return n, errors.Wrap(err, "count staff")
}

// UpdateStaff applies the non-nil fields.
func (d *Database) UpdateStaff(ctx context.Context, id int64, upd StaffUpdate) (*Staff, error) {
	rec := goqu.Record{}
	if upd.Email != nil {
		rec["email"] = *upd.Email
	}
	if upd.Phone != nil {
		rec["phone"] = *upd.Phone
	}
	if upd.Role != nil {
		rec["role"] = string(*upd.Role)
	}
	if upd.Status != nil {
		rec["status"] = *upd.Status
	}
	if len(rec) > 0 {
		query, args, err := dialect.Update("staff").Set(rec).Where(goqu.I("id").Eq(id)).Prepared(true).ToSQL()
		if err != nil {
			return nil, errors.Wrap(err, "build update query")
		}
		res, err := d.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, errors.Wrap(err, "update staff")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, &NotFoundError{Entity: "staff", ID: id}
		}
	}

	var s Staff
	err := d.db.GetContext(ctx, &s, `SELECT `+staffColumns+` FROM staff WHERE id=?`, id)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "staff", ID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "get staff")
	}
	return &s, nil
}

// DeleteStaff removes the account.
func (d *Database) DeleteStaff(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM staff WHERE id=?`, id)
	if err != nil {
		return errors.Wrap(err, "delete staff")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "staff", ID: id}
	}
	return nil
}

// Authenticate verifies the credentials of an active account and issues a
// session. The failure reason is never disclosed to the caller.
func (d *Database) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	var s Staff
	err := d.db.GetContext(ctx, &s, `SELECT `+staffColumns+` FROM staff WHERE username=?`, username)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "get staff")
	}
	if s.Status != StaffActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return &Session{
		Token:    uuid.NewString(),
		StaffID:  s.ID,
		Username: s.Username,
		Role:     s.Role,
	}, nil
}
