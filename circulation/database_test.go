package circulation

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedGenre(t *testing.T, db *Database, name string) int64 {
	t.Helper()
	g := &Genre{Name: name}
	if err := db.CreateGenre(context.Background(), g); err != nil {
		t.Fatalf("seed genre: %v", err)
	}
	return g.ID
}

func seedBook(t *testing.T, db *Database, title string, genreID int64, copies int) int64 {
	t.Helper()
	b := &Book{Title: title, Author: "Author", GenreID: genreID, AvailableCopies: copies}
	if err := db.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return b.ID
}

func seedMember(t *testing.T, db *Database, name string) int64 {
	t.Helper()
	m := &Member{Name: name, Email: name + "@example.com", JoinDate: time.Now()}
	if err := db.CreateMember(context.Background(), m); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m.ID
}

func seedRecord(t *testing.T, db *Database, bookID, memberID int64, borrowed, due time.Time) int64 {
	t.Helper()
	r := &BorrowRecord{BookID: bookID, MemberID: memberID, BorrowDate: borrowed, DueDate: due}
	if err := db.CreateRecord(context.Background(), r); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return r.ID
}

func TestBookCRUD(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")

	b := &Book{Title: "Dune", Author: "Frank Herbert", PublishedYear: 1965, GenreID: gid, AvailableCopies: 3}
	if err := db.CreateBook(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID == 0 {
		t.Fatalf("id not assigned")
	}

	got, err := db.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Dune" || got.AvailableCopies != 3 {
		t.Fatalf("unexpected book: %+v", got)
	}

	title := "Dune Messiah"
	copies := 5
	got, err = db.UpdateBook(ctx, b.ID, BookUpdate{Title: &title, AvailableCopies: &copies})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != title || got.AvailableCopies != 5 || got.Author != "Frank Herbert" {
		t.Fatalf("partial update wrong: %+v", got)
	}

	if err := db.DeleteBook(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetBook(ctx, b.ID); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestGetBookNotFound(t *testing.T) {
	db := tempDB(t)
	if _, err := db.GetBook(context.Background(), 999); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestListBooksFilters(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	fiction := seedGenre(t, db, "Fiction")
	scifi := seedGenre(t, db, "Sci-Fi")

	seedBook(t, db, "The Hobbit", fiction, 2)
	duneID := seedBook(t, db, "Dune", scifi, 0)
	seedBook(t, db, "Neuromancer", scifi, 1)

	all, err := db.ListBooks(ctx, BookFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("want 3 books, got %d", len(all))
	}

	// Substring search matches title or author, case per SQLite LIKE.
	res, err := db.ListBooks(ctx, BookFilter{Search: "Dune"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 1 || res[0].ID != duneID {
		t.Fatalf("search mismatch: %+v", res)
	}

	res, _ = db.ListBooks(ctx, BookFilter{GenreID: scifi})
	if len(res) != 2 {
		t.Fatalf("want 2 sci-fi books, got %d", len(res))
	}

	res, _ = db.ListBooks(ctx, BookFilter{GenreID: scifi, AvailableOnly: true})
	if len(res) != 1 || res[0].Title != "Neuromancer" {
		t.Fatalf("availability filter wrong: %+v", res)
	}

	res, _ = db.ListBooks(ctx, BookFilter{Search: "no such book"})
	if len(res) != 0 {
		t.Fatalf("want empty result, got %+v", res)
	}
}

func TestDecrementAvailability(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	bookID := seedBook(t, db, "Copies", gid, 2)

	b, err := db.DecrementAvailability(ctx, bookID)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if b.AvailableCopies != 1 {
		t.Fatalf("want 1 copy, got %d", b.AvailableCopies)
	}

	if _, err := db.DecrementAvailability(ctx, bookID); err != nil {
		t.Fatalf("decrement to zero: %v", err)
	}

	// Counter at zero: the conditional update must refuse.
	_, err = db.DecrementAvailability(ctx, bookID)
	if ConflictReason(err) != ReasonNoCopiesAvailable {
		t.Fatalf("want NoCopiesAvailable, got %v", err)
	}
	b, _ = db.GetBook(ctx, bookID)
	if b.AvailableCopies != 0 {
		t.Fatalf("counter drifted: %d", b.AvailableCopies)
	}

	if _, err := db.DecrementAvailability(ctx, 999); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestConcurrentDecrement(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	const copies = 5
	bookID := seedBook(t, db, "Hot Title", gid, copies)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.DecrementAvailability(ctx, bookID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if ConflictReason(err) != ReasonNoCopiesAvailable {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != copies {
		t.Fatalf("want exactly %d successful decrements, got %d", copies, succeeded)
	}
	b, _ := db.GetBook(ctx, bookID)
	if b.AvailableCopies != 0 {
		t.Fatalf("counter should be 0, got %d", b.AvailableCopies)
	}
}

func TestIncrementAvailability(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	bookID := seedBook(t, db, "Returns", gid, 1)

	// No ceiling: the counter may rise past its initial value.
	b, err := db.IncrementAvailability(ctx, bookID)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if b.AvailableCopies != 2 {
		t.Fatalf("want 2, got %d", b.AvailableCopies)
	}

	if _, err := db.IncrementAvailability(ctx, 999); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestGenreUniqueness(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	seedGenre(t, db, "Fantasy")

	err := db.CreateGenre(ctx, &Genre{Name: "Fantasy"})
	if ConflictReason(err) != ReasonDuplicateGenre {
		t.Fatalf("want DuplicateGenre, got %v", err)
	}

	other := seedGenre(t, db, "Horror")
	if _, err := db.UpdateGenre(ctx, other, "Fantasy"); ConflictReason(err) != ReasonDuplicateGenre {
		t.Fatalf("want DuplicateGenre on rename, got %v", err)
	}
}

func TestDeleteGenreInUse(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	seedBook(t, db, "Anchor", gid, 1)

	err := db.DeleteGenre(ctx, gid)
	if ConflictReason(err) != ReasonGenreInUse {
		t.Fatalf("want GenreInUse, got %v", err)
	}

	empty := seedGenre(t, db, "Empty")
	if err := db.DeleteGenre(ctx, empty); err != nil {
		t.Fatalf("delete unused genre: %v", err)
	}
	if err := db.DeleteGenre(ctx, empty); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestDeleteBookWithRecords(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	bookID := seedBook(t, db, "Kept", gid, 1)
	memberID := seedMember(t, db, "alice")

	now := time.Now()
	recID := seedRecord(t, db, bookID, memberID, now, now.AddDate(0, 0, 14))

	if err := db.DeleteBook(ctx, bookID); ConflictReason(err) != ReasonHasBorrowRecords {
		t.Fatalf("want HasBorrowRecords, got %v", err)
	}

	// The guard holds for historical records too.
	if _, err := db.MarkReturned(ctx, recID, now); err != nil {
		t.Fatalf("mark returned: %v", err)
	}
	if err := db.DeleteBook(ctx, bookID); ConflictReason(err) != ReasonHasBorrowRecords {
		t.Fatalf("want HasBorrowRecords after return, got %v", err)
	}
}

func TestDeleteMemberWithRecords(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	bookID := seedBook(t, db, "Kept", gid, 1)
	memberID := seedMember(t, db, "bob")

	now := time.Now()
	seedRecord(t, db, bookID, memberID, now, now.AddDate(0, 0, 14))

	if err := db.DeleteMember(ctx, memberID); ConflictReason(err) != ReasonHasBorrowRecords {
		t.Fatalf("want HasBorrowRecords, got %v", err)
	}

	free := seedMember(t, db, "carol")
	if err := db.DeleteMember(ctx, free); err != nil {
		t.Fatalf("delete unreferenced member: %v", err)
	}
}

func TestMemberActiveBorrowCount(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	b1 := seedBook(t, db, "One", gid, 1)
	b2 := seedBook(t, db, "Two", gid, 1)
	memberID := seedMember(t, db, "dave")

	now := time.Now()
	r1 := seedRecord(t, db, b1, memberID, now, now.AddDate(0, 0, 14))
	seedRecord(t, db, b2, memberID, now, now.AddDate(0, 0, 14))

	m, err := db.GetMember(ctx, memberID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m.ActiveBorrowCount != 2 {
		t.Fatalf("want 2 active borrows, got %d", m.ActiveBorrowCount)
	}

	if _, err := db.MarkReturned(ctx, r1, now); err != nil {
		t.Fatalf("mark returned: %v", err)
	}
	m, _ = db.GetMember(ctx, memberID)
	if m.ActiveBorrowCount != 1 {
		t.Fatalf("want 1 active borrow, got %d", m.ActiveBorrowCount)
	}
}

func TestBorrowingHistoryOrder(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	b1 := seedBook(t, db, "Older", gid, 1)
	b2 := seedBook(t, db, "Newer", gid, 1)
	memberID := seedMember(t, db, "erin")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedRecord(t, db, b1, memberID, base, base.AddDate(0, 0, 14))
	seedRecord(t, db, b2, memberID, base.AddDate(0, 0, 5), base.AddDate(0, 0, 19))

	entries, err := db.BorrowingHistory(ctx, memberID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	// Most recent borrow first, joined with the book title.
	if entries[0].BookTitle != "Newer" || entries[1].BookTitle != "Older" {
		t.Fatalf("wrong order: %q then %q", entries[0].BookTitle, entries[1].BookTitle)
	}

	// Unknown member: empty history, not an error.
	entries, err = db.BorrowingHistory(ctx, 999)
	if err != nil {
		t.Fatalf("history unknown member: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("want empty history, got %d entries", len(entries))
	}
}

func TestMarkReturnedOnce(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	bookID := seedBook(t, db, "Bounced", gid, 1)
	memberID := seedMember(t, db, "finn")

	now := time.Now()
	recID := seedRecord(t, db, bookID, memberID, now, now.AddDate(0, 0, 14))

	rec, err := db.MarkReturned(ctx, recID, now)
	if err != nil {
		t.Fatalf("mark returned: %v", err)
	}
	if rec.ReturnDate == nil {
		t.Fatalf("return date not set")
	}

	// Second attempt loses the race against itself.
	if _, err := db.MarkReturned(ctx, recID, now); ConflictReason(err) != ReasonAlreadyReturned {
		t.Fatalf("want AlreadyReturned, got %v", err)
	}

	if _, err := db.MarkReturned(ctx, 999, now); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}

	if err := db.UndoReturn(ctx, recID); err != nil {
		t.Fatalf("undo return: %v", err)
	}
	rec, _ = db.GetRecord(ctx, recID)
	if rec.ReturnDate != nil {
		t.Fatalf("return date should be cleared")
	}
}

func TestStaffAuthentication(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	s := &Staff{Username: "admin", Email: "admin@example.com", Role: RoleAdmin}
	if err := db.CreateStaff(ctx, s, "s3cret"); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if s.PasswordHash == "" || s.PasswordHash == "s3cret" {
		t.Fatalf("password not hashed")
	}

	sess, err := db.Authenticate(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if sess.Token == "" || sess.StaffID != s.ID || sess.Role != RoleAdmin {
		t.Fatalf("bad session: %+v", sess)
	}

	if _, err := db.Authenticate(ctx, "admin", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, err := db.Authenticate(ctx, "nobody", "s3cret"); err != ErrInvalidCredentials {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}

	// Deactivated accounts cannot log in, with the same opaque error.
	inactive := StaffInactive
	if _, err := db.UpdateStaff(ctx, s.ID, StaffUpdate{Status: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := db.Authenticate(ctx, "admin", "s3cret"); err != ErrInvalidCredentials {
		t.Fatalf("want ErrInvalidCredentials for inactive, got %v", err)
	}
}

func TestStaffUsernameUnique(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	if err := db.CreateStaff(ctx, &Staff{Username: "kim", Email: "kim@example.com", Role: RoleAdmin}, "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := db.CreateStaff(ctx, &Staff{Username: "kim", Email: "kim2@example.com", Role: RoleLibrarian}, "pw")
	if ConflictReason(err) != ReasonDuplicateUsername {
		t.Fatalf("want DuplicateUsername, got %v", err)
	}
}

func TestCountStaff(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	n, err := db.CountStaff(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("want 0, got %d", n)
	}
	if err := db.CreateStaff(ctx, &Staff{Username: "lee", Email: "lee@example.com", Role: RoleAdmin}, "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	n, _ = db.CountStaff(ctx)
	if n != 1 {
		t.Fatalf("want 1, got %d", n)
	}
}

func TestHasRecords(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	gid := seedGenre(t, db, "Fiction")
	bookID := seedBook(t, db, "Tracked", gid, 1)
	memberID := seedMember(t, db, "gus")

	has, err := db.HasRecordsForBook(ctx, bookID)
	if err != nil || has {
		t.Fatalf("want no records yet, got has=%v err=%v", has, err)
	}

	now := time.Now()
	seedRecord(t, db, bookID, memberID, now, now.AddDate(0, 0, 14))

	if has, _ := db.HasRecordsForBook(ctx, bookID); !has {
		t.Fatalf("book should have records")
	}
	if has, _ := db.HasRecordsForMember(ctx, memberID); !has {
		t.Fatalf("member should have records")
	}
	if has, _ := db.HasRecordsForMember(ctx, 999); has {
		t.Fatalf("unknown member should have no records")
	}
}
