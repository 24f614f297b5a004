package circulation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Book{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("abc123"))
	_, err := c.ListBooks(context.Background(), BookFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"message":"title is required"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsValidation(err), "%v", err)
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"message":"book not found"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err), "%v", err)
			},
		},
		{
			name:   "conflict with reason",
			status: http.StatusConflict,
			body:   `{"message":"no copies left","reason":"NoCopiesAvailable"}`,
			check: func(t *testing.T, err error) {
				assert.Equal(t, ReasonNoCopiesAvailable, ConflictReason(err))
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"message":"boom"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsTransient(err), "%v", err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.GetBook(context.Background(), 1)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientUnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cleared := false
	c := NewClient(srv.URL,
		WithToken("stale"),
		WithUnauthorizedHandler(func() { cleared = true }))

	_, err := c.ListBooks(context.Background(), BookFilter{})
	assert.True(t, IsAuthorization(err), "%v", err)
	assert.True(t, cleared, "unauthorized handler not called")

	// The stale token is dropped so the next request goes out bare.
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	assert.Empty(t, token)
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.ListBooks(context.Background(), BookFilter{})
	assert.True(t, IsTransient(err), "%v", err)
}

func TestClientBorrowAtomic(t *testing.T) {
	var gotPath string
	var gotBody borrowRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(BorrowRecord{
			ID: 7, BookID: gotBody.BookID, MemberID: gotBody.MemberID,
			BorrowDate: time.Now(), DueDate: time.Now().AddDate(0, 0, 14),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	due := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)
	rec, err := c.BorrowAtomic(context.Background(), 3, 9, due)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)

	assert.Equal(t, "/borrow-records/borrow", gotPath)
	assert.Equal(t, int64(3), gotBody.BookID)
	assert.Equal(t, int64(9), gotBody.MemberID)
	// Due dates travel as plain calendar days.
	assert.Equal(t, "2024-03-15", gotBody.DueDate)
}

func TestClientAuthenticateAdoptsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"fresh","user":{"id":4,"username":"root","role":"admin"}}`))
		default:
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode([]Genre{})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sess, err := c.Authenticate(context.Background(), "root", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", sess.Token)
	assert.Equal(t, RoleAdmin, sess.Role)

	_, err = c.ListGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", gotAuth)
}

func TestClientAuthenticateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Authenticate(context.Background(), "root", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// TestServiceDelegatesToBackend runs the service over the REST client and
// checks that borrow and return are pushed to the backend as single calls
// instead of the two-phase local path.
func TestServiceDelegatesToBackend(t *testing.T) {
	var calls []string
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/books/3":
			json.NewEncoder(w).Encode(Book{ID: 3, Title: "T", Author: "A", GenreID: 1, AvailableCopies: 2})
		case "/members/9":
			json.NewEncoder(w).Encode(Member{ID: 9, Name: "Alice", Email: "a@example.com"})
		case "/borrow-records/borrow":
			json.NewEncoder(w).Encode(BorrowRecord{ID: 12, BookID: 3, MemberID: 9, BorrowDate: due, DueDate: due})
		case "/borrow-records/12":
			json.NewEncoder(w).Encode(BorrowRecord{ID: 12, BookID: 3, MemberID: 9, BorrowDate: due, DueDate: due})
		case "/borrow-records/return":
			ret := due.AddDate(0, 0, 3)
			json.NewEncoder(w).Encode(BorrowRecord{ID: 12, BookID: 3, MemberID: 9, BorrowDate: due, DueDate: due, ReturnDate: &ret})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithToken("t"))
	clock := func() time.Time { return due }
	svc := NewService(client, client, client, WithClock(clock))

	ctx := context.Background()
	rec, err := svc.Borrow(ctx, adminSession, 3, 9, due)
	require.NoError(t, err)
	assert.Equal(t, int64(12), rec.ID)

	ret, err := svc.Return(ctx, adminSession, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, ret.ReturnDate)

	assert.Equal(t, []string{
		"GET /books/3",
		"GET /members/9",
		"POST /borrow-records/borrow",
		"GET /borrow-records/12",
		"POST /borrow-records/return",
	}, calls)
}
