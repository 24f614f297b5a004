package circulation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultRequestTimeout = 10 * time.Second

// Client talks to the REST backend. It implements the catalog, member
// directory, ledger, and staff directory interfaces, and advertises the
// AtomicCirculator capability: the backend performs borrow and return in one
// server-side transaction, so the service delegates the whole mutation.
//
// Every request carries the bearer credential; a 401 response invalidates
// the session through the configured handler. Every call is bounded by the
// request timeout, and timeouts or transport failures surface as
// TransientError so the caller can retry.
type Client struct {
	base    string
	httpc   *http.Client
	timeout time.Duration

	mu             sync.Mutex
	token          string
	onUnauthorized func()
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer credential sent with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

// WithUnauthorizedHandler is called whenever the backend answers 401. The
// client clears its own token first; the handler should discard the
// persisted session.
func WithUnauthorizedHandler(fn func()) ClientOption {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient builds a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer credential, e.g. after a fresh login.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type apiError struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &TransientError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decode response")
		}
		return nil
	}

	var ae apiError
	_ = json.NewDecoder(resp.Body).Decode(&ae)
	if ae.Message == "" {
		ae.Message = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.mu.Lock()
		c.token = ""
		handler := c.onUnauthorized
		c.mu.Unlock()
		if handler != nil {
			handler()
		}
		return &AuthorizationError{Role: "", Op: Operation(method + " " + path)}
	case resp.StatusCode == http.StatusForbidden:
		return &AuthorizationError{Role: "", Op: Operation(method + " " + path)}
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Entity: ae.Message}
	case resp.StatusCode == http.StatusConflict:
		reason := ae.Reason
		if reason == "" {
			reason = ae.Message
		}
		return &ConflictError{Reason: reason, Detail: ae.Message}
	case resp.StatusCode >= 500:
		return &TransientError{Op: method + " " + path, Err: errors.New(ae.Message)}
	default:
		return &ValidationError{Field: "request", Reason: ae.Message}
	}
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (c *Client) CreateBook(ctx context.Context, b *Book) error {
	return c.do(ctx, http.MethodPost, "/books", b, b)
}

func (c *Client) GetBook(ctx context.Context, id int64) (*Book, error) {
	var b Book
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, &b); err != nil {
		return nil, translateNotFound(err, "book", id)
	}
	return &b, nil
}

func (c *Client) ListBooks(ctx context.Context, f BookFilter) ([]Book, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.GenreID != 0 {
		q.Set("genre_id", strconv.FormatInt(f.GenreID, 10))
	}
	if f.AvailableOnly {
		q.Set("available", "true")
	}
	path := "/books"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	books := []Book{}
	if err := c.do(ctx, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) UpdateBook(ctx context.Context, id int64, upd BookUpdate) (*Book, error) {
	patch := map[string]any{}
	if upd.Title != nil {
		patch["title"] = *upd.Title
	}
	if upd.Author != nil {
		patch["author"] = *upd.Author
	}
	if upd.PublishedYear != nil {
		patch["published_year"] = *upd.PublishedYear
	}
	if upd.GenreID != nil {
		patch["genre_id"] = *upd.GenreID
	}
	if upd.AvailableCopies != nil {
		patch["available_copies"] = *upd.AvailableCopies
	}
	var b Book
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/books/%d", id), patch, &b); err != nil {
		return nil, translateNotFound(err, "book", id)
	}
	return &b, nil
}

func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return translateNotFound(c.do(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil, nil), "book", id)
}

func (c *Client) CreateGenre(ctx context.Context, g *Genre) error {
	return c.do(ctx, http.MethodPost, "/genres", g, g)
}

func (c *Client) ListGenres(ctx context.Context) ([]Genre, error) {
	genres := []Genre{}
	if err := c.do(ctx, http.MethodGet, "/genres", nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

func (c *Client) UpdateGenre(ctx context.Context, id int64, name string) (*Genre, error) {
	var g Genre
	patch := map[string]any{"name": name}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/genres/%d", id), patch, &g); err != nil {
		return nil, translateNotFound(err, "genre", id)
	}
	return &g, nil
}

func (c *Client) DeleteGenre(ctx context.Context, id int64) error {
	return translateNotFound(c.do(ctx, http.MethodDelete, fmt.Sprintf("/genres/%d", id), nil, nil), "genre", id)
}

// ---------------------------------------------------------------------------
// Member directory
// ---------------------------------------------------------------------------

func (c *Client) CreateMember(ctx context.Context, m *Member) error {
	return c.do(ctx, http.MethodPost, "/members", m, m)
}

func (c *Client) GetMember(ctx context.Context, id int64) (*Member, error) {
	var m Member
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/members/%d", id), nil, &m); err != nil {
		return nil, translateNotFound(err, "member", id)
	}
	return &m, nil
}

func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	members := []Member{}
	if err := c.do(ctx, http.MethodGet, "/members", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *Client) UpdateMember(ctx context.Context, id int64, upd MemberUpdate) (*Member, error) {
	patch := map[string]any{}
	if upd.Name != nil {
		patch["name"] = *upd.Name
	}
	if upd.Email != nil {
		patch["email"] = *upd.Email
	}
	if upd.Phone != nil {
		patch["phone"] = *upd.Phone
	}
	var m Member
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/members/%d", id), patch, &m); err != nil {
		return nil, translateNotFound(err, "member", id)
	}
	return &m, nil
}

func (c *Client) DeleteMember(ctx context.Context, id int64) error {
	return translateNotFound(c.do(ctx, http.MethodDelete, fmt.Sprintf("/members/%d", id), nil, nil), "member", id)
}

func (c *Client) BorrowingHistory(ctx context.Context, memberID int64) ([]HistoryEntry, error) {
	entries := []HistoryEntry{}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/members/%d/borrowing-history", memberID), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Ledger
// ---------------------------------------------------------------------------

func (c *Client) GetRecord(ctx context.Context, id int64) (*BorrowRecord, error) {
	var r BorrowRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/borrow-records/%d", id), nil, &r); err != nil {
		return nil, translateNotFound(err, "borrow record", id)
	}
	return &r, nil
}

func (c *Client) ListRecords(ctx context.Context) ([]BorrowRecord, error) {
	records := []BorrowRecord{}
	if err := c.do(ctx, http.MethodGet, "/borrow-records", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) HasRecordsForBook(ctx context.Context, bookID int64) (bool, error) {
	records, err := c.ListRecords(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) HasRecordsForMember(ctx context.Context, memberID int64) (bool, error) {
	records, err := c.ListRecords(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.MemberID == memberID {
			return true, nil
		}
	}
	return false, nil
}

type borrowRequest struct {
	BookID   int64  `json:"book_id"`
	MemberID int64  `json:"member_id"`
	DueDate  string `json:"due_date"`
}

type returnRequest struct {
	BorrowRecordID int64 `json:"borrow_record_id"`
}

// BorrowAtomic asks the backend to reserve the copy and create the record
// in one transaction.
func (c *Client) BorrowAtomic(ctx context.Context, bookID, memberID int64, dueDate time.Time) (*BorrowRecord, error) {
	req := borrowRequest{
		BookID:   bookID,
		MemberID: memberID,
		DueDate:  DateOf(dueDate).Format("2006-01-02"),
	}
	var r BorrowRecord
	if err := c.do(ctx, http.MethodPost, "/borrow-records/borrow", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReturnAtomic asks the backend to finalize the record and release the copy
// in one transaction.
func (c *Client) ReturnAtomic(ctx context.Context, recordID int64) (*BorrowRecord, error) {
	var r BorrowRecord
	if err := c.do(ctx, http.MethodPost, "/borrow-records/return", returnRequest{BorrowRecordID: recordID}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ---------------------------------------------------------------------------
// Staff directory
// ---------------------------------------------------------------------------

type createStaffRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
	Status   string `json:"status,omitempty"`
	Password string `json:"password"`
}

func (c *Client) CreateStaff(ctx context.Context, s *Staff, password string) error {
	req := createStaffRequest{
		Username: s.Username,
		Email:    s.Email,
		Phone:    s.Phone,
		Role:     s.Role,
		Status:   s.Status,
		Password: password,
	}
	return c.do(ctx, http.MethodPost, "/staff", req, s)
}

func (c *Client) ListStaff(ctx context.Context) ([]Staff, error) {
	staff := []Staff{}
	if err := c.do(ctx, http.MethodGet, "/staff", nil, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (c *Client) CountStaff(ctx context.Context) (int, error) {
	staff, err := c.ListStaff(ctx)
	if err != nil {
		return 0, err
	}
	return len(staff), nil
}

func (c *Client) UpdateStaff(ctx context.Context, id int64, upd StaffUpdate) (*Staff, error) {
	patch := map[string]any{}
	if upd.Email != nil {
		patch["email"] = *upd.Email
	}
	if upd.Phone != nil {
		patch["phone"] = *upd.Phone
	}
	if upd.Role != nil {
		patch["role"] = *upd.Role
	}
	if upd.Status != nil {
		patch["status"] = *upd.Status
	}
	var s Staff
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/staff/%d", id), patch, &s); err != nil {
		return nil, translateNotFound(err, "staff", id)
	}
	return &s, nil
}

func (c *Client) DeleteStaff(ctx context.Context, id int64) error {
	return translateNotFound(c.do(ctx, http.MethodDelete, fmt.Sprintf("/staff/%d", id), nil, nil), "staff", id)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Role     Role   `json:"role"`
	} `json:"user"`
}

// Authenticate logs in against the backend and adopts the issued token for
// subsequent requests.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		if IsAuthorization(err) || IsValidation(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	c.SetToken(resp.Token)
	return &Session{
		Token:    resp.Token,
		StaffID:  resp.User.ID,
		Username: resp.User.Username,
		Role:     resp.User.Role,
	}, nil
}

// translateNotFound fills in the entity and id a bare backend 404 lacks.
func translateNotFound(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}
