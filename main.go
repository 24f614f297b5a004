package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"library-circulation/circulation"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// appConfig comes from the environment. With no backend URL the CLI runs
// against a local SQLite database; with one it talks to the REST backend.
type appConfig struct {
	DBPath         string        `env:"LIBRARY_DB" envDefault:"library.db"`
	BackendURL     string        `env:"LIBRARY_BACKEND_URL"`
	SessionFile    string        `env:"LIBRARY_SESSION_FILE" envDefault:".library_session.yaml"`
	RequestTimeout time.Duration `env:"LIBRARY_REQUEST_TIMEOUT" envDefault:"10s"`
	LoanDays       int           `env:"LIBRARY_LOAN_DAYS" envDefault:"14"`
}

// app wires the service to whichever store the config selects and carries
// the persisted session between invocations.
type app struct {
	cfg     appConfig
	svc     *circulation.Service
	session *circulation.Session
	close   func() error
}

func newApp() (*app, error) {
	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	a := &app{cfg: cfg, close: func() error { return nil }}
	a.session = a.loadSession()

	if cfg.BackendURL != "" {
		opts := []circulation.ClientOption{
			circulation.WithTimeout(cfg.RequestTimeout),
			circulation.WithUnauthorizedHandler(a.clearSession),
		}
		if a.session != nil {
			opts = append(opts, circulation.WithToken(a.session.Token))
		}
		client := circulation.NewClient(cfg.BackendURL, opts...)
		a.svc = circulation.NewService(client, client, client,
			circulation.WithStaffDirectory(client))
		return a, nil
	}

	db, err := circulation.NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.close = db.Close
	a.svc = circulation.NewService(db, db, db,
		circulation.WithStaffDirectory(db))
	return a, nil
}

func (a *app) loadSession() *circulation.Session {
	data, err := os.ReadFile(a.cfg.SessionFile)
	if err != nil {
		return nil
	}
	var sess circulation.Session
	if err := yaml.Unmarshal(data, &sess); err != nil || sess.Token == "" {
		return nil
	}
	return &sess
}

func (a *app) saveSession(sess *circulation.Session) error {
	data, err := yaml.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(a.cfg.SessionFile, data, 0600)
}

func (a *app) clearSession() {
	_ = os.Remove(a.cfg.SessionFile)
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID: %s", what, arg)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}

func main() {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library circulation service CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		loginCmd(a), logoutCmd(a),
		booksCmd(a), genresCmd(a), membersCmd(a),
		borrowCmd(a), returnCmd(a), recordsCmd(a),
		reportsCmd(a), staffCmd(a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate and store a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			sess, err := a.svc.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			if err := a.saveSession(sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			a.session = sess
			fmt.Printf("Logged in as %s (%s)\n", sess.Username, sess.Role)
			return nil
		},
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.clearSession()
			a.session = nil
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func booksCmd(a *app) *cobra.Command {
	books := &cobra.Command{Use: "books", Short: "Manage the catalog"}

	var (
		search        string
		genreID       int64
		availableOnly bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := circulation.BookFilter{
				Search:        search,
				GenreID:       genreID,
				AvailableOnly: availableOnly,
			}
			found, err := a.svc.ListBooks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printBooks(found)
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "substring match on title or author")
	list.Flags().Int64Var(&genreID, "genre", 0, "filter by genre ID")
	list.Flags().BoolVar(&availableOnly, "available", false, "only books with copies available")

	var (
		title  string
		author string
		year   int
		genre  int64
		copies int
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &circulation.Book{
				Title:           title,
				Author:          author,
				PublishedYear:   year,
				GenreID:         genre,
				AvailableCopies: copies,
			}
			if err := a.svc.CreateBook(cmd.Context(), a.session, b); err != nil {
				return err
			}
			fmt.Printf("Added book ID %d: '%s' by %s\n", b.ID, b.Title, b.Author)
			return nil
		},
	}
	add.Flags().StringVar(&title, "title", "", "book title")
	add.Flags().StringVar(&author, "author", "", "book author")
	add.Flags().IntVar(&year, "year", 0, "published year")
	add.Flags().Int64Var(&genre, "genre", 0, "genre ID")
	add.Flags().IntVar(&copies, "copies", 1, "available copies")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update book fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			var upd circulation.BookUpdate
			if cmd.Flags().Changed("title") {
				upd.Title = &title
			}
			if cmd.Flags().Changed("author") {
				upd.Author = &author
			}
			if cmd.Flags().Changed("year") {
				upd.PublishedYear = &year
			}
			if cmd.Flags().Changed("genre") {
				upd.GenreID = &genre
			}
			if cmd.Flags().Changed("copies") {
				upd.AvailableCopies = &copies
			}
			b, err := a.svc.UpdateBook(cmd.Context(), a.session, id, upd)
			if err != nil {
				return err
			}
			fmt.Printf("Updated book ID %d: '%s' by %s\n", b.ID, b.Title, b.Author)
			return nil
		},
	}
	update.Flags().StringVar(&title, "title", "", "book title")
	update.Flags().StringVar(&author, "author", "", "book author")
	update.Flags().IntVar(&year, "year", 0, "published year")
	update.Flags().Int64Var(&genre, "genre", 0, "genre ID")
	update.Flags().IntVar(&copies, "copies", 0, "available copies")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a book (blocked while borrow records reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if err := a.svc.DeleteBook(cmd.Context(), a.session, id); err != nil {
				return err
			}
			fmt.Printf("Deleted book ID %d\n", id)
			return nil
		},
	}

	books.AddCommand(list, add, update, rm)
	return books
}

func printBooks(books []circulation.Book) {
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}
	fmt.Printf("%-5s %-35s %-25s %-6s %-8s %s\n", "ID", "Title", "Author", "Year", "Genre", "Available")
	fmt.Println(strings.Repeat("-", 95))
	for _, b := range books {
		year := "-"
		if b.PublishedYear != 0 {
			year = strconv.Itoa(b.PublishedYear)
		}
		fmt.Printf("%-5d %-35s %-25s %-6s %-8d %d\n",
			b.ID,
			truncateString(b.Title, 35),
			truncateString(b.Author, 25),
			year,
			b.GenreID,
			b.AvailableCopies)
	}
}

func genresCmd(a *app) *cobra.Command {
	genres := &cobra.Command{Use: "genres", Short: "Manage genres"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.svc.ListGenres(cmd.Context())
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Println("No genres defined.")
				return nil
			}
			fmt.Printf("%-5s %s\n", "ID", "Name")
			fmt.Println(strings.Repeat("-", 40))
			for _, g := range found {
				fmt.Printf("%-5d %s\n", g.ID, g.Name)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a genre",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := &circulation.Genre{Name: args[0]}
			if err := a.svc.CreateGenre(cmd.Context(), a.session, g); err != nil {
				return err
			}
			fmt.Printf("Added genre ID %d: %s\n", g.ID, g.Name)
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update <id> <name>",
		Short: "Rename a genre",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "genre")
			if err != nil {
				return err
			}
			g, err := a.svc.UpdateGenre(cmd.Context(), a.session, id, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Renamed genre ID %d to %s\n", g.ID, g.Name)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a genre (blocked while books reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "genre")
			if err != nil {
				return err
			}
			if err := a.svc.DeleteGenre(cmd.Context(), a.session, id); err != nil {
				return err
			}
			fmt.Printf("Deleted genre ID %d\n", id)
			return nil
		},
	}

	genres.AddCommand(list, add, update, rm)
	return genres
}

func membersCmd(a *app) *cobra.Command {
	members := &cobra.Command{Use: "members", Short: "Manage library members"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.svc.ListMembers(cmd.Context())
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Println("No members registered.")
				return nil
			}
			fmt.Printf("%-5s %-30s %-30s %-15s %-12s %s\n", "ID", "Name", "Email", "Phone", "Joined", "Active Loans")
			fmt.Println(strings.Repeat("-", 105))
			for _, m := range found {
				fmt.Printf("%-5d %-30s %-30s %-15s %-12s %d\n",
					m.ID,
					truncateString(m.Name, 30),
					truncateString(m.Email, 30),
					truncateString(m.Phone, 15),
					formatDate(m.JoinDate),
					m.ActiveBorrowCount)
			}
			return nil
		},
	}

	var (
		name  string
		email string
		phone string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := &circulation.Member{Name: name, Email: email, Phone: phone}
			if err := a.svc.CreateMember(cmd.Context(), a.session, m); err != nil {
				return err
			}
			fmt.Printf("Added member '%s' with ID %d\n", m.Name, m.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "member name")
	add.Flags().StringVar(&email, "email", "", "member email")
	add.Flags().StringVar(&phone, "phone", "", "member phone")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update member fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			var upd circulation.MemberUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				upd.Phone = &phone
			}
			m, err := a.svc.UpdateMember(cmd.Context(), a.session, id, upd)
			if err != nil {
				return err
			}
			fmt.Printf("Updated member ID %d: %s\n", m.ID, m.Name)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "member name")
	update.Flags().StringVar(&email, "email", "", "member email")
	update.Flags().StringVar(&phone, "phone", "", "member phone")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a member (blocked while borrow records reference them)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			if err := a.svc.DeleteMember(cmd.Context(), a.session, id); err != nil {
				return err
			}
			fmt.Printf("Deleted member ID %d\n", id)
			return nil
		},
	}

	history := &cobra.Command{
		Use:   "history <id>",
		Short: "Show a member's borrowing history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			entries, err := a.svc.BorrowingHistory(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No borrowing history.")
				return nil
			}
			fmt.Printf("%-5s %-35s %-12s %-12s %-12s %s\n", "ID", "Title", "Borrowed", "Due", "Returned", "Status")
			fmt.Println(strings.Repeat("-", 95))
			for _, e := range entries {
				returned := "-"
				if e.ReturnDate != nil {
					returned = formatDate(*e.ReturnDate)
				}
				fmt.Printf("%-5d %-35s %-12s %-12s %-12s %s\n",
					e.ID,
					truncateString(e.BookTitle, 35),
					formatDate(e.BorrowDate),
					formatDate(e.DueDate),
					returned,
					e.Status())
			}
			return nil
		},
	}

	members.AddCommand(list, add, update, rm, history)
	return members
}

func borrowCmd(a *app) *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "borrow <book-id> <member-id>",
		Short: "Lend a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			memberID, err := parseID(args[1], "member")
			if err != nil {
				return err
			}
			dueDate := circulation.DateOf(time.Now()).AddDate(0, 0, a.cfg.LoanDays)
			if due != "" {
				if dueDate, err = parseDate(due); err != nil {
					return err
				}
			}
			r, err := a.svc.Borrow(cmd.Context(), a.session, bookID, memberID, dueDate)
			if err != nil {
				return err
			}
			fmt.Printf("Created borrow record %d: book %d to member %d, due %s\n",
				r.ID, r.BookID, r.MemberID, formatDate(r.DueDate))
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD), default today + loan period")
	return cmd
}

func returnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return <record-id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "record")
			if err != nil {
				return err
			}
			r, err := a.svc.Return(cmd.Context(), a.session, id)
			if err != nil {
				return err
			}
			fmt.Printf("Returned record %d: book %d back on %s\n",
				r.ID, r.BookID, formatDate(*r.ReturnDate))
			return nil
		},
	}
}

func recordsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List all borrow records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.svc.Records(cmd.Context())
			if err != nil {
				return err
			}
			printRecords(records)
			return nil
		},
	}
}

func printRecords(records []circulation.BorrowRecord) {
	if len(records) == 0 {
		fmt.Println("No borrow records.")
		return
	}
	now := time.Now()
	fmt.Printf("%-5s %-8s %-8s %-12s %-12s %-12s %s\n", "ID", "Book", "Member", "Borrowed", "Due", "Returned", "Status")
	fmt.Println(strings.Repeat("-", 80))
	for _, r := range records {
		returned := "-"
		if r.ReturnDate != nil {
			returned = formatDate(*r.ReturnDate)
		}
		status := string(r.Status())
		if r.IsOverdue(now) {
			status = "overdue"
		}
		fmt.Printf("%-5d %-8d %-8d %-12s %-12s %-12s %s\n",
			r.ID, r.BookID, r.MemberID,
			formatDate(r.BorrowDate), formatDate(r.DueDate), returned, status)
	}
}

func reportsCmd(a *app) *cobra.Command {
	reports := &cobra.Command{Use: "reports", Short: "Circulation reports"}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Active, returned, and overdue counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.svc.ReportSummary(cmd.Context(), a.session)
			if err != nil {
				return err
			}
			fmt.Printf("Active:   %d\n", s.ActiveCount)
			fmt.Printf("Returned: %d\n", s.ReturnedCount)
			fmt.Printf("Overdue:  %d\n", s.OverdueCount)
			return nil
		},
	}

	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "Active records past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.svc.ReportOverdue(cmd.Context(), a.session)
			if err != nil {
				return err
			}
			printRecords(records)
			return nil
		},
	}

	popular := &cobra.Command{
		Use:   "popular-genres",
		Short: "Genres ranked by total borrows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ranking, err := a.svc.ReportPopularGenres(cmd.Context(), a.session)
			if err != nil {
				return err
			}
			if len(ranking) == 0 {
				fmt.Println("No genres defined.")
				return nil
			}
			fmt.Printf("%-30s %s\n", "Genre", "Borrows")
			fmt.Println(strings.Repeat("-", 40))
			for _, g := range ranking {
				fmt.Printf("%-30s %d\n", truncateString(g.Name, 30), g.BorrowCount)
			}
			return nil
		},
	}

	reports.AddCommand(summary, overdue, popular)
	return reports
}

func staffCmd(a *app) *cobra.Command {
	staff := &cobra.Command{Use: "staff", Short: "Manage staff accounts"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List staff accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.svc.ListStaff(cmd.Context(), a.session)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Println("No staff accounts.")
				return nil
			}
			fmt.Printf("%-5s %-20s %-30s %-10s %-10s %s\n", "ID", "Username", "Email", "Role", "Status", "Created")
			fmt.Println(strings.Repeat("-", 90))
			for _, s := range found {
				fmt.Printf("%-5d %-20s %-30s %-10s %-10s %s\n",
					s.ID,
					truncateString(s.Username, 20),
					truncateString(s.Email, 30),
					s.Role,
					s.Status,
					formatDate(s.CreatedAt))
			}
			return nil
		},
	}

	var (
		username string
		email    string
		phone    string
		role     string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(fmt.Sprintf("Password for %s: ", username))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			s := &circulation.Staff{
				Username: username,
				Email:    email,
				Phone:    phone,
				Role:     circulation.Role(role),
				Status:   circulation.StaffActive,
			}
			if err := a.svc.CreateStaff(cmd.Context(), a.session, s, password); err != nil {
				return err
			}
			fmt.Printf("Created staff account '%s' (ID %d, %s)\n", s.Username, s.ID, s.Role)
			return nil
		},
	}
	add.Flags().StringVar(&username, "username", "", "login name")
	add.Flags().StringVar(&email, "email", "", "staff email")
	add.Flags().StringVar(&phone, "phone", "", "staff phone")
	add.Flags().StringVar(&role, "role", string(circulation.RoleLibrarian), "admin or librarian")

	var status string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a staff account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "staff")
			if err != nil {
				return err
			}
			var upd circulation.StaffUpdate
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				upd.Phone = &phone
			}
			if cmd.Flags().Changed("role") {
				r := circulation.Role(role)
				upd.Role = &r
			}
			if cmd.Flags().Changed("status") {
				upd.Status = &status
			}
			s, err := a.svc.UpdateStaff(cmd.Context(), a.session, id, upd)
			if err != nil {
				return err
			}
			fmt.Printf("Updated staff ID %d: %s (%s, %s)\n", s.ID, s.Username, s.Role, s.Status)
			return nil
		},
	}
	update.Flags().StringVar(&email, "email", "", "staff email")
	update.Flags().StringVar(&phone, "phone", "", "staff phone")
	update.Flags().StringVar(&role, "role", "", "admin or librarian")
	update.Flags().StringVar(&status, "status", "", "active or inactive")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a staff account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "staff")
			if err != nil {
				return err
			}
			if err := a.svc.DeleteStaff(cmd.Context(), a.session, id); err != nil {
				return err
			}
			fmt.Printf("Deleted staff ID %d\n", id)
			return nil
		},
	}

	staff.AddCommand(list, add, update, rm)
	return staff
}
