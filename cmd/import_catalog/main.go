package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"library-circulation/circulation"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML seed format: genres by name, books referencing
// genres by name, and optionally an initial member list.
type catalogFile struct {
	Genres []string `yaml:"genres"`
	Books  []struct {
		Title         string `yaml:"title"`
		Author        string `yaml:"author"`
		PublishedYear int    `yaml:"published_year"`
		Genre         string `yaml:"genre"`
		Copies        int    `yaml:"copies"`
	} `yaml:"books"`
	Members []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Phone string `yaml:"phone"`
	} `yaml:"members"`
}

func main() {
	catalogPath := "catalog.yaml"
	if len(os.Args) > 1 {
		catalogPath = os.Args[1]
	}
	dbPath := os.Getenv("LIBRARY_DB")
	if dbPath == "" {
		dbPath = "library.db"
	}

	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	dbFiles := []string{dbPath, dbPath + "-shm", dbPath + "-wal"}
	for _, file := range dbFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	data, err := os.ReadFile(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog file: %v\n", err)
		os.Exit(1)
	}
	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing catalog file: %v\n", err)
		os.Exit(1)
	}

	db, err := circulation.NewDatabase(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	successCount := 0
	errorCount := 0

	// Genres first so books can reference them by name.
	genreIDs := make(map[string]int64, len(catalog.Genres))
	for _, name := range catalog.Genres {
		g := &circulation.Genre{Name: name}
		fmt.Printf("Importing genre: %s... ", name)
		if err := db.CreateGenre(ctx, g); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		genreIDs[name] = g.ID
		fmt.Printf("SUCCESS (ID: %d)\n", g.ID)
		successCount++
	}

	for _, b := range catalog.Books {
		fmt.Printf("Importing: %s by %s... ", b.Title, b.Author)
		genreID, ok := genreIDs[b.Genre]
		if !ok {
			fmt.Printf("ERROR - unknown genre %q\n", b.Genre)
			errorCount++
			continue
		}
		copies := b.Copies
		if copies == 0 {
			copies = 1
		}
		book := &circulation.Book{
			Title:           b.Title,
			Author:          b.Author,
			PublishedYear:   b.PublishedYear,
			GenreID:         genreID,
			AvailableCopies: copies,
		}
		if err := db.CreateBook(ctx, book); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", book.ID)
		successCount++
	}

	for _, m := range catalog.Members {
		fmt.Printf("Importing member: %s... ", m.Name)
		member := &circulation.Member{
			Name:     m.Name,
			Email:    m.Email,
			Phone:    m.Phone,
			JoinDate: circulation.DateOf(time.Now()),
		}
		if err := db.CreateMember(ctx, member); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", member.ID)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d entries\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nImported books:")
		books, err := db.ListBooks(ctx, circulation.BookFilter{})
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
		} else {
			fmt.Printf("%-3s %-50s %-30s %s\n", "ID", "Title", "Author", "Copies")
			fmt.Println(strings.Repeat("-", 92))
			for _, book := range books {
				fmt.Printf("%-3d %-50s %-30s %d\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30), book.AvailableCopies)
			}
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
