// Command seed wipes the database and loads the stock catalog plus the
// default admin account. Intended for demos and local development.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"library-management/library"
)

const defaultAdminPassword = "admin123"

func main() {
	dbPath := os.Getenv("LIBRARY_DB")
	if dbPath == "" {
		dbPath = "library.db"
	}

	// Clean up any existing database files.
	fmt.Println("Cleaning up existing database files...")
	for _, file := range []string{dbPath, dbPath + "-shm", dbPath + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: could not remove %s: %v\n", file, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	manager, err := library.NewLibraryManager(dbPath, library.SystemClock{}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	admin, err := manager.Membership.Register(library.MemberSpec{
		FullName:     "Admin User",
		Email:        "admin@library.com",
		MemberType:   library.MemberAdmin,
		EmployeeID:   "EMP001",
		MobileNumber: "9876543210",
		Age:          35,
		Address:      "Library Admin Office",
		Password:     defaultAdminPassword,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created admin %s (email admin@library.com, password %s)\n", admin.ID, defaultAdminPassword)

	books := []library.BookSpec{
		{Title: "Atomic Habits", Author: "James Clear", Category: "Self-Help", Price: 500, IsPopular: true},
		{Title: "Rich Dad Poor Dad", Author: "Robert Kiyosaki", Category: "Finance", Price: 400, IsPopular: true, IsRecent: true},
		{Title: "The 7 Habits of Highly Effective People", Author: "Stephen Covey", Category: "Self-Help", Price: 450, IsPopular: true},
		{Title: "Sapiens: A Brief History of Humankind", Author: "Yuval Noah Harari", Category: "History", Price: 600, IsPopular: true, IsRecent: true},
		{Title: "Where the Crawdads Sing", Author: "Delia Owens", Category: "Fiction", Price: 550, IsRecent: true},
		{Title: "Project Hail Mary", Author: "Andy Weir", Category: "Science Fiction", Price: 650, IsPopular: true, IsRecent: true},
		{Title: "A Promised Land", Author: "Barack Obama", Category: "Biography", Price: 700, IsRecent: true},
	}

	successCount := 0
	for _, spec := range books {
		fmt.Printf("Importing: %s by %s... ", spec.Title, spec.Author)
		book, err := manager.Catalog.AddBook(spec)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			continue
		}
		fmt.Printf("SUCCESS (ID: %s)\n", book.ID)
		successCount++
	}

	fmt.Printf("\nSeed complete: %d books, 1 admin.\n", successCount)
}
