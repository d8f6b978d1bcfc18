package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"library-management/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	dbPath   string
	logLevel string
)

func main() {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Library management system: catalog, members, borrowing, fines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "path to the SQLite database")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(booksCmd(), membersCmd(), borrowCmd(), returnCmd(),
		transactionsCmd(), statsCmd(), holdsCmd(), feedbackCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	if p := os.Getenv("LIBRARY_DB"); p != "" {
		return p
	}
	return "library.db"
}

func openManager() (*library.LibraryManager, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))
	return library.NewLibraryManager(dbPath, library.SystemClock{}, logger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

// authenticateMember prompts for the member's password and verifies it.
func authenticateMember(mgr *library.LibraryManager, memberID string) error {
	member, err := mgr.Membership.GetMember(memberID)
	if err != nil {
		return err
	}
	password, err := readPassword(fmt.Sprintf("Password for %s: ", member.Email))
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	_, err = mgr.Membership.Authenticate(member.Email, password)
	return err
}

// ---------------------------------------------------------------------------
// books
// ---------------------------------------------------------------------------

func booksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "books", Short: "Manage the catalog"}

	var spec library.BookSpec
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book (3 copies) to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			book, err := mgr.Catalog.AddBook(spec)
			if err != nil {
				return err
			}
			fmt.Printf("Added book %s: %s by %s (%d copies)\n", book.ID, book.Title, book.Author, book.TotalCopies)
			return nil
		},
	}
	add.Flags().StringVar(&spec.Title, "title", "", "book title")
	add.Flags().StringVar(&spec.Author, "author", "", "book author")
	add.Flags().StringVar(&spec.Category, "category", "", "book category")
	add.Flags().IntVar(&spec.Price, "price", 0, "book price (drives fines)")
	add.Flags().StringVar(&spec.CoverURL, "cover", "", "cover image URL")
	add.Flags().BoolVar(&spec.IsPopular, "popular", false, "mark as popular")
	add.Flags().BoolVar(&spec.IsRecent, "recent", false, "mark as recently added")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			books, err := mgr.Catalog.ListBooks()
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Println("No books in library.")
				return nil
			}
			fmt.Printf("%-26s %-30s %-22s %-14s %6s %9s\n", "ID", "Title", "Author", "Category", "Price", "Avail")
			fmt.Println(strings.Repeat("-", 112))
			for _, b := range books {
				fmt.Println(library.PrettyBook(b))
			}
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title, author, or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			books, err := mgr.Catalog.SearchBooks(args[0])
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Printf("No books found matching %q.\n", args[0])
				return nil
			}
			for _, b := range books {
				fmt.Println(library.PrettyBook(b))
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <book-id>",
		Short: "Remove a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			if err := mgr.Catalog.DeleteBook(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed book %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, search, rm)
	return cmd
}

// ---------------------------------------------------------------------------
// members
// ---------------------------------------------------------------------------

func membersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "members", Short: "Manage members"}

	var spec library.MemberSpec
	var memberType string
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a new member (starts with 100 points)",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			password, err := readPassword(fmt.Sprintf("Password for %s: ", spec.Email))
			if err != nil {
				return err
			}
			spec.Password = password
			spec.MemberType = library.MemberType(memberType)

			member, err := mgr.Membership.Register(spec)
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s (%s) with ID %s\n", member.FullName, member.MemberType, member.ID)
			return nil
		},
	}
	register.Flags().StringVar(&spec.FullName, "name", "", "full name")
	register.Flags().StringVar(&spec.Email, "email", "", "email (login identifier)")
	register.Flags().StringVar(&memberType, "type", "Student", "member type (Student|Staff|Admin)")
	register.Flags().StringVar(&spec.AdmissionID, "admission-id", "", "admission id (students)")
	register.Flags().StringVar(&spec.EmployeeID, "employee-id", "", "employee id (staff/admin)")
	register.Flags().StringVar(&spec.MobileNumber, "mobile", "", "mobile number")
	register.Flags().IntVar(&spec.Age, "age", 0, "age")
	register.Flags().StringVar(&spec.Address, "address", "", "address")

	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			members, err := mgr.Membership.ListMembers()
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Println("No members registered.")
				return nil
			}
			fmt.Printf("%-26s %-26s %-28s %-8s %6s\n", "ID", "Name", "Email", "Type", "Points")
			fmt.Println(strings.Repeat("-", 98))
			for _, m := range members {
				fmt.Printf("%-26s %-26s %-28s %-8s %6d\n", m.ID, m.FullName, m.Email, m.MemberType, m.Points)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <member-id>",
		Short: "Show a member's profile and loan history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			profile, err := mgr.Reports.Profile(args[0])
			if err != nil {
				return err
			}
			m := profile.Member
			fmt.Printf("%s (%s)\nEmail: %s  Points: %d\n", m.FullName, m.MemberType, m.Email, m.Points)
			fmt.Printf("\nActive loans: %d\n", len(profile.Active))
			for _, t := range profile.Active {
				fmt.Println("  " + library.PrettyTransaction(t))
			}
			fmt.Printf("Past loans: %d\n", len(profile.History))
			for _, t := range profile.History {
				fmt.Println("  " + library.PrettyTransaction(t))
			}
			return nil
		},
	}

	var profile library.ProfileSpec
	update := &cobra.Command{
		Use:   "update <member-id>",
		Short: "Update a member's contact details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			member, err := mgr.Membership.UpdateProfile(args[0], profile)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s (%s)\n", member.FullName, member.ID)
			return nil
		},
	}
	update.Flags().StringVar(&profile.FullName, "name", "", "full name")
	update.Flags().StringVar(&profile.MobileNumber, "mobile", "", "mobile number")
	update.Flags().IntVar(&profile.Age, "age", 0, "age")
	update.Flags().StringVar(&profile.Address, "address", "", "address")

	resetPassword := &cobra.Command{
		Use:   "reset-password <member-id>",
		Short: "Reset a member's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			newPassword, err := readPassword("New password: ")
			if err != nil {
				return err
			}
			if err := mgr.Membership.ResetPassword(args[0], newPassword); err != nil {
				return err
			}
			fmt.Printf("Password reset for member %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(register, list, show, update, resetPassword)
	return cmd
}

// ---------------------------------------------------------------------------
// circulation
// ---------------------------------------------------------------------------

func borrowCmd() *cobra.Command {
	var group []string
	var asGroup bool
	cmd := &cobra.Command{
		Use:   "borrow <book-id> <member-id>",
		Short: "Borrow a book (30 days individual, 180 days group)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			bookID, memberID := args[0], args[1]
			if err := authenticateMember(mgr, memberID); err != nil {
				return err
			}

			borrowingType := library.BorrowIndividual
			if asGroup || len(group) > 0 {
				borrowingType = library.BorrowGroup
			}

			txn, err := mgr.Engine.Borrow(bookID, memberID, borrowingType, group)
			if err != nil {
				return err
			}
			fmt.Printf("Borrowed %q as %s loan. Transaction %s, due %s.\n",
				txn.BookName, txn.BorrowingType, txn.ID, txn.DueDate.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asGroup, "group", false, "borrow as a group loan")
	cmd.Flags().StringSliceVar(&group, "member", nil, "group member id (repeatable, 2-5 besides the borrower)")
	return cmd
}

func returnCmd() *cobra.Command {
	var damage string
	cmd := &cobra.Command{
		Use:   "return <transaction-id>",
		Short: "Return a borrowed book and settle the fine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			txn, fine, err := mgr.Engine.Return(args[0], library.DamageType(damage))
			if err != nil {
				return err
			}
			fmt.Printf("Returned %q with status %s. Fine: %d.\n", txn.BookName, txn.Status, fine)
			return nil
		},
	}
	cmd.Flags().StringVar(&damage, "damage", "None", "damage assessment (None|Small|Large)")
	return cmd
}

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "transactions", Short: "Inspect the transaction set"}

	printTxns := func(txns []*library.Transaction) {
		if len(txns) == 0 {
			fmt.Println("No transactions.")
			return
		}
		fmt.Printf("%-26s %-28s %-22s %-10s %-10s %-10s %-8s %6s\n",
			"ID", "Book", "Borrower", "Type", "Due", "Returned", "Status", "Fine")
		fmt.Println(strings.Repeat("-", 128))
		for _, t := range txns {
			fmt.Println(library.PrettyTransaction(t))
		}
	}

	active := &cobra.Command{
		Use:   "active",
		Short: "List active loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			txns, err := mgr.Reports.ActiveTransactions()
			if err != nil {
				return err
			}
			printTxns(txns)
			return nil
		},
	}

	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "List active loans past their due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			txns, err := mgr.Reports.OverdueTransactions()
			if err != nil {
				return err
			}
			printTxns(txns)
			return nil
		},
	}

	forMember := &cobra.Command{
		Use:   "member <member-id>",
		Short: "List a member's loan history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			txns, err := mgr.Reports.TransactionsForMember(args[0])
			if err != nil {
				return err
			}
			printTxns(txns)
			return nil
		},
	}

	forBook := &cobra.Command{
		Use:   "book <book-id>",
		Short: "List a book's loan history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			txns, err := mgr.Reports.TransactionsForBook(args[0])
			if err != nil {
				return err
			}
			printTxns(txns)
			return nil
		},
	}

	cmd.AddCommand(active, overdue, forMember, forBook)
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the library dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			s, err := mgr.Reports.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Total copies:     %d (%d available, %d out)\n", s.TotalCopies, s.AvailableCopies, s.BorrowedCopies)
			fmt.Printf("Members:          %d\n", s.MemberCount)
			fmt.Printf("Active loans:     %d (%d overdue)\n", s.ActiveCount, s.OverdueCount)
			fmt.Printf("Fines collected:  %d\n", s.TotalFines)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// holds
// ---------------------------------------------------------------------------

func holdsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "holds", Short: "Manage holds on fully borrowed books"}

	place := &cobra.Command{
		Use:   "place <book-id> <member-id>",
		Short: "Place a hold on a book with no available copies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := authenticateMember(mgr, args[1]); err != nil {
				return err
			}
			hold, err := mgr.Holds.PlaceHold(args[0], args[1])
			if err != nil {
				return err
			}
			queue, err := mgr.Holds.QueueForBook(args[0])
			if err != nil {
				return err
			}
			for i, h := range queue {
				if h.ID == hold.ID {
					fmt.Printf("Hold placed. Position in queue: %d\n", i+1)
					return nil
				}
			}
			fmt.Println("Hold placed.")
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list <book-id>",
		Short: "List the hold queue for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			queue, err := mgr.Holds.QueueForBook(args[0])
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				fmt.Println("No holds on this book.")
				return nil
			}
			for i, h := range queue {
				fmt.Printf("%d. %s (since %s)\n", i+1, h.MemberID, h.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <book-id> <member-id>",
		Short: "Cancel a hold",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := authenticateMember(mgr, args[1]); err != nil {
				return err
			}
			if err := mgr.Holds.CancelHold(args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Hold cancelled.")
			return nil
		},
	}

	cmd.AddCommand(place, list, cancel)
	return cmd
}

// ---------------------------------------------------------------------------
// feedback
// ---------------------------------------------------------------------------

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "feedback", Short: "Member feedback"}

	var spec library.FeedbackSpec
	add := &cobra.Command{
		Use:   "add",
		Short: "Submit feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			fb, err := mgr.Feedback.Add(spec)
			if err != nil {
				return err
			}
			fmt.Printf("Feedback %s recorded (%d/5)\n", fb.ID, fb.Rating)
			return nil
		},
	}
	add.Flags().StringVar(&spec.UserID, "member", "", "member id")
	add.Flags().StringVar(&spec.BookID, "book", "", "book id (optional)")
	add.Flags().StringVar(&spec.Title, "title", "", "feedback title")
	add.Flags().StringVar(&spec.Comment, "comment", "", "feedback comment")
	add.Flags().IntVar(&spec.Rating, "rating", 0, "rating 1-5")
	add.Flags().StringVar(&spec.ImageURL, "image", "", "image URL (optional)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			feedbacks, err := mgr.Feedback.List()
			if err != nil {
				return err
			}
			if len(feedbacks) == 0 {
				fmt.Println("No feedback yet.")
				return nil
			}
			for _, f := range feedbacks {
				fmt.Printf("%s  %d/5  %s: %s\n", f.CreatedAt.Format("2006-01-02"), f.Rating, f.UserName, f.Title)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <feedback-id>",
		Short: "Delete feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			if err := mgr.Feedback.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("Feedback deleted.")
			return nil
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}
