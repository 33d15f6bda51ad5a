package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"library-lending/config"
	"library-lending/library"
)

var (
	cfgPath string
	dbPath  string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "liblend",
		Short:         "Library lending system",
		Long:          "liblend manages a library catalog: books, members, borrowing and returns.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(cfgPath); err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.DBPath
			}
			if verbose {
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
			} else {
				logger = zap.NewNop()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "liblend.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		addBookCmd(),
		registerMemberCmd(),
		borrowCmd(),
		returnCmd(),
		searchCmd(),
		borrowedCmd(),
		listBooksCmd(),
		listMembersCmd(),
		exportCmd(),
		importCmd(),
		demoCmd(),
	)
	return root
}

// withLibrary loads the library from the store, runs fn against it, and
// saves it back when save is set and fn succeeded.
func withLibrary(save bool, fn func(*library.Library) error) error {
	store, err := library.OpenStore(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	lib, err := store.Load()
	if err != nil {
		return err
	}
	if err := fn(lib); err != nil {
		return err
	}
	if save {
		return store.Save(lib)
	}
	return nil
}

func addBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-book ISBN TITLE AUTHOR YEAR",
		Short: "Add a book to the catalog",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid publication year %q", args[3])
			}
			return withLibrary(true, func(lib *library.Library) error {
				lib.AddBook(library.NewBook(args[0], args[1], args[2], year))
				fmt.Printf("Added book %s: %s by %s (%d)\n", args[0], args[1], args[2], year)
				return nil
			})
		},
	}
}

func registerMemberCmd() *cobra.Command {
	var memberID, tierName string
	cmd := &cobra.Command{
		Use:   "register-member NAME EMAIL",
		Short: "Register a library member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tierName == "" {
				tierName = cfg.DefaultMembership
			}
			tier, err := library.ParseMembershipType(tierName)
			if err != nil {
				return err
			}
			if memberID == "" {
				memberID = uuid.NewString()
			}
			return withLibrary(true, func(lib *library.Library) error {
				lib.RegisterMember(library.NewMember(memberID, args[0], args[1], tier))
				fmt.Printf("Registered %s member '%s' with ID %s\n", tier.TypeName(), args[0], memberID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&memberID, "id", "", "member id (generated when omitted)")
	cmd.Flags().StringVar(&tierName, "tier", "", "membership tier: Regular or Premium")
	return cmd
}

func borrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow MEMBER_ID ISBN",
		Short: "Borrow a book for a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(true, func(lib *library.Library) error {
				if err := lib.Borrow(args[0], args[1]); err != nil {
					return fmt.Errorf("borrow failed: %w", err)
				}
				book, _ := lib.Book(args[1])
				member, _ := lib.Member(args[0])
				fmt.Printf("Book '%s' borrowed by %s\n", book.Title(), member.Name())
				return nil
			})
		},
	}
}

func returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return MEMBER_ID ISBN",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(true, func(lib *library.Library) error {
				if err := lib.Return(args[0], args[1]); err != nil {
					return fmt.Errorf("return failed: %w", err)
				}
				book, _ := lib.Book(args[1])
				fmt.Printf("Book '%s' is available again\n", book.Title())
				return nil
			})
		},
	}
}

func searchCmd() *cobra.Command {
	var byAuthor bool
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the catalog by title (or author with --author)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(false, func(lib *library.Library) error {
				var books []*library.Book
				if byAuthor {
					books = lib.SearchByAuthor(args[0])
				} else {
					books = lib.SearchByTitle(args[0])
				}
				if len(books) == 0 {
					fmt.Printf("No books found matching '%s'.\n", args[0])
					return nil
				}
				fmt.Printf("Found %d book(s) matching '%s':\n", len(books), args[0])
				printBookTable(books)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&byAuthor, "author", false, "match the author instead of the title")
	return cmd
}

func borrowedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrowed MEMBER_ID",
		Short: "List a member's currently borrowed books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(false, func(lib *library.Library) error {
				books := lib.MemberBorrowedBooks(args[0])
				if len(books) == 0 {
					fmt.Println("No books currently borrowed.")
					return nil
				}
				printBookTable(books)
				return nil
			})
		},
	}
}

func listBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-books",
		Short: "List the whole catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(false, func(lib *library.Library) error {
				books := lib.Books()
				if len(books) == 0 {
					fmt.Println("No books in library.")
					return nil
				}
				printBookTable(books)
				return nil
			})
		},
	}
}

func listMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-members",
		Short: "List registered members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(false, func(lib *library.Library) error {
				members := lib.Members()
				if len(members) == 0 {
					fmt.Println("No members registered.")
					return nil
				}
				fmt.Printf("%-38s %-20s %-30s %-10s %s\n", "ID", "Name", "Email", "Tier", "Borrowed")
				fmt.Println(strings.Repeat("-", 110))
				for _, m := range members {
					fmt.Printf("%-38s %-20s %-30s %-10s %d/%d\n",
						truncateString(m.ID(), 38),
						truncateString(m.Name(), 20),
						truncateString(m.Email(), 30),
						m.Membership().TypeName(),
						len(m.BorrowedBooks()),
						m.Membership().BorrowLimit())
				}
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export the library state as JSON (stdout when FILE is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(false, func(lib *library.Library) error {
				out := os.Stdout
				if len(args) == 1 {
					f, err := os.Create(args[0])
					if err != nil {
						return err
					}
					defer f.Close()
					out = f
				}
				return lib.Snapshot().WriteTo(out)
			})
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the library state from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			snap, err := library.ReadSnapshot(f)
			if err != nil {
				return err
			}
			lib, err := library.RestoreLibrary(snap)
			if err != nil {
				return err
			}

			store, err := library.OpenStore(dbPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(lib); err != nil {
				return err
			}
			fmt.Printf("Imported %d book(s) and %d member(s)\n", len(snap.Books), len(snap.Members))
			return nil
		},
	}
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the canonical borrow/return walkthrough on a fresh in-memory library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := library.NewLibrary()

			lib.AddBook(library.NewBook("978-0134685991", "Effective Java", "Joshua Bloch", 2017))
			lib.AddBook(library.NewBook("978-0132350884", "Clean Code", "Robert Martin", 2008))

			lib.RegisterMember(library.NewMember("M001", "Alice", "alice@example.com", library.Regular))
			lib.RegisterMember(library.NewMember("M002", "Bob", "bob@example.com", library.Premium))

			if err := lib.Borrow("M001", "978-0134685991"); err != nil {
				return fmt.Errorf("demo borrow: %w", err)
			}
			fmt.Println("M001 borrowed 978-0134685991")

			if err := lib.Return("M001", "978-0134685991"); err != nil {
				return fmt.Errorf("demo return: %w", err)
			}
			fmt.Println("M001 returned 978-0134685991")

			fmt.Println("\nCatalog after the walkthrough:")
			printBookTable(lib.Books())
			return nil
		},
	}
}

func printBookTable(books []*library.Book) {
	fmt.Printf("%-16s %-30s %-25s %-6s %-10s %s\n", "ISBN", "Title", "Author", "Year", "Available", "Borrower")
	fmt.Println(strings.Repeat("-", 110))
	for _, b := range books {
		borrower := "None"
		if m := b.Borrower(); m != nil {
			borrower = fmt.Sprintf("%s (ID: %s)", m.Name(), m.ID())
		}
		avail := "Yes"
		if !b.Available() {
			avail = "No"
		}
		fmt.Printf("%-16s %-30s %-25s %-6d %-10s %s\n",
			truncateString(b.ISBN(), 16),
			truncateString(b.Title(), 30),
			truncateString(b.Author(), 25),
			b.Year(),
			avail,
			borrower)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
