package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"

	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid book ID %q", s)
	}
	return id, nil
}

// done prints msg for a completed change. A save failure is returned so the
// exit status reflects it, but the message is still printed because the
// change was applied.
func done(out io.Writer, err error, msg string) error {
	if err != nil && !errors.Is(err, library.ErrIOUnavailable) {
		return errors.New(describe(err))
	}
	fmt.Fprintln(out, msg)
	return err
}

func printTable(out io.Writer, books []library.Book) {
	fmt.Fprintln(out, library.PrettyHeader())
	for _, b := range books {
		fmt.Fprintln(out, library.PrettyBook(b))
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add ID TITLE AUTHOR",
		Short: "Add a new book",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), a.catalog.AddBook(id, args[1], args[2]), "Book added successfully.")
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a book by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.catalog.FindByID(id)
			if err != nil {
				return errors.New(describe(err))
			}
			printTable(cmd.OutOrStdout(), []library.Book{b})
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search TITLE",
		Short: "Find books by exact title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			books := a.catalog.SearchByTitle(args[0])
			if len(books) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Book with title '%s' not found.\n", args[0])
				return nil
			}
			printTable(cmd.OutOrStdout(), books)
			return nil
		},
	}
}

func newIssueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "issue ID BORROWER",
		Short: "Issue a book to a borrower",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.catalog.IssueBook(id, args[1])
			return done(cmd.OutOrStdout(), err, fmt.Sprintf("Book issued to %s with due date %s.", b.IssuedTo, b.DueDate))
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return ID",
		Short: "Return an issued book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), a.catalog.ReturnBook(id), "Book returned successfully.")
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), a.catalog.DeleteBook(id), "Book deleted successfully.")
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		sortBy    string
		available bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if available {
				fmt.Fprintln(out, "Available Books:")
				printTable(out, a.catalog.ListAvailable())
				return nil
			}
			if a.catalog.Len() == 0 {
				fmt.Fprintln(out, "No books available in the library.")
				return nil
			}
			key, ok := library.ParseSortKey(sortBy)
			if !ok {
				fmt.Fprintln(out, "Invalid choice. Sorting by ID by default.")
			}
			printTable(out, a.catalog.ListAll(key))
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "id", "sort key: id (I) or title (T)")
	cmd.Flags().BoolVar(&available, "available", false, "only books that are not issued, in catalog order")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the catalog as JSON in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := library.ExportJSON(a.catalog.Books())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
