package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

const clearScreen = "\033[2J\033[1;1H"

// menu is the numbered interactive shell. When interactive is false the
// screen is never cleared and nobody is asked to press Enter, which keeps
// piped input and tests simple.
type menu struct {
	sc          *bufio.Scanner
	out         io.Writer
	cat         *library.Catalog
	interactive bool
}

func runMenu(in io.Reader, out io.Writer, cat *library.Catalog, interactive bool) error {
	m := &menu{sc: bufio.NewScanner(in), out: out, cat: cat, interactive: interactive}
	fmt.Fprintln(out, "Data loaded successfully.")
	return m.run()
}

func (m *menu) printMenu() {
	fmt.Fprintln(m.out, "========================================")
	fmt.Fprintln(m.out, "     WELCOME TO THE LIBRARY SYSTEM      ")
	fmt.Fprintln(m.out, "========================================")
	fmt.Fprintln(m.out, "1. Add New Book")
	fmt.Fprintln(m.out, "2. Search for a Book by ID")
	fmt.Fprintln(m.out, "3. Search for a Book by Title")
	fmt.Fprintln(m.out, "4. Issue a Book")
	fmt.Fprintln(m.out, "5. Return a Book")
	fmt.Fprintln(m.out, "6. List All Books")
	fmt.Fprintln(m.out, "7. Delete a Book")
	fmt.Fprintln(m.out, "8. Exit")
	fmt.Fprintln(m.out, "========================================")
}

// run loops until the user picks Exit or input ends. Both paths save once
// more before returning.
func (m *menu) run() error {
	for {
		m.clear()
		m.printMenu()
		choice, ok := m.readInt("Enter your choice: ")
		if !ok {
			return m.exit()
		}
		m.clear()

		switch choice {
		case 1:
			m.handleAddBook()
		case 2:
			m.handleSearchByID()
		case 3:
			m.handleSearchByTitle()
		case 4:
			m.handleIssue()
		case 5:
			m.handleReturn()
		case 6:
			m.handleListAll()
		case 7:
			m.handleDelete()
		case 8:
			return m.exit()
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
		}

		if m.interactive {
			fmt.Fprint(m.out, "Press Enter to continue...")
			if !m.sc.Scan() {
				return m.exit()
			}
		}
	}
}

func (m *menu) exit() error {
	fmt.Fprintln(m.out, "Exiting program...")
	if err := m.cat.Save(); err != nil {
		fmt.Fprintf(m.out, "Unable to save data: %v\n", err)
		return err
	}
	fmt.Fprintln(m.out, "Data saved successfully.")
	return nil
}

func (m *menu) clear() {
	if m.interactive {
		fmt.Fprint(m.out, clearScreen)
	}
}

// readLine prints prompt and returns the next line. ok is false at end of input.
func (m *menu) readLine(prompt string) (line string, ok bool) {
	fmt.Fprint(m.out, prompt)
	if !m.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.sc.Text()), true
}

// readInt re-prompts until the line parses as an integer.
func (m *menu) readInt(prompt string) (int64, bool) {
	for {
		s, ok := m.readLine(prompt)
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return n, true
		}
		fmt.Fprintf(m.out, "Invalid number: %q. Please try again.\n", s)
	}
}

// report prints success when err is nil. A failed save still counts as a
// completed change, so it prints success followed by a warning.
func (m *menu) report(err error, success string) {
	switch {
	case err == nil:
		fmt.Fprintln(m.out, success)
		fmt.Fprintln(m.out, "Data saved successfully.")
	case errors.Is(err, library.ErrIOUnavailable):
		fmt.Fprintln(m.out, success)
		fmt.Fprintf(m.out, "Unable to save data: %v\n", err)
	default:
		fmt.Fprintln(m.out, describe(err))
	}
}

func (m *menu) printBooks(books []library.Book) { printTable(m.out, books) }

func (m *menu) handleAddBook() {
	id, ok := m.readInt("Enter Book ID: ")
	if !ok {
		return
	}
	title, ok := m.readLine("Enter Book Title: ")
	if !ok {
		return
	}
	author, ok := m.readLine("Enter Book Author: ")
	if !ok {
		return
	}
	m.report(m.cat.AddBook(id, title, author), "Book added successfully.")
}

func (m *menu) handleSearchByID() {
	id, ok := m.readInt("Enter Book ID to search: ")
	if !ok {
		return
	}
	b, err := m.cat.FindByID(id)
	if err != nil {
		fmt.Fprintln(m.out, describe(err))
		return
	}
	m.printBooks([]library.Book{b})
}

func (m *menu) handleSearchByTitle() {
	title, ok := m.readLine("Enter Book Title to search: ")
	if !ok {
		return
	}
	books := m.cat.SearchByTitle(title)
	if len(books) == 0 {
		fmt.Fprintf(m.out, "Book with title '%s' not found.\n", title)
		return
	}
	m.printBooks(books)
}

func (m *menu) handleIssue() {
	fmt.Fprintln(m.out, "Available Books:")
	m.printBooks(m.cat.ListAvailable())

	id, ok := m.readInt("Enter Book ID to issue: ")
	if !ok {
		return
	}
	student, ok := m.readLine("Enter Student Name: ")
	if !ok {
		return
	}
	b, err := m.cat.IssueBook(id, student)
	m.report(err, fmt.Sprintf("Book issued to %s with due date %s.", b.IssuedTo, b.DueDate))
}

func (m *menu) handleReturn() {
	id, ok := m.readInt("Enter Book ID to return: ")
	if !ok {
		return
	}
	m.report(m.cat.ReturnBook(id), "Book returned successfully.")
}

func (m *menu) handleListAll() {
	if m.cat.Len() == 0 {
		fmt.Fprintln(m.out, "No books available in the library.")
		return
	}
	choice, ok := m.readLine("Sort by (I)d or (T)itle: ")
	if !ok {
		return
	}
	key, valid := library.ParseSortKey(choice)
	if !valid {
		fmt.Fprintln(m.out, "Invalid choice. Sorting by ID by default.")
	}
	m.printBooks(m.cat.ListAll(key))
}

func (m *menu) handleDelete() {
	id, ok := m.readInt("Enter Book ID to delete: ")
	if !ok {
		return
	}
	m.report(m.cat.DeleteBook(id), "Book deleted successfully.")
}

// describe turns catalog errors into the messages shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, library.ErrDuplicateID):
		return "Book with this ID already exists."
	case errors.Is(err, library.ErrNotFound):
		return "Book not found."
	case errors.Is(err, library.ErrAlreadyIssued):
		return "Book is already issued."
	case errors.Is(err, library.ErrNotIssued):
		return "Book was not issued."
	case errors.Is(err, library.ErrUnencodable):
		return "Commas and line breaks cannot be stored in this data file."
	case errors.Is(err, library.ErrInvalidInput):
		return "Borrower name cannot be empty."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
