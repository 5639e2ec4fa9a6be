package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logging"

	"go.uber.org/zap"
)

type options struct {
	in      string
	backend string
	out     string
	replace bool
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "library_data.txt", "legacy comma separated data file to import")
	flag.StringVar(&opts.backend, "backend", library.BackendSiser, "destination backend: siser, sqlite or bolt")
	flag.StringVar(&opts.out, "out", "", "destination path (defaults per backend)")
	flag.BoolVar(&opts.replace, "replace", false, "remove an existing destination before importing")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, stdout io.Writer) (err error) {
	if opts.out == "" {
		opts.out = config.DefaultDataFile(opts.backend)
	}
	if opts.out == opts.in {
		return errors.New("-in and -out must differ")
	}

	logger, flush, err := logging.Setup(logging.Options{Level: "info"})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() {
		if ferr := flush(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	if opts.replace {
		fmt.Fprintf(stdout, "Removing existing %s...\n", opts.out)
		if err := os.Remove(opts.out); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stdout, "Warning: Could not remove %s: %v\n", opts.out, err)
		}
	}

	fmt.Fprintf(stdout, "Reading legacy data from %s...\n", opts.in)
	source, err := library.Open(library.NewLegacyFile(opts.in), library.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("reading legacy data: %w", err)
	}
	defer source.Close()

	codec, err := library.NewCodec(opts.backend, opts.out)
	if err != nil {
		return fmt.Errorf("opening destination: %w", err)
	}
	dest, err := library.Open(codec, library.WithLogger(logger))
	if err != nil {
		codec.Close()
		return fmt.Errorf("loading destination: %w", err)
	}
	defer dest.Close()

	successCount, skipCount := 0, 0
	for _, b := range source.Books() {
		if _, err := dest.FindByID(b.ID); err == nil {
			fmt.Fprintf(stdout, "Skipping %d (%s): ID already present in destination\n", b.ID, b.Title)
			skipCount++
			continue
		}
		if err := dest.Import(b); err != nil {
			logger.Error("import failed", zap.Int64("id", b.ID), zap.Error(err))
			return fmt.Errorf("importing %d: %w", b.ID, err)
		}
		successCount++
	}

	fmt.Fprintf(stdout, "\nImport complete!\n")
	fmt.Fprintf(stdout, "Successfully imported: %d books\n", successCount)
	fmt.Fprintf(stdout, "Skipped: %d\n", skipCount)

	if successCount > 0 {
		fmt.Fprintln(stdout, "\nImported books:")
		fmt.Fprintln(stdout, library.PrettyHeader())
		for _, b := range dest.Books() {
			fmt.Fprintln(stdout, library.PrettyBook(b))
		}
	}
	return nil
}
