package main

import (
	"fmt"
	"os"
	"time"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// app holds what every command needs once configuration is resolved.
type app struct {
	configFile string
	envFile    string
	backend    string
	dataFile   string

	cfg     *config.Config
	logger  *zap.Logger
	catalog *library.Catalog
	flush   func() error
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cerr)
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "libcat",
		Short: "Manage a small library catalog",
		Long: "libcat keeps a list of books in a local data file and tracks who has borrowed them.\n" +
			"Run without a subcommand for the interactive menu.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
			return runMenu(cmd.InOrStdin(), cmd.OutOrStdout(), a.catalog, interactive)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", config.DefaultConfigFile, "path to the YAML configuration file")
	flags.StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "path to an optional .env file")
	flags.StringVar(&a.backend, "backend", "", "storage backend: siser, legacy, sqlite or bolt")
	flags.StringVar(&a.dataFile, "data", "", "path of the backing data file")

	root.AddCommand(
		newAddCmd(a),
		newShowCmd(a),
		newSearchCmd(a),
		newIssueCmd(a),
		newReturnCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
	)
	return root
}

// open resolves configuration, sets up logging and loads the catalog.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, a.envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = a.backend
		if !cmd.Flags().Changed("data") {
			cfg.DataFile = config.DefaultDataFile(a.backend)
		}
	}
	if cmd.Flags().Changed("data") {
		cfg.DataFile = a.dataFile
	}
	if err := config.Init(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	logger, flush, err := logging.Setup(logging.Options{
		IsProduction: cfg.IsProduction,
		Level:        cfg.LogLevel,
		File:         cfg.LogFile,
		Console:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.logger, a.flush = logger, flush

	codec, err := library.NewCodec(cfg.Backend, cfg.DataFile)
	if err != nil {
		logger.Error("open backing store", zap.String("backend", cfg.Backend), zap.String("path", cfg.DataFile), zap.Error(err))
		return fmt.Errorf("open %s store %s: %w", cfg.Backend, cfg.DataFile, err)
	}
	catalog, err := library.Open(codec,
		library.WithLogger(logger.With(zap.String("backend", cfg.Backend))),
		library.WithLoanPeriod(time.Duration(cfg.LoanDays)*24*time.Hour),
	)
	if err != nil {
		codec.Close()
		logger.Error("load catalog", zap.String("path", cfg.DataFile), zap.Error(err))
		return err
	}
	a.catalog = catalog
	return nil
}

func (a *app) close() error {
	var err error
	if a.catalog != nil {
		err = a.catalog.Close()
		a.catalog = nil
	}
	if a.flush != nil {
		if ferr := a.flush(); ferr != nil && err == nil {
			err = ferr
		}
		a.flush = nil
	}
	return err
}
