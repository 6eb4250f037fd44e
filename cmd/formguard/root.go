package main

import (
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formguard"
	"github.com/goliatone/go-formguard/internal/config"
	"github.com/goliatone/go-formguard/internal/logging"
	"github.com/goliatone/go-formguard/pkg/session"
)

// errInvalidValue is returned by validate for an invalid value after the
// message has been printed.
var errInvalidValue = errors.New("invalid value")

// app carries what commands share: the filesystem, the environment, the
// loaded configuration and its logger.
type app struct {
	fs     afero.Fs
	getenv func(string) string

	// driver replaces the terminal prompts of check when set.
	driver session.PromptDriver

	configPath string
	cfg        config.Config
	logger     zerolog.Logger
	engine     *formguard.Engine
}

func newApp() *app {
	return &app{fs: afero.NewOsFs(), getenv: os.Getenv}
}

func newRoot(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "formguard",
		Short:         "Format and validate Turkish identifiers and form inputs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file (YAML)")

	cmd.AddCommand(newFormatCmd(a))
	cmd.AddCommand(newValidateCmd(a))
	cmd.AddCommand(newTypesCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newServeCmd(a))
	return cmd
}

// load reads the configuration and builds the logger and the engine.
func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(a.fs, a.configPath, a.getenv)
	if err != nil {
		return err
	}
	catalogue, err := cfg.Catalogue(a.fs)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	a.engine = formguard.NewEngine(
		formguard.WithCatalogue(catalogue),
		formguard.WithDecimals(cfg.Options().CurrencyDecimals),
	)
	return nil
}
