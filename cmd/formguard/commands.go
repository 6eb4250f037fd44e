package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formguard/internal/httpapi"
	"github.com/goliatone/go-formguard/internal/openapi"
	"github.com/goliatone/go-formguard/pkg/form"
	"github.com/goliatone/go-formguard/pkg/metrics"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/remote"
	"github.com/goliatone/go-formguard/pkg/session"
	"github.com/goliatone/go-formguard/pkg/uischema"
)

func newFormatCmd(a *app) *cobra.Command {
	var (
		cursor     int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "format <type> <value>",
		Short: "Print the formatted value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeKey, value := args[0], args[1]
			out := map[string]any{}
			if cmd.Flags().Changed("cursor") {
				res, pos := a.engine.FormatAt(value, typeKey, cursor)
				out["text"], out["digits"], out["cursor"] = res.Text, res.Digits, pos
			} else {
				res := a.engine.Format(value, typeKey)
				out["text"], out["digits"] = res.Text, res.Digits
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), out["text"])
			return err
		},
	}
	cmd.Flags().IntVar(&cursor, "cursor", 0, "caret position; applies the as-you-type mask")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "validate <type> <value>",
		Short: "Validate a value; exits non-zero when it is invalid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := a.engine.Validate(args[1], args[0])
			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else if out.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), out.Message)
			}
			if !out.Valid {
				return errInvalidValue
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	return cmd
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered type keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tFORMATTER\tVALIDATOR")
			for _, entry := range a.engine.Types() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Key, dash(string(entry.Formatter)), dash(string(entry.Validator)))
			}
			return tw.Flush()
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		formPath    string
		specPath    string
		operationID string
		remoteURL   string
		overlayPath string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fill a form interactively and print the submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			decorators, err := a.overlays(overlayPath)
			if err != nil {
				return err
			}
			def, err := a.definition(cmd.Context(), formPath, specPath, operationID, decorators...)
			if err != nil {
				return err
			}

			options := []form.Option{
				form.WithOptions(def.Options.Apply(a.cfg.Options())),
				form.WithLogger(a.logger),
				form.WithRemoteTimeout(a.cfg.RemoteTimeout()),
			}
			if remoteURL == "" {
				remoteURL = a.cfg.Remote.URL
			}
			if remoteURL != "" {
				checker, err := remote.NewHTTPChecker(remoteURL)
				if err != nil {
					return err
				}
				options = append(options, form.WithChecker(checker))
			}
			f, err := a.engine.NewForm(def, options...)
			if err != nil {
				return err
			}
			defer f.Close()

			driver := a.driver
			if driver == nil {
				driver = session.NewSurveyDriver(cmd.OutOrStdout())
			}
			res, err := session.New(f, session.WithPromptDriver(driver)).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := map[string]any{"valid": res.Valid, "values": f.Values()}
			if len(f.RowIDs()) > 0 {
				out["totals"] = f.Totals().Display()
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&formPath, "form", "", "form definition file (YAML or JSON)")
	cmd.Flags().StringVar(&specPath, "openapi", "", "OpenAPI document")
	cmd.Flags().StringVar(&operationID, "operation", "", "operation id in the OpenAPI document")
	cmd.Flags().StringVar(&remoteURL, "remote", "", "remote check endpoint")
	cmd.Flags().StringVar(&overlayPath, "overlay", "", "UI overlay file or directory (defaults to forms.overlays)")
	cmd.MarkFlagsMutuallyExclusive("form", "openapi")
	cmd.MarkFlagsRequiredTogether("openapi", "operation")
	cmd.MarkFlagsOneRequired("form", "openapi")
	return cmd
}

func (a *app) definition(ctx context.Context, formPath, specPath, operationID string, decorators ...model.Decorator) (model.FormDef, error) {
	if formPath != "" {
		return model.LoadFile(a.fs, formPath, decorators...)
	}
	converter := openapi.New(
		openapi.WithRegistry(a.engine.Registry()),
		openapi.WithDecorators(decorators...),
	)
	doc, err := converter.LoadFile(ctx, a.fs, specPath)
	if err != nil {
		return model.FormDef{}, err
	}
	def, err := converter.Form(doc, operationID)
	if errors.Is(err, openapi.ErrUnknownOperation) {
		return model.FormDef{}, fmt.Errorf("%w (available: %s)", err, strings.Join(converter.Operations(doc), ", "))
	}
	return def, err
}

// overlays loads the UI overlay at path, a file or a directory. An empty path
// falls back to forms.overlays; no overlay yields no decorators.
func (a *app) overlays(path string) ([]model.Decorator, error) {
	if path == "" {
		path = a.cfg.Forms.Overlays
	}
	if path == "" {
		return nil, nil
	}
	info, err := a.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("overlay %s: %w", path, err)
	}
	var store *uischema.Store
	if info.IsDir() {
		store, err = uischema.LoadDir(a.fs, path)
	} else {
		store, err = uischema.LoadFile(a.fs, path)
	}
	if err != nil {
		return nil, err
	}
	return []model.Decorator{uischema.NewDecorator(store)}, nil
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pre-validation API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			options := []httpapi.Option{
				httpapi.WithEngine(a.engine),
				httpapi.WithLogger(a.logger),
				httpapi.WithMaxBatch(a.cfg.Server.MaxBatch),
			}
			if dir := a.cfg.Forms.Dir; dir != "" {
				decorators, err := a.overlays("")
				if err != nil {
					return err
				}
				store, err := model.LoadDir(a.fs, dir, decorators...)
				if err != nil {
					return err
				}
				a.logger.Info().Strs("forms", store.IDs()).Msg("form definitions loaded")
				options = append(options, httpapi.WithForms(store))
			}
			if !a.cfg.Server.MetricsDisabled {
				options = append(options, httpapi.WithMetrics(metrics.New()))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpapi.New(options...).ListenAndServe(ctx, addr, a.cfg.ReadTimeout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
