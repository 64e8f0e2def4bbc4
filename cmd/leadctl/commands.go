package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wolfman30/leadcapture/internal/analytics"
	"github.com/wolfman30/leadcapture/internal/attribution"
	"github.com/wolfman30/leadcapture/internal/form"
	"github.com/wolfman30/leadcapture/internal/layout"
	"github.com/wolfman30/leadcapture/internal/leadclient"
	"github.com/wolfman30/leadcapture/internal/submission"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

var errInvalidInput = errors.New("input has validation errors")

type rootOptions struct {
	apiURL    string
	layoutURL string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "leadctl",
		Short:         "leadctl checks contact form input and talks to the lead and layout APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("LEAD_API_BASE_URL", "http://localhost:8080"), "Lead API base URL")
	cmd.PersistentFlags().StringVar(&opts.layoutURL, "layout-url", envOr("LAYOUT_API_BASE_URL", "http://localhost:8080"), "Layout config API base URL")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "Log level")

	cmd.AddCommand(
		newPhoneCmd(),
		newValidateCmd(),
		newSubmitCmd(opts),
		newLayoutCmd(opts),
	)
	return cmd
}

func newPhoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phone <number>",
		Short: "Format a Brazilian phone number and resolve its state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "formatted: %s\n", form.FormatPhone(args[0]))
			if state, ok := form.StateFromPhone(args[0]); ok {
				fmt.Fprintf(out, "state: %s\n", state)
			} else {
				fmt.Fprintln(out, "state: unknown")
			}
			if n, ok := analytics.NormalizePhoneBR(args[0]); ok {
				fmt.Fprintf(out, "e164: %d\n", n)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	var file string
	var failFast bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a contact form JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			v := form.NewValidator()
			out := cmd.OutOrStdout()
			if failFast {
				if fe := v.FirstError(in); fe != nil {
					fmt.Fprintf(out, "%s: %s\n", fe.Field, fe.Message)
					return errInvalidInput
				}
				fmt.Fprintln(out, "ok")
				return nil
			}
			errs := v.Validate(in)
			if len(errs) == 0 {
				fmt.Fprintln(out, "ok")
				return nil
			}
			for _, f := range errs.Fields() {
				fmt.Fprintf(out, "%s: %s\n", f, errs[form.Field(f)])
			}
			return errInvalidInput
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the form fields, - for stdin")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first invalid field")
	return cmd
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var file, pageURL string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate a contact form JSON document and send it to the lead API",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			logger := logging.New(opts.logLevel)
			client := leadclient.NewClient(opts.apiURL, leadclient.WithLogger(logger))
			assembler := submission.NewAssembler(form.NewValidator(), client, submission.WithLogger(logger))

			current := attribution.NewSession(pageURL, "").Params
			res, err := assembler.Submit(cmd.Context(), submission.Submission{Input: in, Current: current})
			out := cmd.OutOrStdout()
			if err != nil {
				var verr *form.ValidationError
				if errors.As(err, &verr) {
					for _, f := range verr.Errors.Fields() {
						fmt.Fprintf(out, "%s: %s\n", f, verr.Errors[form.Field(f)])
					}
					return errInvalidInput
				}
				return errors.New(leadclient.UserMessage(err))
			}
			fmt.Fprintf(out, "lead created: %s\n", res.Lead.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the form fields, - for stdin")
	cmd.Flags().StringVar(&pageURL, "page-url", "", "Landing URL whose utm parameters are attached to the lead")
	return cmd
}

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Read or change the landing page layout variant",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current layout variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := layout.NewClient(opts.layoutURL, layout.WithLogger(logging.New(opts.logLevel)))
			resp, err := client.Get(cmd.Context())
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("layout: %s", resp.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "layout: %d (updated %s)\n", resp.Data.Value, resp.Data.UpdatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <variant>",
		Short: "Change the layout variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil || !layout.IsValidVariant(value) {
				return fmt.Errorf("invalid layout variant %q, expected one of %v", args[0], layout.Variants)
			}
			client := layout.NewClient(opts.layoutURL, layout.WithLogger(logging.New(opts.logLevel)))
			resp, err := client.Update(cmd.Context(), value)
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("layout: %s", resp.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "layout set to %d\n", value)
			return nil
		},
	})
	return cmd
}

func readInput(stdin io.Reader, path string) (form.Input, error) {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return form.Input{}, err
		}
		defer f.Close()
		r = f
	}
	var in form.Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return form.Input{}, fmt.Errorf("decode form input: %w", err)
	}
	return in, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
