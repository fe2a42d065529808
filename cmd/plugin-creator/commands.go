package main

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/goatkit/plugincreator/internal/api"
	"github.com/goatkit/plugincreator/internal/client"
	"github.com/goatkit/plugincreator/internal/config"
	"github.com/goatkit/plugincreator/internal/notifications"
	"github.com/goatkit/plugincreator/internal/relay"
	"github.com/goatkit/plugincreator/internal/tui"
	"github.com/goatkit/plugincreator/internal/wizard"
)

const version = "0.1.0"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "plugin-creator",
		Short:         "Build plugin submissions and relay them to the review team",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (yaml, json or toml)")

	root.AddCommand(
		newServeCmd(opts),
		newWizardCmd(opts),
		newPreviewCmd(),
		newSubmitCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the submission relay HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if !cfg.Email.HasCredentials() {
				log.Printf("warning: %s/%s are not set; every submission will fail until they are",
					config.EnvEmailUser, config.EnvEmailPassword)
			}

			gin.SetMode(cfg.Server.Mode)
			rl, err := relay.New(
				notifications.NewSMTPProvider(&cfg.Email),
				cfg.Email.ReviewTeam,
				relay.WithSubject(cfg.Relay.Subject),
			)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return api.Serve(ctx, cfg.Server.Addr, api.NewRouter(ctx, cfg, rl))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func newWizardCmd(opts *rootOptions) *cobra.Command {
	var draftPath, relayURL string
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in a plugin submission interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			form := wizard.NewForm()
			if draftPath != "" {
				if form, err = wizard.LoadDraft(draftPath); err != nil {
					return err
				}
			}
			return tui.Run(cmd.Context(), form, newRelayClient(cfg, relayURL))
		},
	}
	cmd.Flags().StringVar(&draftPath, "draft", "", "YAML draft to start from")
	cmd.Flags().StringVar(&relayURL, "relay-url", "", "relay base URL (overrides client.relay_url)")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var draftPath string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the plugin JSON generated from a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := wizard.LoadDraft(draftPath)
			if err != nil {
				return err
			}
			data, err := form.ArtifactJSON()
			if err != nil {
				return describeFormError(form, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&draftPath, "draft", "", "YAML draft describing the plugin")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var draftPath, logoPath, relayURL string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a draft to the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			form, err := wizard.LoadDraft(draftPath)
			if err != nil {
				return err
			}
			if logoPath != "" {
				if err := form.AttachFile(wizard.LocalFile(logoPath)); err != nil {
					return err
				}
			}
			msg, err := form.Submit(cmd.Context(), newRelayClient(cfg, relayURL))
			if err != nil {
				return describeFormError(form, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&draftPath, "draft", "", "YAML draft describing the plugin")
	cmd.Flags().StringVar(&logoPath, "logo", "", "logo image to attach (overrides the draft)")
	cmd.Flags().StringVar(&relayURL, "relay-url", "", "relay base URL (overrides client.relay_url)")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func newRelayClient(cfg *config.Config, override string) *client.RelayClient {
	base := cfg.Client.RelayURL
	if override != "" {
		base = override
	}
	return client.New(base, client.WithPath(cfg.Relay.Path))
}

// describeFormError appends per-field reasons to validation failures.
func describeFormError(form *wizard.Form, err error) error {
	reasons := form.Errors()
	if len(reasons) == 0 {
		return err
	}
	fields := make([]string, 0, len(reasons))
	for field := range reasons {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	for _, field := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, reasons[field])
	}
	return fmt.Errorf("%w%s", err, b.String())
}
