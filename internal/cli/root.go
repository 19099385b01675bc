// Package cli is the uniride command line client.
package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/chachabrian/uniride-backend/pkg/client"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	server     string
	token      string
	output     string

	cfg    *Config
	client *client.Client
	out    io.Writer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "uniride",
		Short:         "UniRide - campus carpooling from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Global flags
	root.PersistentFlags().StringVar(&a.configPath, "config", DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&a.server, "server", "", "API server URL (overrides config)")
	root.PersistentFlags().StringVar(&a.token, "token", "", "session token (overrides config)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "output format: text or yaml")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.whoamiCmd(),
		a.locationsCmd(),
		a.ridesCmd(),
		a.searchCmd(),
		a.fallbackCmd(),
		a.joinCmd(),
		a.withdrawCmd(),
		a.requestsCmd(),
		a.respondCmd(),
		a.passengersCmd(),
		a.myRequestsCmd(),
		a.chatCmd(),
		a.transcriptCmd(),
		a.watchCmd(),
	)
	return root
}

// Execute runs the CLI and reports the error the way the user sees it.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", describe(err))
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.server != "" {
		cfg.Server = a.server
	}
	if a.token != "" {
		cfg.Token = a.token
	}
	switch a.output {
	case "text", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	a.client = client.New(cfg.Server, client.WithToken(cfg.Token))
	return nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
