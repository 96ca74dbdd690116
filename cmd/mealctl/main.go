// mealctl is a command-line client for the meal planning API.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fitmeal/platform/internal/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultServer = "http://localhost:8080"

// app carries what every subcommand needs. Flags and MEALCTL_* environment
// variables are resolved through viper.
type app struct {
	v   *viper.Viper
	out io.Writer
	log *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "mealctl",
		Short:         "Command-line client for the meal planning API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.v.GetBool("verbose") {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				a.log = l
			}
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("server", defaultServer, "API base URL (or set MEALCTL_SERVER)")
	flags.String("session", "", "Session file (default: <user config dir>/mealctl/session.json)")
	flags.Duration("timeout", 30*time.Second, "Request timeout")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	for _, name := range []string{"server", "session", "timeout", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	a.v.SetEnvPrefix("MEALCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.meCmd(),
		a.customersCmd(),
		a.recipeCmd(),
		a.profileCmd(),
		a.pdfCmd(),
	)
	return root
}

func (a *app) sessionPath() (string, error) {
	if p := a.v.GetString("session"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "mealctl", "session.json"), nil
}

func (a *app) client() (*client.Client, error) {
	path, err := a.sessionPath()
	if err != nil {
		return nil, err
	}
	return client.New(
		a.v.GetString("server"),
		client.NewFileStore(path),
		client.WithLogger(a.log),
		client.WithHTTPClient(&http.Client{Timeout: a.v.GetDuration("timeout")}),
		client.WithOnAuthFailure(func(error) {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run 'mealctl login' to sign in again.")
		}),
	), nil
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
