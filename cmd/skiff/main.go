// Package main is the entrypoint for the skiff CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skiff-dev/skiff/internal/config"
	"github.com/skiff-dev/skiff/internal/output"
	"github.com/skiff-dev/skiff/internal/profile"
	"github.com/skiff-dev/skiff/internal/secret"
	"github.com/skiff-dev/skiff/internal/session"
	"github.com/skiff-dev/skiff/internal/transport"
	"github.com/skiff-dev/skiff/internal/transport/sftpclient"
	"github.com/skiff-dev/skiff/pkg/projectdir"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	debug       bool
	noColor     bool
	projectFlag string
	profileFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skiff",
	Short: "Skiff - per-project SFTP deployment",
	Long: `Skiff deploys project files to remote servers over SFTP.

Deployment targets are described by named profiles stored per project in
.vscode/deployments.sftp.json; passwords and key passphrases live in the
operating system credential store, never in the profile file.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "Project root (default: auto-detected)")
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "Profile name (default: first profile)")

	// Add subcommands
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(validateCmd)
}

// newOutput builds the shared output handler from the global flags.
func newOutput() *output.Output {
	out := output.New(os.Stdout)
	out.SetColor(!noColor)
	out.SetDebug(debug)
	return out
}

// newSession wires a session for the current project: repository, secret
// store, and output. The --profile flag, when set, selects the active
// profile by name.
func newSession() (*session.Session, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	root := projectFlag
	if root == "" {
		root, err = projectdir.FindFromCwd()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot locate project root: %w", err)
		}
	}

	out := newOutput()
	repo := profile.NewRepository(root, out.Warn)
	sess := session.New(repo, newSecretStore(cfg), out)

	if profileFlag != "" {
		if err := sess.ActivateByName(profileFlag); err != nil {
			return nil, nil, err
		}
	}
	return sess, cfg, nil
}

// newSecretStore selects the secret backend configured for this machine.
func newSecretStore(cfg *config.Config) secret.Store {
	if cfg.SecretBackend == config.BackendMemory {
		return secret.NewMemory()
	}
	return secret.NewKeyring()
}

// newDialer builds the SFTP dialer per the tool config.
func newDialer(cfg *config.Config) (transport.Dialer, error) {
	opts := []sftpclient.Option{
		sftpclient.WithTimeout(time.Duration(cfg.ConnectTimeoutSeconds) * time.Second),
	}

	if cfg.HostKeys == config.HostKeysKnownHosts {
		path, err := cfg.ResolveKnownHosts()
		if err != nil {
			return nil, err
		}
		opt, err := sftpclient.WithKnownHosts(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}

	return sftpclient.NewDialer(opts...), nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}
