package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skiff-dev/skiff/internal/config"
	"github.com/skiff-dev/skiff/internal/credential"
	"github.com/skiff-dev/skiff/internal/deploy"
	"github.com/skiff-dev/skiff/internal/transfer"
	"github.com/skiff-dev/skiff/internal/watch"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [path]",
	Short: "Deploy a file or directory to the active profile",
	Long: `Upload a file or directory tree to the active profile's remote path.
Without an argument the whole project root is deployed.

Examples:
  skiff deploy
  skiff deploy dist/
  skiff deploy index.html --profile staging`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cfg, err := newSession()
		if err != nil {
			return err
		}

		p, err := sess.Active()
		if err != nil {
			return err
		}

		localPath := "."
		if len(args) == 1 {
			localPath = args[0]
		}

		dialer, err := newDialer(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		deployer := deploy.New(dialer, sess.Secrets, sess.Output)
		result, err := deployer.Run(ctx, p, localPath)
		if err != nil {
			return err
		}
		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <remote-file> [local-path]",
	Short: "Download a remote file",
	Long: `Download one file from the active profile's server. The remote path is
relative to the profile's remote directory unless it starts with "/".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cfg, err := newSession()
		if err != nil {
			return err
		}

		p, err := sess.Active()
		if err != nil {
			return err
		}

		remotePath := resolveRemote(p.RemoteDir(), args[0])
		localPath := filepath.Base(remotePath)
		if len(args) == 2 {
			localPath = args[1]
		}

		facade, ctx, cancel, err := newFacade(cfg)
		if err != nil {
			return err
		}
		defer cancel()

		resolved, err := credential.Resolve(p, sess.Secrets)
		if err != nil {
			return err
		}

		if err := facade.Download(ctx, resolved, remotePath, localPath); err != nil {
			return err
		}
		sess.Output.Info("Downloaded %s to %s", remotePath, localPath)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <remote-file>",
	Short: "Delete a remote file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cfg, err := newSession()
		if err != nil {
			return err
		}

		p, err := sess.Active()
		if err != nil {
			return err
		}

		remotePath := resolveRemote(p.RemoteDir(), args[0])

		facade, ctx, cancel, err := newFacade(cfg)
		if err != nil {
			return err
		}
		defer cancel()

		resolved, err := credential.Resolve(p, sess.Secrets)
		if err != nil {
			return err
		}

		if err := facade.Remove(ctx, resolved, remotePath); err != nil {
			return err
		}
		sess.Output.Info("Removed %s", remotePath)
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <local-file>",
	Short: "Compare a local file with its deployed counterpart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cfg, err := newSession()
		if err != nil {
			return err
		}

		p, err := sess.Active()
		if err != nil {
			return err
		}

		localPath := args[0]
		relPath, err := projectRelative(sess.Repo.Root(), localPath)
		if err != nil {
			return err
		}
		remotePath := p.RemoteDir() + relPath

		facade, ctx, cancel, err := newFacade(cfg)
		if err != nil {
			return err
		}
		defer cancel()

		resolved, err := credential.Resolve(p, sess.Secrets)
		if err != nil {
			return err
		}

		result, err := facade.Diff(ctx, resolved, localPath, remotePath)
		if err != nil {
			return err
		}

		if result.Equal {
			sess.Output.Info("%s matches %s (%d bytes)", localPath, remotePath, result.LocalSize)
		} else {
			sess.Output.Warn("%s differs from %s (local %d bytes, remote %d bytes)",
				localPath, remotePath, result.LocalSize, result.RemoteSize)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Upload files as they are saved",
	Long: `Watch the project tree and upload changed files to the active profile.
The profile must have deploy-on-save enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cfg, err := newSession()
		if err != nil {
			return err
		}

		p, err := sess.Active()
		if err != nil {
			return err
		}
		if !p.DeployOnSave {
			return fmt.Errorf("profile %q does not have deploy-on-save enabled", p.Name)
		}

		dialer, err := newDialer(cfg)
		if err != nil {
			return err
		}
		deployer := deploy.New(dialer, sess.Secrets, sess.Output)

		root := sess.Repo.Root()
		debounce := time.Duration(cfg.WatchDebounceMillis) * time.Millisecond

		w := watch.New(root, debounce, func(ctx context.Context, localPath, relPath string) error {
			return deployer.DeployFile(ctx, p, localPath, relPath)
		})
		w.OnError = func(path string, err error) {
			sess.Output.Error("Upload failed for %s: %v", path, err)
		}

		sess.Output.Info("Watching %s for changes (profile %q)", root, p.Name)

		ctx, cancel := signalContext()
		defer cancel()

		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project's profile file",
	Long: `Parse the profile file and validate every profile in it.

This checks for:
  - Valid JSON structure
  - Required fields (name, host, username)
  - Valid auth methods and port ranges`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := newSession()
		if err != nil {
			return err
		}

		profiles := sess.Repo.Load()
		if len(profiles) == 0 {
			fmt.Printf("No profiles found in %s.\n", sess.Repo.Path())
			return nil
		}

		var hasErrors bool
		for _, p := range profiles {
			if err := p.Validate(); err != nil {
				fmt.Printf("FAIL: %s - %v\n", p.Name, err)
				hasErrors = true
			} else {
				fmt.Printf("OK: %s\n", p.String())
			}
		}

		if hasErrors {
			return fmt.Errorf("one or more profiles failed validation")
		}
		fmt.Printf("\nAll %d profile(s) valid.\n", len(profiles))
		return nil
	},
}

// newFacade builds a transfer facade plus a signal-scoped context.
func newFacade(cfg *config.Config) (*transfer.Facade, context.Context, context.CancelFunc, error) {
	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := signalContext()
	return transfer.New(dialer), ctx, cancel, nil
}

// resolveRemote maps a user-supplied remote argument onto the profile's
// remote directory; absolute arguments are taken as-is.
func resolveRemote(remoteDir, arg string) string {
	if strings.HasPrefix(arg, "/") {
		return arg
	}
	return remoteDir + arg
}

// projectRelative returns localPath relative to the project root,
// slash-separated.
func projectRelative(root, localPath string) (string, error) {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the project root %s", localPath, root)
	}
	return filepath.ToSlash(rel), nil
}
