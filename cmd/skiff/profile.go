package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skiff-dev/skiff/internal/profile"
	"github.com/skiff-dev/skiff/internal/secret"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage deployment profiles",
	Long:  `Create, inspect, and remove the deployment profiles of this project.`,
}

// Flags for profile add / edit
var (
	addHost         string
	addPort         int
	addUser         string
	addRemotePath   string
	addAuth         string
	addKeyPath      string
	addDeployOnSave bool
)

func init() {
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profileUseCmd)
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a deployment profile",
	Long: `Add a named deployment profile to this project.

With password auth, and with an encrypted private key, the secret is read
interactively and stored in the system credential store. Leave the prompt
empty to store no secret.

Examples:
  skiff profile add prod --host example.com --user deploy --remote-path /var/www
  skiff profile add staging --host 10.0.0.5 --user deploy --remote-path /srv/app \
    --auth ssh-key --key ~/.ssh/id_ed25519`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileAdd,
}

func init() {
	profileAddCmd.Flags().StringVar(&addHost, "host", "", "Remote host (required)")
	profileAddCmd.Flags().IntVar(&addPort, "port", profile.DefaultPort, "SSH port")
	profileAddCmd.Flags().StringVar(&addUser, "user", "", "Remote username (required)")
	profileAddCmd.Flags().StringVar(&addRemotePath, "remote-path", "", "Remote deploy directory (required)")
	profileAddCmd.Flags().StringVar(&addAuth, "auth", profile.AuthPassword, "Auth method: ssh-key or password")
	profileAddCmd.Flags().StringVar(&addKeyPath, "key", "", "Private key path (ssh-key auth; empty uses the SSH agent)")
	profileAddCmd.Flags().BoolVar(&addDeployOnSave, "deploy-on-save", false, "Upload files automatically under 'skiff watch'")
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	sess, _, err := newSession()
	if err != nil {
		return err
	}

	p := &profile.Profile{
		Name:           args[0],
		Host:           addHost,
		Port:           addPort,
		Username:       addUser,
		RemotePath:     addRemotePath,
		AuthMethod:     addAuth,
		PrivateKeyPath: addKeyPath,
		DeployOnSave:   addDeployOnSave,
	}

	if err := sess.Repo.Add(p); err != nil {
		return err
	}

	// Secrets are stored only when the user supplies one; an empty
	// prompt leaves the store untouched.
	switch {
	case p.AuthMethod == profile.AuthPassword:
		value, err := promptSecret(fmt.Sprintf("Password for %s (empty to skip): ", p.Name))
		if err != nil {
			return err
		}
		if value != "" {
			if err := sess.Secrets.Set(secret.PasswordKey(p.Name), value); err != nil {
				return err
			}
		}
	case p.PrivateKeyPath != "":
		value, err := promptSecret(fmt.Sprintf("Key passphrase for %s (empty to skip): ", p.Name))
		if err != nil {
			return err
		}
		if value != "" {
			if err := sess.Secrets.Set(secret.PassphraseKey(p.Name), value); err != nil {
				return err
			}
		}
	}

	sess.Output.Info("Added profile %s", p.String())
	return nil
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deployment profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := newSession()
		if err != nil {
			return err
		}

		profiles := sess.Repo.Load()
		if len(profiles) == 0 {
			fmt.Println("No deployment profiles configured.")
			return nil
		}

		for i, p := range profiles {
			marker := " "
			if i == sess.ActiveIndex() {
				marker = "*"
			}
			fmt.Printf("%s %d. %s\n", marker, i+1, p.String())
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one profile in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := newSession()
		if err != nil {
			return err
		}

		p := sess.Repo.FindByName(args[0])
		if p == nil {
			return fmt.Errorf("no profile named %q", args[0])
		}

		fmt.Printf("name:         %s\n", p.Name)
		fmt.Printf("host:         %s\n", p.Host)
		fmt.Printf("port:         %d\n", p.GetPort())
		fmt.Printf("username:     %s\n", p.Username)
		fmt.Printf("remote path:  %s\n", p.RemoteDir())
		fmt.Printf("auth:         %s\n", p.AuthMethod)
		if p.AuthMethod == profile.AuthSSHKey {
			if p.UsesAgent() {
				fmt.Printf("key:          (ssh agent)\n")
			} else {
				fmt.Printf("key:          %s\n", p.PrivateKeyPath)
			}
		}
		fmt.Printf("deploy on save: %v\n", p.DeployOnSave)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a profile and its stored secrets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := newSession()
		if err != nil {
			return err
		}

		profiles := sess.Repo.Load()
		index := -1
		for i, p := range profiles {
			if p.Name == args[0] {
				index = i
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("no profile named %q", args[0])
		}

		removed, err := sess.Repo.Remove(index)
		if err != nil {
			return err
		}

		// Both secret keys are removed regardless of whether they were
		// ever set.
		if err := secret.DeleteProfileSecrets(sess.Secrets, removed.Name); err != nil {
			return err
		}

		sess.Output.Info("Removed profile %q", removed.Name)
		return nil
	},
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a profile",
	Long: `Rename a profile in place.

Stored secrets are keyed by profile name and are not migrated: after a
rename the old keys remain in the credential store and the renamed
profile starts with no stored secrets.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := newSession()
		if err != nil {
			return err
		}

		oldName, newName := args[0], args[1]
		profiles := sess.Repo.Load()
		index := -1
		for i, p := range profiles {
			if p.Name == newName {
				return fmt.Errorf("profile %q already exists", newName)
			}
			if p.Name == oldName {
				index = i
			}
		}
		if index < 0 {
			return fmt.Errorf("no profile named %q", oldName)
		}

		renamed := *profiles[index]
		renamed.Name = newName
		if err := sess.Repo.Update(index, &renamed); err != nil {
			return err
		}

		sess.Output.Info("Renamed profile %q to %q", oldName, newName)
		sess.Output.Warn("Stored secrets for %q were not migrated; set them again for %q if needed", oldName, newName)
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile the default",
	Long: `Move the named profile to the front of the list so it becomes the
default target for deploy, diff, and watch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := newSession()
		if err != nil {
			return err
		}

		profiles := sess.Repo.Load()
		index := -1
		for i, p := range profiles {
			if p.Name == args[0] {
				index = i
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("no profile named %q", args[0])
		}
		if index == 0 {
			return nil
		}

		chosen := profiles[index]
		profiles = append(profiles[:index], profiles[index+1:]...)
		profiles = append([]*profile.Profile{chosen}, profiles...)
		if err := sess.Repo.Save(profiles); err != nil {
			return err
		}

		sess.Output.Info("Profile %q is now the default", chosen.Name)
		return nil
	},
}

// promptSecret reads a secret from the terminal without echo.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("cannot read secret: %w", err)
	}
	return string(value), nil
}
