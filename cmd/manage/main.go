// Command manage is the offline provisioning surface: it creates, updates and
// removes administrator accounts directly in the credential store. It is not
// reachable from the chat or the gate.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iudanet/bundlegate/internal/auth"
	"github.com/iudanet/bundlegate/internal/config"
	"github.com/iudanet/bundlegate/internal/storage/sqlite"
	"github.com/iudanet/bundlegate/internal/validation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "manage",
		Short:         "Provision BundleGate administrator accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAddCmd(), newPasswdCmd(), newRemoveCmd(), newListCmd())
	return root
}

// openService открывает хранилище и возвращает credential store
func openService(ctx context.Context) (*auth.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cleanup := func() { _ = store.Close() }

	return auth.NewService(logger, store), cleanup, nil
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <login>",
		Short: "Create an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			login := args[0]
			if err := validation.ValidateLogin(login); err != nil {
				return err
			}

			svc, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			if err := svc.CreateAdmin(cmd.Context(), login, password); err != nil {
				return err
			}

			fmt.Printf("Administrator %q created\n", login)
			return nil
		},
	}
}

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <login>",
		Short: "Reset an administrator's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			login := args[0]

			svc, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			password, err := readPassword("New password: ")
			if err != nil {
				return err
			}

			if err := svc.ChangePassword(cmd.Context(), login, password); err != nil {
				return err
			}

			fmt.Printf("Password for %q changed\n", login)
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <login>",
		Short: "Remove an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			login := args[0]

			svc, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			exists, err := svc.Exists(cmd.Context(), login)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("administrator %q does not exist", login)
			}

			if !confirm(fmt.Sprintf("Remove administrator %q? [y/N]: ", login)) {
				fmt.Println("Aborted")
				return nil
			}

			if err := svc.RemoveAdmin(cmd.Context(), login); err != nil {
				return err
			}

			fmt.Printf("Administrator %q removed\n", login)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List administrators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			logins, err := svc.ListLogins(cmd.Context())
			if err != nil {
				return err
			}

			if len(logins) == 0 {
				fmt.Println("No administrators")
				return nil
			}

			for _, login := range logins {
				fmt.Println(login)
			}
			return nil
		},
	}
}

// readPassword читает пароль без эха
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
