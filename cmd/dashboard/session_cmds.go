package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/internal/config"
	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/token"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var (
	errNotSignedIn    = errors.New("not signed in")
	errSessionExpired = errors.New("session expired, sign in again")
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in against the backend and store the session in the configured
token store, where the console picks it up. The password is read from
--password, DASHBOARD_PASSWORD or the first line of stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		return runLogin(ctx, config.New(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		return runLogout(ctx, config.New(), cmd.OutOrStdout())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		return runWhoami(ctx, config.New(), cmd.OutOrStdout())
	},
}

func runLogin(ctx context.Context, c config.Config, stdin io.Reader, out io.Writer) error {
	a, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	password, err := resolvePassword(stdin)
	if err != nil {
		return err
	}
	u, err := a.sessions.Login(ctx, loginEmail, password)
	if errors.Is(err, dasherrors.ErrInvalidCredentials) {
		return fmt.Errorf("login rejected: %s", apiclient.Message(err))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s (%s)\n", u.DisplayName(), u.Role)
	return nil
}

func runLogout(ctx context.Context, c config.Config, out io.Writer) error {
	a, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	a.sessions.Logout(ctx, func() {
		fmt.Fprintln(out, "Signed out")
	})
	return nil
}

func runWhoami(ctx context.Context, c config.Config, out io.Writer) error {
	a, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.Snapshot().IsAuthenticated {
		return errNotSignedIn
	}
	u, err := a.sessions.RefreshProfile(ctx)
	if errors.Is(err, dasherrors.ErrSessionInvalid) || errors.Is(err, dasherrors.ErrNoSession) {
		return errSessionExpired
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Name:    %s\n", u.DisplayName())
	fmt.Fprintf(out, "Email:   %s\n", u.Email)
	fmt.Fprintf(out, "Role:    %s\n", u.Role)
	access, _ := a.store.Get(tokenstore.KeyAccessToken)
	if exp, ok := token.ExpiryHint(access); ok {
		fmt.Fprintf(out, "Access:  expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func resolvePassword(stdin io.Reader) (string, error) {
	if loginPassword != "" {
		return loginPassword, nil
	}
	if env := os.Getenv("DASHBOARD_PASSWORD"); env != "" {
		return env, nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("no password given")
	}
	return password, nil
}
