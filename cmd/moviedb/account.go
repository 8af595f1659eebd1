package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/moviedb/internal/auth"
	"github.com/mmcdole/moviedb/internal/config"
	"github.com/mmcdole/moviedb/internal/validation"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		form := validation.LoginForm{Email: loginEmail}
		if form.Email == "" {
			if form.Email, err = prompt("Email: "); err != nil {
				return err
			}
		}
		if form.Password, err = promptPassword("Password: "); err != nil {
			return err
		}
		form.Normalize()
		if err := validation.ValidateStruct(form); err != nil {
			return formError(err)
		}

		faint.Println("Signing in...")
		session, err := svc.Auth.SignIn(context.Background(), form.Email, form.Password)
		if err != nil {
			return err
		}
		if err := config.SaveSession(cfg, auth.ToConfig(session)); err != nil {
			return err
		}
		green.Printf("✓ Signed in as %s\n", session.User.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		form := validation.RegisterForm{Email: loginEmail}
		if form.Email == "" {
			if form.Email, err = prompt("Email: "); err != nil {
				return err
			}
		}
		if form.Password, err = promptPassword("Password: "); err != nil {
			return err
		}
		if form.ConfirmPassword, err = promptPassword("Repeat password: "); err != nil {
			return err
		}
		form.Normalize()
		if err := validation.ValidateStruct(form); err != nil {
			return formError(err)
		}

		user, err := svc.Auth.SignUp(context.Background(), form.Email, form.Password)
		if err != nil {
			return err
		}
		green.Printf("✓ Account created for %s\n", user.Email)
		cyan.Println("Run 'moviedb login' to sign in")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Auth.SignOut(context.Background()); err != nil {
			svc.logger.Warn("remote sign out failed", "error", err)
		}
		if err := config.ClearSession(cfg); err != nil {
			return err
		}
		green.Println("✓ Signed out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
}

// openServices loads config and wires the backend for a one-shot command
func openServices() (*config.Config, *services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := requireConfigured(cfg); err != nil {
		return nil, nil, err
	}
	svc, err := newServices(cfg, fileLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// formError prints each validation message and returns a short summary
func formError(err error) error {
	msgs := validation.Messages(err)
	if len(msgs) == 0 {
		return err
	}
	for _, m := range msgs {
		red.Printf("  %s\n", m)
	}
	return fmt.Errorf("invalid input")
}
