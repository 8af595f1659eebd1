package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mmcdole/moviedb/internal/auth"
	"github.com/mmcdole/moviedb/internal/config"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/validation"
)

var (
	profileEmail string
	profileName  string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Edit your email, display name or password",
	Long: `Edit the signed-in profile. Blank answers keep the current email,
pick a random display name, or keep the current password.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := context.Background()
		user, err := svc.currentUser(ctx)
		if err != nil {
			return err
		}

		form := validation.ProfileForm{UserID: user.ID, Email: profileEmail, Name: profileName}
		if !cmd.Flags().Changed("email") {
			faint.Printf("Current email: %s\n", user.Email)
			if form.Email, err = prompt("Email (blank to keep): "); err != nil {
				return err
			}
		}
		if form.Email == "" {
			form.Email = user.Email
		}
		if !cmd.Flags().Changed("name") {
			if form.Name, err = prompt("Display name (blank for random): "); err != nil {
				return err
			}
		}
		if form.Password, err = promptPassword("New password (blank to keep): "); err != nil {
			return err
		}
		form.Normalize()
		if err := form.Validate(); err != nil {
			return formError(err)
		}

		session, err := svc.Auth.UpdateProfile(ctx, domain.ProfileUpdate{
			Email:    form.Email,
			Name:     form.Name,
			Password: form.Password,
		})
		if err != nil {
			return err
		}
		if err := config.SaveSession(cfg, auth.ToConfig(session)); err != nil {
			return err
		}
		green.Println("✓ Profile updated successfully!")
		faint.Printf("  %s · %s\n", session.User.DisplayName, session.User.Email)
		return nil
	},
}

func init() {
	profileCmd.Flags().StringVarP(&profileEmail, "email", "e", "", "New account email")
	profileCmd.Flags().StringVarP(&profileName, "name", "n", "", "New display name (15 characters max)")
	rootCmd.AddCommand(profileCmd)
}
