package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmcdole/moviedb/internal/avatar"
)

var avatarOutput string

var avatarCmd = &cobra.Command{
	Use:   "avatar",
	Short: "Upload or download your profile image",
}

var avatarUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image (250 KB max) as your avatar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		av, err := avatar.New(data)
		if err != nil {
			return err
		}

		_, svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := context.Background()
		user, err := svc.currentUser(ctx)
		if err != nil {
			return err
		}
		if err := svc.Avatars.UploadAvatar(ctx, user.ID, av); err != nil {
			return err
		}
		green.Printf("✓ Uploaded %s (%s, %d bytes)\n", args[0], av.MimeType, len(av.Data))
		return nil
	},
}

var avatarDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Save your avatar to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := context.Background()
		user, err := svc.currentUser(ctx)
		if err != nil {
			return err
		}
		av, err := svc.Avatars.DownloadAvatar(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to download avatar: %w", err)
		}

		path := avatarOutput
		if path == "" {
			path = avatar.FileName(user.Email, *av)
		}
		if err := os.WriteFile(path, av.Data, 0644); err != nil {
			return err
		}
		green.Printf("✓ Saved %s\n", path)
		return nil
	},
}

func init() {
	avatarDownloadCmd.Flags().StringVarP(&avatarOutput, "output", "o", "", "Output file (default derived from your email)")
	avatarCmd.AddCommand(avatarUploadCmd, avatarDownloadCmd)
	rootCmd.AddCommand(avatarCmd)
}
