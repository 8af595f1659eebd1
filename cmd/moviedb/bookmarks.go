package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmcdole/moviedb/internal/bookmark"
	"github.com/mmcdole/moviedb/internal/domain"
)

// cliComponent is the bookmark component name used by one-shot commands
const cliComponent = "cli"

var bookmarkType string

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List or toggle bookmarks",
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the bookmark list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		manager, err := loadManager(svc)
		if err != nil {
			return err
		}

		records := manager.Bookmarks()
		if bookmarkType != "" {
			t, err := domain.ParseMediaType(bookmarkType)
			if err != nil {
				return err
			}
			records = domain.FilterBookmarks(records, t)
		}
		if len(records) == 0 {
			faint.Println("No bookmarks yet.")
			return nil
		}

		genres, err := svc.Content.Genres(context.Background())
		if err != nil {
			svc.logger.Warn("failed to load genres", "error", err)
		}
		for _, r := range records {
			cyan.Print("★ ")
			fmt.Print(r.Title)
			faint.Printf("  %s", r.GetDescription())
			if names := domain.GenreNames(r.GenreIDs, genres, 2); len(names) > 0 {
				faint.Printf(" · %s", names[0])
				if len(names) > 1 {
					faint.Printf(", %s", names[1])
				}
			}
			faint.Printf("  [%s]\n", r.Key())
		}
		return nil
	},
}

var bookmarksToggleCmd = &cobra.Command{
	Use:   "toggle <movie|tv> <id>",
	Short: "Bookmark a title, or remove it if already bookmarked",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := domain.ParseMediaType(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[1])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid id %q", args[1])
		}

		_, svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		manager, err := loadManager(svc)
		if err != nil {
			return err
		}

		ctx := context.Background()
		details, err := svc.Metadata.Details(ctx, t, id)
		if err != nil {
			return fmt.Errorf("failed to look up %s %d: %w", t, id, err)
		}

		present, err := bookmark.NewControl(manager, cliComponent).Click(ctx, details.Media)
		if err != nil {
			return err
		}
		if present {
			green.Printf("★ Bookmarked %s\n", details.Title)
		} else {
			faint.Printf("☆ Removed %s from bookmarks\n", details.Title)
		}
		return nil
	},
}

func init() {
	bookmarksListCmd.Flags().StringVarP(&bookmarkType, "type", "t", "", "Only list movie or tv")
	bookmarksCmd.AddCommand(bookmarksListCmd, bookmarksToggleCmd)
	rootCmd.AddCommand(bookmarksCmd)
}

// loadManager creates a manager for the signed-in user and reads the list
func loadManager(svc *services) (*bookmark.Manager, error) {
	ctx := context.Background()
	if _, err := svc.currentUser(ctx); err != nil {
		return nil, err
	}
	manager := bookmark.NewManager(svc.Bookmarks, svc.Auth, svc.logger)
	if err := manager.Initialize(ctx); err != nil {
		return nil, err
	}
	return manager, nil
}
