package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cv-builder/internal/cv"
	"cv-builder/internal/cvs"
)

type summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Template  string `json:"template"`
	UpdatedAt string `json:"updatedAt"`
}

type trashSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DeletedAt string `json:"deletedAt"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func newListCmd(user func() string) *cobra.Command {
	var query, sortBy, dir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved CVs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			m := app.CVService.Workspace(user()).Manager
			items := cv.Sort(m.Search(ctx, query), cv.ParseSortField(sortBy), cv.Direction(dir))

			out := make([]summary, 0, len(items))
			for _, s := range items {
				out = append(out, summary{
					ID:        s.ID,
					Name:      s.Name,
					Template:  s.Template,
					UpdatedAt: s.UpdatedAt.UTC().Format(timeLayout),
				})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&query, "q", "q", "", "Case-insensitive search over name and full name")
	cmd.Flags().StringVar(&sortBy, "sort", "updatedAt", "Sort field: name, createdAt, updatedAt")
	cmd.Flags().StringVar(&dir, "dir", "desc", "Sort direction: asc or desc")
	return cmd
}

func newTrashCmd(user func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "List the recycle bin, dropping expired entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			items := app.CVService.Workspace(user()).Manager.GetTrash(cmd.Context())
			out := make([]trashSummary, 0, len(items))
			for _, t := range items {
				deleted := ""
				if !t.DeletedAt.IsZero() {
					deleted = t.DeletedAt.UTC().Format(timeLayout)
				}
				out = append(out, trashSummary{ID: t.ID, Name: t.Name, DeletedAt: deleted})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newPurgeCmd(user func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove recycle bin entries past the retention period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			n := app.CVService.Workspace(user()).Manager.PurgeExpired(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d\n", n)
			return nil
		},
	}
}

func newEmptyTrashCmd(user func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "empty-trash",
		Short: "Permanently delete everything in the recycle bin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			m := app.CVService.Workspace(user()).Manager
			n := m.TrashCount(cmd.Context())
			m.EmptyTrash(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "emptied %d\n", n)
			return nil
		},
	}
}

func newRestoreCmd(user func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID",
		Short: "Move a CV from the recycle bin back to the saved list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			restored, err := app.CVService.Restore(cmd.Context(), user(), args[0])
			if errors.Is(err, cvs.ErrNotFound) {
				return fmt.Errorf("no trashed cv with id %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s (%s)\n", restored.ID, restored.Name)
			return nil
		},
	}
}
