package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"notesmarket/dashboard/internal/domain"

	"github.com/spf13/cobra"
)

var (
	updateForm        domain.UpdateForm
	updateContentFile string
	updateImage       string
	unpin             bool
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Manage the latest updates feed",
}

var updatesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List updates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		updates, err := app.Updates.List(cmd.Context())
		if err != nil {
			return err
		}
		printUpdates(cmd.OutOrStdout(), updates)
		return nil
	},
}

var updatesUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Publish a new update",
	Long: `Publish a new update. --title, --subtitle, --date, --read-time and
--content (or --content-file) are required; --image attaches a cover image.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateContentFile != "" {
			data, err := os.ReadFile(updateContentFile)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", updateContentFile, err)
			}
			updateForm.Content = string(data)
		}

		image, closeImage, err := openImage(updateImage)
		if err != nil {
			return err
		}
		defer closeImage()

		updates, err := app.Updates.Upload(cmd.Context(), updateForm, image)
		if err != nil {
			return err
		}
		printUpdates(cmd.OutOrStdout(), updates)
		return nil
	},
}

var updatesPinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin an update to the featured section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Updates.SetPinned(cmd.Context(), args[0], !unpin)
	},
}

var updatesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an update",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Updates.Delete(cmd.Context(), args[0])
	},
}

var updatesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an article from a title and subtitle",
	Long: `Generate an educational article with Gemini. With a database configured
the article is kept as a draft that "updates drafts upload" can publish.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := app.Updates.Generate(cmd.Context(), updateForm.Title, updateForm.Subtitle)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if draft.ID != "" {
			fmt.Fprintf(out, "Draft: %s\n\n", draft.ID)
		}
		fmt.Fprintln(out, draft.Content)
		return nil
	},
}

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Manage generated drafts",
}

var draftsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List drafts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		drafts, err := app.Updates.Drafts(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer tw.Flush()
		for _, d := range drafts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Title, d.Model, d.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := app.Updates.Draft(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n\n%s\n", draft.Title, draft.Subtitle, draft.Content)
		return nil
	},
}

var draftsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Updates.DeleteDraft(cmd.Context(), args[0])
	},
}

var draftsUploadCmd = &cobra.Command{
	Use:   "upload <id>",
	Short: "Publish a draft as an update",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, closeImage, err := openImage(updateImage)
		if err != nil {
			return err
		}
		defer closeImage()

		updates, err := app.Updates.UploadDraft(cmd.Context(), args[0], updateForm, image)
		if err != nil {
			return err
		}
		printUpdates(cmd.OutOrStdout(), updates)
		return nil
	},
}

func init() {
	updatesUploadCmd.Flags().StringVar(&updateForm.Title, "title", "", "Title")
	updatesUploadCmd.Flags().StringVar(&updateForm.Subtitle, "subtitle", "", "Subtitle")
	updatesUploadCmd.Flags().StringVar(&updateForm.Content, "content", "", "Article text")
	updatesUploadCmd.Flags().StringVar(&updateContentFile, "content-file", "", "Read the article text from a file")
	for _, c := range []*cobra.Command{updatesUploadCmd, draftsUploadCmd} {
		c.Flags().StringVar(&updateForm.Date, "date", "", "Publication date shown on the card")
		c.Flags().StringVar(&updateForm.ReadTime, "read-time", "", "Read time shown on the card, e.g. \"3 min\"")
		c.Flags().StringVar(&updateImage, "image", "", "Cover image (.png, .jpg, .jpeg)")
	}

	updatesGenerateCmd.Flags().StringVar(&updateForm.Title, "title", "", "Title")
	updatesGenerateCmd.Flags().StringVar(&updateForm.Subtitle, "subtitle", "", "Subtitle")

	updatesPinCmd.Flags().BoolVar(&unpin, "off", false, "Unpin instead")

	draftsCmd.AddCommand(draftsLsCmd, draftsShowCmd, draftsRmCmd, draftsUploadCmd)
	updatesCmd.AddCommand(updatesLsCmd, updatesUploadCmd, updatesPinCmd, updatesRmCmd, updatesGenerateCmd, draftsCmd)
}

// openImage opens the optional cover image. The returned func closes it.
func openImage(path string) (*domain.Upload, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &domain.Upload{Name: filepath.Base(path), Reader: f}, func() { _ = f.Close() }, nil
}

func printUpdates(w io.Writer, updates []domain.Update) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	for _, u := range updates {
		pinned := ""
		if u.IsTop {
			pinned = "📌"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Title, u.Date, u.ReadTime, pinned)
	}
}
