package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"notesmarket/dashboard/internal/domain"
	"notesmarket/dashboard/internal/service"

	"github.com/spf13/cobra"
)

var (
	addLeaf      bool
	addOpen      bool
	contentText  string
	contentImage []string
	contentPDF   string
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cat"},
	Short:   "Navigate and edit the category tree",
	Long: `Navigate and edit the category tree.

Categories are referenced by name (as listed by "ls") or by ID.`,
}

var categoriesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the categories at the current position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Categories.Refresh(cmd.Context()); err != nil {
			return err
		}
		printPosition(cmd.OutOrStdout())
		return nil
	},
}

var categoriesOpenCmd = &cobra.Command{
	Use:   "open <category>",
	Short: "Select a category and list its children",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := resolveCategory(cmd.Context(), app.Categories, args[0], false)
		if err != nil {
			return err
		}
		if err := app.Categories.Select(cmd.Context(), *category); err != nil {
			return err
		}
		printPosition(cmd.OutOrStdout())
		return nil
	},
}

var categoriesBackCmd = &cobra.Command{
	Use:   "back",
	Short: "Go back to the previous position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Categories.GoBack(cmd.Context()); err != nil {
			return err
		}
		printPosition(cmd.OutOrStdout())
		return nil
	},
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category under the current selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := addCategory(cmd.Context(), app.Categories, args[0], addLeaf, addOpen)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", created.ID, created.Name)
		return nil
	},
}

var categoriesAddMainCmd = &cobra.Command{
	Use:   "add-main <name>",
	Short: "Create a top-level category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := app.Categories.AddMainCategory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", created.ID, created.Name)
		return nil
	},
}

var categoriesRmCmd = &cobra.Command{
	Use:   "rm <category>",
	Short: "Delete a category",
	Long: `Delete a category. The category must be given by its full name (any case)
among the listed categories, or by ID.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeCategory(cmd.Context(), app.Categories, args[0])
	},
}

var categoriesContentCmd = &cobra.Command{
	Use:   "content <category>",
	Short: "Attach text, images or a pdf to a leaf category",
	Long: `Attach content to a leaf category. Exactly one of --text, --image or --pdf
must be given. Up to 5 images (.png, .jpg, .jpeg) may be attached at once.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, paths, err := contentFlags()
		if err != nil {
			return err
		}

		category, err := resolveCategory(cmd.Context(), app.Categories, args[0], true)
		if err != nil {
			return err
		}

		payload := domain.ContentPayload{Text: contentText}
		for _, path := range paths {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()
			payload.Files = append(payload.Files, domain.Upload{Name: filepath.Base(path), Reader: f})
		}

		resp, err := app.Categories.AttachContent(cmd.Context(), *category, kind, payload)
		if err != nil {
			return err
		}

		printContent(cmd.OutOrStdout(), &resp.Content)
		return nil
	},
}

var categoriesShowCmd = &cobra.Command{
	Use:   "show <category>",
	Short: "Show a category and its content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := resolveCategory(cmd.Context(), app.Categories, args[0], false)
		if err != nil {
			return err
		}

		category, err := app.CategoryClient.GetCategory(cmd.Context(), ref.ID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", category.Name, category.Kind)
		fmt.Fprintf(out, "ID:   %s\n", category.ID)
		fmt.Fprintf(out, "Path: %s\n", strings.Join(category.Path, " / "))
		printContent(out, category.Content)
		return nil
	},
}

var categoriesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved position of this session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ResetSession(cmd.Context(), sessionName)
	},
}

func init() {
	categoriesAddCmd.Flags().BoolVar(&addLeaf, "leaf", false, "Create a content (leaf) category")
	categoriesAddCmd.Flags().BoolVar(&addOpen, "open", false, "Select the new category, ready for \"content\"")

	categoriesContentCmd.Flags().StringVar(&contentText, "text", "", "Text content")
	categoriesContentCmd.Flags().StringSliceVar(&contentImage, "image", nil, "Image file, repeatable")
	categoriesContentCmd.Flags().StringVar(&contentPDF, "pdf", "", "PDF file")

	categoriesCmd.AddCommand(
		categoriesLsCmd,
		categoriesOpenCmd,
		categoriesBackCmd,
		categoriesAddCmd,
		categoriesAddMainCmd,
		categoriesRmCmd,
		categoriesContentCmd,
		categoriesShowCmd,
		categoriesResetCmd,
	)
}

func contentFlags() (domain.ContentKind, []string, error) {
	set := 0
	var kind domain.ContentKind
	var paths []string

	if contentText != "" {
		set++
		kind = domain.ContentKindText
	}
	if len(contentImage) > 0 {
		set++
		kind, paths = domain.ContentKindImage, contentImage
	}
	if contentPDF != "" {
		set++
		kind, paths = domain.ContentKindPDF, []string{contentPDF}
	}

	if set != 1 {
		return "", nil, fmt.Errorf("%w: exactly one of --text, --image or --pdf is required", domain.ErrValidation)
	}
	return kind, paths, nil
}

// resolveCategory looks ref up by name in the loaded lists, then by ID. An
// exact lookup only accepts the full name; otherwise a close fuzzy match is
// taken.
func resolveCategory(ctx context.Context, tree *service.CategoryTree, ref string, exact bool) (*domain.Category, error) {
	snapshot := tree.Snapshot()
	if len(snapshot.Children) == 0 && len(snapshot.Parents) == 0 {
		if err := tree.Refresh(ctx); err != nil && !errors.Is(err, service.ErrSuperseded) {
			return nil, err
		}
	}

	byName := tree.FindByName
	if exact {
		byName = tree.FindExactName
	}
	if category, ok := byName(ref); ok {
		return &category, nil
	}

	category, err := tree.Find(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category %q: %w", ref, err)
	}
	return category, nil
}

// addCategory creates name under the current selection and, when open is
// set, selects the new category.
func addCategory(ctx context.Context, tree *service.CategoryTree, name string, leaf, open bool) (*domain.Category, error) {
	created, err := tree.AddCategory(ctx, name, leaf)
	if err != nil || !open {
		return created, err
	}

	if err := tree.Select(ctx, *created); err != nil {
		return nil, err
	}
	return created, nil
}

// removeCategory deletes the category named exactly ref, or with ID ref.
func removeCategory(ctx context.Context, tree *service.CategoryTree, ref string) error {
	category, err := resolveCategory(ctx, tree, ref, true)
	if err != nil {
		return err
	}
	return tree.DeleteCategory(ctx, *category)
}

func printPosition(w io.Writer) {
	snapshot := app.Categories.Snapshot()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if snapshot.Selected == nil {
		fmt.Fprintln(tw, "/")
		for _, p := range snapshot.Parents {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.ID, p.Name, domain.CategoryKindCategory)
		}
	} else {
		fmt.Fprintf(tw, "/ %s\n", strings.Join(app.Categories.Breadcrumb(), " / "))
		for _, c := range snapshot.Children {
			marker := ""
			if c.HasContent() {
				marker = "*"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s%s\n", c.ID, c.Name, c.Kind, marker)
		}
		if len(snapshot.Children) == 0 {
			fmt.Fprintln(tw, "  (empty)")
		}
	}

	if snapshot.Error != "" {
		fmt.Fprintf(tw, "! %s\n", snapshot.Error)
	}
}

func printContent(w io.Writer, content *domain.Content) {
	if content.IsEmpty() {
		fmt.Fprintln(w, "No content")
		return
	}
	if content.Text != "" {
		fmt.Fprintf(w, "Text:\n%s\n", content.Text)
	}
	for _, url := range content.ImageURLs {
		fmt.Fprintf(w, "Image: %s\n", url)
	}
	if content.PDFURL != "" {
		fmt.Fprintf(w, "PDF:   %s\n", content.PDFURL)
	}
}
