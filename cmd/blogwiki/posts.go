package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/paging"
	"github.com/abelbrown/blogwiki/internal/render"
	"github.com/abelbrown/blogwiki/internal/scroll"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const titleWidth = 60

func newListCmd(opts *rootOptions) *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print published posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--page must be at least 1, got %d", pages)
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			engine, err := paging.Bootstrap(ctx, st, cfg.PageSize)
			if err != nil {
				return err
			}
			defer engine.Close()

			for page := 1; page < pages && engine.HasMore(); page++ {
				if _, err := engine.LoadNext(ctx); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			state := engine.State()
			if state.TotalCount == 0 {
				fmt.Fprintln(out, "No posts available yet.")
				return nil
			}

			printPosts(out, state.Items)
			fmt.Fprintf(out, "\nShowing %d of %d posts.", len(state.Items), state.TotalCount)
			if engine.HasMore() {
				fmt.Fprintf(out, " Use --page %d for more.", pages+1)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "page", 1, "number of pages to print")
	return cmd
}

func printPosts(w io.Writer, posts []content.Item) {
	slugWidth := 0
	for _, p := range posts {
		slugWidth = max(slugWidth, runewidth.StringWidth(p.Slug))
	}
	for _, p := range posts {
		fmt.Fprintf(w, "%s  %s  %s\n",
			p.PublishedDate.Format("2006-01-02"),
			runewidth.FillRight(p.Slug, slugWidth),
			runewidth.Truncate(p.Title, titleWidth, "…"),
		)
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Print one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			post, err := st.GetBySlug(cmd.Context(), args[0])
			if errors.Is(err, content.ErrNotFound) {
				return fmt.Errorf("post %q not found", args[0])
			}
			if err != nil {
				return err
			}

			// Same estimate the detail view shows.
			ctrl := scroll.New(cfg.DetailScroll(), nil)
			ctrl.SetContent(post.Content)

			meta := []string{}
			if post.Author != "" {
				meta = append(meta, post.Author)
			}
			if d := content.FormatDate(post.PublishedDate); d != "" {
				meta = append(meta, d)
			}
			meta = append(meta, scroll.ReadingTimeLabel(ctrl.State().EstimatedReadMinutes))

			body, err := render.NewRenderer(cfg.Theme).Render(post.Content, width)
			if err != nil {
				body = render.PlainText(post.Content) + "\n"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, post.Title)
			fmt.Fprintln(out, strings.Join(meta, " · "))
			if len(post.Tags) > 0 {
				fmt.Fprintf(out, "Topics: %s\n", strings.Join(post.Tags, ", "))
			}
			fmt.Fprint(out, body)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "terminal width used for wrapping")
	return cmd
}

// newPublishCmd builds hide and unhide, which flip a post's published flag.
func newPublishCmd(opts *rootOptions, name string, published bool) *cobra.Command {
	short := "Hide a post from the reader"
	done := "Hidden"
	if published {
		short = "Publish a hidden post again"
		done = "Published"
	}

	return &cobra.Command{
		Use:   name + " <slug>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			err = st.SetPublished(cmd.Context(), args[0], published)
			if errors.Is(err, content.ErrNotFound) {
				return fmt.Errorf("post %q not found", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s.\n", done, args[0])
			return nil
		},
	}
}
