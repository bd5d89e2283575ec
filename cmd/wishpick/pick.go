package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/wishpick/internal/fetcher"
	"github.com/IshaanNene/wishpick/internal/sampler"
	"github.com/IshaanNene/wishpick/internal/storage"
	"github.com/IshaanNene/wishpick/internal/types"
)

var (
	pickType string
	pickJSON bool
)

// pickCmd creates the "pick" subcommand.
func pickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick (movies|books) [userId]",
		Short: "Print a few random entries from a wishlist",
		Long: `Sample a user's wishlist and print random picks.

When userId is omitted the last one used is taken from the preference store.
The user id and list are remembered for the next run.`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"movies", "books"},
		RunE:      runPick,
	}

	cmd.Flags().StringVarP(&pickType, "type", "t", "", "movie listing filter (e.g. movie, tv)")
	cmd.Flags().BoolVar(&pickJSON, "json", false, "print JSON instead of text")
	return cmd
}

func runPick(cmd *cobra.Command, args []string) error {
	tab := strings.ToLower(args[0])
	if tab != "movies" && tab != "books" {
		return fmt.Errorf("unknown list %q (want movies or books)", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg, os.Stderr)

	prefs, err := storage.NewPreferences(&cfg.Preferences, logger)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer prefs.Close()

	ctx := cmd.Context()
	userID, err := resolveUserID(ctx, prefs, args)
	if err != nil {
		return err
	}

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	req := sampler.Request{UserID: userID, Type: pickType}
	out := cmd.OutOrStdout()

	switch tab {
	case "movies":
		movies, err := sampler.NewMovieSampler(f, cfg, logger).Draw(ctx, req)
		if err != nil {
			return describeFailure(err)
		}
		if err := render(out, movies, printMovie); err != nil {
			return err
		}
	case "books":
		books, err := sampler.NewBookSampler(f, cfg, logger).Draw(ctx, req)
		if err != nil {
			return describeFailure(err)
		}
		if err := render(out, books, printBook); err != nil {
			return err
		}
	}

	remember(ctx, prefs, userID, tab, logger)
	return nil
}

func resolveUserID(ctx context.Context, prefs storage.Preferences, args []string) (string, error) {
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		return strings.TrimSpace(args[1]), nil
	}
	saved, ok, err := prefs.Get(ctx, storage.KeyUserID)
	if err != nil {
		return "", fmt.Errorf("read preferences: %w", err)
	}
	if !ok || saved == "" {
		return "", fmt.Errorf("no user id given and none remembered; run: wishpick pick %s <userId>", args[0])
	}
	return saved, nil
}

func remember(ctx context.Context, prefs storage.Preferences, userID, tab string, logger *slog.Logger) {
	if err := prefs.Set(ctx, storage.KeyUserID, userID); err != nil {
		logger.Warn("could not remember user id", "error", err)
	}
	if err := prefs.Set(ctx, storage.KeyTab, tab); err != nil {
		logger.Warn("could not remember list", "error", err)
	}
}

// describeFailure turns sampling errors into a short user-facing message.
func describeFailure(err error) error {
	switch types.ErrorCode(err) {
	case "blocked":
		return fmt.Errorf("hit an anti-bot check from Douban; retry later or use --fetcher browser: %w", err)
	case "empty_wishlist":
		return fmt.Errorf("the wishlist is empty: %w", err)
	case "no_items":
		return fmt.Errorf("no entries found on the sampled pages: %w", err)
	case "parse_failed":
		return fmt.Errorf("the listing page was not recognized (private profile or layout change?): %w", err)
	default:
		return fmt.Errorf("failed to fetch Douban wishlist: %w", err)
	}
}

func render[T any](w io.Writer, items []T, printItem func(io.Writer, int, T)) error {
	if pickJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(items)
	}
	for i, item := range items {
		printItem(w, i+1, item)
	}
	return nil
}

func printMovie(w io.Writer, n int, m types.Movie) {
	title := m.Title
	if m.Playable {
		title += " ▶"
	}
	fmt.Fprintf(w, "%d. %s\n", n, title)
	if m.TitleAlias != "" {
		fmt.Fprintf(w, "   %s\n", m.TitleAlias)
	}
	printField(w, "年份", m.Year)
	printField(w, "片长", m.Duration)
	printField(w, "评分", m.Rating)
	printField(w, "标记时间", m.AddedAt)
	printField(w, "链接", m.Link)
}

func printBook(w io.Writer, n int, b types.Book) {
	fmt.Fprintf(w, "%d. %s\n", n, b.Title)
	printField(w, "作者", b.Author)
	printField(w, "出版社", b.Publisher)
	printField(w, "年份", b.Year)
	printField(w, "标记时间", b.AddedAt)
	printField(w, "链接", b.Link)
}

func printField(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "   %s: %s\n", label, value)
	}
}
