package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/temcen/wardrobe/pkg/models"
)

func withWardrobe(v *viper.Viper, run func(cmd *cobra.Command, args []string, w *wardrobe) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		w, err := openWardrobe(v)
		if err != nil {
			return err
		}
		defer w.Close()
		return run(cmd, args, w)
	}
}

func suggestCmd(v *viper.Viper) *cobra.Command {
	var (
		season     string
		occasion   string
		maxResults int
		withNames  bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest outfits from the active catalog",
		Args:  cobra.NoArgs,
		RunE: withWardrobe(v, func(cmd *cobra.Command, _ []string, w *wardrobe) error {
			req := models.SuggestionRequest{
				Season:     models.Season(season),
				Occasion:   models.Occasion(occasion),
				MaxResults: maxResults,
				WithNames:  withNames,
			}
			if season != "" && !req.Season.IsValid() {
				return fmt.Errorf("unknown season %q", season)
			}
			if occasion != "" && !req.Occasion.IsValid() {
				return fmt.Errorf("unknown occasion %q", occasion)
			}

			resp, err := w.suggestions.Suggest(cmd.Context(), w.owner, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			st := newStyles(out)
			if len(resp.Suggestions) == 0 {
				fmt.Fprintln(out, st.subtle.Render("No suggestions. Add more items to your wardrobe."))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, st.header.Render("SCORE\tPATTERN\tNAME\tREASONS"))
			for _, s := range resp.Suggestions {
				fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\n", s.Score, s.Pattern, s.Name, strings.Join(s.Reasons, "; "))
			}
			return tw.Flush()
		}),
	}

	cmd.Flags().StringVar(&season, "season", "", "target season (spring, summer, fall, winter)")
	cmd.Flags().StringVar(&occasion, "occasion", "", "target occasion (casual, work, formal, party, date, athletic)")
	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "maximum number of suggestions")
	cmd.Flags().BoolVar(&withNames, "names", true, "generate a name for each suggestion")
	return cmd
}

func flagCmd(v *viper.Viper) *cobra.Command {
	var (
		reason string
		items  bool
	)

	cmd := &cobra.Command{
		Use:   "flag <pattern | item-id...>",
		Short: "Never suggest an outfit pattern again",
		Long: `Flag an outfit pattern so it is never suggested again.

Pass a pattern such as "tshirt+jeans", or --items followed by item ids to flag
the pattern those items form.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withWardrobe(v, func(cmd *cobra.Command, args []string, w *wardrobe) error {
			ctx := cmd.Context()
			if !items {
				pattern, err := w.feedback.FlagOutfit(ctx, w.owner, strings.Join(args, "+"), reason)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), newStyles(cmd.OutOrStdout()).success.Render("Flagged "+pattern+"."))
				return nil
			}

			resolved, err := w.suggestions.ResolveItems(ctx, w.owner, args)
			if err != nil {
				return err
			}
			pattern, err := w.feedback.FlagItems(ctx, w.owner, resolved, reason)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), newStyles(cmd.OutOrStdout()).success.Render("Flagged "+pattern+"."))
			return nil
		}),
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why this outfit should not be suggested")
	cmd.Flags().BoolVar(&items, "items", false, "treat arguments as item ids")
	return cmd
}

func repeatCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "repeat <item-id>...",
		Short: "Check whether an item set repeats a worn outfit",
		Args:  cobra.MinimumNArgs(1),
		RunE: withWardrobe(v, func(cmd *cobra.Command, args []string, w *wardrobe) error {
			result, err := w.suggestions.CheckRepeat(cmd.Context(), w.owner, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)

			var msg string
			switch {
			case result.IsRepeat:
				msg = fmt.Sprintf("Repeat of %q", result.RepeatOutfitName)
			case result.NearRepeat:
				msg = fmt.Sprintf("Near repeat of %q (%d%% overlap)", result.RepeatOutfitName, *result.OverlapPct)
			default:
				fmt.Fprintln(out, st.success.Render("Not a repeat."))
				return nil
			}
			if result.DaysSinceWorn != nil {
				msg += fmt.Sprintf(", last worn %d days ago", *result.DaysSinceWorn)
			}
			fmt.Fprintln(out, st.warning.Render(msg))
			return nil
		}),
	}
}

func nameCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "name <item-id>...",
		Short: "Generate a display name for an item set",
		Args:  cobra.MinimumNArgs(1),
		RunE: withWardrobe(v, func(cmd *cobra.Command, args []string, w *wardrobe) error {
			name, err := w.suggestions.NameOutfit(cmd.Context(), w.owner, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		}),
	}
}

func importCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a wardrobe export document",
		Args:  cobra.ExactArgs(1),
		RunE: withWardrobe(v, func(cmd *cobra.Command, args []string, w *wardrobe) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			report, err := w.catalog.Import(cmd.Context(), w.owner, data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			fmt.Fprintln(out, st.success.Render(fmt.Sprintf("Imported %d items (schema v%d).", report.Imported, report.SchemaVersion)))
			for _, r := range report.Rejected {
				fmt.Fprintln(out, st.warning.Render(fmt.Sprintf("  skipped #%d %s: %s", r.Index, r.ID, r.Reason)))
			}
			return nil
		}),
	}
}
