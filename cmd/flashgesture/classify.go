package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/flashgesture/internal/config"
	"github.com/ayusman/flashgesture/internal/detector"
	"github.com/ayusman/flashgesture/internal/gesture"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <pose.json>...",
	Short: "Classify recorded hand poses",
	Long: "Classify one or more recorded poses. A pose file holds either a hand object\n" +
		`({"points":[{"x":..,"y":..,"z":..}, ...]}) or a bare array of [x, y, z] triples.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Bool("fallback-2d", false, "Use the 2D heuristic when depth is missing")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := config.Load().Classifier
	if cmd.Flags().Changed("fallback-2d") {
		cfg.Fallback2D, _ = cmd.Flags().GetBool("fallback-2d")
	}
	classifier := gesture.NewClassifier(cfg)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSYMBOL\tRATING")
	for _, path := range args {
		hand, err := detector.ReadHandFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		symbol := classifier.Classify(hand)
		fmt.Fprintf(w, "%s\t%s\t%s\n", path, symbol, gesture.RatingFor(symbol))
	}
	return w.Flush()
}
