package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/flashgesture/internal/config"
	"github.com/ayusman/flashgesture/internal/flashcard"
	"github.com/ayusman/flashgesture/internal/gesture"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage flashcards in a database file",
}

var cardAddCmd = &cobra.Command{
	Use:   "add <front> <back>",
	Short: "Add a card",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCards(cmd, func(svc *flashcard.Service) error {
			tags, _ := cmd.Flags().GetStringSlice("tag")
			c, err := svc.AddCard(cmd.Context(), args[0], args[1], tags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			return nil
		})
	},
}

var cardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cards, or only those due today with --due",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCards(cmd, func(svc *flashcard.Service) error {
			due, _ := cmd.Flags().GetBool("due")
			var (
				cards []*flashcard.Card
				err   error
			)
			if due {
				cards, err = svc.Practice(cmd.Context())
			} else {
				cards, err = svc.Cards(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBUCKET\tFRONT\tBACK\tTAGS")
			for _, c := range cards {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", c.ID, c.Bucket, c.Front, c.Back, strings.Join(c.Tags, ","))
			}
			return w.Flush()
		})
	},
}

var cardRateCmd = &cobra.Command{
	Use:   "rate <id> <easy|hard|wrong>",
	Short: "Rate a card on the current day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCards(cmd, func(svc *flashcard.Service) error {
			r, err := svc.Rate(cmd.Context(), args[0], gesture.ParseRating(args[1]), flashcard.SourceButton)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bucket %d -> %d\n", r.FromBucket, r.ToBucket)
			return nil
		})
	},
}

var cardNextDayCmd = &cobra.Command{
	Use:   "next-day",
	Short: "Advance the practice day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCards(cmd, func(svc *flashcard.Service) error {
			day, err := svc.AdvanceDay(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "day %d\n", day)
			return nil
		})
	},
}

func init() {
	cardAddCmd.Flags().StringSlice("tag", nil, "Tag to attach (repeatable)")
	cardListCmd.Flags().Bool("due", false, "Only cards due on the current day")

	cardCmd.AddCommand(cardAddCmd, cardListCmd, cardRateCmd, cardNextDayCmd)
}

// withCards opens the store for the duration of fn.
func withCards(cmd *cobra.Command, fn func(*flashcard.Service) error) error {
	st, err := openStore(cmd.Context(), cmd, config.Load())
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(flashcard.NewService(st))
}
