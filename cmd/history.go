package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored worksheet generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		keep, _ := cmd.Flags().GetInt("keep")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.GenerationRepo()
		if keep > 0 {
			if err := repo.Prune(ctx, keep); err != nil {
				return fmt.Errorf("prune generations: %w", err)
			}
		}

		gens, err := repo.List(ctx, limit)
		if err != nil {
			return fmt.Errorf("list generations: %w", err)
		}
		if len(gens) == 0 {
			fmt.Println("No worksheets generated yet.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-14s  %-9s  %5s  %-20s  %s\n",
			"ID", "Created", "Type", "Language", "Marks", "Tiers", "Topic")
		fmt.Println(strings.Repeat("─", 120))

		for _, g := range gens {
			tiers := make([]string, 0, len(g.Tiers))
			for _, t := range g.Tiers {
				tiers = append(tiers, t.Tier)
			}
			topic := g.Topic
			if topic == "" {
				topic = "-"
			}
			fmt.Printf("%-36s  %-16s  %-14s  %-9s  %5d  %-20s  %s\n",
				g.ID,
				g.CreatedAt.Local().Format("2006-01-02 15:04"),
				g.Type,
				g.Language,
				g.TotalMarks,
				truncate(strings.Join(tiers, ","), 20),
				topic,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of generations to show")
	historyCmd.Flags().Int("keep", 0, "Delete all but the newest N generations first")
}
