package cmd

import (
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zerei-app/zerei/internal/achievement"
	"github.com/zerei-app/zerei/internal/config"
	"github.com/zerei-app/zerei/internal/profile"
	"github.com/zerei-app/zerei/internal/store"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show your recent activity",
	Long:  `Feed lists completed cards and earned achievements, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		who := profile.DisplayName(cfg.Profile.DisplayName, cfg.Profile.Email)

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		activities, err := s.Activities(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(activities) == 0 {
			fmt.Println("Nothing here yet. Scratch a card to get started.")
			return nil
		}

		for _, a := range activities {
			when := colorize.HiBlackString("%s", a.CreatedAt.Local().Format("2006-01-02 15:04"))
			switch a.Kind {
			case store.KindCardCompleted:
				fmt.Printf("%s  %s completed %s in %s\n", when, who,
					colorize.HiWhiteString("%s", a.CardTitle), colorize.CyanString("%s", a.CollectionID))
				if a.Comment != "" {
					fmt.Printf("                  “%s”\n", a.Comment)
				}
			case store.KindAchievement:
				fmt.Printf("%s  %s earned %s for %d%% of %s\n", when, who,
					colorize.YellowString("%s", achievement.TierFor(a.Percentage)), a.Percentage,
					colorize.CyanString("%s", a.CollectionID))
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(feedCmd)

	feedCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
}
