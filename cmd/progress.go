package cmd

import (
	"fmt"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zerei-app/zerei/internal/achievement"
	"github.com/zerei-app/zerei/internal/collection"
	"github.com/zerei-app/zerei/internal/config"
	"github.com/zerei-app/zerei/internal/store"
)

var progressCmd = &cobra.Command{
	Use:   "progress [collection_name]",
	Short: "Show completed cards and achievements for a collection",
	Long: `Progress lists the cards of a collection, which of them you have completed
and the milestones earned along the way. With --all it summarizes every
acquired collection instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all {
			return progressSummary(cmd)
		}

		c, s, uc, err := acquiredFromArgs(cmd, args)
		if err != nil {
			return err
		}
		defer s.Close()

		done, err := s.CompletedCards(cmd.Context(), uc.ID)
		if err != nil {
			return err
		}
		recorded, err := s.Achievements(cmd.Context(), uc.ID)
		if err != nil {
			return err
		}

		total := c.Len()
		fmt.Println()
		fmt.Printf("%s %s\n", colorize.HiWhiteString("%s", c.Title), colorize.CyanString("[%s]", achievement.IconFor(c.Tags)))
		if c.Subtitle != "" {
			fmt.Println(c.Subtitle)
		}
		if c.Author != "" {
			by := "by " + c.Author
			if c.Created != "" {
				by += ", " + c.Created
			}
			fmt.Println(colorize.HiBlackString("%s", by))
		}
		fmt.Printf("%s %d/%d (%d%%)\n\n", progressBar(len(done), total, 30), len(done), total, achievement.Percent(len(done), total))

		for _, cd := range c.Cards {
			if at, ok := done[cd.ID]; ok {
				fmt.Printf("  %s %2d. %s %s\n", colorize.GreenString("✓"), cd.Position, cd.Title,
					colorize.HiBlackString("(%s)", at.Local().Format("2 Jan 2006")))
			} else {
				fmt.Printf("  %s %2d. %s\n", colorize.HiBlackString("·"), cd.Position, cd.Title)
			}
		}

		pcts := make([]int, 0, len(recorded))
		for _, a := range recorded {
			pcts = append(pcts, a.Percentage)
		}
		earned := achievement.Earned(pcts)

		fmt.Println()
		fmt.Println(colorize.CyanString("Achievements:"))
		for _, m := range achievement.Milestones {
			label := fmt.Sprintf("%-7s %3d%%", achievement.TierFor(m), m)
			if earned[m] {
				fmt.Printf("  %s %s\n", colorize.YellowString("🏆"), label)
			} else {
				fmt.Printf("  %s %s\n", colorize.HiBlackString("🔒"), colorize.HiBlackString("%s", label))
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(progressCmd)

	progressCmd.Flags().Bool("all", false, "Summarize every acquired collection")
}

// progressSummary prints one line per active acquired collection
func progressSummary(cmd *cobra.Command) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ucs, err := s.List(cmd.Context(), false)
	if err != nil {
		return err
	}
	if len(ucs) == 0 {
		fmt.Println("You have not acquired any collections yet.")
		fmt.Println("Run 'zerei collection acquire <name>' to start one.")
		return nil
	}

	for _, uc := range ucs {
		c, err := libraryCollection(uc)
		if err != nil {
			fmt.Printf("  %s %s\n", uc.CollectionID, colorize.RedString("(missing from library)"))
			continue
		}
		done, err := s.CompletedCards(cmd.Context(), uc.ID)
		if err != nil {
			return err
		}
		fmt.Printf("  %-24s %s %d/%d\n", c.Title, progressBar(len(done), c.Len(), 20), len(done), c.Len())
	}
	return nil
}

// libraryCollection loads the library collection a progress record refers to
func libraryCollection(uc *store.UserCollection) (*collection.Collection, error) {
	return collection.Find(config.GetLibraryPath(), uc.CollectionID)
}

func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, done*width/total)
	}
	return colorize.GreenString("%s", strings.Repeat("█", filled)) + colorize.HiBlackString("%s", strings.Repeat("░", width-filled))
}
