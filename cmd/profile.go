package cmd

import (
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zerei-app/zerei/internal/achievement"
	"github.com/zerei-app/zerei/internal/config"
	"github.com/zerei-app/zerei/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile and overall progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		p := cfg.Profile
		name := profile.DisplayName(p.DisplayName, p.Email)

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ucs, err := s.List(cmd.Context(), false)
		if err != nil {
			return err
		}
		archived, err := s.List(cmd.Context(), true)
		if err != nil {
			return err
		}

		var cards, badges int
		for _, uc := range append(ucs, archived...) {
			done, err := s.CompletedCards(cmd.Context(), uc.ID)
			if err != nil {
				return err
			}
			cards += len(done)

			recorded, err := s.Achievements(cmd.Context(), uc.ID)
			if err != nil {
				return err
			}
			pcts := make([]int, 0, len(recorded))
			for _, a := range recorded {
				pcts = append(pcts, a.Percentage)
			}
			badges += len(achievement.Earned(pcts))
		}

		fmt.Println()
		fmt.Printf("  %s  %s\n", colorize.New(colorize.BgCyan, colorize.FgBlack).Sprintf(" %s ", profile.Initials(name)), colorize.HiWhiteString("%s", name))
		if p.Email != "" && p.Email != name {
			fmt.Printf("      %s\n", p.Email)
		}
		if !p.UseInitialAvatar {
			fmt.Printf("      %s %s\n", colorize.CyanString("Avatar:"), profile.AvatarURL(p.AvatarSeed, p.DisplayName, p.Email))
		}
		fmt.Println()
		fmt.Printf("  %s %d active, %d archived\n", colorize.CyanString("Collections:"), len(ucs), len(archived))
		fmt.Printf("  %s %d\n", colorize.CyanString("Cards completed:"), cards)
		fmt.Printf("  %s %d\n", colorize.CyanString("Achievements:"), badges)
		fmt.Println()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(profileCmd)
}
