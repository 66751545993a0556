package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/zerei-app/zerei/internal/achievement"
	"github.com/zerei-app/zerei/internal/config"
	"github.com/zerei-app/zerei/internal/render"
	"github.com/zerei-app/zerei/internal/scratch"
	"github.com/zerei-app/zerei/internal/store"
)

var scratchCmd = &cobra.Command{
	Use:   "scratch [card_id]",
	Short: "Scratch a card to reveal it",
	Long: `Scratch opens the card full screen under its scratch-off coating.
Drag with the mouse to scratch it away. Once enough of the card is
uncovered it is revealed; press Enter to record it as completed.

The collection must have been acquired first with 'zerei collection acquire'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collectionFlag, _ := cmd.Flags().GetString("collection")
		noComment, _ := cmd.Flags().GetBool("no-comment")
		dateFlag, _ := cmd.Flags().GetString("date")

		completedAt, err := parseCompletionDate(dateFlag, time.Now())
		if err != nil {
			return err
		}

		if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("scratch needs an interactive terminal")
		}

		c, err := loadCollection(collectionFlag)
		if err != nil {
			return err
		}
		cd, err := c.GetCard(args[0])
		if err != nil {
			return fmt.Errorf("error getting card: %w", err)
		}

		c, s, uc, err := acquired(cmd, c)
		if err != nil {
			return err
		}
		defer s.Close()

		done, err := s.CompletedCards(cmd.Context(), uc.ID)
		if err != nil {
			return err
		}
		if _, ok := done[cd.ID]; ok {
			fmt.Printf("%s is already completed. Run 'zerei show %s' to see it.\n", cd.Title, cd.ID)
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		imagePath, err := c.ImagePath(cd, true)
		if err != nil {
			return err
		}
		img, err := render.LoadImage(imagePath)
		if err != nil {
			return err
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize screen: %w", err)
		}
		screen.EnableMouse()

		ctx, cancel := context.WithCancel(cmd.Context())
		events := scratch.Pump(ctx, screen)

		session := scratch.New(screen, cd, img, scratch.Options{
			Surface:  cfg.SurfaceConfig(),
			Density:  cfg.Reveal.Density,
			Subtitle: c.Title,
			Progress: fmt.Sprintf("%d/%d", len(done), c.Len()),
			Logger:   logger,
		})
		res, err := session.Run(ctx, events)

		cancel()
		screen.Fini()

		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Debug("Scratch session ended",
			zap.String("card", cd.ID),
			zap.Bool("revealed", res.Revealed),
			zap.Bool("confirmed", res.Confirmed),
			zap.Float64("fraction", res.Fraction))

		if !res.Confirmed {
			if res.Revealed {
				fmt.Printf("%s was revealed but not saved.\n", cd.Title)
			} else {
				fmt.Printf("%s stays hidden (%d%% scratched).\n", cd.Title, int(res.Fraction*100))
			}
			return nil
		}

		var comment string
		if !noComment {
			comment = promptComment()
		}

		if err := s.CompleteCard(cmd.Context(), uc.ID, store.Completion{
			CardID:    cd.ID,
			CardTitle: cd.Title,
			At:        completedAt,
			Comment:   comment,
		}); err != nil {
			return err
		}

		completed := len(done) + 1
		earned, err := s.RecordAchievements(cmd.Context(), uc.ID, completed, c.Len())
		if err != nil {
			return err
		}

		color.Green("✅ %s completed!", cd.Title)
		fmt.Printf("%s: %d/%d cards (%d%%)\n", c.Title, completed, c.Len(), achievement.Percent(completed, c.Len()))
		for _, pct := range earned {
			color.Yellow("🏆 New achievement: %s (%d%% of %s)", achievement.TierFor(pct), pct, c.Title)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(scratchCmd)

	scratchCmd.Flags().StringP("collection", "c", "", "Specify a collection from your library or a path to a collection")
	scratchCmd.Flags().Bool("no-comment", false, "Do not ask for a comment when saving")
	scratchCmd.Flags().String("date", "", "Date the card was completed (YYYY-MM-DD, default now)")
}

// parseCompletionDate parses a --date value as a local calendar day. An
// empty value yields the zero time, which the store records as now. Days
// after today are rejected.
func parseCompletionDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD: %w", value, err)
	}
	y, m, d := now.Date()
	if day.After(time.Date(y, m, d, 0, 0, 0, 0, now.Location())) {
		return time.Time{}, fmt.Errorf("--date %s is in the future", value)
	}
	return day, nil
}

// promptComment reads one optional line from stdin
func promptComment() string {
	fmt.Print("Add a comment (optional): ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Println()
		return ""
	}
	return strings.TrimSpace(line)
}
