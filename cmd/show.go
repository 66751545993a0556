package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/zerei-app/zerei/internal/card"
	"github.com/zerei-app/zerei/internal/collection"
	"github.com/zerei-app/zerei/internal/config"
	"github.com/zerei-app/zerei/internal/render"
	"github.com/zerei-app/zerei/internal/store"
)

// Card art size in cells, a 9:14 card on half blocks
const (
	artWidth  = 36
	artHeight = 28
)

var showCmd = &cobra.Command{
	Use:   "show [card_id]",
	Short: "Display a card of a collection with ANSI art",
	Long: `Show displays a card with ANSI terminal art. Cards you have not completed
yet are shown under their scratch-off coating.

Cards are selected by their id, or by position with '#N'.
You can specify a collection using the --collection flag, which will look for
it in your library (XDG_DATA_HOME/zerei/collections) or as a relative path.
If no collection is specified, the default collection from your config will be used.

Examples:
  zerei show eiffel-tower
  zerei show --collection world-wonders '#3'
  zerei show --collection ./my-collection petra`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collectionFlag, _ := cmd.Flags().GetString("collection")

		c, err := loadCollection(collectionFlag)
		if err != nil {
			return err
		}

		cd, err := c.GetCard(args[0])
		if err != nil {
			return fmt.Errorf("error getting card: %w", err)
		}

		completedAt, err := completionTime(cmd, c, cd)
		if err != nil {
			return err
		}
		completed := !completedAt.IsZero()

		imagePath, err := c.ImagePath(cd, completed)
		if err != nil {
			return err
		}

		var ansiArt string
		if completed {
			ansiArt, err = render.CachedAnsi(config.GetCacheDir(), imagePath, artWidth, artHeight)
		} else {
			ansiArt, err = coatedArt(imagePath)
		}
		if err != nil {
			return fmt.Errorf("error rendering card: %w", err)
		}

		displayCard(cd, c, ansiArt, completedAt)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("collection", "c", "", "Specify a collection from your library or a path to a collection")
}

// completionTime returns when the card was completed, or the zero time when
// it was not or the collection has not been acquired
func completionTime(cmd *cobra.Command, c *collection.Collection, cd *card.Card) (time.Time, error) {
	s, err := openStore()
	if err != nil {
		return time.Time{}, err
	}
	defer s.Close()

	uc, err := s.FindByCollection(cmd.Context(), c.ID)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	done, err := s.CompletedCards(cmd.Context(), uc.ID)
	if err != nil {
		return time.Time{}, err
	}
	return done[cd.ID], nil
}

// coatedArt renders the card fully under its scratch-off coating
func coatedArt(imagePath string) (string, error) {
	img, err := render.LoadImage(imagePath)
	if err != nil {
		return "", err
	}
	coated := render.Composite(img, nil, render.OverlayColor, 1)
	return render.ImageToAnsi(coated, artWidth, artHeight, true), nil
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	// Ensure width is reasonable
	if width < 10 {
		width = 40
	}

	var result []string
	var currentLine string
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	for _, word := range words {
		if len(currentLine) == 0 {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			result = append(result, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}

// displayCard displays the card information next to its ANSI art
func displayCard(cd *card.Card, c *collection.Collection, ansiArt string, completedAt time.Time) {
	ansiLines := strings.Split(strings.TrimRight(ansiArt, "\n"), "\n")
	maxAnsiWidth := 0
	for _, line := range ansiLines {
		// Calculate the visible width (excluding ANSI escape sequences)
		visibleWidth := len([]rune(render.StripAnsi(line)))
		if visibleWidth > maxAnsiWidth {
			maxAnsiWidth = visibleWidth
		}
	}

	// Get terminal width
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	var infoLines []string
	infoLines = append(infoLines, colorize.CyanString("Card:       ")+colorize.HiWhiteString("%s", cd.Title))
	infoLines = append(infoLines, colorize.CyanString("Collection: ")+colorize.HiWhiteString("%s", c.Title))
	infoLines = append(infoLines, colorize.CyanString("ID:         ")+colorize.HiWhiteString("%s", cd.ID))
	infoLines = append(infoLines, colorize.CyanString("Position:   ")+colorize.HiWhiteString("%d of %d", cd.Position, c.Len()))

	if completedAt.IsZero() {
		infoLines = append(infoLines, colorize.CyanString("Status:     ")+colorize.YellowString("Not revealed yet"))
	} else {
		infoLines = append(infoLines, colorize.CyanString("Status:     ")+
			colorize.GreenString("Completed %s", completedAt.Local().Format("2 Jan 2006")))
	}

	spacing := 4
	infoStartCol := maxAnsiWidth + spacing

	infoWidth := width - infoStartCol - 2
	if infoWidth < 20 {
		infoWidth = 20
	}

	if c.Subtitle != "" {
		infoLines = append(infoLines, "")
		infoLines = append(infoLines, wrapText(c.Subtitle, infoWidth)...)
	}
	if completedAt.IsZero() {
		infoLines = append(infoLines, "")
		hint := fmt.Sprintf("Done it? Run 'zerei scratch %s' to reveal the card.", cd.ID)
		infoLines = append(infoLines, wrapText(hint, infoWidth)...)
	}

	logger.Debug("Showing card", zap.String("collection", c.ID), zap.String("card", cd.ID))

	fmt.Println()

	maxLines := max(len(ansiLines), len(infoLines))
	for i := 0; i < maxLines; i++ {
		fmt.Print("  ")
		if i < len(ansiLines) {
			fmt.Print(ansiLines[i])
			visibleWidth := len([]rune(render.StripAnsi(ansiLines[i])))
			fmt.Print(strings.Repeat(" ", infoStartCol-visibleWidth))
		} else {
			fmt.Print(strings.Repeat(" ", infoStartCol))
		}

		if i < len(infoLines) {
			fmt.Print(infoLines[i])
		}

		fmt.Println()
	}

	fmt.Println()
}
