// Package achievement computes the completion milestones a collection earns.
package achievement

// Milestones are the completion percentages that award a badge, ascending
var Milestones = []int{25, 50, 75, 100}

// Tier names the badge awarded at a milestone
type Tier string

const (
	Bronze Tier = "bronze"
	Silver Tier = "silver"
	Gold   Tier = "gold"
	Trophy Tier = "trophy"
)

// TierFor returns the badge tier for a milestone percentage
func TierFor(percentage int) Tier {
	switch {
	case percentage >= 100:
		return Trophy
	case percentage >= 75:
		return Gold
	case percentage >= 50:
		return Silver
	default:
		return Bronze
	}
}

// Percent returns completed/total as a whole percentage, rounded down
func Percent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return completed * 100 / total
}

// Crossed returns every milestone reached with completed of total cards
func Crossed(completed, total int) []int {
	if total <= 0 {
		return nil
	}

	var reached []int
	for _, m := range Milestones {
		// completed/total >= m/100, kept in integers
		if completed*100 >= m*total {
			reached = append(reached, m)
		}
	}
	return reached
}

// Earned expands recorded milestones so that every milestone below the
// highest recorded one counts as earned too
func Earned(recorded []int) map[int]bool {
	highest := 0
	for _, p := range recorded {
		if p > highest {
			highest = p
		}
	}

	earned := make(map[int]bool, len(Milestones))
	for _, m := range Milestones {
		if m <= highest {
			earned[m] = true
		}
	}
	for _, p := range recorded {
		earned[p] = true
	}
	return earned
}

// IconFor picks the badge icon theme from a collection's tags
func IconFor(tags []string) string {
	for _, t := range tags {
		switch t {
		case "Games", "Jogos":
			return "gamepad"
		case "Movies", "Filmes":
			return "film"
		case "Books", "Livros":
			return "book"
		case "Travel", "Viagens":
			return "globe"
		}
	}
	return "award"
}
