package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zerei-app/zerei/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a collection directory",
	Long: `Validate checks if a collection directory holds a well-formed collection.toml.
It verifies the manifest, every card entry and the images they reference.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collectionPath := args[0]

		// Check if path exists
		if _, err := os.Stat(collectionPath); os.IsNotExist(err) {
			return fmt.Errorf("collection directory not found: %s", collectionPath)
		}

		// Create validator and run validation
		v := validator.NewValidator(collectionPath)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
		logger.Debug("Validated collection",
			zap.String("path", collectionPath),
			zap.Int("errors", len(results.Errors)),
			zap.Int("warnings", len(results.Warnings)))

		// Display validation results
		fmt.Println("Validation Results:")
		fmt.Println("-------------------")

		if len(results.Errors) == 0 {
			color.Green("✅ Collection '%s' is valid.", collectionPath)
		} else {
			color.Red("❌ Collection '%s' has %d validation errors:", collectionPath, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Printf("%d. %s\n", i+1, err)
			}
			return fmt.Errorf("validation failed")
		}

		if len(results.Warnings) > 0 {
			color.Yellow("\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Printf("%d. %s\n", i+1, warn)
			}
		}

		return nil
	},
}
