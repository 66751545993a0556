package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zerei-app/zerei/internal/collection"
	"github.com/zerei-app/zerei/internal/config"
	"github.com/zerei-app/zerei/internal/store"
)

// collectionCmd represents the collection command group
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage card collections in your library",
	Long:  `Commands for managing card collections and your progress through them.`,
}

// collectionListCmd represents the collection ls command
var collectionListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List available collections in your library",
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := config.GetLibraryPath()

		// Check if collection library exists
		if _, err := os.Stat(libraryPath); os.IsNotExist(err) {
			fmt.Printf("Collection library at %s does not exist.\n", libraryPath)
			fmt.Println("Run 'zerei collection init' to create it.")
			return nil
		}

		libraryPath, err := filepath.EvalSymlinks(libraryPath)
		if err != nil {
			return fmt.Errorf("error resolving symbolic link: %w", err)
		}

		showArchived, _ := cmd.Flags().GetBool("archived")
		tag, _ := cmd.Flags().GetString("tag")

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(libraryPath)
		if err != nil {
			return fmt.Errorf("error reading collection library: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No collections found in your library.")
			fmt.Println("You can add collections by copying them to:", libraryPath)
			return nil
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		for _, entry := range entries {
			// Resolve the symbolic link or regular entry
			entryPath := filepath.Join(libraryPath, entry.Name())
			fileInfo, err := os.Stat(entryPath)
			if err != nil {
				fmt.Printf("Error resolving entry %s: %v\n", entry.Name(), err)
				continue
			}
			if !fileInfo.IsDir() {
				continue
			}

			c, err := collection.Load(entryPath)
			if err != nil {
				// Not a valid collection, skip
				logger.Debug("Skipping directory", zap.String("path", entryPath), zap.Error(err))
				continue
			}
			if tag != "" && !c.HasTag(tag) {
				continue
			}

			status := "not acquired"
			uc, err := s.FindByCollection(cmd.Context(), c.ID)
			switch {
			case errors.Is(err, store.ErrNotFound):
			case err != nil:
				return err
			default:
				if uc.Archived != showArchived {
					continue
				}
				done, err := s.CompletedCards(cmd.Context(), uc.ID)
				if err != nil {
					return err
				}
				status = fmt.Sprintf("%d/%d", len(done), c.Len())
				if uc.Archived {
					status += ", archived"
				}
				if !uc.Public {
					status += ", private"
				}
			}
			if showArchived && uc == nil {
				continue
			}

			if entry.Name() == cfg.DefaultCollection {
				fmt.Printf("* %s (%s) [DEFAULT] %s\n", entry.Name(), c.Title, status)
			} else {
				fmt.Printf("  %s (%s) %s\n", entry.Name(), c.Title, status)
			}
		}
		return nil
	},
}

// collectionSetDefaultCmd represents the collection set-default command
var collectionSetDefaultCmd = &cobra.Command{
	Use:   "set-default [collection_name]",
	Short: "Set the default collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		collectionPath, err := config.GetCollectionPath(name)
		if err != nil {
			return err
		}

		// Try to load the collection to make sure it's valid
		if _, err := collection.Load(collectionPath); err != nil {
			return fmt.Errorf("not a valid collection: %w", err)
		}

		if err := config.SetDefaultCollection(name); err != nil {
			return fmt.Errorf("error setting default collection: %w", err)
		}

		fmt.Printf("Default collection set to: %s\n", name)
		return nil
	},
}

// collectionInitCmd represents the collection init command
var collectionInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the collection library",
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := config.GetLibraryPath()

		if err := os.MkdirAll(libraryPath, 0755); err != nil {
			return fmt.Errorf("error creating collection library: %w", err)
		}

		fmt.Println("Collection library initialized at:", libraryPath)
		fmt.Println("You can now add collections by copying them to this directory.")

		if _, err := config.LoadConfig(); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}
		fmt.Println("Config file initialized at:", config.GetConfigFilePath())

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		fmt.Println("Progress database initialized at:", config.GetDatabasePath())

		return nil
	},
}

// collectionAcquireCmd represents the collection acquire command
var collectionAcquireCmd = &cobra.Command{
	Use:   "acquire [collection_name]",
	Short: "Add a collection to your progress",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := collectionFromArgs(args)
		if err != nil {
			return err
		}
		private, _ := cmd.Flags().GetBool("private")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := s.Acquire(cmd.Context(), c.ID, !private); err != nil {
			return err
		}

		fmt.Printf("Acquired %s (%d cards)\n", c.Title, c.Len())
		return nil
	},
}

// collectionArchiveCmd represents the collection archive command
var collectionArchiveCmd = &cobra.Command{
	Use:   "archive [collection_name]",
	Short: "Hide a collection from the active list",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setArchived(cmd, args, true)
	},
}

// collectionUnarchiveCmd represents the collection unarchive command
var collectionUnarchiveCmd = &cobra.Command{
	Use:   "unarchive [collection_name]",
	Short: "Restore an archived collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setArchived(cmd, args, false)
	},
}

// collectionPrivacyCmd represents the collection privacy command
var collectionPrivacyCmd = &cobra.Command{
	Use:   "privacy [collection_name]",
	Short: "Toggle whether a collection's progress is public",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, s, uc, err := acquiredFromArgs(cmd, args)
		if err != nil {
			return err
		}
		defer s.Close()

		public, err := s.TogglePrivacy(cmd.Context(), uc.ID)
		if err != nil {
			return err
		}

		if public {
			fmt.Printf("%s is now public\n", c.Title)
		} else {
			fmt.Printf("%s is now private\n", c.Title)
		}
		return nil
	},
}

// collectionResetCmd represents the collection reset command
var collectionResetCmd = &cobra.Command{
	Use:   "reset [collection_name]",
	Short: "Forget completed cards and achievements for a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, s, uc, err := acquiredFromArgs(cmd, args)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Reset(cmd.Context(), uc.ID); err != nil {
			return err
		}

		fmt.Printf("Progress for %s has been reset\n", c.Title)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionSetDefaultCmd)
	collectionCmd.AddCommand(collectionInitCmd)
	collectionCmd.AddCommand(collectionAcquireCmd)
	collectionCmd.AddCommand(collectionArchiveCmd)
	collectionCmd.AddCommand(collectionUnarchiveCmd)
	collectionCmd.AddCommand(collectionPrivacyCmd)
	collectionCmd.AddCommand(collectionResetCmd)

	collectionListCmd.Flags().Bool("archived", false, "List archived collections instead")
	collectionListCmd.Flags().StringP("tag", "t", "", "Only list collections carrying this tag")
	collectionAcquireCmd.Flags().Bool("private", false, "Keep progress on this collection private")
}

func setArchived(cmd *cobra.Command, args []string, archived bool) error {
	c, s, uc, err := acquiredFromArgs(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SetArchived(cmd.Context(), uc.ID, archived); err != nil {
		return err
	}

	if archived {
		fmt.Printf("Archived %s\n", c.Title)
	} else {
		fmt.Printf("Restored %s\n", c.Title)
	}
	return nil
}

// collectionFromArgs loads the collection named by the first argument, or
// the default collection when there is none
func collectionFromArgs(args []string) (*collection.Collection, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	return loadCollection(name)
}

// acquiredFromArgs resolves the collection and its progress record. The
// caller closes the returned store.
func acquiredFromArgs(cmd *cobra.Command, args []string) (*collection.Collection, *store.Store, *store.UserCollection, error) {
	c, err := collectionFromArgs(args)
	if err != nil {
		return nil, nil, nil, err
	}
	return acquired(cmd, c)
}

func acquired(cmd *cobra.Command, c *collection.Collection) (*collection.Collection, *store.Store, *store.UserCollection, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}

	uc, err := s.FindByCollection(cmd.Context(), c.ID)
	if errors.Is(err, store.ErrNotFound) {
		s.Close()
		return nil, nil, nil, fmt.Errorf("collection %s has not been acquired; run 'zerei collection acquire %s'", c.ID, c.ID)
	}
	if err != nil {
		s.Close()
		return nil, nil, nil, err
	}
	return c, s, uc, nil
}

// loadCollection loads a collection by library name or path, falling back
// to the default collection for an empty name
func loadCollection(name string) (*collection.Collection, error) {
	if name == "" {
		defaultCollection, err := config.GetDefaultCollection()
		if err != nil {
			return nil, err
		}
		name = defaultCollection
	}

	collectionPath, err := config.GetCollectionPath(name)
	if err != nil {
		return nil, err
	}

	c, err := collection.Load(collectionPath)
	if err != nil {
		return nil, fmt.Errorf("error loading collection: %w", err)
	}
	return c, nil
}
