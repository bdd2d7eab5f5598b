package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/slateworks/ticklist/internal/config"
	"github.com/slateworks/ticklist/internal/model"
	"github.com/slateworks/ticklist/internal/store"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [todo-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a todo",
	Long: `Delete a todo by its ID.

Examples:
  ticklist delete 42
  ticklist rm 42`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid todo ID: %s", args[0])
	}

	backend, closer, _, err := openBackend()
	if err != nil {
		return err
	}
	defer closer()

	// Check config
	cfg, _ := config.Load() // Ignore error, use defaults
	if cfg.ConfirmDelete {
		var target model.Todo
		todos, err := backend.Load()
		if err == nil {
			for _, t := range todos {
				if t.ID == id {
					target = t
					break
				}
			}
		}
		if target.ID != 0 {
			fmt.Printf("About to delete: \"%s\" (ID: %d)\n", target.Text, target.ID)
		} else {
			fmt.Printf("About to delete todo %d\n", id)
		}
		fmt.Print("Are you sure? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := backend.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("todo not found: %d", id)
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	fmt.Printf("🗑️  Deleted todo %d\n", id)
	return nil
}
