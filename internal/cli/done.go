package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/slateworks/ticklist/internal/store"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [todo-id]",
	Short: "Mark a todo as completed",
	Long: `Mark a todo as completed.

Examples:
  ticklist done 42
  ticklist done 42 --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var doneUndo bool

func init() {
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Mark todo as not completed")
}

func runDone(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid todo ID: %s", args[0])
	}

	backend, closer, _, err := openBackend()
	if err != nil {
		return err
	}
	defer closer()

	completed := !doneUndo
	todo, err := backend.Update(id, store.TodoPatch{Completed: &completed})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("todo not found: %d", id)
		}
		return fmt.Errorf("failed to update todo: %w", err)
	}

	if completed {
		fmt.Printf("✓ Completed: \"%s\"\n", todo.Text)
	} else {
		fmt.Printf("○ Reopened: \"%s\"\n", todo.Text)
	}

	return nil
}
