package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a new todo",
	Long: `Add a new todo.

Examples:
  ticklist add "Buy groceries"
  ticklist add Water the plants`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	backend, closer, _, err := openBackend()
	if err != nil {
		return err
	}
	defer closer()

	text := strings.Join(args, " ")
	todo, err := backend.Add(text)
	if err != nil {
		return fmt.Errorf("failed to add todo: %w", err)
	}

	fmt.Printf("✓ Added: \"%s\" (ID: %d)\n", todo.Text, todo.ID)
	return nil
}
