package cli

import (
	"fmt"
	"strings"

	"github.com/slateworks/ticklist/internal/config"
	"github.com/slateworks/ticklist/internal/state"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all completed todos",
	Long: `Delete every completed todo. Deletion is attempted one todo at a time;
todos the backend fails to delete are still removed from the listing and
logged, so a partial failure never blocks the rest.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().Bool("force", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	backend, closer, _, err := openBackend()
	if err != nil {
		return err
	}
	defer closer()

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	ctrl := state.New(backend, cfg.ReorderOnToggle)
	if err := ctrl.Load(); err != nil {
		return fmt.Errorf("failed to load todos: %w", err)
	}

	_, completed := ctrl.Counts()
	if completed == 0 {
		fmt.Println("Nothing to clear.")
		return nil
	}

	if !force {
		fmt.Printf("Clear %d completed todo(s)? (y/N): ", completed)
		var response string
		_, _ = fmt.Scanln(&response)
		if strings.ToLower(response) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cleared := ctrl.ClearCompleted()
	fmt.Printf("🧹 Cleared %d completed todo(s).\n", cleared)
	return nil
}
