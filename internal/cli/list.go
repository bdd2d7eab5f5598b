package cli

import (
	"fmt"
	"strings"

	"github.com/slateworks/ticklist/internal/config"
	"github.com/slateworks/ticklist/internal/model"
	"github.com/slateworks/ticklist/internal/state"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List todos",
	Long: `List todos, optionally filtered by completion state.

Examples:
  ticklist list
  ticklist list --filter active
  ticklist ls -f completed`,
	RunE: runList,
}

var listFilter string

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "all", "Filter: all, active or completed")
}

func runList(cmd *cobra.Command, args []string) error {
	backend, closer, username, err := openBackend()
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

	switch state.Filter(listFilter) {
	case state.FilterAll, state.FilterActive, state.FilterCompleted:
		ctrl.SetFilter(state.Filter(listFilter))
	default:
		return fmt.Errorf("unknown filter %q (use all, active or completed)", listFilter)
	}

	todos := ctrl.Visible()
	if len(todos) == 0 {
		fmt.Println("No todos found. Add one with: ticklist add \"Your todo\"")
		return nil
	}

	owner := "local"
	if username != "" {
		owner = username
	}
	active, _ := ctrl.Counts()
	fmt.Printf("\n📋 %s (%d active)\n", owner, active)
	fmt.Println(strings.Repeat("─", 60))
	for _, t := range todos {
		printTodo(t)
	}
	fmt.Println()

	return nil
}

func printTodo(t model.Todo) {
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}

	text := t.Text
	if len(text) > 50 {
		text = text[:47] + "..."
	}

	fmt.Printf("  %s  %-6d  %-50s  %s\n", icon, t.ID, text, t.UpdatedAt.Format("Jan 2 15:04"))
}
