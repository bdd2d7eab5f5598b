package cli

import (
	"fmt"

	"github.com/slateworks/ticklist/internal/client"
	"github.com/slateworks/ticklist/internal/logger"
	"github.com/slateworks/ticklist/internal/state"
)

// openBackend picks the persistence backend for this run. A stored session
// token is verified against the server first; if the server rejects it the
// token is discarded and the local database is used instead.
func openBackend() (backend state.Backend, closer func(), username string, err error) {
	c, cerr := client.New()
	if cerr == nil && c.IsLoggedIn() {
		user, verr := c.Verify()
		if verr == nil {
			return state.NewRemote(c), func() {}, user.Username, nil
		}
		logger.Warn("stored session rejected", logger.F("error", verr))
		fmt.Println("Session is no longer valid; using local todos. Run 'ticklist auth login' to sign back in.")
	}

	path, err := state.DefaultLocalPath()
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to resolve database path: %w", err)
	}

	local, err := state.NewLocal(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	return local, func() { _ = local.Close() }, "", nil
}
