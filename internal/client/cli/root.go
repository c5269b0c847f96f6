package cli

import (
	"bufio"
	"context"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if r := a.bootResult(); r != nil && r.Authenticated && r.Profile != nil {
		s = r.Profile.Name + " "
	}
	if state := a.watcher.State(); state != "" {
		s = s + string(state)
	}
	if s != "" {
		s = "(" + s + ") "
	}
	return s
}

// Root prints the banner, flushes any actions deferred during boot, and
// blocks in the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Lingopal CLI (type 'help' for commands)")

	// The prompt is up: whatever boot parked on the queue can run now.
	a.pending.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
