package main

import (
	"os"
	"strings"

	"github.com/google/uuid"

	"steward-cli/internal/cli"
)

// isTaskID reports whether s looks like a minted task id (TASK-1A2B3C4D).
// Matching is permissive; users paste ids in either case.
func isTaskID(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) > len("TASK-") && strings.HasPrefix(strings.ToUpper(s), "TASK-")
}

// isUserID reports whether s parses as the UUID form user ids use.
func isUserID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// lookupRoute maps a pasted id to the subcommand that shows it.
func lookupRoute(s string) []string {
	switch {
	case isTaskID(s):
		return []string{"tasks", "get"}
	case isUserID(s):
		return []string{"users", "get"}
	}
	return nil
}

// rewriteDirectLookupArgs makes `steward <id>` work like `steward tasks get
// <id>` (or `users get` for UUIDs).
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags often come first (e.g. `steward --server
// ... <id>`), so the scan finds the first positional token, not just argv[1].
func rewriteDirectLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Minimal persistent-flag awareness. Unknown flags are skipped without
	// consuming a value, so an id can never be eaten as a flag argument.
	valueFlags := map[string]bool{
		"--server": true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Flag parsing stops here; the next token is the first positional.
			if i+1 < len(argv) {
				if route := lookupRoute(argv[i+1]); route != nil {
					out := make([]string, 0, len(argv)+2)
					out = append(out, argv[:i+1]...)
					out = append(out, route...)
					out = append(out, argv[i+1:]...)
					return out
				}
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			// --flag=value form
			if strings.Contains(a, "=") {
				continue
			}
			if boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
				continue
			}
			continue
		}

		// First positional token.
		if route := lookupRoute(a); route != nil {
			out := make([]string, 0, len(argv)+2)
			out = append(out, argv[:i]...)
			out = append(out, route...)
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
