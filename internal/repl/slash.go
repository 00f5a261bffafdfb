package repl

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// slashCommands are the local commands the loop understands. Everything else
// typed with a leading slash gets a nearest-match suggestion.
var slashCommands = []struct {
	name string
	help string
}{
	{"/help", "show this list"},
	{"/copy", "copy the last final reply to the clipboard"},
	{"/quit", "terminate the session and exit"},
	{"/exit", "terminate the session and exit"},
	{"/q", "terminate the session and exit"},
}

func isQuitCommand(cmd string) bool {
	switch cmd {
	case "/quit", "/exit", "/q":
		return true
	}
	return false
}

func knownCommand(cmd string) bool {
	for _, c := range slashCommands {
		if c.name == cmd {
			return true
		}
	}
	return false
}

// suggestCommand fuzzy-matches an unknown command against the known set.
// Returns "" when nothing is close enough.
func suggestCommand(cmd string) string {
	names := make([]string, 0, len(slashCommands))
	for _, c := range slashCommands {
		names = append(names, c.name)
	}
	matches := fuzzy.Find(strings.TrimPrefix(cmd, "/"), names)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func helpText() string {
	var sb strings.Builder
	sb.WriteString("commands:")
	seen := map[string]bool{}
	for _, c := range slashCommands {
		if seen[c.help] {
			continue
		}
		seen[c.help] = true
		sb.WriteString("\n  " + c.name + "  " + c.help)
	}
	return sb.String()
}
