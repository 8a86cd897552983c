package bot

import "strings"

// Command is a recognized control message. Commands mutate stored session
// state directly and never reach the completion provider.
type Command int

const (
	CmdNone Command = iota
	CmdReset
	CmdTail
	CmdFast
	CmdCapable
)

// Longest prefix wins, so an overlapping pair added later stays
// well-defined.
var commandPrefixes = []struct {
	prefix string
	cmd    Command
}{
	{"/reset", CmdReset},
	{"/tail", CmdTail},
	{"/gpt4", CmdCapable},
	{"/gpt3", CmdFast},
}

// Classify maps message text to a command; anything unmatched is ordinary
// conversational input.
func Classify(text string) Command {
	best := CmdNone
	bestLen := 0
	for _, c := range commandPrefixes {
		if strings.HasPrefix(text, c.prefix) && len(c.prefix) > bestLen {
			best = c.cmd
			bestLen = len(c.prefix)
		}
	}
	return best
}
