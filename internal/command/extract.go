package command

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```json-command\n(.*?)\n```")

// Extract finds the first json-command fence in an assistant message and
// parses it. found is false when the message carries no fence at all;
// a fence that is present but malformed is an error, not a silent skip.
func Extract(content string) (cmd Command, found bool, err error) {
	m := fenceRe.FindStringSubmatch(content)
	if m == nil {
		return Command{}, false, nil
	}
	cmd, err = Parse([]byte(m[1]))
	if err != nil {
		return Command{}, true, err
	}
	return cmd, true, nil
}

// Strip removes every json-command fence from a message so the conversational
// text can be shown without the machine payload.
func Strip(content string) string {
	out := fenceRe.ReplaceAllString(content, "")
	// Collapse the blank runs the removed fences leave behind.
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(out)
}
