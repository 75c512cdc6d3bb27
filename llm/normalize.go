package llm

import (
	"regexp"
	"strings"
)

var enumPrefix = regexp.MustCompile(`^\d+\.\s*`)

// SplitTasks turns a raw model reply into discrete task strings: one
// task per line, blank and whitespace-only lines dropped, leading
// "1. "-style enumeration prefixes stripped. Lines that are empty after
// stripping are dropped too, so every returned string is non-empty.
func SplitTasks(reply string) []string {
	var tasks []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(enumPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		tasks = append(tasks, line)
	}
	return tasks
}
