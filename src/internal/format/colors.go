// FILE: logward/src/internal/format/colors.go
package format

import "logward/src/internal/core"

// ANSI escape sequences by color name.
var ansiCodes = map[string]string{
	"black":   "\033[30m",
	"red":     "\033[31m",
	"green":   "\033[32m",
	"yellow":  "\033[33m",
	"blue":    "\033[34m",
	"magenta": "\033[35m",
	"cyan":    "\033[36m",
	"white":   "\033[37m",
	"gray":    "\033[90m",
}

const ansiReset = "\033[0m"

// Default level -> color assignment.
var defaultLevelColors = map[string]string{
	core.FatalLevel.String(): "magenta",
	core.ErrorLevel.String(): "red",
	core.WarnLevel.String():  "yellow",
	core.InfoLevel.String():  "green",
	core.DebugLevel.String(): "cyan",
	core.TraceLevel.String(): "gray",
}

// levelColor resolves the ANSI sequence for a level name, honoring
// overrides. Unknown colors disable coloring for that level.
func levelColor(levelName string, overrides map[string]string) string {
	name := defaultLevelColors[levelName]
	if overrides != nil {
		if custom, ok := overrides[levelName]; ok {
			name = custom
		}
	}
	return ansiCodes[name]
}
