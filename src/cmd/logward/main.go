// FILE: logward/src/cmd/logward/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"logward/src/internal/config"
	"logward/src/internal/core"
	"logward/src/internal/dispatch"
	"logward/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if *configFile != "" {
		os.Setenv("LOGWARD_CONFIG_FILE", *configFile)
	}

	cfg, err := config.LoadWithCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := initializeDiag(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize diagnostics: %v\n", err)
		os.Exit(1)
	}
	defer shutdownDiag()

	disp, err := buildDispatcher(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("msg", "Logward starting", "version", version.Short())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		forwardStdin(disp)
	}()

	select {
	case <-done:
	case sig := <-sigChan:
		logger.Info("msg", "Shutdown signal received", "signal", sig.String())
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	disp.FlushAll(flushCtx)
	cancel()
	disp.Close()
}

// forwardStdin reads stdin line by line and dispatches each as an entry.
// JSON object lines become a record argument; a leading severity token
// (e.g. "ERROR ..." or "[warn] ...") selects the level, defaulting to
// info.
func forwardStdin(disp *dispatch.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if record, ok := parseJSONLine(line); ok {
			level, msg := recordLevelAndMessage(record)
			disp.Log(level, msg, record)
			continue
		}

		level, msg := parseLevelPrefix(line)
		disp.Log(level, msg)
	}
	if err := scanner.Err(); err != nil {
		logger.Error("msg", "Stdin read failed", "error", err)
	}
}

func parseJSONLine(line string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, false
	}
	return record, true
}

func recordLevelAndMessage(record map[string]any) (core.Level, string) {
	level := core.InfoLevel
	if v, ok := record["level"].(string); ok {
		level = core.ParseLevel(v)
		delete(record, "level")
	}
	msg := ""
	for _, key := range []string{"msg", "message"} {
		if v, ok := record[key].(string); ok {
			msg = v
			delete(record, key)
			break
		}
	}
	return level, msg
}

var levelTokens = map[string]core.Level{
	"FATAL": core.FatalLevel,
	"ERROR": core.ErrorLevel,
	"WARN":  core.WarnLevel,
	"INFO":  core.InfoLevel,
	"DEBUG": core.DebugLevel,
	"TRACE": core.TraceLevel,
}

func parseLevelPrefix(line string) (core.Level, string) {
	token, rest, found := strings.Cut(line, " ")
	if !found {
		return core.InfoLevel, line
	}
	normalized := strings.ToUpper(strings.Trim(token, "[]:"))
	if level, ok := levelTokens[normalized]; ok {
		return level, strings.TrimSpace(rest)
	}
	return core.InfoLevel, line
}

func shutdownDiag() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Diagnostics shutdown error: %v\n", err)
		}
	}
}
