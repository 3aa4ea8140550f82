// Command questclient sends level files to a questsolver server and prints
// the compiled programs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"questsolver/internal/logging"
	"questsolver/internal/protocol"
	"questsolver/internal/transport/ws"
)

func main() {
	var (
		url     = flag.String("url", "ws://localhost:8090/v1/ws", "ws url")
		theme   = flag.String("theme", "", "rule theme")
		preset  = flag.String("preset", "", "toolbox preset")
		maxExp  = flag.Int("max_expansions", 0, "search expansion cap (server limit applies)")
		timeout = flag.Duration("timeout", time.Minute, "per-level timeout")
		blockly = flag.Bool("blockly", false, "print the structured block program as JSON")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: questclient [flags] <level.json>...")
		os.Exit(2)
	}

	logger, err := logging.New(*verbose, "client")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := ws.Dial(ctx, *url)
	if err != nil {
		logger.Fatal("dial", zap.String("url", *url), zap.Error(err))
	}
	defer c.Close()

	failed := 0
	for _, path := range flag.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read level", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		reqCtx, cancel := context.WithTimeout(ctx, *timeout)
		res, err := c.Solve(reqCtx, protocol.SolveMsg{
			Level:         raw,
			Theme:         *theme,
			ToolboxPreset: *preset,
			MaxExpansions: *maxExp,
			TimeoutMs:     int(*timeout / time.Millisecond),
		})
		cancel()

		var re *ws.RemoteError
		switch {
		case errors.As(err, &re):
			fmt.Printf("%s: %s %s\n", path, re.Code, re.Message)
			failed++
			continue
		case err != nil:
			logger.Fatal("solve", zap.String("path", path), zap.Error(err))
		}

		logger.Debug("result", zap.String("run_id", res.RunID), zap.String("digest", res.Digest), zap.Int("expanded", res.Expanded))
		fmt.Printf("%s: %d actions, %d blocks, cost %.1f\n", path, res.Lines, res.Blocks, res.Cost)
		if *blockly {
			printJSON(res.Structured)
		} else {
			fmt.Print(res.Listing)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
