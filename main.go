package main

import (
	"fmt"
	"log/slog"
	"os"

	cmdcalculate "agency-stats/command/calculate"
	cmdweb "agency-stats/command/web"
)

// Reporting engine for agency time tracking: dimensional rollups, financial
// metrics, planned-vs-actual comparison, hours forecasting and team capacity.
// Usage:
//   agency-stats calculate [-data ./data] [-config capacity.yaml] [-reference 2026-08-01]
//   agency-stats web [-addr :8080] [-data ./data]

func main() {
	args := os.Args
	// Initialize slog logger (text to stderr)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		switch sub {
		case "calculate":
			if err := cmdcalculate.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "web":
			if err := cmdweb.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: agency-stats calculate [-data ./data] [-config <yaml>] [-reference <date>] | web [-addr :8080] [-data ./data]")
	os.Exit(2)
}
