// Package main provides the MetricFlow CLI application
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/metricflow/metricflow/internal/adapters/repository/sqlite"
	"github.com/metricflow/metricflow/internal/core/snapshot"
	"github.com/metricflow/metricflow/pkg/metricflow"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "metricflow: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 1 {
		switch args[1] {
		case "version":
			fmt.Printf("MetricFlow %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
			return nil
		case "kinds":
			fmt.Println(strings.Join(metricflow.Kinds(), "\n"))
			return nil
		case "snapshots":
			return listSnapshots(args[2:])
		}
	}

	fmt.Println("MetricFlow - Stateful Evaluation Metrics")
	fmt.Println("Commands: version, kinds, snapshots [run-id]")
	return nil
}

// listSnapshots prints the snapshots stored in the SQLite store named by
// METRICFLOW_DB (a .env file is honored when present)
func listSnapshots(args []string) error {
	_ = godotenv.Load()

	dsn := os.Getenv("METRICFLOW_DB")
	if dsn == "" {
		dsn = "metricflow.db"
	}

	saver, err := sqlite.NewSQLiteSaver(dsn)
	if err != nil {
		return err
	}
	defer saver.Close()

	filter := snapshot.Filter{}
	if len(args) > 0 {
		filter.RunID = args[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snaps, err := saver.List(ctx, filter)
	if err != nil {
		return err
	}

	if len(snaps) == 0 {
		fmt.Println("no snapshots found")
		return nil
	}
	for _, snap := range snaps {
		fmt.Printf("%s  %-20s  run=%-12s  step=%-6d  %s\n",
			snap.ID, snap.MetricName, snap.RunID, snap.Metadata.Step,
			snap.Timestamp.Format(time.RFC3339))
	}
	return nil
}
