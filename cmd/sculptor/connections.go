package main

import (
	"context"
	"time"

	"github.com/samuelmaurice/sculptor"
	"github.com/samuelmaurice/sculptor/cli"
	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/dburl"
)

const pingTimeout = 5 * time.Second

func loadConfig() *sculptor.Config {
	cfg, err := sculptor.LoadConfig("")
	if err != nil {
		cli.FatalErr("failed to load config", err)
	}
	return cfg
}

// connectionsCmd implements "sculptor connections".
func connectionsCmd() {
	cfg := loadConfig()
	if len(cfg.Connections) == 0 {
		cli.Info("No connections configured")
		return
	}
	cli.Table([]string{"NAME", "DIALECT", "URL", "DEFAULT"}, connectionRows(cfg))
}

func connectionRows(cfg *sculptor.Config) [][]string {
	rows := make([][]string, len(cfg.Connections))
	for i, c := range cfg.Connections {
		marker := ""
		if c.Name == cfg.Default {
			marker = "*"
		}
		rows[i] = []string{c.Name, c.Dialect, dburl.Redact(c.URL), marker}
	}
	return rows
}

// pingCmd implements "sculptor ping [name]".
func pingCmd(args []string) {
	cfg := loadConfig()

	targets := cfg.Connections
	if len(args) > 0 {
		c, ok := cfg.Connection(args[0])
		if !ok {
			cli.Fatalf("unknown connection: %s", args[0])
		}
		targets = []sculptor.ConnectionConfig{c}
	}
	if len(targets) == 0 {
		cli.Fatal("no connections configured")
	}

	failed := 0
	for _, c := range targets {
		if err := ping(c.URL); err != nil {
			cli.Warnf("%s: %v", c.Name, err)
			failed++
			continue
		}
		cli.Successf("%s (%s)", c.Name, c.Dialect)
	}
	if failed > 0 {
		cli.Fatalf("%d of %d connections failed", failed, len(targets))
	}
}

func ping(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	conn, err := database.Open(ctx, url)
	if err != nil {
		return err
	}
	return conn.Close()
}
