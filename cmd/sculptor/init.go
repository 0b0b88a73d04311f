package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelmaurice/sculptor"
	"github.com/samuelmaurice/sculptor/cli"
	"github.com/samuelmaurice/sculptor/dburl"
	"github.com/samuelmaurice/sculptor/inifile"
)

// initCmd implements "sculptor init <database-url>".
func initCmd(args []string) {
	if len(args) != 1 {
		cli.Fatal("'sculptor init' requires a database URL\n\nUsage: sculptor init <database-url>")
	}

	cwd, err := os.Getwd()
	if err != nil {
		cli.FatalErr("failed to get current directory", err)
	}

	path, err := writeInitConfig(cwd, args[0])
	if err != nil {
		cli.FatalErr("failed to create "+sculptor.ConfigFilename, err)
	}

	cli.Successf("Created %s", filepath.Base(path))
	cli.Infof("  [connection.%s] url = %s", sculptor.DefaultConnectionName, dburl.Redact(args[0]))
}

// writeInitConfig writes a sculptor.ini holding dbURL as the default
// connection. An existing file is left untouched.
func writeInitConfig(dir, dbURL string) (string, error) {
	if _, err := dburl.Resolve(dbURL); err != nil {
		return "", err
	}

	path := filepath.Join(dir, sculptor.ConfigFilename)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}

	f := &inifile.File{}
	f.Set("sculptor", "default", sculptor.DefaultConnectionName)
	f.Set("sculptor", "debug", "false")
	f.Set("sculptor", "log", "json")
	f.Set("connection."+sculptor.DefaultConnectionName, "url", dbURL)

	if err := f.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}
