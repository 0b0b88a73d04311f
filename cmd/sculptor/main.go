package main

import (
	"fmt"
	"os"
)

const usage = `sculptor - An active-record ORM toolkit

Usage:
  sculptor <command> [arguments]

Commands:
  init <database-url>   Create sculptor.ini with a default connection
  connections           List configured connections
  ping [name]           Open and ping one or all connections
  compile <table> ...   Print the compiled SELECT without touching a database
  select <table> ...    Run a SELECT and print the rows

Query arguments (compile, select):
  <table> [column<op>value ...] [--limit n] [--columns a,b]
  Operators: = <> != < <= > >=

Options:
  -h, --help    Show this help message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "-h", "--help", "help":
		fmt.Print(usage)
		os.Exit(0)

	case "init":
		initCmd(args)

	case "connections":
		connectionsCmd()

	case "ping":
		pingCmd(args)

	case "compile":
		compileCmd(args)

	case "select":
		selectCmd(args)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", cmd)
		fmt.Fprintln(os.Stderr, "Run 'sculptor --help' for usage.")
		os.Exit(1)
	}
}
