package main

import (
	"fmt"
	"os"

	"github.com/rendis/gridplaces/internal/tui"
	"github.com/rendis/gridplaces/internal/tui/views"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[0] != "" {
		var err error
		switch os.Args[1] {
		case "scan":
			err = runScan(os.Args[2:])
		case "upload":
			err = runUpload(os.Args[2:])
		case "export":
			err = runExport(os.Args[2:])
		case "version":
			fmt.Println("gridplaces " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		default:
			printUsage()
			os.Exit(2)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// No subcommand → launch TUI
	views.Version = version
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `gridplaces - grid search over the places API

Usage:
  gridplaces                Launch interactive TUI
  gridplaces scan [flags]   Run headless scan
  gridplaces upload [flags] Upload a result table to a spreadsheet tab
  gridplaces export [flags] Export a result table to CSV or GeoJSON
  gridplaces version        Show version

Run 'gridplaces <command> --help' for flags.
`)
}
