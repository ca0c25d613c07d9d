package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvail/promptree/internal/app"
	"github.com/nvail/promptree/internal/index"
	"github.com/nvail/promptree/internal/logging"
)

func main() {
	// Default to current directory if no args provided
	folders := os.Args[1:]
	if len(folders) == 0 {
		folders = []string{"."}
	}

	first, err := filepath.Abs(folders[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving %s: %v\n", folders[0], err)
		os.Exit(1)
	}

	// The TUI owns the terminal; logs and the index live next to the project
	logger := logging.NewFileLogger(filepath.Join(first, ".promptree.log"), os.Getenv("PROMPTREE_DEBUG") != "")
	defer logger.Sync()

	svc, err := index.Open(filepath.Join(first, ".promptree.db"), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening index: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	p := tea.NewProgram(
		app.NewModel(folders, svc, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
