package main

import (
	"fmt"
	"os"

	"github.com/handiism/metarenamer/internal/config"
	"github.com/handiism/metarenamer/internal/tui"
)

func main() {
	settings, err := config.Load(config.DefaultPath())
	if err == nil {
		err = settings.ApplyEnv(".env")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
