package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/handiism/metarenamer/internal/rename"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiDim    = "\x1b[2m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressPrinter writes manager events line by line. Events may arrive
// from several goroutines.
type progressPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	verbose  bool
	colorize bool
}

func newProgressPrinter(out io.Writer, verbose bool) *progressPrinter {
	return &progressPrinter{out: out, verbose: verbose, colorize: shouldColorize(out)}
}

func (p *progressPrinter) handle(event rename.ProgressEvent) {
	if event.Level == rename.LevelVerbose && !p.verbose {
		return
	}

	prefix, color := "   ", ansiDim
	switch event.Level {
	case rename.LevelError:
		prefix, color = "ERR", ansiRed
	case rename.LevelWarning:
		prefix, color = "WRN", ansiYellow
	case rename.LevelSuccess:
		prefix, color = " OK", ansiGreen
	case rename.LevelInfo:
		prefix, color = "INF", ansiBlue
	}
	if p.colorize {
		prefix = color + prefix + ansiReset
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", prefix, event.Message)
}
