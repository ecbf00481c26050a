package types

import (
	"fmt"
	"io"
	"sync"

	"github.com/gosuri/uilive"
)

// ProgressPrinter rewrites a single status line in place on the terminal
type ProgressPrinter struct {
	mu     sync.Mutex
	writer *uilive.Writer
}

func NewProgressPrinter(out io.Writer) *ProgressPrinter {
	writer := uilive.New()
	writer.Out = out
	return &ProgressPrinter{writer: writer}
}

// Print replaces the current status line
func (p *ProgressPrinter) Print(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.writer, format+"\n", args...)
	p.writer.Flush()
}
