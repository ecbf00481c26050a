package benchmarks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeu5/maze-mdp/maze"
)

// loadLayout reads a layout file when one is given, else a builtin layout
func loadLayout(name, file string) (*maze.Layout, error) {
	if file == "" {
		return maze.BuiltinLayout(name)
	}
	bs, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	return maze.ParseLayout(strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)), string(bs))
}
