package types

import (
	"os"
	"path"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// Run, episode, starting timestep, experiment, trace
	Analyze(int, int, int, string, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, total episodes, experiment names, datasets
type Comparator func(int, int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(_, _ int, _ []string, _ []DataSet) {}
}

// ChainComparators runs all the comparators on the same datasets
func ChainComparators(comparators ...Comparator) Comparator {
	return func(run, episodes int, names []string, ds []DataSet) {
		for _, c := range comparators {
			c(run, episodes, names, ds)
		}
	}
}

// CoverageAnalyzer counts the distinct abstract states seen so far, after
// every episode
type CoverageAnalyzer struct {
	abstractor   StateAbstractor
	uniqueStates map[string]bool
	coverage     []int
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer(abstractor StateAbstractor) *CoverageAnalyzer {
	return &CoverageAnalyzer{
		abstractor:   abstractor,
		uniqueStates: make(map[string]bool),
		coverage:     make([]int, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_, _, _ int, _ string, trace *Trace) {
	for j := 0; j < trace.Len(); j++ {
		s, _, ns, _ := trace.Get(j)
		c.uniqueStates[c.abstractor(s)] = true
		c.uniqueStates[c.abstractor(ns)] = true
	}
	c.coverage = append(c.coverage, len(c.uniqueStates))
}

// DataSet is a []int with the cumulative coverage per episode
func (c *CoverageAnalyzer) DataSet() DataSet {
	out := make([]int, len(c.coverage))
	copy(out, c.coverage)
	return out
}

func (c *CoverageAnalyzer) Reset() {
	c.uniqueStates = make(map[string]bool)
	c.coverage = make([]int, 0)
}

// CoveragePlotter draws the coverage of all experiments of a run in one plot
func CoveragePlotter(plotPath string) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run, _ int, s []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "States covered"
		for i := 0; i < len(s); i++ {
			uniqueStates := ds[i].([]int)
			points := make(plotter.XYs, len(uniqueStates))
			for j, v := range uniqueStates {
				points[j] = plotter.XY{
					X: float64(j),
					Y: float64(v),
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(s[i], line)
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_coverage.png"))
	}
}
