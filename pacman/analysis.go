package pacman

import (
	"os"
	"path"
	"strconv"

	"github.com/zeu5/maze-mdp/maze"
	"github.com/zeu5/maze-mdp/types"
	"github.com/zeu5/maze-mdp/util"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func finalState(trace *types.Trace) (*State, bool) {
	_, _, last, ok := trace.Last()
	if !ok {
		return nil, false
	}
	s, ok := last.(*State)
	return s, ok
}

// ScoreDataSet holds the outcome of every episode of one experiment
type ScoreDataSet struct {
	Scores []float64 `json:"scores"`
	Ticks  []float64 `json:"ticks"`
	Wins   []bool    `json:"wins"`
}

// ScoreAnalyzer records the final score of every episode
type ScoreAnalyzer struct {
	data *ScoreDataSet
}

var _ types.Analyzer = &ScoreAnalyzer{}

func NewScoreAnalyzer() *ScoreAnalyzer {
	a := &ScoreAnalyzer{}
	a.Reset()
	return a
}

func (a *ScoreAnalyzer) Analyze(_, _, _ int, _ string, trace *types.Trace) {
	s, ok := finalState(trace)
	if !ok {
		// nothing was played, count it as a lost episode with no score
		a.data.Scores = append(a.data.Scores, 0)
		a.data.Ticks = append(a.data.Ticks, 0)
		a.data.Wins = append(a.data.Wins, false)
		return
	}
	a.data.Scores = append(a.data.Scores, float64(s.Score))
	a.data.Ticks = append(a.data.Ticks, float64(s.Ticks))
	a.data.Wins = append(a.data.Wins, s.Won)
}

func (a *ScoreAnalyzer) DataSet() types.DataSet {
	return a.data
}

func (a *ScoreAnalyzer) Reset() {
	a.data = &ScoreDataSet{
		Scores: make([]float64, 0),
		Ticks:  make([]float64, 0),
		Wins:   make([]bool, 0),
	}
}

// Summary of a ScoreDataSet
type Summary struct {
	ID         string  `json:"id"`
	Run        int     `json:"run"`
	Experiment string  `json:"experiment"`
	Episodes   int     `json:"episodes"`
	MeanScore  float64 `json:"mean_score"`
	StdScore   float64 `json:"std_score"`
	MeanTicks  float64 `json:"mean_ticks"`
	WinRate    float64 `json:"win_rate"`
}

// Summarize computes the mean score, ticks and the win rate of a dataset
func Summarize(run int, name string, ds *ScoreDataSet) Summary {
	s := Summary{Run: run, Experiment: name, Episodes: len(ds.Scores)}
	if s.Episodes == 0 {
		return s
	}
	s.MeanScore, s.StdScore = stat.MeanStdDev(ds.Scores, nil)
	s.MeanTicks = stat.Mean(ds.Ticks, nil)
	wins := 0
	for _, w := range ds.Wins {
		if w {
			wins++
		}
	}
	s.WinRate = float64(wins) / float64(s.Episodes)
	return s
}

// ScoreComparator plots the score per episode of all experiments of a run
// and writes their summaries next to the plot
func ScoreComparator(plotPath string) types.Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run, _ int, names []string, ds []types.DataSet) {
		p := plot.New()
		p.Title.Text = "Score"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Final score"
		summaries := make([]Summary, 0, len(names))
		for i := 0; i < len(names); i++ {
			data := ds[i].(*ScoreDataSet)
			summaries = append(summaries, Summarize(run, names[i], data))

			points := make(plotter.XYs, len(data.Scores))
			for j, v := range data.Scores {
				points[j] = plotter.XY{X: float64(j), Y: v}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_score.png"))
		util.WriteJSON(path.Join(plotPath, strconv.Itoa(run)+"_score.json"), summaries)
	}
}

// VisitDataSet counts the agent visits per cell
type VisitDataSet struct {
	Visits map[int]map[int]int `json:"visits"`
	Height int                 `json:"height"`
	Width  int                 `json:"width"`
}

var _ plotter.GridXYZ = &VisitDataSet{}

func (g *VisitDataSet) Dims() (int, int) {
	return g.Width, g.Height
}

func (g *VisitDataSet) Z(c, r int) float64 {
	return float64(g.Visits[c][r])
}

func (g *VisitDataSet) X(c int) float64 {
	return float64(c)
}

func (g *VisitDataSet) Y(r int) float64 {
	return float64(r)
}

func (g *VisitDataSet) Min() float64 {
	return 0.0
}

func (g *VisitDataSet) Max() float64 {
	max := 0
	for _, vals := range g.Visits {
		for _, count := range vals {
			if count > max {
				max = count
			}
		}
	}
	return float64(max)
}

func (g *VisitDataSet) add(p maze.Position) {
	if _, ok := g.Visits[p.X]; !ok {
		g.Visits[p.X] = make(map[int]int)
	}
	g.Visits[p.X][p.Y] += 1
}

// VisitAnalyzer accumulates the cells the agent moved through over all
// episodes of an experiment
type VisitAnalyzer struct {
	width, height int
	data          *VisitDataSet
}

var _ types.Analyzer = &VisitAnalyzer{}

func NewVisitAnalyzer(layout *maze.Layout) *VisitAnalyzer {
	a := &VisitAnalyzer{width: layout.Width, height: layout.Height}
	a.Reset()
	return a
}

func (a *VisitAnalyzer) Analyze(_, _, _ int, _ string, trace *types.Trace) {
	for i := 0; i < trace.Len(); i++ {
		state, _, _, _ := trace.Get(i)
		a.data.add(state.(*State).Obs.Position)
	}
	if s, ok := finalState(trace); ok {
		a.data.add(s.Obs.Position)
	}
}

func (a *VisitAnalyzer) DataSet() types.DataSet {
	return a.data
}

func (a *VisitAnalyzer) Reset() {
	a.data = &VisitDataSet{
		Visits: make(map[int]map[int]int),
		Height: a.height,
		Width:  a.width,
	}
}

// VisitComparator saves one heat map per experiment
func VisitComparator(plotPath string) types.Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run, _ int, names []string, ds []types.DataSet) {
		for i := 0; i < len(names); i++ {
			name := names[i]
			dataSet := ds[i].(*VisitDataSet)
			prefix := path.Join(plotPath, strconv.Itoa(run)+"_"+name+"_visits")

			util.WriteJSON(prefix+".json", dataSet)

			p := plot.New()
			p.Title.Text = name
			p.Add(plotter.NewHeatMap(dataSet, palette.Heat(20, 1)))
			p.Save(6*vg.Inch, 4*vg.Inch, prefix+".png")
		}
	}
}
