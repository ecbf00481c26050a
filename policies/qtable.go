package policies

import (
	"math"

	"github.com/zeu5/maze-mdp/util"
)

// QTable maps state hashes to action values
type QTable struct {
	table map[string]map[string]float64
}

func NewQTable() *QTable {
	return &QTable{
		table: make(map[string]map[string]float64),
	}
}

// Get returns the value of (state, action), initialising it to def
func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

func (q *QTable) HasState(state string) bool {
	_, ok := q.table[state]
	return ok
}

// Max value over the known actions of state, def if none is known
func (q *QTable) Max(state string, def float64) (string, float64) {
	maxAction := ""
	maxVal := math.Inf(-1)
	for a, val := range q.table[state] {
		if val > maxVal || (val == maxVal && a < maxAction) {
			maxAction = a
			maxVal = val
		}
	}
	if maxAction == "" {
		return "", def
	}
	return maxAction, maxVal
}

// MaxAmong returns the best of the given actions, in order on ties.
// Unknown actions count as def.
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	maxAction := ""
	maxVal := math.Inf(-1)
	for _, a := range actions {
		val := q.Get(state, a, def)
		if val > maxVal {
			maxAction = a
			maxVal = val
		}
	}
	return maxAction, maxVal
}

func (q *QTable) Record(path string) {
	util.WriteJSON(path+".json", q.table)
}
