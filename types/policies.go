package types

import (
	"math"

	"github.com/zeu5/maze-mdp/util"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

type Policy interface {
	UpdateIteration(int, *Trace)
	NextAction(int, State, []Action) (Action, bool)
	Update(int, State, Action, State)
	Reset()
	// Record the policy under the given path prefix
	Record(string)
}

// SoftMaxNegPolicy is a Q-learning explorer that gets a reward of -1 on every
// step and samples actions with a softmax over the Q values. Frequently taken
// actions become less likely.
type SoftMaxNegPolicy struct {
	QTable map[string]map[string]float64
	alpha  float64
	gamma  float64
	src    rand.Source
}

func NewSoftMaxNegPolicy(alpha, gamma float64, seed uint64) *SoftMaxNegPolicy {
	return &SoftMaxNegPolicy{
		QTable: make(map[string]map[string]float64),
		alpha:  alpha,
		gamma:  gamma,
		src:    rand.NewSource(seed),
	}
}

var _ Policy = &SoftMaxNegPolicy{}

func (s *SoftMaxNegPolicy) Reset() {
	s.QTable = make(map[string]map[string]float64)
}

func (s *SoftMaxNegPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (s *SoftMaxNegPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	stateHash := state.Hash()

	if _, ok := s.QTable[stateHash]; !ok {
		s.QTable[stateHash] = make(map[string]float64)
	}

	for _, a := range actions {
		aName := a.Hash()
		if _, ok := s.QTable[stateHash][aName]; !ok {
			s.QTable[stateHash][aName] = 0
		}
	}

	sum := float64(0)
	weights := make([]float64, len(actions))
	vals := make([]float64, len(actions))

	for i, action := range actions {
		val := s.QTable[stateHash][action.Hash()]
		exp := math.Exp(val)
		vals[i] = exp
		sum += exp
	}

	for i, v := range vals {
		weights[i] = v / sum
	}
	i, ok := sampleuv.NewWeighted(weights, s.src).Take()
	if !ok {
		return nil, false
	}
	return actions[i], true
}

func (s *SoftMaxNegPolicy) Update(step int, state State, action Action, nextState State) {
	stateHash := state.Hash()

	nextStateHash := nextState.Hash()
	actionKey := action.Hash()
	if _, ok := s.QTable[stateHash]; !ok {
		return
	}
	if _, ok := s.QTable[stateHash][actionKey]; !ok {
		return
	}
	curVal := s.QTable[stateHash][actionKey]
	max := float64(0)
	if _, ok := s.QTable[nextStateHash]; ok {
		for _, val := range s.QTable[nextStateHash] {
			if val > max {
				max = val
			}
		}
	}
	nextVal := (1-s.alpha)*curVal + s.alpha*(-1+s.gamma*max)
	s.QTable[stateHash][actionKey] = nextVal
}

func (s *SoftMaxNegPolicy) Record(path string) {
	util.WriteJSON(path+".json", s.QTable)
}

type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

func NewSeededRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {

}

func (r *RandomPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (r *RandomPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	i := r.rand.Intn(len(actions))
	return actions[i], true
}

func (r *RandomPolicy) Update(_ int, _ State, _ Action, _ State) {}

func (r *RandomPolicy) Record(_ string) {}
