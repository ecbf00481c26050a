package policies

import (
	"github.com/zeu5/maze-mdp/types"
	"golang.org/x/exp/rand"
)

// BonusPolicyGreedy explores by rewarding rarely taken (state, action) pairs
// with 1/visits. It ignores the game score and only serves as an exploration
// baseline.
type BonusPolicyGreedy struct {
	qTable   *QTable
	alpha    float64
	discount float64
	visits   *QTable
	epsilon  float64
	rand     *rand.Rand
}

var _ types.Policy = &BonusPolicyGreedy{}

func NewBonusPolicyGreedy(alpha, discount, epsilon float64, seed uint64) *BonusPolicyGreedy {
	return &BonusPolicyGreedy{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		visits:   NewQTable(),
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
	}
}

func (b *BonusPolicyGreedy) Record(path string) {
	b.qTable.Record(path)
}

func (b *BonusPolicyGreedy) Reset() {
	b.qTable = NewQTable()
	b.visits = NewQTable()
}

func (b *BonusPolicyGreedy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if b.rand.Float64() < b.epsilon {
		i := b.rand.Intn(len(actions))
		return actions[i], true
	}

	actionsMap := make(map[string]types.Action)
	availableActions := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		availableActions[i] = aHash
	}
	maxAction, _ := b.qTable.MaxAmong(state.Hash(), availableActions, 1)
	if maxAction == "" {
		return nil, false
	}
	return actionsMap[maxAction], true
}

func (b *BonusPolicyGreedy) Update(_ int, _ types.State, _ types.Action, _ types.State) {}

func (b *BonusPolicyGreedy) update(state types.State, action types.Action, nextState types.State, last bool) {
	stateHash := state.Hash()
	actionHash := action.Hash()
	t := b.visits.Get(stateHash, actionHash, 0) + 1
	b.visits.Set(stateHash, actionHash, t)

	nextStateVal := 0.0
	// the value of the last next state is not bootstrapped
	if !last {
		_, nextStateVal = b.qTable.Max(nextState.Hash(), 1)
	}
	curVal := b.qTable.Get(stateHash, actionHash, 1)
	newVal := (1-b.alpha)*curVal + b.alpha*max(1/t, b.discount*nextStateVal)
	b.qTable.Set(stateHash, actionHash, newVal)
}

// UpdateIteration replays the episode backwards
func (b *BonusPolicyGreedy) UpdateIteration(_ int, trace *types.Trace) {
	lastIndex := trace.Len() - 1
	for i := lastIndex; i > -1; i-- {
		state, action, nextState, ok := trace.Get(i)
		if ok {
			b.update(state, action, nextState, i == lastIndex)
		}
	}
}
