package mdp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfiles(t *testing.T) {
	table := DefaultProfiles()

	p, err := table.Resolve(20, 11, 106)
	require.NoError(t, err)
	assert.Equal(t, "mediumClassic", p.Name)
	assert.Equal(t, 0.7, p.Discount)
	assert.Equal(t, 0.11, p.MovementCost)
	assert.Equal(t, 4, p.HazardRadius)

	p, err = table.ByName("smallGrid")
	require.NoError(t, err)
	assert.Equal(t, 0.07, p.MovementCost)
	assert.Equal(t, 1, p.HazardRadius)

	names := []string{}
	for _, p := range table.Profiles() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"mediumClassic", "smallGrid"}, names)
}

func TestUnknownMaze(t *testing.T) {
	table := DefaultProfiles()

	_, err := table.Resolve(20, 11, 105)
	assert.ErrorIs(t, err, ErrUnknownMaze)
	_, err = table.Resolve(3, 1, 3)
	assert.ErrorIs(t, err, ErrUnknownMaze)
	_, err = table.ByName("trickyClassic")
	assert.ErrorIs(t, err, ErrUnknownMaze)
}

func TestSetProfile(t *testing.T) {
	table := DefaultProfiles()

	corridor := Profile{Name: "corridor", Width: 3, Height: 1, Cells: 3, Discount: 0.7, MovementCost: 0.1, HazardRadius: 2}
	require.NoError(t, table.Set(corridor))
	p, err := table.Resolve(3, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, corridor, p)

	alias := corridor
	alias.Name = "hallway"
	assert.ErrorIs(t, table.Set(alias), ErrDuplicateLayout)

	bad := corridor
	bad.Discount = 1
	assert.ErrorIs(t, table.Set(bad), ErrInvalidProfile)
	assert.ErrorIs(t, table.Set(bad), ErrInvalidDiscount)

	bad = corridor
	bad.Cells = 4
	assert.ErrorIs(t, table.Set(bad), ErrInvalidProfile)

	bad = corridor
	bad.HazardRadius = -1
	assert.ErrorIs(t, table.Set(bad), ErrInvalidProfile)
}

func TestParseProfiles(t *testing.T) {
	doc := `
profiles:
  - name: smallGrid
    width: 7
    height: 7
    cells: 18
    discount: 0.9
    movement_cost: 0.05
    hazard_radius: 2
  - name: corridor
    width: 3
    height: 1
    cells: 3
    discount: 0.7
    movement_cost: 0.1
    hazard_radius: 2
`
	table, err := ParseProfiles([]byte(doc))
	require.NoError(t, err)
	assert.Len(t, table.Profiles(), 3)

	p, err := table.ByName("smallGrid")
	require.NoError(t, err)
	assert.Equal(t, 0.9, p.Discount)
	assert.Equal(t, 2, p.HazardRadius)

	_, err = table.ByName("mediumClassic")
	assert.NoError(t, err)

	_, err = ParseProfiles([]byte("profiles:\n  - name: x\n    width: 1\n    height: 1\n    cells: 1\n    discount: 1.5\n"))
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = ParseProfiles([]byte("profiles: ["))
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: corridor\n    width: 3\n    height: 1\n    cells: 3\n    discount: 0.5\n"), 0o644))

	table, err := LoadProfiles(path)
	require.NoError(t, err)
	p, err := table.Resolve(3, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.Discount)

	_, err = LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCheckSize(t *testing.T) {
	table := DefaultProfiles()
	assert.NoError(t, table.CheckSize("", 20, 11))
	assert.NoError(t, table.CheckSize("smallGrid", 7, 7))

	assert.ErrorIs(t, table.CheckSize("", 4000, 4000), ErrUnknownMaze)
	assert.ErrorIs(t, table.CheckSize("smallGrid", 20, 11), ErrUnknownMaze)
	assert.ErrorIs(t, table.CheckSize("noSuchMaze", 7, 7), ErrUnknownMaze)
}
