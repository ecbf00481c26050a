package mdp

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownMaze     = errors.New("no tunable profile for maze")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrDuplicateLayout = errors.New("duplicate profile")
)

// Profile holds the tunables the agent uses on one known maze
type Profile struct {
	Name         string  `yaml:"name" json:"name"`
	Width        int     `yaml:"width" json:"width"`
	Height       int     `yaml:"height" json:"height"`
	Cells        int     `yaml:"cells" json:"cells"`
	Discount     float64 `yaml:"discount" json:"discount"`
	MovementCost float64 `yaml:"movement_cost" json:"movement_cost"`
	HazardRadius int     `yaml:"hazard_radius" json:"hazard_radius"`
}

func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProfile)
	}
	if p.Width <= 0 || p.Height <= 0 || p.Cells <= 0 {
		return fmt.Errorf("%w: %s has non positive dimensions", ErrInvalidProfile, p.Name)
	}
	if p.Cells > p.Width*p.Height {
		return fmt.Errorf("%w: %s has more cells than fit in %dx%d", ErrInvalidProfile, p.Name, p.Width, p.Height)
	}
	if p.Discount < 0 || p.Discount >= 1 || math.IsNaN(p.Discount) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, p.Name, ErrInvalidDiscount)
	}
	if p.MovementCost < 0 {
		return fmt.Errorf("%w: %s has negative movement cost", ErrInvalidProfile, p.Name)
	}
	if p.HazardRadius < 0 {
		return fmt.Errorf("%w: %s has negative hazard radius", ErrInvalidProfile, p.Name)
	}
	return nil
}

// ProfileTable enumerates the recognised mazes
type ProfileTable struct {
	profiles map[string]Profile
}

// DefaultProfiles are the two mazes the agent was tuned for
func DefaultProfiles() *ProfileTable {
	t := &ProfileTable{profiles: make(map[string]Profile)}
	for _, p := range []Profile{
		{Name: "mediumClassic", Width: 20, Height: 11, Cells: 106, Discount: 0.7, MovementCost: 0.11, HazardRadius: 4},
		{Name: "smallGrid", Width: 7, Height: 7, Cells: 18, Discount: 0.7, MovementCost: 0.07, HazardRadius: 1},
	} {
		t.profiles[p.Name] = p
	}
	return t
}

// Set adds or replaces a profile
func (t *ProfileTable) Set(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for name, other := range t.profiles {
		if name != p.Name && other.Width == p.Width && other.Height == p.Height && other.Cells == p.Cells {
			return fmt.Errorf("%w: %s and %s describe the same maze", ErrDuplicateLayout, p.Name, name)
		}
	}
	t.profiles[p.Name] = p
	return nil
}

// ByName looks a profile up by maze name
func (t *ProfileTable) ByName(name string) (Profile, error) {
	p, ok := t.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown maze %q", ErrUnknownMaze, name)
	}
	return p, nil
}

// Resolve finds the profile matching the maze dimensions and its number of
// traversable cells
func (t *ProfileTable) Resolve(width, height, cells int) (Profile, error) {
	for _, p := range t.profiles {
		if p.Width == width && p.Height == height && p.Cells == cells {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %dx%d maze with %d traversable cells", ErrUnknownMaze, width, height, cells)
}

// CheckSize rejects a width x height maze no profile describes. With a name
// only that profile is considered.
func (t *ProfileTable) CheckSize(name string, width, height int) error {
	if name != "" {
		p, err := t.ByName(name)
		if err != nil {
			return err
		}
		if p.Width != width || p.Height != height {
			return fmt.Errorf("%w: profile %s expects a %dx%d maze, got %dx%d", ErrUnknownMaze, p.Name, p.Width, p.Height, width, height)
		}
		return nil
	}
	for _, p := range t.profiles {
		if p.Width == width && p.Height == height {
			return nil
		}
	}
	return fmt.Errorf("%w: %dx%d maze", ErrUnknownMaze, width, height)
}

// Profiles lists the table sorted by name
func (t *ProfileTable) Profiles() []Profile {
	out := make([]Profile, 0, len(t.profiles))
	for _, p := range t.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads profiles from a YAML file on top of the defaults
//
//	profiles:
//	  - name: smallGrid
//	    width: 7
//	    height: 7
//	    cells: 18
//	    discount: 0.7
//	    movement_cost: 0.07
//	    hazard_radius: 1
func LoadProfiles(path string) (*ProfileTable, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	return ParseProfiles(bs)
}

// ParseProfiles is LoadProfiles on an in memory document
func ParseProfiles(bs []byte) (*ProfileTable, error) {
	var f profileFile
	if err := yaml.Unmarshal(bs, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	t := DefaultProfiles()
	for _, p := range f.Profiles {
		if err := t.Set(p); err != nil {
			return nil, err
		}
	}
	return t, nil
}
