package bot

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Preset selects how much of the evaluator runs for a bot seat.
type Preset struct {
	Name string
	// Heuristic enables the scoring passes. Without it every legal move ties.
	Heuristic bool
	// Lookahead enables the tie-break and the one-ply opponent penalty.
	Lookahead bool
	// Rating is the approximate strength used for player rating updates.
	Rating int
}

const DefaultPresetName = "hard"

var ErrUnknownPreset = errors.New("unknown checkers preset")

var presetMu sync.RWMutex

var DefaultPresets = map[string]Preset{
	"easy":   {Name: "easy", Rating: 800},
	"normal": {Name: "normal", Heuristic: true, Rating: 1100},
	"hard":   {Name: "hard", Heuristic: true, Lookahead: true, Rating: 1400},
}

func GetPreset(name string) (Preset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		name = DefaultPresetName
	case "random", "beginner":
		name = "easy"
	case "greedy", "intermediate":
		name = "normal"
	case "expert":
		name = "hard"
	}
	presetMu.RLock()
	p, ok := DefaultPresets[name]
	presetMu.RUnlock()
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return p, nil
}

// RegisterPreset adds or replaces a preset.
func RegisterPreset(p Preset) error {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		return fmt.Errorf("preset name required")
	}
	if p.Lookahead && !p.Heuristic {
		return fmt.Errorf("preset %s: lookahead requires heuristic scoring", name)
	}
	p.Name = name
	presetMu.Lock()
	DefaultPresets[name] = p
	presetMu.Unlock()
	return nil
}

// PresetNames lists the registered presets ordered by rating.
func PresetNames() []string {
	presetMu.RLock()
	defer presetMu.RUnlock()
	names := make([]string, 0, len(DefaultPresets))
	for n := range DefaultPresets {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := DefaultPresets[names[i]].Rating, DefaultPresets[names[j]].Rating
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}
