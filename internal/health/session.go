// ABOUTME: Workout session reconstruction: orders sets for execution.
// ABOUTME: Supersets round-robin across member exercises; standalone sets run straight through.
package health

import (
	"sort"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// SessionStep is one set to perform, paired with its exercise. Steps come
// out in execution order: superset members alternate set by set, everything
// else runs its sets back to back.
type SessionStep struct {
	Exercise      models.Exercise `json:"exercise"`
	Set           models.Set      `json:"set"`
	SupersetName  string          `json:"supersetName,omitempty"`
	IsReplacement bool            `json:"isReplacement,omitempty"`
}

// lane is one exercise's contribution to the session: a contiguous run of
// its sets sharing a superset name (or no name).
type lane struct {
	exercise models.Exercise
	sets     []models.Set
	superset string
	firstOrd int
}

// BuildSession flattens resolved workout slots into execution order.
// Superset groups come first, ordered by the set order of their earliest
// member, with sets interleaved round-robin across members (a1, b1, a2,
// b2, ...); when members have unequal set counts the longer ones keep
// going after the shorter run out. Standalone exercises are appended
// afterward, sorted by their earliest set order.
func BuildSession(exercises []models.ExerciseWithSets) []SessionStep {
	var lanes []*lane
	for _, slot := range exercises {
		byName := make(map[string]*lane)
		for _, s := range slot.Sets {
			l, ok := byName[s.SupersetName]
			if !ok {
				l = &lane{
					exercise: slot.Exercise,
					superset: s.SupersetName,
					firstOrd: s.SetOrder,
				}
				byName[s.SupersetName] = l
				lanes = append(lanes, l)
			}
			l.sets = append(l.sets, s)
		}
	}

	sort.SliceStable(lanes, func(i, j int) bool {
		return lanes[i].firstOrd < lanes[j].firstOrd
	})

	var steps []SessionStep
	emitted := make(map[string]bool)
	for _, l := range lanes {
		if l.superset == "" || emitted[l.superset] {
			continue
		}
		emitted[l.superset] = true

		var members []*lane
		for _, m := range lanes {
			if m.superset == l.superset {
				members = append(members, m)
			}
		}
		max := 0
		for _, m := range members {
			if len(m.sets) > max {
				max = len(m.sets)
			}
		}
		for i := 0; i < max; i++ {
			for _, m := range members {
				if i >= len(m.sets) {
					continue
				}
				steps = append(steps, SessionStep{
					Exercise:      m.exercise,
					Set:           m.sets[i],
					SupersetName:  l.superset,
					IsReplacement: m.exercise.IsReplacement,
				})
			}
		}
	}

	for _, l := range lanes {
		if l.superset != "" {
			continue
		}
		for _, s := range l.sets {
			steps = append(steps, SessionStep{
				Exercise:      l.exercise,
				Set:           s,
				IsReplacement: l.exercise.IsReplacement,
			})
		}
	}
	return steps
}
