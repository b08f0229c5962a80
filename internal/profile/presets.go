package profile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nvandessel/fibertract/internal/tract"
)

func v(n int) *int { return &n }

func spec(kind tract.Kind, count int) TractSpec {
	return TractSpec{Kind: kind, Count: count}
}

// Hand has dense mechanoreception and clean, fast fine-motor control.
func Hand(side string) Profile {
	return Profile{
		Name: side + "_hand",
		Tracts: []TractSpec{
			{Kind: tract.MotorSkeletal, Count: 32, Gain: v(150), Jitter: v(40), Elasticity: v(220), Strength: v(100)},
			spec(tract.MotorSpindle, 16),
			{Kind: tract.Mechanoreceptive, Count: 64, Sensitivity: v(230), Gain: v(110), Jitter: v(30)},
			{Kind: tract.Proprioceptive, Count: 24, Sensitivity: v(200)},
			spec(tract.NociceptiveFast, 8),
			spec(tract.NociceptiveSlow, 4),
		},
	}
}

// Arm trades dexterity for strength and endurance.
func Arm(side string) Profile {
	return Profile{
		Name: side + "_arm",
		Tracts: []TractSpec{
			{Kind: tract.MotorSkeletal, Count: 16, Gain: v(180), Strength: v(160), Endurance: v(150)},
			spec(tract.MotorSpindle, 8),
			{Kind: tract.Mechanoreceptive, Count: 16, Sensitivity: v(150)},
			{Kind: tract.Proprioceptive, Count: 16, Sensitivity: v(180)},
			spec(tract.NociceptiveFast, 8),
			spec(tract.NociceptiveSlow, 4),
			spec(tract.Interoceptive, 4),
		},
	}
}

// Leg is powerful and tireless with coarse, slow control and keen balance.
func Leg(side string) Profile {
	return Profile{
		Name: side + "_leg",
		Tracts: []TractSpec{
			{Kind: tract.MotorSkeletal, Count: 12, Gain: v(200), Strength: v(220), Endurance: v(200), Jitter: v(160), Elasticity: v(140)},
			spec(tract.MotorSpindle, 8),
			{Kind: tract.Mechanoreceptive, Count: 16, Sensitivity: v(120)},
			{Kind: tract.Proprioceptive, Count: 20, Sensitivity: v(220)},
			spec(tract.NociceptiveFast, 8),
			spec(tract.NociceptiveSlow, 4),
			spec(tract.Interoceptive, 8),
		},
	}
}

// VocalTract favors precision over power.
func VocalTract() Profile {
	return Profile{
		Name: "vocal_tract",
		Tracts: []TractSpec{
			{Kind: tract.MotorSkeletal, Count: 24, Gain: v(140), Jitter: v(20), Elasticity: v(250), Strength: v(60), Endurance: v(180)},
			{Kind: tract.Proprioceptive, Count: 16, Sensitivity: v(240)},
			spec(tract.NociceptiveFast, 2),
			spec(tract.Interoceptive, 4),
		},
	}
}

// Gaze has the cleanest, fastest signals and no pain fibers.
func Gaze() Profile {
	return Profile{
		Name: "gaze",
		Tracts: []TractSpec{
			{Kind: tract.MotorSkeletal, Count: 12, Gain: v(140), Jitter: v(15), Elasticity: v(255), Strength: v(40), Endurance: v(220)},
			{Kind: tract.Proprioceptive, Count: 12, Sensitivity: v(250)},
		},
	}
}

// Torso is postural: strong, enduring, coarse, with deep visceral awareness.
func Torso() Profile {
	return Profile{
		Name: "torso",
		Tracts: []TractSpec{
			{Kind: tract.MotorSkeletal, Count: 8, Gain: v(170), Strength: v(200), Endurance: v(230), Jitter: v(160)},
			spec(tract.MotorSpindle, 8),
			{Kind: tract.Mechanoreceptive, Count: 8, Sensitivity: v(100)},
			{Kind: tract.Proprioceptive, Count: 12, Sensitivity: v(180)},
			spec(tract.NociceptiveFast, 4),
			spec(tract.NociceptiveSlow, 8),
			{Kind: tract.Interoceptive, Count: 16, Sensitivity: v(180)},
		},
	}
}

// Sides are the accepted limb sides.
var Sides = []string{"left", "right"}

// PresetNames lists every preset name Lookup accepts, sorted.
func PresetNames() []string {
	var names []string
	for _, side := range Sides {
		names = append(names, side+"_hand", side+"_arm", side+"_leg")
	}
	names = append(names, "vocal_tract", "gaze", "torso")
	slices.Sort(names)
	return names
}

// Lookup resolves a preset by name, such as "left_hand" or "gaze".
func Lookup(name string) (Profile, error) {
	switch name {
	case "vocal_tract":
		return VocalTract(), nil
	case "gaze":
		return Gaze(), nil
	case "torso":
		return Torso(), nil
	}
	side, limb, ok := strings.Cut(name, "_")
	if ok && slices.Contains(Sides, side) {
		switch limb {
		case "hand":
			return Hand(side), nil
		case "arm":
			return Arm(side), nil
		case "leg":
			return Leg(side), nil
		}
	}
	return Profile{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
}

// FullBody returns one of every preset.
func FullBody() []Profile {
	out := make([]Profile, 0, 9)
	for _, name := range PresetNames() {
		p, _ := Lookup(name)
		out = append(out, p)
	}
	return out
}
