package mcp

import "time"

// MaxTicksPerCall bounds fibertract_tick.
const MaxTicksPerCall = 1000

// TickInput defines the input for fibertract_tick tool.
type TickInput struct {
	Ticks      int                    `json:"ticks,omitempty" jsonschema:"Number of ticks to run with the same inputs (default 1, max 1000)"`
	Adrenaline int                    `json:"adrenaline,omitempty" jsonschema:"Adrenaline level 0-255 released on every tick (0 releases none)"`
	Inputs     map[string]BundleInput `json:"inputs,omitempty" jsonschema:"Inputs keyed by bundle name; bundles left out rest"`
}

// BundleInput is one bundle's input. A missing sequence rests that
// direction.
type BundleInput struct {
	Motor   []int   `json:"motor,omitempty" jsonschema:"Signed motor commands, one per efferent tract, from -255 to 255"`
	Sensory []int32 `json:"sensory,omitempty" jsonschema:"Stimulus readings, one per afferent tract"`
}

// TickOutput defines the output for fibertract_tick tool.
type TickOutput struct {
	Ticks     int                     `json:"ticks" jsonschema:"Ticks run by this call"`
	BodyTicks uint64                  `json:"body_ticks" jsonschema:"Ticks the body has run in total"`
	Outputs   map[string]BundleOutput `json:"outputs" jsonschema:"Outputs of the last tick, keyed by bundle name"`
	Pain      []PainEvent             `json:"pain,omitempty" jsonschema:"Pain events of the last tick, by bundle then tract"`
	PainTotal int                     `json:"pain_total" jsonschema:"Pain events over all ticks of this call"`
	Urgent    int                     `json:"urgent" jsonschema:"Urgent pain events over all ticks of this call"`
	Message   string                  `json:"message"`
}

// BundleOutput is one bundle's output for a tick.
type BundleOutput struct {
	Motor   []int   `json:"motor"`
	Sensory []int32 `json:"sensory"`
}

// PainEvent is the wire form of a pain event.
type PainEvent struct {
	Bundle      string `json:"bundle"`
	Tract       int    `json:"tract"`
	Source      string `json:"source"`
	Intensity   int32  `json:"intensity"`
	Onset       int32  `json:"onset"`
	Duration    uint32 `json:"duration"`
	Habituating bool   `json:"habituating"`
	Salience    int64  `json:"salience"`
	Urgent      bool   `json:"urgent"`
}

// InspectInput defines the input for fibertract_inspect tool.
type InspectInput struct {
	Bundle string `json:"bundle,omitempty" jsonschema:"Bundle to inspect; empty lists every bundle"`
	Tract  *int   `json:"tract,omitempty" jsonschema:"Tract index within the bundle; omitted shows every tract"`
}

// InspectOutput defines the output for fibertract_inspect tool.
type InspectOutput struct {
	Bundles    []BundleSummary  `json:"bundles,omitempty" jsonschema:"Bundle summaries"`
	Tracts     []TractView      `json:"tracts,omitempty" jsonschema:"Tract state of the inspected bundle"`
	Modulation map[string]uint8 `json:"modulation,omitempty" jsonschema:"Chemical levels of the inspected bundle"`
}

// BundleSummary is a one-line view of a bundle.
type BundleSummary struct {
	Name     string `json:"name"`
	Tracts   int    `json:"tracts"`
	Motor    int    `json:"motor"`
	Sensory  int    `json:"sensory"`
	Ticks    uint64 `json:"ticks"`
	Active   bool   `json:"active"`
	Activity uint64 `json:"activity"`
}

// TractView is the full state of one tract.
type TractView struct {
	Index      int              `json:"index"`
	Kind       string           `json:"kind"`
	Mode       string           `json:"mode,omitempty"`
	Properties map[string]uint8 `json:"properties"`
	Activity   uint8            `json:"activity"`
	IdleTicks  uint32           `json:"idle_ticks"`
	Streak     uint32           `json:"streak"`
	Lifetime   uint64           `json:"lifetime"`
	LastOutput int64            `json:"last_output"`
	PainTrace  []int32          `json:"pain_trace,omitempty"`
}

// ModulateInput defines the input for fibertract_modulate tool.
type ModulateInput struct {
	Bundle   string `json:"bundle,omitempty" jsonschema:"Bundle to modulate; empty applies to every bundle"`
	Chemical string `json:"chemical,omitempty" jsonschema:"adrenaline, endorphin, cortisol or gaba"`
	Level    int    `json:"level,omitempty" jsonschema:"Level 0-255"`
	Reset    bool   `json:"reset,omitempty" jsonschema:"Clear every chemical instead of applying one"`
}

// ModulateOutput defines the output for fibertract_modulate tool.
type ModulateOutput struct {
	Levels  map[string]map[string]uint8 `json:"levels" jsonschema:"Chemical levels keyed by bundle, then chemical"`
	Message string                      `json:"message"`
}

// SnapshotInput defines the input for fibertract_snapshot tool.
type SnapshotInput struct {
	Label string `json:"label,omitempty" jsonschema:"Optional label for the snapshot"`
	List  bool   `json:"list,omitempty" jsonschema:"List stored snapshots instead of saving one"`
}

// SnapshotOutput defines the output for fibertract_snapshot tool.
type SnapshotOutput struct {
	ID        string         `json:"id,omitempty" jsonschema:"ID of the saved snapshot"`
	Snapshots []SnapshotItem `json:"snapshots,omitempty" jsonschema:"Stored snapshots, newest first"`
	Message   string         `json:"message"`
}

// SnapshotItem provides a list view of a snapshot.
type SnapshotItem struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Bundles   int       `json:"bundles"`
	Tracts    int       `json:"tracts"`
	Ticks     uint64    `json:"ticks"`
}

// RestoreInput defines the input for fibertract_restore tool.
type RestoreInput struct {
	ID string `json:"id,omitempty" jsonschema:"Snapshot ID; empty or 'latest' restores the newest"`
}

// RestoreOutput defines the output for fibertract_restore tool.
type RestoreOutput struct {
	ID      string   `json:"id"`
	Label   string   `json:"label,omitempty"`
	Bundles []string `json:"bundles"`
	Message string   `json:"message"`
}

// PresetsInput defines the input for fibertract_presets tool.
type PresetsInput struct {
	Profiles []string `json:"profiles,omitempty" jsonschema:"Replace the body with fresh bundles of these profiles"`
}

// PresetsOutput defines the output for fibertract_presets tool.
type PresetsOutput struct {
	Profiles []ProfileItem `json:"profiles" jsonschema:"Every known profile"`
	Body     []string      `json:"body" jsonschema:"Bundles of the current body"`
	Message  string        `json:"message"`
}

// ProfileItem describes one profile.
type ProfileItem struct {
	Name   string `json:"name"`
	Tracts int    `json:"tracts"`
	Preset bool   `json:"preset"`
}
