package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/modulation"
	"github.com/nvandessel/fibertract/internal/pain"
	"github.com/nvandessel/fibertract/internal/ratelimit"
	"github.com/nvandessel/fibertract/internal/sanitize"
	"github.com/nvandessel/fibertract/internal/store"
	"github.com/nvandessel/fibertract/internal/tract"
)

// registerTools registers all fibertract MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fibertract_tick",
		Description: "Advance the body by one or more ticks with the given motor commands and stimuli; returns the last outputs and any pain",
	}, s.handleTick)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fibertract_inspect",
		Description: "Show bundle summaries, or the tract state and chemical levels of one bundle",
	}, s.handleInspect)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fibertract_modulate",
		Description: "Release a chemical (adrenaline, endorphin, cortisol, gaba) into one bundle or the whole body, or clear all chemicals",
	}, s.handleModulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fibertract_snapshot",
		Description: "Save the full body state to the snapshot store, or list stored snapshots",
	}, s.handleSnapshot)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fibertract_restore",
		Description: "Replace the body with a stored snapshot (the latest by default)",
	}, s.handleRestore)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fibertract_presets",
		Description: "List the available profiles, or replace the body with fresh bundles of chosen profiles",
	}, s.handlePresets)
}

// handleTick implements the fibertract_tick tool.
func (s *Server) handleTick(ctx context.Context, req *sdk.CallToolRequest, args TickInput) (_ *sdk.CallToolResult, _ TickOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := map[string]any{"ticks": args.Ticks, "adrenaline": args.Adrenaline}
		if len(args.Inputs) > 0 {
			params["inputs"] = len(args.Inputs)
		}
		s.auditTool("fibertract_tick", start, retErr, sanitizeToolParams(params))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fibertract_tick"); err != nil {
		return nil, TickOutput{}, err
	}

	ticks := args.Ticks
	if ticks == 0 {
		ticks = 1
	}
	if ticks < 1 || ticks > MaxTicksPerCall {
		return nil, TickOutput{}, &fault.RangeViolation{Field: "ticks", Value: args.Ticks, Min: 1, Max: MaxTicksPerCall}
	}
	level, err := fault.CheckU8("adrenaline", args.Adrenaline)
	if err != nil {
		return nil, TickOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inputs, err := resolveInputs(s.body, args.Inputs)
	if err != nil {
		return nil, TickOutput{}, err
	}

	out := TickOutput{}
	var last bundle.BodyResult
	for i := range ticks {
		res, err := s.body.Tick(ctx, inputs, level)
		if err != nil {
			if i == 0 {
				return nil, TickOutput{}, err
			}
			return nil, TickOutput{}, fmt.Errorf("stopped after %d of %d ticks: %w", i, ticks, err)
		}
		last = res
		out.Ticks++
		out.PainTotal += len(res.Pain)
		for _, ev := range res.Pain {
			if ev.IsUrgent() {
				out.Urgent++
			}
		}
	}

	out.Outputs = make(map[string]BundleOutput, len(last.Bundles))
	for name, r := range last.Bundles {
		motor := make([]int, len(r.Motor))
		for i, sig := range r.Motor {
			motor[i] = int(sig.Value())
		}
		out.Outputs[name] = BundleOutput{Motor: motor, Sensory: r.Sensory}
	}
	for _, ev := range last.Pain {
		out.Pain = append(out.Pain, painEvent(ev))
	}
	for _, b := range s.body.Bundles() {
		out.BodyTicks = max(out.BodyTicks, b.Ticks())
	}

	out.Message = fmt.Sprintf("Ran %d tick(s); %d pain event(s), %d urgent", out.Ticks, out.PainTotal, out.Urgent)
	return nil, out, nil
}

// resolveInputs converts wire inputs to bundle inputs. A nil sequence
// rests its direction.
func resolveInputs(body *bundle.Body, in map[string]BundleInput) (map[string]bundle.Input, error) {
	out := make(map[string]bundle.Input, len(in))
	for name, bi := range in {
		b, ok := body.Bundle(name)
		if !ok {
			return nil, fmt.Errorf("unknown bundle %q (available: %s)", name, strings.Join(body.Names(), ", "))
		}
		input := bundle.RestInput(b)
		if bi.Motor != nil {
			input.Motor = make([]tract.Signal, len(bi.Motor))
			for i, v := range bi.Motor {
				if v < -255 || v > 255 {
					return nil, &fault.RangeViolation{Field: fmt.Sprintf("inputs.%s.motor[%d]", name, i), Value: v, Min: -255, Max: 255}
				}
				input.Motor[i] = tract.SignalFromValue(int64(v))
			}
		}
		if bi.Sensory != nil {
			input.Sensory = bi.Sensory
		}
		out[name] = input
	}
	return out, nil
}

func painEvent(ev pain.Event) PainEvent {
	return PainEvent{
		Bundle:      ev.Bundle,
		Tract:       ev.TractIndex,
		Source:      ev.Source.String(),
		Intensity:   ev.Intensity,
		Onset:       ev.Onset,
		Duration:    ev.DurationTicks,
		Habituating: ev.Habituating,
		Salience:    ev.Salience(),
		Urgent:      ev.IsUrgent(),
	}
}

// handleInspect implements the fibertract_inspect tool.
func (s *Server) handleInspect(ctx context.Context, req *sdk.CallToolRequest, args InspectInput) (_ *sdk.CallToolResult, _ InspectOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := map[string]any{"bundle": args.Bundle}
		if args.Tract != nil {
			params["tract"] = *args.Tract
		}
		s.auditTool("fibertract_inspect", start, retErr, sanitizeToolParams(params))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fibertract_inspect"); err != nil {
		return nil, InspectOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if args.Bundle == "" {
		if args.Tract != nil {
			return nil, InspectOutput{}, fmt.Errorf("'tract' requires 'bundle'")
		}
		out := InspectOutput{}
		for _, b := range s.body.Bundles() {
			out.Bundles = append(out.Bundles, summarize(b))
		}
		return nil, out, nil
	}

	b, ok := s.body.Bundle(args.Bundle)
	if !ok {
		return nil, InspectOutput{}, fmt.Errorf("unknown bundle %q (available: %s)", args.Bundle, strings.Join(s.body.Names(), ", "))
	}

	out := InspectOutput{
		Bundles:    []BundleSummary{summarize(b)},
		Modulation: levels(b),
	}
	if args.Tract != nil {
		t, ok := b.Tract(*args.Tract)
		if !ok {
			return nil, InspectOutput{}, &fault.RangeViolation{Field: "tract", Value: *args.Tract, Min: 0, Max: b.Len() - 1}
		}
		out.Tracts = []TractView{tractView(*args.Tract, t)}
		return nil, out, nil
	}
	for i, t := range b.Tracts() {
		out.Tracts = append(out.Tracts, tractView(i, t))
	}
	return nil, out, nil
}

func summarize(b *bundle.Bundle) BundleSummary {
	return BundleSummary{
		Name:     b.Name(),
		Tracts:   b.Len(),
		Motor:    b.MotorCount(),
		Sensory:  b.SensoryCount(),
		Ticks:    b.Ticks(),
		Active:   b.IsActive(),
		Activity: b.TotalActivity(),
	}
}

func levels(b *bundle.Bundle) map[string]uint8 {
	m := b.Modulation()
	out := make(map[string]uint8, modulation.ChemicalCount)
	for _, c := range modulation.Chemicals() {
		out[c.String()] = m.Level(c)
	}
	return out
}

func tractView(i int, t tract.FiberTract) TractView {
	v := TractView{
		Index:      i,
		Kind:       t.Kind.String(),
		Properties: make(map[string]uint8, tract.PropertyCount),
		Activity:   t.Usage.Activity,
		IdleTicks:  t.Usage.IdleTicks,
		Streak:     t.Usage.Streak,
		Lifetime:   t.Usage.Lifetime,
	}
	for _, p := range tract.AllProperties() {
		v.Properties[p.String()] = t.Properties.Get(p)
	}
	if t.Kind.IsEfferent() {
		v.LastOutput = t.Usage.LastMotor.Value()
	} else {
		v.Mode = t.Mode.String()
		v.LastOutput = int64(t.Usage.LastSensory)
	}
	if t.Kind.IsNociceptive() {
		v.PainTrace = t.Pain.Recent[:]
	}
	return v
}

// handleModulate implements the fibertract_modulate tool.
func (s *Server) handleModulate(ctx context.Context, req *sdk.CallToolRequest, args ModulateInput) (_ *sdk.CallToolResult, _ ModulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("fibertract_modulate", start, retErr, sanitizeToolParams(map[string]any{
			"bundle": args.Bundle, "chemical": args.Chemical, "level": args.Level, "reset": args.Reset,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fibertract_modulate"); err != nil {
		return nil, ModulateOutput{}, err
	}

	var (
		chem  modulation.Chemical
		level uint8
	)
	if !args.Reset {
		if args.Chemical == "" {
			return nil, ModulateOutput{}, fmt.Errorf("'chemical' parameter is required unless 'reset' is set")
		}
		var err error
		if chem, err = modulation.ParseChemical(args.Chemical); err != nil {
			return nil, ModulateOutput{}, err
		}
		if level, err = fault.CheckU8("level", args.Level); err != nil {
			return nil, ModulateOutput{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targets := s.body.Bundles()
	if args.Bundle != "" {
		b, ok := s.body.Bundle(args.Bundle)
		if !ok {
			return nil, ModulateOutput{}, fmt.Errorf("unknown bundle %q (available: %s)", args.Bundle, strings.Join(s.body.Names(), ", "))
		}
		targets = []*bundle.Bundle{b}
	}

	out := ModulateOutput{Levels: make(map[string]map[string]uint8, len(targets))}
	for _, b := range targets {
		if args.Reset {
			b.ResetModulation()
		} else {
			b.Modulate(chem, level)
		}
		out.Levels[b.Name()] = levels(b)
	}

	if args.Reset {
		out.Message = fmt.Sprintf("Cleared chemicals in %d bundle(s)", len(targets))
	} else {
		out.Message = fmt.Sprintf("Set %s to %d in %d bundle(s)", chem, level, len(targets))
	}
	return nil, out, nil
}

// handleSnapshot implements the fibertract_snapshot tool.
func (s *Server) handleSnapshot(ctx context.Context, req *sdk.CallToolRequest, args SnapshotInput) (_ *sdk.CallToolResult, _ SnapshotOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("fibertract_snapshot", start, retErr, sanitizeToolParams(map[string]any{
			"label": args.Label, "list": args.List,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fibertract_snapshot"); err != nil {
		return nil, SnapshotOutput{}, err
	}

	if args.List {
		summaries, err := s.store.List(ctx)
		if err != nil {
			return nil, SnapshotOutput{}, fmt.Errorf("failed to list snapshots: %w", err)
		}
		out := SnapshotOutput{Snapshots: make([]SnapshotItem, 0, len(summaries))}
		for _, sum := range summaries {
			out.Snapshots = append(out.Snapshots, SnapshotItem{
				ID:        sum.ID,
				Label:     sum.Label,
				CreatedAt: sum.CreatedAt,
				Bundles:   len(sum.Bundles),
				Tracts:    sum.Tracts,
				Ticks:     sum.Ticks,
			})
		}
		out.Message = fmt.Sprintf("%d snapshot(s)", len(out.Snapshots))
		return nil, out, nil
	}

	label := sanitize.Label(args.Label)
	s.mu.Lock()
	snap := store.NewSnapshot(label, s.body)
	s.mu.Unlock()

	id, err := s.store.Save(ctx, snap)
	if err != nil {
		return nil, SnapshotOutput{}, fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.logger.Info("snapshot saved", "id", id, "label", label)

	return nil, SnapshotOutput{
		ID:      id,
		Message: fmt.Sprintf("Saved snapshot %s of %d bundle(s)", id, len(snap.Bundles)),
	}, nil
}

// handleRestore implements the fibertract_restore tool.
func (s *Server) handleRestore(ctx context.Context, req *sdk.CallToolRequest, args RestoreInput) (_ *sdk.CallToolResult, _ RestoreOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("fibertract_restore", start, retErr, sanitizeToolParams(map[string]any{"id": args.ID}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fibertract_restore"); err != nil {
		return nil, RestoreOutput{}, err
	}

	var (
		snap *store.Snapshot
		err  error
	)
	if args.ID == "" || args.ID == "latest" {
		snap, err = s.store.Latest(ctx)
	} else {
		snap, err = s.store.Get(ctx, args.ID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, RestoreOutput{}, fmt.Errorf("no snapshot to restore: %w", err)
	}
	if err != nil {
		return nil, RestoreOutput{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	opts, err := s.bundleOptions()
	if err != nil {
		return nil, RestoreOutput{}, err
	}
	body, err := snap.Body(opts...)
	if err != nil {
		return nil, RestoreOutput{}, fmt.Errorf("snapshot %s is invalid: %w", snap.ID, err)
	}
	body.SetParallelism(s.settings.Simulation.Parallelism)

	s.mu.Lock()
	s.body = body
	s.mu.Unlock()
	s.logger.Info("snapshot restored", "id", snap.ID)

	return nil, RestoreOutput{
		ID:      snap.ID,
		Label:   snap.Label,
		Bundles: body.Names(),
		Message: fmt.Sprintf("Restored snapshot %s", snap.ID),
	}, nil
}

// handlePresets implements the fibertract_presets tool.
func (s *Server) handlePresets(ctx context.Context, req *sdk.CallToolRequest, args PresetsInput) (_ *sdk.CallToolResult, _ PresetsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("fibertract_presets", start, retErr, sanitizeToolParams(map[string]any{
			"profiles": strings.Join(args.Profiles, ","),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fibertract_presets"); err != nil {
		return nil, PresetsOutput{}, err
	}

	out := PresetsOutput{}
	for _, name := range s.catalog.Names() {
		p, err := s.catalog.Lookup(name)
		if err != nil {
			return nil, PresetsOutput{}, err
		}
		out.Profiles = append(out.Profiles, ProfileItem{Name: name, Tracts: p.Count(), Preset: s.catalog.IsPreset(name)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(args.Profiles) > 0 {
		body, err := s.newBody(args.Profiles)
		if err != nil {
			return nil, PresetsOutput{}, err
		}
		s.body = body
		out.Message = fmt.Sprintf("Body replaced with %d fresh bundle(s)", len(args.Profiles))
	} else {
		out.Message = fmt.Sprintf("%d profile(s) available", len(out.Profiles))
	}
	out.Body = s.body.Names()
	return nil, out, nil
}
