package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvandessel/fibertract/internal/profile"
)

// profileInfo is the JSON form of one profile in the presets listing.
type profileInfo struct {
	Name    string `json:"name"`
	Preset  bool   `json:"preset"`
	Tracts  int    `json:"tracts"`
	Motor   int    `json:"motor"`
	Sensory int    `json:"sensory"`
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "List body profiles, or show one",
		Long: `List the built-in presets and any custom profiles from the configured
profiles file. With a name, print that profile in the YAML profile format,
ready to copy into a custom profiles file.

Examples:
  fibertract presets
  fibertract presets left_hand`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(settings)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				p, err := catalog.Lookup(args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, p)
				}
				data, err := profile.Marshal([]profile.Profile{p})
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			infos := make([]profileInfo, 0, len(catalog.Names()))
			for _, name := range catalog.Names() {
				p, err := catalog.Lookup(name)
				if err != nil {
					return err
				}
				info, err := describeProfile(p)
				if err != nil {
					return err
				}
				info.Preset = catalog.IsPreset(name)
				infos = append(infos, info)
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{"profiles": infos, "count": len(infos)})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tTRACTS\tMOTOR\tSENSORY")
			for _, info := range infos {
				kind := "custom"
				if info.Preset {
					kind = "preset"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", info.Name, kind, info.Tracts, info.Motor, info.Sensory)
			}
			return w.Flush()
		},
	}
}

func describeProfile(p profile.Profile) (profileInfo, error) {
	tracts, err := p.Build()
	if err != nil {
		return profileInfo{}, err
	}
	info := profileInfo{Name: p.Name, Tracts: len(tracts)}
	for _, t := range tracts {
		if t.Kind.IsEfferent() {
			info.Motor++
		} else {
			info.Sensory++
		}
	}
	return info, nil
}
