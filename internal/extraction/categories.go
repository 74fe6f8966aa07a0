package extraction

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Category scopes one extraction request. The built-in sets below are data,
// not branches: adding a category extends a table without touching the
// orchestrator.
type Category struct {
	Name  string   `yaml:"name"`
	Focus string   `yaml:"focus"`
	Rules []string `yaml:"rules"`
}

// DrawingCategories returns the fixed category set for interior-drawing
// takeoffs. Declaration order is the output order of the aggregated item
// list.
func DrawingCategories() []Category {
	return []Category{
		{
			Name:  "Flooring",
			Focus: "floor finishes, floor build-ups, skirting, and floor transitions",
			Rules: []string{
				"Include every distinct floor finish with its area or length.",
				"Capture material, thickness, and finish codes when shown.",
			},
		},
		{
			Name:  "Wall & Ceiling",
			Focus: "wall finishes, partitions, ceiling finishes, and bulkheads",
			Rules: []string{
				"Include paint, cladding, paneling, and suspended ceiling systems.",
				"Capture heights and finish codes when shown.",
			},
		},
		{
			Name:  "Custom Items",
			Focus: "joinery, millwork, and other custom-fabricated elements",
			Rules: []string{
				"Include counters, built-in cabinetry, and feature walls.",
				"Describe each piece fully enough to price it.",
			},
		},
		{
			Name:  "Graphics",
			Focus: "signage, environmental graphics, and printed films",
			Rules: []string{
				"Include dimensions and substrate where shown.",
			},
		},
		{
			Name:  "Furniture",
			Focus: "loose and fixed furniture items",
			Rules: []string{
				"Include counts per furniture type.",
			},
		},
		{
			Name:  "AV",
			Focus: "audio-visual equipment and containment",
			Rules: []string{
				"Include displays, speakers, mounts, and AV cabling.",
			},
		},
	}
}

// MEPCategories returns the single combined category used for MEP (fuel
// system) drawings, where one pass over the sheet captures all trades.
func MEPCategories() []Category {
	return []Category{
		{
			Name:  "MEP",
			Focus: "all mechanical, electrical, and plumbing items on the drawing: tanks, pumps, valves, strainers, piping, hoses, vents, sensors, level devices, control panels, and electrical works",
			Rules: []string{
				"Capture size or capacity for every item exactly as written on the drawing.",
				"Capture quantities from equipment schedules and callouts.",
				"Include pipe runs with their nominal size and total length.",
			},
		},
	}
}

// BOQCategory returns the single category used to extract the BOQ side.
func BOQCategory() Category {
	return Category{
		Name:  "BOQ",
		Focus: "every line item of the bill of quantities",
		Rules: []string{
			"Preserve item numbers, descriptions, quantities, and units exactly as written.",
			"Treat each priced line as one item; do not merge sub-items.",
		},
	}
}

// categoryFile is the YAML shape for user-supplied category sets.
type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories reads a category set from a YAML file, letting deployments
// extend or replace the built-in tables without a rebuild.
func LoadCategories(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extraction: read categories %s", path)
	}

	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "extraction: parse categories %s", path)
	}
	if len(file.Categories) == 0 {
		return nil, eris.Errorf("extraction: no categories in %s", path)
	}
	for i, c := range file.Categories {
		if c.Name == "" {
			return nil, eris.Errorf("extraction: category %d in %s has no name", i, path)
		}
	}
	return file.Categories, nil
}
