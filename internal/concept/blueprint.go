package concept

import (
	"fmt"
	"strings"
)

// simVariable is one controllable variable in the default blueprint.
type simVariable struct {
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Unit    string  `json:"unit"`
}

// DefaultBlueprint builds a reasonable simulation blueprint directly from the
// spec, used when the planner stage fails twice. It is deterministic: the same
// spec always yields the same blueprint, so a degraded run is reproducible.
func DefaultBlueprint(s *Spec) map[string]any {
	name := s.Concept()
	desc := s.Description()

	vars := []simVariable{
		{Name: "Intensity", Min: 0, Max: 100, Default: 50, Unit: "%"},
		{Name: "Time", Min: 1, Max: 60, Default: 10, Unit: "s"},
	}

	// Heat topics read better with a temperature control.
	topic := strings.ToLower(name)
	if strings.Contains(topic, "heat") || strings.Contains(topic, "temperature") {
		vars = []simVariable{
			{Name: "Temperature", Min: 0, Max: 100, Default: 25, Unit: "°C"},
			{Name: "Material", Min: 1, Max: 3, Default: 1, Unit: "choice"},
		}
	}

	sliders := make([]string, 0, len(vars))
	for _, v := range vars {
		sliders = append(sliders, fmt.Sprintf("Slider to set %s", v.Name))
	}

	instructions := desc
	if len(instructions) > 200 {
		instructions = instructions[:200]
	}

	return map[string]any{
		"learning_objectives": []any{
			fmt.Sprintf("Understand what %s means.", name),
			"See how changing one variable affects the outcome.",
			"Learn to record simple observations.",
		},
		"key_concepts": []any{
			name,
			"cause and effect",
			"variables and observation",
		},
		"variables_to_simulate": vars,
		"user_interactions": map[string]any{
			"sliders": sliders,
			"buttons": []any{"Start simulation", "Reset to defaults"},
			"other":   "Tap to pause or touch-drag small objects",
		},
		"simulation_logic": []any{
			"Step 1: Read current values of controls.",
			"Step 2: Update the visual area to reflect the new values.",
			"Step 3: If Start pressed, animate changes over time.",
		},
		"mobile_ui_plan": map[string]any{
			"layout":        "vertical single column",
			"sections":      []any{"Header", "Instructions", "Simulation area", "Controls", "Questions"},
			"touch_targets": "minimum 44px",
		},
		"misconceptions_to_address": []any{
			"More of something always means faster change (not always true).",
			"If two materials look the same they behave the same (not always true).",
		},
		"text_instructions_for_students": instructions + " Use the sliders and Start button to explore.",
		"file_target":                    "single_file_html",
		"safety_constraints":             []any{"No real heat sources shown; keep examples conceptual."},
	}
}
