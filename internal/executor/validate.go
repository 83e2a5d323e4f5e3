package executor

import (
	"fmt"

	"suri/internal/types"
)

// Validate runs structural checks on an action and returns human-readable
// problems. An empty slice means the action is executable.
func Validate(action types.Action) []string {
	var problems []string

	if action.ID == "" {
		problems = append(problems, "action id is empty")
	}
	if action.Title == "" {
		problems = append(problems, "action title is empty")
	}
	if types.RequiredFields(action.Category) == nil {
		problems = append(problems, fmt.Sprintf("unknown action category %q", action.Category))
	}
	for i, e := range action.Entities {
		if e.ID == "" {
			problems = append(problems, fmt.Sprintf("entity %d has no id", i))
		}
		if e.Type == "" {
			problems = append(problems, fmt.Sprintf("entity %d has no type", i))
		}
		if e.Confidence < 0 || e.Confidence > 1 {
			problems = append(problems, fmt.Sprintf("entity %d confidence %v out of [0,1]", i, e.Confidence))
		}
	}
	return problems
}

// Prepare reports which of the category's required fields are missing.
// Missing fields do not fail execution at this stage; dispatch decides what
// it can live without.
func Prepare(action types.Action) []string {
	var missing []string
	for _, field := range types.RequiredFields(action.Category) {
		if action.Fields[field] == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
