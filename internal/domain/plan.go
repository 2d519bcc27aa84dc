package domain

// SlicePlan is one bounded unit of work produced by the planner.
// It is immutable once the plan is accepted.
//
// Example JSON representation:
//
//	{
//	    "id": "S1",
//	    "title": "Add config loader",
//	    "objective": "Read settings from config.yaml",
//	    "acceptance": ["loader returns defaults when file is missing"],
//	    "check_commands": ["go test ./internal/config/..."],
//	    "files_hint": ["internal/config/load.go"]
//	}
type SlicePlan struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Objective     string   `json:"objective"`
	Acceptance    []string `json:"acceptance"`
	CheckCommands []string `json:"check_commands"`
	FilesHint     []string `json:"files_hint"`
}

// FileSelection lists what the implementer may see and create for one slice.
type FileSelection struct {
	// FilesToRead are existing tracked files whose content goes into the prompt.
	FilesToRead []string `json:"files_to_read"`

	// FilesToCreate are new paths the implementer is expected to add.
	FilesToCreate []string `json:"files_to_create"`
}
