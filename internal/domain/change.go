package domain

// ChangeAction is the kind of mutation a change record requests.
type ChangeAction string

const (
	// ActionUpsert writes the full content of a file, creating it if needed.
	ActionUpsert ChangeAction = "upsert"

	// ActionDelete removes a file; deleting an absent file is a no-op.
	ActionDelete ChangeAction = "delete"
)

// Change is one file mutation proposed by the implementer.
type Change struct {
	Path    string       `json:"path"`
	Action  ChangeAction `json:"action"`
	Content string       `json:"content,omitempty"`
}

// ChangeSet is the implementer's output for one attempt.
// It is applied immediately and kept only in the run log.
type ChangeSet struct {
	Summary string   `json:"summary"`
	Changes []Change `json:"changes"`
}

// DiffStats summarizes the accumulated diff shown to the reviewer.
type DiffStats struct {
	Files        int `json:"files"`
	LinesAdded   int `json:"lines_added"`
	LinesRemoved int `json:"lines_removed"`
}
