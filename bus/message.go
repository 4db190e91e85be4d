// Package bus carries import requests and progress between the daemon and
// the UI tabs connected to it.
package bus

import (
	"encoding/json"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
)

// Action names a message. Tabs send requests in either Action or Type; the
// daemon always replies in Type.
type Action string

const (
	ActionBatchImportAll Action = "batch-import-all"
	ActionImportUpdate   Action = "import-update"
	ActionImportDone     Action = "import-done"
	ActionImportError    Action = "import-error"
	ActionFetchProjects  Action = "fetch-projects"
	ActionTabFocus       Action = "tab-focus"
)

// Project is the project a tab selected for an import.
type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContainerTag string `json:"containerTag"`
}

// Message is the JSON shape exchanged with tabs.
type Message struct {
	Action Action `json:"action,omitempty"`
	Type   Action `json:"type,omitempty"`

	ImportedMessage string `json:"importedMessage,omitempty"`
	TotalImported   int    `json:"totalImported"`
	Error           string `json:"error,omitempty"`

	IsFolderImport       bool     `json:"isFolderImport,omitempty"`
	BookmarkCollectionID string   `json:"bookmarkCollectionId,omitempty"`
	SelectedProject      *Project `json:"selectedProject,omitempty"`

	Success bool            `json:"success,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Kind returns Type, falling back to Action.
func (m Message) Kind() Action {
	if m.Type != "" {
		return m.Type
	}
	return m.Action
}

// ImportConfig converts a batch-import-all request into a run configuration.
// The events channel is left for the caller to attach.
func (m Message) ImportConfig() bookmarks.ImportConfig {
	ic := bookmarks.ImportConfig{
		FolderImport: m.IsFolderImport,
		FolderID:     m.BookmarkCollectionID,
	}
	if p := m.SelectedProject; p != nil {
		ic.Project = &bookmarks.Project{ID: p.ID, Name: p.Name, ContainerTag: p.ContainerTag}
	}
	return ic
}
