package svn

import (
	"github.com/apiarycd/svndesk/internal/audit"
)

// Stage tells commit whether a path is scheduled for addition or removal.
type Stage string

const (
	StageAdd    Stage = "add"
	StageRemove Stage = "remove"
)

// PendingChange is a path, relative to the working-copy root, selected for commit.
type PendingChange struct {
	Path  string
	Stage Stage
}

// ProjectLocation describes a folder chosen as the project root.
// RepositoryURL is set only when the folder is a working copy.
type ProjectLocation struct {
	Path          *string `json:"path"`
	RepositoryURL *string `json:"repositoryUrl"`
}

// Auditor receives a record of every invocation.
type Auditor interface {
	Log(record audit.Record)
}

// Emitter publishes named events to the UI layer.
type Emitter interface {
	Emit(name string, payload any)
}
