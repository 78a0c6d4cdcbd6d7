package workingcopy

import (
	"github.com/apiarycd/svndesk/internal/credentials"
	"github.com/apiarycd/svndesk/internal/svn"
)

// Auth carries the repository credentials of a request.
type Auth struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"max=1024"`
	OS       string `json:"os"       validate:"max=32"`
}

func (a Auth) toCredentials() credentials.Credentials {
	return credentials.Credentials{
		Username: a.Username,
		Password: a.Password,
		HostOS:   a.OS,
	}
}

// StatusRequest represents the request payload for a status query.
type StatusRequest struct {
	Root string `json:"root" validate:"required"`
}

// CheckoutRequest represents the request payload for a checkout.
type CheckoutRequest struct {
	Auth

	Root string `json:"root" validate:"required"`
	URL  string `json:"url"  validate:"required,url"`
}

// Change is a path selected for commit.
type Change struct {
	Path  string `json:"path"  validate:"required"`
	Stage string `json:"stage" validate:"required,oneof=add remove"`
}

// CommitRequest represents the request payload for a commit.
type CommitRequest struct {
	Auth

	Root    string   `json:"root"    validate:"required"`
	Message string   `json:"message"`
	Changes []Change `json:"changes" validate:"required,min=1,dive"`
}

func (r CommitRequest) toPendingChanges() []svn.PendingChange {
	changes := make([]svn.PendingChange, len(r.Changes))
	for i, c := range r.Changes {
		changes[i] = svn.PendingChange{
			Path:  c.Path,
			Stage: svn.Stage(c.Stage),
		}
	}
	return changes
}

// RevertRequest represents the request payload for a revert.
type RevertRequest struct {
	Root  string   `json:"root"  validate:"required"`
	Paths []string `json:"paths" validate:"required,min=1,dive,required"`
}

// LogRequest represents the request payload for a history query.
type LogRequest struct {
	Auth

	Root string `json:"root" validate:"required"`
}

// ProjectRequest represents a folder selection. A missing path means the
// selection was cancelled.
type ProjectRequest struct {
	Path *string `json:"path" validate:"omitempty,min=1"`
}
