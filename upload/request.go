package upload

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mrbonezy/impacted/exitcode"
	"github.com/mrbonezy/impacted/targets"
)

const (
	GitHubHost = "github.com"

	// AllTargets is sent instead of a list when every target is impacted.
	AllTargets = "ALL"
)

var (
	ErrMalformedRepository = errors.New("REPOSITORY must be in the form 'owner/name'")
	ErrReadTargets         = errors.New("Error reading impacted targets file")
	ErrInvalidRequest      = errors.New("invalid upload request")
)

type Repo struct {
	Host  string `json:"host" validate:"required"`
	Owner string `json:"owner" validate:"required"`
	Name  string `json:"name" validate:"required"`
}

type PullRequest struct {
	Number string `json:"number" validate:"required"`
	SHA    string `json:"sha" validate:"required"`
}

// Request is the body of one upload.
type Request struct {
	Repo            Repo            `json:"repo"`
	PR              PullRequest     `json:"pr"`
	TargetBranch    string          `json:"targetBranch" validate:"required"`
	ImpactedTargets ImpactedTargets `json:"impactedTargets"`
}

// ImpactedTargets is either an explicit list or the AllTargets sentinel.
type ImpactedTargets struct {
	all  bool
	list []string
}

func All() ImpactedTargets {
	return ImpactedTargets{all: true}
}

func List(targets []string) ImpactedTargets {
	list := slices.Clone(targets)
	if list == nil {
		list = []string{}
	}
	return ImpactedTargets{list: list}
}

func (t ImpactedTargets) IsAll() bool {
	return t.all
}

func (t ImpactedTargets) Targets() []string {
	return slices.Clone(t.list)
}

// CountLabel is how many targets the success message reports.
func (t ImpactedTargets) CountLabel() string {
	if t.all {
		return "'" + AllTargets + "'"
	}
	return strconv.Itoa(len(t.list))
}

func (t ImpactedTargets) MarshalJSON() ([]byte, error) {
	if t.all {
		return json.Marshal(AllTargets)
	}
	list := t.list
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func (t *ImpactedTargets) UnmarshalJSON(data []byte) error {
	var sentinel string
	if err := json.Unmarshal(data, &sentinel); err == nil {
		if sentinel != AllTargets {
			return errors.Newf("impactedTargets: unexpected string %q", sentinel)
		}
		*t = All()
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.Wrap(err, "impactedTargets")
	}
	*t = List(list)
	return nil
}

// ParseRepository splits "owner/name" on the first slash.
func ParseRepository(s string) (Repo, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" {
		return Repo{}, exitcode.WithExitCode(ErrMalformedRepository, exitcode.Config)
	}
	return Repo{Host: GitHubHost, Owner: owner, Name: name}, nil
}

// TargetsReader loads the impacted-targets file.
type TargetsReader func(path string) ([]string, error)

// BuildRequest assembles the request for cfg. With IMPACTS_ALL_DETECTED
// the targets file is never opened. Every failure here is a configuration
// error.
func BuildRequest(cfg Config, read TargetsReader) (Request, error) {
	repo, err := ParseRepository(cfg.Repository)
	if err != nil {
		return Request{}, err
	}

	impacted := All()
	if !cfg.ImpactsAllDetected {
		if read == nil {
			read = targets.ReadLines
		}
		list, err := read(cfg.ImpactedTargetsFile)
		if err != nil {
			wrapped := errors.Mark(errors.Wrap(err, ErrReadTargets.Error()), ErrReadTargets)
			return Request{}, exitcode.WithExitCode(wrapped, exitcode.Config)
		}
		impacted = List(list)
	}

	req := Request{
		Repo:            repo,
		PR:              PullRequest{Number: cfg.PRNumber, SHA: cfg.PRSHA},
		TargetBranch:    cfg.TargetBranch,
		ImpactedTargets: impacted,
	}
	if err := validate.Struct(req); err != nil {
		return Request{}, exitcode.WithExitCode(errors.Mark(errors.Wrap(err, ErrInvalidRequest.Error()), ErrInvalidRequest), exitcode.Config)
	}
	return req, nil
}
