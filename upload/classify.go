package upload

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mrbonezy/impacted/exitcode"
)

const (
	DependabotActor = "dependabot[bot]"
	botSuffix       = "[bot]"

	dependabotSecretsURL = "https://docs.github.com/en/code-security/dependabot/working-with-dependabot/automating-dependabot-with-github-actions#accessing-secrets"
	supportContact       = "slack.trunk.io"
)

// State is how far one upload got.
type State int

const (
	StateUnconfigured State = iota
	StateValidated
	StateBuilt
	StateSent
	StateSucceeded
	StateRejected
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateValidated:
		return "validated"
	case StateBuilt:
		return "built"
	case StateSent:
		return "sent"
	case StateSucceeded:
		return "succeeded"
	case StateRejected:
		return "rejected"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the terminal result of one upload: the line to print and the
// process exit code.
type Outcome struct {
	State      State
	HTTPStatus int
	// Reached is true when the server answered, whatever the status.
	Reached  bool
	ExitCode int
	Message  string
}

// Details feeds the success and generic-failure messages.
type Details struct {
	PRNumber string
	SHA      string
	// Uploaded is the count label, a number or 'ALL'.
	Uploaded string
}

// Classify maps an HTTP status and the triggering actor to an Outcome.
// It is pure.
func Classify(status int, actor string, d Details) Outcome {
	out := Outcome{HTTPStatus: status, Reached: true}
	switch {
	case status == http.StatusOK:
		out.State = StateSucceeded
		out.ExitCode = exitcode.OK
		out.Message = fmt.Sprintf("✨ Uploaded %s impacted targets for %s @ %s", d.Uploaded, d.PRNumber, d.SHA)
		return out
	case status == http.StatusUnauthorized && actor == DependabotActor:
		out.Message = "❌ Unable to upload impacted targets. Did you update your Dependabot secrets with your repo's token? See " +
			dependabotSecretsURL + " for more details."
	case status == http.StatusUnauthorized && strings.HasSuffix(actor, botSuffix):
		out.Message = "❌ Unable to upload impacted targets. Please verify that this bot has access to your repo's token."
	default:
		out.Message = fmt.Sprintf("❌ Unable to upload impacted targets. Encountered %d @ %s. Please contact us at %s.", status, d.SHA, supportContact)
	}
	out.State = StateRejected
	out.ExitCode = exitcode.Failure
	return out
}

func transportFailure(err error) Outcome {
	return Outcome{
		State:    StateErrored,
		ExitCode: exitcode.Failure,
		Message:  "HTTP request failed: " + err.Error(),
	}
}

func configFailure(state State, err error) Outcome {
	return Outcome{
		State:    state,
		ExitCode: exitcode.Get(err),
		Message:  err.Error(),
	}
}

// Print writes the outcome line. Answers from the server go to stdout,
// everything else to stderr.
func (o Outcome) Print(stdout, stderr io.Writer) {
	w := stdout
	if !o.Reached {
		w = stderr
	}
	fmt.Fprintln(w, o.Message)
}

// Err is nil on success and otherwise carries the exit code, already
// reported by Print.
func (o Outcome) Err() error {
	return exitcode.Reported(o.ExitCode)
}
