// Package upload sends the impacted targets of a pull request to the
// impact-analysis API and turns the answer into an exit code and one line
// of text.
package upload

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/mrbonezy/impacted/exitcode"
)

const (
	EnvAPIToken            = "API_TOKEN"
	EnvRepository          = "REPOSITORY"
	EnvTargetBranch        = "TARGET_BRANCH"
	EnvPRNumber            = "PR_NUMBER"
	EnvPRSHA               = "PR_SHA"
	EnvImpactedTargetsFile = "IMPACTED_TARGETS_FILE"
	EnvImpactsAllDetected  = "IMPACTS_ALL_DETECTED"
	EnvAPIURL              = "API_URL"
	EnvActor               = "ACTOR"

	DefaultAPIURL = "https://api.trunk-staging.io:443/v1/setImpactedTargets"
)

var envKeys = []string{
	EnvAPIToken,
	EnvRepository,
	EnvTargetBranch,
	EnvPRNumber,
	EnvPRSHA,
	EnvImpactedTargetsFile,
	EnvImpactsAllDetected,
	EnvAPIURL,
	EnvActor,
}

var ErrMissingEnv = errors.New("missing required environment variable")

// Config is everything one upload needs. Required fields are checked in
// declaration order, so the first missing one is the one reported.
type Config struct {
	APIToken            string `env:"API_TOKEN" validate:"required"`
	Repository          string `env:"REPOSITORY" validate:"required"`
	TargetBranch        string `env:"TARGET_BRANCH" validate:"required"`
	PRNumber            string `env:"PR_NUMBER" validate:"required"`
	PRSHA               string `env:"PR_SHA" validate:"required"`
	ImpactedTargetsFile string `env:"IMPACTED_TARGETS_FILE" validate:"required"`

	ImpactsAllDetected bool   `env:"IMPACTS_ALL_DETECTED"`
	APIURL             string `env:"API_URL"`
	Actor              string `env:"ACTOR"`
}

// ConfigFromEnv reads the process environment once.
func ConfigFromEnv() Config {
	return ConfigFromViper(newEnvViper())
}

func newEnvViper() *viper.Viper {
	v := viper.New()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	v.SetDefault(EnvImpactsAllDetected, "false")
	v.SetDefault(EnvAPIURL, DefaultAPIURL)
	return v
}

// ConfigFromViper maps bound keys onto a Config. Only the exact string
// "true" turns IMPACTS_ALL_DETECTED on.
func ConfigFromViper(v *viper.Viper) Config {
	return Config{
		APIToken:            v.GetString(EnvAPIToken),
		Repository:          v.GetString(EnvRepository),
		TargetBranch:        v.GetString(EnvTargetBranch),
		PRNumber:            v.GetString(EnvPRNumber),
		PRSHA:               v.GetString(EnvPRSHA),
		ImpactedTargetsFile: v.GetString(EnvImpactedTargetsFile),
		ImpactsAllDetected:  v.GetString(EnvImpactsAllDetected) == "true",
		APIURL:              v.GetString(EnvAPIURL),
		Actor:               v.GetString(EnvActor),
	}
}

// Validate reports the first missing required value. It never touches the
// network or the file system.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		missing := errors.Newf("Missing required environment variable: %s", verrs[0].Field())
		return exitcode.WithExitCode(errors.Mark(missing, ErrMissingEnv), exitcode.Config)
	}
	return exitcode.WithExitCode(err, exitcode.Config)
}

func (c Config) endpoint() string {
	if url := strings.TrimSpace(c.APIURL); url != "" {
		return url
	}
	return DefaultAPIURL
}

var validate = newValidator()

// newValidator names fields after their env or json tag so validation
// errors speak the caller's vocabulary.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	return v
}
