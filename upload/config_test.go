package upload

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrbonezy/impacted/exitcode"
)

func validConfig() Config {
	return Config{
		APIToken:            "tok",
		Repository:          "acme/widgets",
		TargetBranch:        "main",
		PRNumber:            "42",
		PRSHA:               "abc123",
		ImpactedTargetsFile: "targets.txt",
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIToken, "tok")
	t.Setenv(EnvRepository, "acme/widgets")
	t.Setenv(EnvTargetBranch, "main")
	t.Setenv(EnvPRNumber, "42")
	t.Setenv(EnvPRSHA, "abc123")
	t.Setenv(EnvImpactedTargetsFile, "targets.txt")
	t.Setenv(EnvImpactsAllDetected, "")
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvActor, "")
}

func TestConfigFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvActor, "octocat")

	cfg := ConfigFromEnv()

	assert.Equal(t, validConfig().APIToken, cfg.APIToken)
	assert.Equal(t, "acme/widgets", cfg.Repository)
	assert.Equal(t, "main", cfg.TargetBranch)
	assert.Equal(t, "42", cfg.PRNumber)
	assert.Equal(t, "abc123", cfg.PRSHA)
	assert.Equal(t, "targets.txt", cfg.ImpactedTargetsFile)
	assert.Equal(t, "octocat", cfg.Actor)
	assert.False(t, cfg.ImpactsAllDetected)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.NoError(t, cfg.Validate())
}

func TestConfigImpactsAllOnlyForExactTrue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "true", want: true},
		{value: "TRUE", want: false},
		{value: "1", want: false},
		{value: "yes", want: false},
		{value: "false", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(EnvImpactsAllDetected, tt.value)
			assert.Equal(t, tt.want, ConfigFromEnv().ImpactsAllDetected)
		})
	}
}

func TestConfigAPIURLOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvAPIURL, "http://localhost:9999/upload")

	cfg := ConfigFromEnv()
	assert.Equal(t, "http://localhost:9999/upload", cfg.endpoint())
}

func TestValidateReportsFirstMissingInOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "token", mutate: func(c *Config) { c.APIToken = "" }, want: EnvAPIToken},
		{name: "repository", mutate: func(c *Config) { c.Repository = "" }, want: EnvRepository},
		{name: "branch", mutate: func(c *Config) { c.TargetBranch = "" }, want: EnvTargetBranch},
		{name: "pr number", mutate: func(c *Config) { c.PRNumber = "" }, want: EnvPRNumber},
		{name: "sha", mutate: func(c *Config) { c.PRSHA = "" }, want: EnvPRSHA},
		{name: "targets file", mutate: func(c *Config) { c.ImpactedTargetsFile = "" }, want: EnvImpactedTargetsFile},
		{name: "all missing", mutate: func(c *Config) { *c = Config{} }, want: EnvAPIToken},
		{
			name: "later fields missing",
			mutate: func(c *Config) {
				c.PRSHA = ""
				c.ImpactedTargetsFile = ""
			},
			want: EnvPRSHA,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, "Missing required environment variable: "+tt.want, err.Error())
			assert.True(t, errors.Is(err, ErrMissingEnv))
			assert.Equal(t, exitcode.Config, exitcode.Get(err))
		})
	}
}

func TestValidateIgnoresOptionalFields(t *testing.T) {
	cfg := validConfig()
	cfg.APIURL = ""
	cfg.Actor = ""
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultAPIURL, cfg.endpoint())
}
