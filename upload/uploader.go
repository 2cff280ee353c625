package upload

import (
	"context"

	"github.com/charmbracelet/log"
)

// Uploader runs one upload from configuration to Outcome.
type Uploader struct {
	HTTPClient  HTTPClient
	ReadTargets TargetsReader
	Logger      *log.Logger
}

func NewUploader(logger *log.Logger) *Uploader {
	return &Uploader{Logger: logger}
}

// Run validates cfg, builds the request and sends it at most once.
// Configuration failures never reach the network.
func (u *Uploader) Run(ctx context.Context, cfg Config) Outcome {
	logger := u.Logger
	if logger == nil {
		logger = log.Default()
	}

	if err := cfg.Validate(); err != nil {
		return configFailure(StateUnconfigured, err)
	}
	logger.Debug("configuration validated", "state", StateValidated, "impacts_all", cfg.ImpactsAllDetected)

	req, err := BuildRequest(cfg, u.ReadTargets)
	if err != nil {
		return configFailure(StateValidated, err)
	}
	logger.Debug("request built", "state", StateBuilt, "targets", req.ImpactedTargets.CountLabel())

	client := NewClient(logger, cfg.endpoint(), cfg.APIToken)
	if u.HTTPClient != nil {
		client.HTTPClient = u.HTTPClient
	}
	status, err := client.Post(ctx, req)
	if err != nil {
		logger.Debug("upload failed", "state", StateErrored, "err", err)
		return transportFailure(err)
	}

	return Classify(status, cfg.Actor, Details{
		PRNumber: cfg.PRNumber,
		SHA:      cfg.PRSHA,
		Uploaded: req.ImpactedTargets.CountLabel(),
	})
}
