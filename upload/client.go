package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// TokenHeader carries the API token. It is never logged.
const TokenHeader = "x-api-token"

var (
	ErrFailedToMarshalPayload = errors.New("failed to marshal payload")
	ErrFailedToCreateRequest  = errors.New("failed to create request")
	ErrFailedToMakeRequest    = errors.New("failed to make request")
)

// HTTPClient is the part of *http.Client the uploader needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts upload requests to a single endpoint.
type Client struct {
	URL        string
	Token      string
	HTTPClient HTTPClient
	Logger     *log.Logger
}

func NewClient(logger *log.Logger, url, token string) *Client {
	return &Client{
		URL:        url,
		Token:      token,
		HTTPClient: http.DefaultClient,
		Logger:     logger,
	}
}

// Post sends req once and returns the HTTP status. Any status is a
// successful round trip; only failures to get a response are errors.
func (c *Client) Post(ctx context.Context, req Request) (int, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, ErrFailedToMarshalPayload.Error()), ErrFailedToMarshalPayload)
	}

	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	sum := sha256.Sum256(data)
	logger.Debug("uploading impacted targets",
		"url", c.URL,
		"repo", req.Repo.Owner+"/"+req.Repo.Name,
		"pr", req.PR.Number,
		"targets", req.ImpactedTargets.CountLabel(),
		"payload_sha256", hex.EncodeToString(sum[:8]),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return 0, errors.Mark(err, ErrFailedToCreateRequest)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(TokenHeader, c.Token)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return 0, errors.Mark(err, ErrFailedToMakeRequest)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.Debug("upload answered", "status", resp.StatusCode)
	return resp.StatusCode, nil
}
