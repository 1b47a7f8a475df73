package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// RemoteError reports a rejection from the analysis API.
type RemoteError struct {
	StatusCode int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("analysis API responded with status %d", e.StatusCode)
}

// Client talks to a Form Recognizer style document-analysis API. Analysis is
// asynchronous: Submit accepts a document and returns the operation URL to
// poll, Fetch retrieves the operation body from that URL.
type Client struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	modelID    string
	apiVersion string
}

func NewClient(endpoint, apiKey, modelID, apiVersion string) *Client {
	return &Client{
		client:     &http.Client{Timeout: 60 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
		modelID:    modelID,
		apiVersion: apiVersion,
	}
}

type analyzeRequest struct {
	Base64Source string `json:"base64Source"`
}

// Submit posts base64-encoded document content for analysis. The API accepts
// the job with 202 and names the poll URL in the Operation-Location header;
// any other status is a rejection.
func (c *Client) Submit(ctx context.Context, base64Source string) (string, error) {
	url := fmt.Sprintf("%sformrecognizer/documentModels/%s:analyze?api-version=%s",
		c.endpoint, c.modelID, c.apiVersion)

	body, err := json.Marshal(analyzeRequest{Base64Source: base64Source})
	if err != nil {
		return "", fmt.Errorf("encoding analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating analyze request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(subscriptionKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submitting analysis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", &RemoteError{StatusCode: resp.StatusCode}
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", fmt.Errorf("analysis accepted but Operation-Location header is missing")
	}

	return operationURL, nil
}

// Fetch issues one GET against the operation URL and returns the raw body.
func (c *Client) Fetch(ctx context.Context, operationURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating poll request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(subscriptionKeyHeader, c.apiKey)
	req.ContentLength = 0

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling analysis result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading poll response: %w", err)
	}

	return body, nil
}
