package analysis

import "encoding/json"

// Operation status values reported by the analysis API.
const (
	StatusNotStarted = "notStarted"
	StatusRunning    = "running"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

// AnalyzeResultOperation is the body returned when polling an analysis job.
// AnalyzeResult is absent until the job succeeds; Error is absent unless it
// failed. The error payload is kept raw because its shape is not stable
// across API versions.
type AnalyzeResultOperation struct {
	Status              string          `json:"status"`
	CreatedDateTime     string          `json:"createdDateTime"`
	LastUpdatedDateTime string          `json:"lastUpdatedDateTime"`
	Error               json.RawMessage `json:"error,omitempty"`
	AnalyzeResult       *AnalyzeResult  `json:"analyzeResult,omitempty"`
}

// AnalyzeResult is the completed analysis payload. Everything below the
// document list is treated as optional: the service omits sections that do
// not apply to the submitted document.
type AnalyzeResult struct {
	APIVersion      string     `json:"apiVersion"`
	ModelID         string     `json:"modelId"`
	StringIndexType string     `json:"stringIndexType"`
	Content         string     `json:"content"`
	Documents       []Document `json:"documents,omitempty"`
}

// Document is one recognized document instance within an analysis result.
type Document struct {
	DocType         string           `json:"docType"`
	BoundingRegions []BoundingRegion `json:"boundingRegions"`
	Spans           []Span           `json:"spans"`
	Fields          map[string]Field `json:"fields"`
	Confidence      float64          `json:"confidence"`
}

// DecodeOperation parses a raw poll-response body.
func DecodeOperation(data []byte) (*AnalyzeResultOperation, error) {
	var op AnalyzeResultOperation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, err
	}

	return &op, nil
}
