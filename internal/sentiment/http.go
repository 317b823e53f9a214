package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/riskscan/internal/model"
)

const (
	// DefaultHTTPTimeout is the HTTP client timeout for one classification.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultMaxChars is the number of runes sent per sentence. Longer
	// sentences are truncated to fit the model's input window.
	DefaultMaxChars = 512
)

// classIDLabels maps numeric class labels ("LABEL_1") of a three-class
// financial sentiment model to labels.
var classIDLabels = map[int]model.Label{
	0: model.LabelPositive,
	1: model.LabelNegative,
	2: model.LabelNeutral,
}

// HTTPClassifier classifies sentences with an external model server.
//
// Each call POSTs {"text": "..."} to the endpoint. The server may reply with
// a single {"label": ..., "score": ...} object or with a list of them, in
// which case the highest score wins.
type HTTPClassifier struct {
	endpoint   string
	token      string
	maxChars   int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ Classifier = (*HTTPClassifier)(nil)

// HTTPOption configures an HTTPClassifier.
type HTTPOption func(*HTTPClassifier)

// WithToken sets a bearer token sent in the Authorization header.
func WithToken(token string) HTTPOption {
	return func(c *HTTPClassifier) {
		c.token = token
	}
}

// WithMaxChars sets the truncation length in runes. Values <= 0 disable truncation.
func WithMaxChars(n int) HTTPOption {
	return func(c *HTTPClassifier) {
		c.maxChars = n
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClassifier) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit limits requests per second. Values <= 0 disable limiting.
func WithRateLimit(rps float64) HTTPOption {
	return func(c *HTTPClassifier) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPClassifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewHTTPClassifier creates a classifier that calls endpoint.
func NewHTTPClassifier(endpoint string, opts ...HTTPOption) *HTTPClassifier {
	c := &HTTPClassifier{
		endpoint: endpoint,
		maxChars: DefaultMaxChars,
		httpClient: &http.Client{
			Timeout: DefaultHTTPTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when the model server answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classifier returned status %d: %s", e.StatusCode, e.Body)
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends sentence to the model server and returns its prediction.
func (c *HTTPClassifier) Classify(ctx context.Context, sentence string) (Classification, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return Classification{}, ErrEmptyInput
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Classification{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(classifyRequest{Text: truncate(sentence, c.maxChars)})
	if err != nil {
		return Classification{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Classification{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("classifier request", "endpoint", c.endpoint, "chars", len(sentence))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Classification{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Classification{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return decodeClassification(data)
}

// decodeClassification accepts a single result object, a list of results,
// or a list of lists as returned by batch pipelines.
func decodeClassification(data []byte) (Classification, error) {
	var results []classifyResult

	var single classifyResult
	if err := json.Unmarshal(data, &single); err == nil && single.Label != "" {
		results = []classifyResult{single}
	} else if err := json.Unmarshal(data, &results); err != nil {
		var nested [][]classifyResult
		if nerr := json.Unmarshal(data, &nested); nerr != nil || len(nested) == 0 {
			return Classification{}, fmt.Errorf("%w: %s", ErrUnexpectedResponse, strings.TrimSpace(string(data)))
		}
		results = nested[0]
	}

	var best *classifyResult
	for i := range results {
		if best == nil || results[i].Score > best.Score {
			best = &results[i]
		}
	}
	if best == nil {
		return Classification{}, fmt.Errorf("%w: no predictions", ErrUnexpectedResponse)
	}

	label, ok := resolveLabel(best.Label)
	if !ok {
		return Classification{}, fmt.Errorf("%w: unknown label %q", ErrUnexpectedResponse, best.Label)
	}
	if best.Score < 0 || best.Score > 1 {
		return Classification{}, fmt.Errorf("%w: score %v out of range", ErrUnexpectedResponse, best.Score)
	}

	return Classification{Label: label, Score: best.Score}, nil
}

// resolveLabel accepts textual labels and numeric "LABEL_n" class ids.
func resolveLabel(s string) (model.Label, bool) {
	if label, ok := model.ParseLabel(s); ok {
		return label, true
	}
	id, found := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(s)), "LABEL_")
	if !found {
		return "", false
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return "", false
	}
	label, ok := classIDLabels[n]
	return label, ok
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
