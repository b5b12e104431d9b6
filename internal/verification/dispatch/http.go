package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPConfig configures an HTTPDispatcher.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// HTTPDispatcher posts requests to the responder's HTTP intake endpoint.
type HTTPDispatcher struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

func NewHTTP(cfg HTTPConfig) *HTTPDispatcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPDispatcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

type wireRequest struct {
	CorrelationID    string `json:"correlation_id"`
	CorrelationTag   string `json:"correlation_tag"`
	Fee              string `json:"fee"`
	SubjectID        string `json:"subject_id"`
	DID              string `json:"did"`
	DestinationChain string `json:"destination_chain"`
	Responder        string `json:"responder"`
	CallbackURL      string `json:"callback_url"`
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, req OracleRequest) error {
	fee := "0"
	if req.Fee != nil {
		fee = req.Fee.String()
	}
	body, err := json.Marshal(wireRequest{
		CorrelationID:    req.CorrelationID.String(),
		CorrelationTag:   hexutil.Encode(req.CorrelationTag),
		Fee:              fee,
		SubjectID:        req.SubjectID.String(),
		DID:              req.DID,
		DestinationChain: req.DestinationChain,
		Responder:        req.Responder.Hex(),
		CallbackURL:      req.CallbackURL,
	})
	if err != nil {
		return NewDispatchError(ErrorInternal, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/requests", bytes.NewReader(body))
	if err != nil {
		return NewDispatchError(ErrorInternal, "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		httpReq.Header.Set("X-API-Key", d.apiKey)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
			return NewDispatchError(ErrorTimeout, "responder timeout", 0, err)
		}
		return NewDispatchError(ErrorOutage, "failed to reach responder", 0, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDispatchError(ErrorAuthentication, "responder refused credentials", resp.StatusCode, nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return NewDispatchError(ErrorOutage, fmt.Sprintf("responder unavailable: %d", resp.StatusCode), resp.StatusCode, nil)
	default:
		return NewDispatchError(ErrorRejected, fmt.Sprintf("responder rejected request: %d", resp.StatusCode), resp.StatusCode, nil)
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
