package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort      = "8082"
	defaultAPIKey    = "responder-secret-key"
	defaultLatencyMs = "200"
)

// OracleRequest is the dispatch payload sent by bridgeid.
type OracleRequest struct {
	CorrelationID    string `json:"correlation_id"`
	CorrelationTag   string `json:"correlation_tag"`
	Fee              string `json:"fee"`
	SubjectID        string `json:"subject_id"`
	DID              string `json:"did"`
	DestinationChain string `json:"destination_chain"`
	Responder        string `json:"responder"`
	CallbackURL      string `json:"callback_url"`
}

type fulfillRequest struct {
	ResultCode int64 `json:"result_code"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var (
	apiKey      = getEnv("API_KEY", defaultAPIKey)
	latencyMs   = getEnvInt("LATENCY_MS", defaultLatencyMs)
	callerToken = os.Getenv("CALLER_TOKEN")
	client      = &http.Client{Timeout: 10 * time.Second}
)

// Magic DIDs let e2e runs pick the outcome or the failure mode.
var (
	rejectedDIDs = map[string]bool{
		"did:example:rejected": true,
		"did:example:revoked":  true,
	}
	unavailableDIDs = map[string]bool{
		"did:example:outage": true,
	}
	silentDIDs = map[string]bool{
		"did:example:silent": true, // accepted but never answered; shows up as stale
	}
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/requests", handleRequest)

	log.Printf("Mock responder starting on port %s", port)
	log.Printf("Simulated latency: %dms", latencyMs)
	if callerToken == "" {
		log.Printf("CALLER_TOKEN not set; callbacks will be rejected by bridgeid")
	}

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "responder",
	})
}

func handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := r.Header.Get("X-API-Key")
	if key == "" {
		sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
		return
	}
	if key != apiKey {
		sendError(w, "Invalid API key", http.StatusUnauthorized)
		return
	}

	var req OracleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.CorrelationID == "" || req.CallbackURL == "" {
		sendError(w, "correlation_id and callback_url are required", http.StatusBadRequest)
		return
	}
	if unavailableDIDs[req.DID] {
		sendError(w, "Responder temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	log.Printf("Accepted request %s for subject %s on %s", req.CorrelationID, req.SubjectID, req.DestinationChain)
	writeJSON(w, http.StatusAccepted, map[string]string{"correlation_id": req.CorrelationID})

	if silentDIDs[req.DID] {
		return
	}
	go answer(req)
}

// answer waits for the simulated latency, then posts the verdict back.
func answer(req OracleRequest) {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	body, err := json.Marshal(fulfillRequest{ResultCode: verdict(req.DID)})
	if err != nil {
		log.Printf("encode callback for %s: %v", req.CorrelationID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.CallbackURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("build callback for %s: %v", req.CorrelationID, err)
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if callerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+callerToken)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		log.Printf("callback for %s failed: %v", req.CorrelationID, err)
		return
	}
	defer resp.Body.Close()
	log.Printf("Callback for %s returned %d", req.CorrelationID, resp.StatusCode)
}

// verdict is deterministic per DID. Unlisted DIDs verify unless their hash
// ends in a zero byte.
func verdict(did string) int64 {
	if rejectedDIDs[did] {
		return 0
	}
	sum := sha256.Sum256([]byte(strings.ToLower(did)))
	if sum[len(sum)-1] == 0 {
		return 0
	}
	return 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
	log.Printf("Error response: %d - %s", code, message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
