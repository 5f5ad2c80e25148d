// Package respond writes API bodies: cached standings and leader documents
// with their validators, plain JSON objects, and the error envelope.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Values of the X-Cache header.
const (
	CacheHit      = "HIT"      // served from the in-memory response cache
	CacheStored   = "STORED"   // read from the cached document store
	CacheComputed = "COMPUTED" // no cached document; computed for this request
)

const noStore = "no-cache, no-store, must-revalidate"

// ErrorBody carries a machine-readable code, a message and optional detail.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse is the envelope every error status is sent in.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON sends an encoded document. cacheStatus is one of the X-Cache
// values; ttl sets max-age, with half of it allowed as stale.
func WriteJSON(w http.ResponseWriter, data []byte, etag string, ttl time.Duration, cacheStatus string) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("ETag", etag)
	h.Set("Vary", "Accept-Encoding")
	h.Set("X-Cache", cacheStatus)
	h.Set("Cache-Control", documentCacheControl(ttl))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// WriteNotModified answers a matching If-None-Match.
func WriteNotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
}

// WriteError sends an error envelope without detail.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorDetail(w, status, code, message, "")
}

// WriteErrorDetail sends an error envelope. Errors are never cached.
func WriteErrorDetail(w http.ResponseWriter, status int, code, message, detail string) {
	w.Header().Set("Cache-Control", noStore)
	WriteJSONObject(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Detail: detail}})
}

// WriteJSONObject encodes v with the given status: jobs, seasons, health.
func WriteJSONObject(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func documentCacheControl(ttl time.Duration) string {
	maxAge := int(ttl.Seconds())
	return fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, maxAge/2)
}
