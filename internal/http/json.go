package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
)

// errInvalidBody is returned to clients whose request body could not
// be parsed as JSON.
var errInvalidBody = errors.New("Invalid JSON body")

// DecodeJSON decodes JSON from the request body into the destination
// and handles errors. Unknown fields are tolerated: workflows attach
// arbitrary metadata alongside job_id and result. Returns true if
// successful, false if an error response was already written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, errInvalidBody)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// WriteError writes a JSON error body of the form {"error": "..."}.
// The shape is part of the relay's contract with polling clients.
func WriteError(w http.ResponseWriter, code int, err error) {
	WriteJSON(w, code, map[string]string{"error": err.Error()})
}
