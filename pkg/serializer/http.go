package serializer

import (
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	Respond(w, statusCode, FormatJSON, data)
}

// Respond writes data in the requested format. Encoding happens before any
// header is written so a failure never produces a partial body.
func Respond(w http.ResponseWriter, statusCode int, format Format, data any) {
	if format != FormatYAML {
		format = FormatJSON
	}
	b, err := Encode(format, data)
	if err != nil {
		slog.Error("response encoding failed", "error", err, "format", format)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if format == FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(statusCode)
	if _, err := w.Write(b); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}
