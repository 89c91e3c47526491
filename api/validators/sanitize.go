package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MaxPathParamLength caps route params such as orderId; order and user ids
// are uuids, so anything longer is already invalid.
const MaxPathParamLength = 64

// TrimParam trims a path, header or query value and caps its length.
func TrimParam(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// PathParam reads a chi route param trimmed to MaxPathParamLength.
func PathParam(r *http.Request, name string) string {
	return TrimParam(chi.URLParam(r, name), MaxPathParamLength)
}
