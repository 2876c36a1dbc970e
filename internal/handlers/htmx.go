package handlers

import "net/http"

// isHTMX reports requests issued by htmx, boosted navigations included.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("HX-Boosted") == "true"
}

// refreshPage tells htmx to reload the whole page instead of swapping a
// fragment.
func refreshPage(w http.ResponseWriter) {
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusNoContent)
}
