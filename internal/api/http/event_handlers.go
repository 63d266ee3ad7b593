package http

import (
	"database/sql"
	"net/http"

	"github.com/brightprep/brightprep-erp/internal/eventlog"
)

// GET /erp/events?limit= — newest audit events first.
func RecentEventsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := eventlog.Recent(r.Context(), db, parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}
