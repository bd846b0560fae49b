package metrics

import (
	"encoding/json"
	"net/http"
)

// Handler serves the snapshot as JSON. With ?query=<name> only that query
// shape is returned, or 404 if it has not been fetched yet.
func (c *Collector) Handler(strategy string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := c.Snapshot(strategy)

		var body any = snap
		if name := r.URL.Query().Get("query"); name != "" {
			qm, ok := snap.Queries[name]
			if !ok {
				http.Error(w, "no metrics for query "+name, http.StatusNotFound)
				return
			}
			body = qm
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
