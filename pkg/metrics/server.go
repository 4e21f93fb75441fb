package metrics

import (
	"net/http"

	klog "k8s.io/klog/v2"
)

// Handler returns an HTTP handler serving the snapshot of the given
// registry for scraping.
func Handler(registry *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := registry.Snapshot()
		if err != nil {
			klog.ErrorS(err, "Cannot create metrics snapshot")
			http.Error(w, "cannot create metrics snapshot", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			klog.V(3).InfoS("Cannot write metrics snapshot", "err", err)
		}
	})
}
