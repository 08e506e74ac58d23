package cmd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/observatory-sim/observatory-sim/sim/trace"
)

// newMonitorRouter serves the simulation's Prometheus registry and a live
// JSON summary of the trace.
func newMonitorRouter(reg *prometheus.Registry, st *trace.SimulationTrace) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/api/summary", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(trace.Summarize(st)); err != nil {
			logrus.Warnf("Writing summary response: %v", err)
		}
	}).Methods(http.MethodGet)
	return r
}

// startMonitor serves handler on addr in the background.
func startMonitor(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("Monitor server on %s stopped: %v", addr, err)
		}
	}()
	logrus.Infof("Serving metrics on http://%s/metrics", addr)
	return srv
}
