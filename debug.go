/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type stats struct {
	draws      prometheus.Counter
	joinErrors *prometheus.CounterVec
}

func newStats() *stats {
	return &stats{
		draws: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "luckydraw_draws_total",
			Help: "Number of completed draws.",
		}),
		joinErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luckydraw_join_errors_total",
			Help: "Number of failed host joins, by reason.",
		}, []string{"reason"}),
	}
}

func registerProfileHandlers(cfg *Config, mux *httprouter.Router) {
	mux.Handler("GET", cfg.prefix+"/pprof/allocs", pprof.Handler("allocs"))
	mux.Handler("GET", cfg.prefix+"/pprof/block", pprof.Handler("block"))
	mux.Handler("GET", cfg.prefix+"/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handler("GET", cfg.prefix+"/pprof/heap", pprof.Handler("heap"))
	mux.Handler("GET", cfg.prefix+"/pprof/mutex", pprof.Handler("mutex"))
	mux.Handler("GET", cfg.prefix+"/pprof/threadcreate", pprof.Handler("threadcreate"))
	mux.HandlerFunc("GET", cfg.prefix+"/pprof/cmdline", pprof.Cmdline)
	mux.HandlerFunc("GET", cfg.prefix+"/pprof/profile", pprof.Profile)
	mux.HandlerFunc("GET", cfg.prefix+"/pprof/symbol", pprof.Symbol)
	mux.HandlerFunc("GET", cfg.prefix+"/pprof/trace", pprof.Trace)
}

// registerMetricsHandler exposes room, connection and draw counts on a
// registry private to this server.
func registerMetricsHandler(cfg *Config, mux *httprouter.Router, gm *RoomManager, d *Dispatcher) {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		d.stats.draws,
		d.stats.joinErrors,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "luckydraw_rooms",
			Help: "Number of rooms currently held in memory.",
		}, func() float64 {
			return float64(gm.count())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "luckydraw_connections",
			Help: "Number of open websocket connections.",
		}, func() float64 {
			return float64(d.connectionCount())
		}),
	)

	mux.Handler("GET", cfg.prefix+"/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
