package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// runMetrics collects the counters of one calibration run on a private registry.
type runMetrics struct {
	registry *prometheus.Registry

	personsLoaded   prometheus.Gauge
	tripsLoaded     prometheus.Gauge
	legsDropped     prometheus.Gauge
	personsDropped  prometheus.Gauge
	cohorts         prometheus.Gauge
	mixturesFitted  prometheus.Counter
	mixturesFailed  prometheus.Counter
	distanceFits    prometheus.Gauge
	jobDuration     *prometheus.GaugeVec
	lastSuccessTime *prometheus.GaugeVec
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		personsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calibration",
			Name:      "persons_loaded",
			Help:      "Survey persons read from the source.",
		}),
		tripsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calibration",
			Name:      "trips_loaded",
			Help:      "Survey trips read from the source.",
		}),
		legsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calibration",
			Name:      "legs_dropped",
			Help:      "Trips removed by time resolution.",
		}),
		personsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calibration",
			Name:      "persons_dropped",
			Help:      "Persons removed by time resolution.",
		}),
		cohorts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calibration",
			Name:      "cohorts",
			Help:      "Cohorts in the activity group table.",
		}),
		mixturesFitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "calibration",
			Name:      "mixtures_fitted_total",
			Help:      "Dwell-time mixtures fitted.",
		}),
		mixturesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "calibration",
			Name:      "mixtures_failed_total",
			Help:      "Dwell-time mixtures that could not be fitted.",
		}),
		distanceFits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calibration",
			Name:      "distance_fits",
			Help:      "Lognormal distance distributions fitted.",
		}),
		jobDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "calibration",
			Name:      "job_duration_seconds",
			Help:      "Wall time of each job.",
		}, []string{"job"}),
		lastSuccessTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "calibration",
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful job run.",
		}, []string{"job"}),
	}

	m.registry.MustRegister(
		m.personsLoaded, m.tripsLoaded, m.legsDropped, m.personsDropped, m.cohorts,
		m.mixturesFitted, m.mixturesFailed, m.distanceFits, m.jobDuration, m.lastSuccessTime,
	)
	return m
}

func (m *runMetrics) observeSurvey(persons []Person, trips []Trip) {
	m.personsLoaded.Set(float64(len(persons)))
	m.tripsLoaded.Set(float64(len(trips)))
}

func (m *runMetrics) observeTiming(stats TimingStats) {
	m.legsDropped.Set(float64(stats.LegsDropped))
	m.personsDropped.Set(float64(stats.PersonsDropped))
}

func (m *runMetrics) observeMixtures(stats MixtureStats) {
	m.mixturesFitted.Add(float64(stats.Fitted))
	m.mixturesFailed.Add(float64(stats.Failed))
}

func (m *runMetrics) observeDistances(dists DistanceDistributions) {
	var n int
	for _, byRegion := range dists {
		n += len(byRegion)
	}
	m.distanceFits.Set(float64(n))
}

func (m *runMetrics) observeJob(name string, started time.Time) {
	m.jobDuration.WithLabelValues(name).Set(time.Since(started).Seconds())
	m.lastSuccessTime.WithLabelValues(name).SetToCurrentTime()
}

// writeTextfile writes the registry in the node_exporter textfile format.
func (m *runMetrics) writeTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
