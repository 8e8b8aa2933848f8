package scenario

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts step outcomes and records the final size of every train.
// A nil *Metrics records nothing.
type Metrics struct {
	steps  *prometheus.CounterVec
	wagons *prometheus.GaugeVec
	load   *prometheus.GaugeVec
}

// NewMetrics creates the scenario collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consist_scenario_steps_total",
				Help: "Scenario steps executed, by operation and result.",
			},
			[]string{"op", "result"},
		),
		wagons: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "consist_train_wagons",
				Help: "Wagons coupled to each train after the last step.",
			},
			[]string{"train"},
		),
		load: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "consist_train_load",
				Help: "Total seats of a passenger train or total max weight of a freight train.",
			},
			[]string{"train", "kind"},
		),
	}
	for _, c := range []prometheus.Collector{m.steps, m.wagons, m.load} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeStep(res StepResult) {
	if m == nil {
		return
	}
	result := "ok"
	if !res.OK {
		result = "rejected"
	}
	m.steps.WithLabelValues(res.Op, result).Inc()
}

func (m *Metrics) observeTrains(rep *Report) {
	if m == nil {
		return
	}
	for _, nt := range rep.Trains {
		m.wagons.WithLabelValues(nt.Name).Set(float64(nt.Train.WagonCount()))
		kind, ok := nt.Train.Kind()
		if !ok {
			continue
		}
		m.load.WithLabelValues(nt.Name, string(kind)).Set(float64(nt.Train.TotalSeats() + nt.Train.TotalMaxWeight()))
	}
}
