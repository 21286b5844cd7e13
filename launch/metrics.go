package launch

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts engine activity. A nil *Metrics disables collection, so
// every method is nil-safe.
type Metrics struct {
	buys           prometheus.Counter
	sells          prometheus.Counter
	graduations    prometheus.Counter
	feeVolume      prometheus.Counter
	activeLaunches prometheus.Gauge
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		buys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "buys",
			Help:      "number of curve buys executed",
		}),
		sells: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "sells",
			Help:      "number of curve sells executed",
		}),
		graduations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "graduations",
			Help:      "number of launches graduated to the liquidity venue",
		}),
		feeVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "fee_volume",
			Help:      "total fees charged, in quote wei",
		}),
		activeLaunches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launchpad",
			Name:      "active_launches",
			Help:      "number of launches not yet graduated",
		}),
	}
	for _, c := range []prometheus.Collector{m.buys, m.sells, m.graduations, m.feeVolume, m.activeLaunches} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) buyExecuted() {
	if m == nil {
		return
	}
	m.buys.Inc()
}

func (m *Metrics) sellExecuted() {
	if m == nil {
		return
	}
	m.sells.Inc()
}

func (m *Metrics) graduationExecuted() {
	if m == nil {
		return
	}
	m.graduations.Inc()
	m.activeLaunches.Dec()
}

func (m *Metrics) launchCreated() {
	if m == nil {
		return
	}
	m.activeLaunches.Inc()
}

func (m *Metrics) feeCharged(amount *big.Int) {
	if m == nil || amount == nil {
		return
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	m.feeVolume.Add(f)
}
