// Package metrics exposes the ledger gauges and counters to Prometheus.
package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rony4d/go-vulcan/protocol"
	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

const (
	// Namespace is the basic namespace where all metrics are defined under.
	Namespace = "vulcan"

	subsystem = "ledger"
)

// NewCounter creates a Counter metrics under the global namespace.
func NewCounter(name, subsystem, help string, labels []string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

// NewGauge creates a Gauge metrics under the global namespace.
func NewGauge(name, subsystem, help string, labels []string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(prometheus.GaugeOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

var (
	totalSupply       = NewGauge("total_supply", subsystem, "Total supply in whole tokens", nil).WithLabelValues()
	circulatingSupply = NewGauge("circulating_supply", subsystem, "Total supply minus the fire pit balance, in whole tokens", nil).WithLabelValues()
	firePitBalance    = NewGauge("fire_pit_balance", subsystem, "Fire pit balance in whole tokens", nil).WithLabelValues()
	epoch             = NewGauge("epoch", subsystem, "Current epoch", nil).WithLabelValues()
	block             = NewGauge("block", subsystem, "Current block", nil).WithLabelValues()
	rebaseActive      = NewGauge("rebase_active", subsystem, "1 while rebasing is active", nil).WithLabelValues()
	slashCount        = NewGauge("slash_count", subsystem, "Number of fire pit slashes", nil).WithLabelValues()

	transfers = NewCounter("transfers_total", subsystem, "Transfers applied, by kind", []string{"kind"})
	failed    = NewCounter("transfers_failed_total", subsystem, "Transfers rejected, by kind", []string{"kind"})
)

// Transfer kinds used as label values.
const (
	KindTransfer = "transfer"
	KindGas      = "gas"
)

// ReportStatus updates the gauges from a ledger status.
func ReportStatus(st protocol.Status) {
	totalSupply.Set(Tokens(st.TotalSupply))
	circulatingSupply.Set(Tokens(st.CirculatingSupply))
	firePitBalance.Set(Tokens(st.FirePitBalance))
	epoch.Set(float64(st.Epoch))
	block.Set(float64(st.Block))
	slashCount.Set(float64(st.SlashCount))
	if st.RebaseActive {
		rebaseActive.Set(1)
	} else {
		rebaseActive.Set(0)
	}
}

// ReportTransfer counts a transfer attempt of the given kind.
func ReportTransfer(kind string, err error) {
	if err != nil {
		failed.WithLabelValues(kind).Inc()
		return
	}
	transfers.WithLabelValues(kind).Inc()
}

// Tokens converts a scaled amount into whole tokens, rounded to float64.
func Tokens(v u256.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v.Big()), new(big.Float).SetInt(vulcan.DecimalRange().Big())).Float64()
	return f
}
