// Package slash implements the periodic fire pit burn.
//
// On every burn boundary the engine compares the fire pit balance against a
// threshold of 51% of a baseline supply: the circulating supply
// (totalSupply - fire pit) or the fixed initial supply. Everything above the
// threshold is burned. Two accounting strategies define how the fragment
// space reacts to the burn, see Legacy and Revirtualize.
package slash

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-vulcan/ledger"
	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

// Accounting removes a burned amount from the store.
type Accounting interface {
	Name() string
	Burn(store *ledger.Store, account string, amount u256.Int) error
}

// Legacy decrements the supply and the sink fragments and keeps
// totalFragments, so the rate grows.
type Legacy struct{}

// Name implements Accounting.
func (Legacy) Name() string { return "legacy" }

// Burn implements Accounting.
func (Legacy) Burn(store *ledger.Store, account string, amount u256.Int) error {
	_, err := store.Burn(account, amount)
	return err
}

// Revirtualize decrements the supply and the sink fragments and rebuilds
// totalFragments as the new supply at the pre-burn rate.
type Revirtualize struct{}

// Name implements Accounting.
func (Revirtualize) Name() string { return "revirtualize" }

// Burn implements Accounting.
func (Revirtualize) Burn(store *ledger.Store, account string, amount u256.Int) error {
	_, err := store.BurnRevirtualize(account, amount)
	return err
}

// Config parameterises an Engine.
type Config struct {
	Enabled    bool
	StartEpoch idx.Epoch // first previous-epoch index eligible for slashing
	StopEpoch  idx.Epoch // last previous-epoch index eligible for slashing
	Sink       string

	// UseInitialSupply selects InitialSupply as the threshold baseline
	// instead of the circulating supply.
	UseInitialSupply bool
	InitialSupply    u256.Int

	// ThresholdPercent is the share of the baseline the sink may keep.
	ThresholdPercent uint64
}

// Stats summarises past slashes.
type Stats struct {
	Count uint64   // slashes that burned a positive amount
	Total u256.Int // scaled units burned in total
}

// Result describes one slash evaluation.
type Result struct {
	Epoch       idx.Epoch
	SinkBalance u256.Int
	Threshold   u256.Int
	Burned      u256.Int
}

// Engine evaluates and applies slashes. It is not safe for concurrent use.
type Engine struct {
	cfg        Config
	accounting Accounting
	stats      Stats
	log        logrus.FieldLogger
}

// New returns an engine using accounting for burns.
func New(cfg Config, accounting Accounting, log logrus.FieldLogger) *Engine {
	return &Engine{
		cfg:        cfg,
		accounting: accounting,
		log:        log.WithField("module", "slash"),
	}
}

// Accounting returns the configured burn strategy.
func (e *Engine) Accounting() Accounting { return e.accounting }

// Due reports whether a burn boundary reached on entering epoch must slash:
// slashing is enabled and the previous epoch lies in [StartEpoch, StopEpoch].
func (e *Engine) Due(epoch idx.Epoch) bool {
	if !e.cfg.Enabled || epoch == 0 {
		return false
	}
	prev := epoch - 1
	return prev >= e.cfg.StartEpoch && prev <= e.cfg.StopEpoch
}

// Threshold returns baseline * ThresholdPercent / 100 for the current store.
func (e *Engine) Threshold(store *ledger.Store) (u256.Int, error) {
	baseline := e.cfg.InitialSupply
	if !e.cfg.UseInitialSupply {
		circulating, err := store.TotalSupply().Sub(store.Balance(e.cfg.Sink))
		if err != nil {
			circulating = u256.Zero()
		}
		baseline = circulating
	}
	scaled, err := baseline.Mul(u256.New(e.cfg.ThresholdPercent))
	if err != nil {
		return u256.Int{}, err
	}
	return scaled.Div(u256.New(vulcan.PercentDivisor))
}

// Slash burns the part of the sink balance above the threshold. A sink at
// or below the threshold burns nothing and is not counted.
func (e *Engine) Slash(store *ledger.Store, epoch idx.Epoch) (Result, error) {
	res := Result{Epoch: epoch, SinkBalance: store.Balance(e.cfg.Sink)}

	threshold, err := e.Threshold(store)
	if err != nil {
		return res, fmt.Errorf("slash threshold: %w", err)
	}
	res.Threshold = threshold

	log := e.log.WithFields(logrus.Fields{
		"epoch":     epoch,
		"sink":      res.SinkBalance.Commify(),
		"threshold": threshold.Commify(),
		"supply":    store.TotalSupply().Commify(),
	})
	if res.SinkBalance.Lt(threshold) {
		log.Debug("Fire pit below threshold")
		return res, nil
	}
	amount, err := res.SinkBalance.Sub(threshold)
	if err != nil {
		return res, err
	}
	if amount.IsZero() {
		log.Info("Zero amount to burn")
		return res, nil
	}
	total, err := e.stats.Total.Add(amount)
	if err != nil {
		return res, err
	}
	if err := e.accounting.Burn(store, e.cfg.Sink, amount); err != nil {
		return res, fmt.Errorf("burn %s from %s: %w", amount, e.cfg.Sink, err)
	}
	e.stats.Total = total
	e.stats.Count++
	res.Burned = amount

	log.WithFields(logrus.Fields{
		"burned":     amount.Commify(),
		"accounting": e.accounting.Name(),
		"rate":       store.FragmentsPerUnit().Truncate(12),
	}).Info("Fire pit slashed")
	return res, nil
}

// Stats returns the slash counters.
func (e *Engine) Stats() Stats { return e.stats }
