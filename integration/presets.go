package integration

import (
	"fmt"

	"github.com/rony4d/go-vulcan/vulcan"
	"github.com/rony4d/go-vulcan/vulcan/genesis"
)

// Package integration provides scenario presets for assembling a ledger.
// Presets bundle the slash accounting and rebase options into named
// profiles so operators can reproduce a known scenario with one flag
// instead of several.
//
// Usage:
//   preset, err := integration.GetPresetByName("firepit-mod")
//   integration.ApplyPreset(&rules, &cfg, preset)

// PresetConfig captures the options that vary across scenarios.
type PresetConfig struct {
	Name                 string            // identifier used by --preset
	RebaseMode           vulcan.RebaseMode // linear or compounding growth
	SlashFirePit         bool              // whether the fire pit is slashed at all
	FirepitMod           bool              // keep the fragment rate when burning
	SlashUsingInitSupply bool              // measure the fire pit against the initial supply
}

// LegacyPreset slashes the fire pit with the original accounting: the burn
// changes the fragments per unit, so every holder's balance moves.
func LegacyPreset() PresetConfig {
	return PresetConfig{
		Name:         "legacy",
		RebaseMode:   vulcan.RebaseLinear,
		SlashFirePit: true,
	}
}

// FirepitModPreset burns only from the fire pit: the total fragments are
// re-derived from the new supply so other balances are unchanged.
func FirepitModPreset() PresetConfig {
	cfg := LegacyPreset()
	cfg.Name = "firepit-mod"
	cfg.FirepitMod = true
	return cfg
}

// InitSupplyPreset is FirepitModPreset with the threshold measured against
// the initial supply.
func InitSupplyPreset() PresetConfig {
	cfg := FirepitModPreset()
	cfg.Name = "init-supply"
	cfg.SlashUsingInitSupply = true
	return cfg
}

// CompoundingPreset replaces linear minting with compounding projection.
func CompoundingPreset() PresetConfig {
	cfg := FirepitModPreset()
	cfg.Name = "compounding"
	cfg.RebaseMode = vulcan.RebaseCompounding
	return cfg
}

// PresetNames lists the known presets.
func PresetNames() []string {
	return []string{"legacy", "firepit-mod", "init-supply", "compounding"}
}

// GetPresetByName looks up a preset by its identifier.
//
// Example:
//
//	preset, err := integration.GetPresetByName("legacy")
//	if err != nil {
//	    log.Fatal(err)
//	}
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "legacy":
		return LegacyPreset(), nil
	case "firepit-mod":
		return FirepitModPreset(), nil
	case "init-supply":
		return InitSupplyPreset(), nil
	case "compounding":
		return CompoundingPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: legacy, firepit-mod, init-supply, compounding)", name)
	}
}

// ApplyPreset merges a preset into rules and a genesis configuration. The
// slash window and tax rates are left alone.
func ApplyPreset(rules *vulcan.Rules, cfg *genesis.Config, preset PresetConfig) {
	if preset.RebaseMode != "" {
		rules.Rebase.Mode = preset.RebaseMode
	}
	// boolean flags are always applied
	cfg.SlashFirePit = preset.SlashFirePit
	cfg.FirepitMod = preset.FirepitMod
	cfg.SlashUsingInitSupply = preset.SlashUsingInitSupply
}
