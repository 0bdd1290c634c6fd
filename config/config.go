// Package config loads cmd/frostd's TOML configuration files, the way
// drand's core.Config is assembled from a decoded group.toml plus flag
// overrides: a thin, TOML-decodable mirror of the knobs node.Engine and
// coordinator.Coordinator actually take, translated into the real types
// at load time rather than threaded through as raw strings.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/meshsig/frost/coordinator"
)

// PeerEntry describes one known participant: its self-certifying node
// id (informational, re-derived from PublicKey at load time so a typo
// in the file is caught rather than silently trusted), network address
// (unused by transport/local but carried for a future real transport),
// and long-term public key.
type PeerEntry struct {
	NodeID    string `toml:"node_id"`
	Address   string `toml:"address"`
	PublicKey string `toml:"public_key"`
}

// Config is the on-disk shape of a frostd node's configuration file.
type Config struct {
	Network       string      `toml:"network"`
	AppName       string      `toml:"app_name"`
	PrivateKeyHex string      `toml:"private_key"`
	Peers         []PeerEntry `toml:"peers"`
	Debug         bool        `toml:"debug"`

	RemoveThreshold     float64 `toml:"remove_threshold"`
	TimeoutPenalty      float64 `toml:"timeout_penalty"`
	ErrorPenalty        float64 `toml:"error_penalty"`
	MaliciousPenalty    float64 `toml:"malicious_penalty"`
	DecayHalfLife       string  `toml:"decay_half_life"`
	ReputationCacheSize int     `toml:"reputation_cache_size"`
	RoundTimeout        string  `toml:"round_timeout"`
	ConcurrencyLimit    int64   `toml:"concurrency_limit"`
	NonceLowWaterMark   int     `toml:"nonce_low_water_mark"`
	NonceWaitTimeout    string  `toml:"nonce_wait_timeout"`
	NonceMaxRetries     int     `toml:"nonce_max_retries"`
}

// Load decodes a TOML file at path into a Config seeded with
// DefaultConfig's values, so a file only needs to override what it
// cares about.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig mirrors coordinator.DefaultConfig in TOML-friendly
// form (durations as strings, decay rate as a half-life).
func DefaultConfig() *Config {
	d := coordinator.DefaultConfig()
	return &Config{
		Network:             "frostd",
		AppName:             "frostd",
		RemoveThreshold:     d.RemoveThreshold,
		TimeoutPenalty:      d.TimeoutPenalty,
		ErrorPenalty:        d.ErrorPenalty,
		MaliciousPenalty:    d.MaliciousPenalty,
		DecayHalfLife:       "5m0s",
		ReputationCacheSize: d.ReputationCacheSize,
		RoundTimeout:        d.RoundTimeout.String(),
		ConcurrencyLimit:    d.ConcurrencyLimit,
		NonceLowWaterMark:   d.NonceLowWaterMark,
		NonceWaitTimeout:    d.NonceWaitTimeout.String(),
		NonceMaxRetries:     d.NonceMaxRetries,
	}
}

// CoordinatorConfig translates the TOML-friendly fields into a
// coordinator.Config, parsing durations and converting the
// half-life into coordinator.Config's decay-rate-per-second form
// (rate = ln(2) / halfLife).
func (c *Config) CoordinatorConfig() (coordinator.Config, error) {
	roundTimeout, err := time.ParseDuration(c.RoundTimeout)
	if err != nil {
		return coordinator.Config{}, fmt.Errorf("config: parsing round_timeout: %w", err)
	}
	nonceWaitTimeout, err := time.ParseDuration(c.NonceWaitTimeout)
	if err != nil {
		return coordinator.Config{}, fmt.Errorf("config: parsing nonce_wait_timeout: %w", err)
	}
	halfLife, err := time.ParseDuration(c.DecayHalfLife)
	if err != nil {
		return coordinator.Config{}, fmt.Errorf("config: parsing decay_half_life: %w", err)
	}
	if halfLife <= 0 {
		return coordinator.Config{}, fmt.Errorf("config: decay_half_life must be positive")
	}

	return coordinator.Config{
		RemoveThreshold:     c.RemoveThreshold,
		TimeoutPenalty:      c.TimeoutPenalty,
		ErrorPenalty:        c.ErrorPenalty,
		MaliciousPenalty:    c.MaliciousPenalty,
		DecayRate:           math.Ln2 / halfLife.Seconds(),
		ReputationCacheSize: c.ReputationCacheSize,
		RoundTimeout:        roundTimeout,
		ConcurrencyLimit:    c.ConcurrencyLimit,
		NonceLowWaterMark:   c.NonceLowWaterMark,
		NonceWaitTimeout:    nonceWaitTimeout,
		NonceMaxRetries:     c.NonceMaxRetries,
	}, nil
}
