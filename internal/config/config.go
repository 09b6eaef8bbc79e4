package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Market     MarketConfig     `yaml:"market"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// MarketConfig selects which Grid Status datasets supply the two price
// series.
type MarketConfig struct {
	Name            string `yaml:"name"`              // e.g. "PJM"
	DayAheadDataset string `yaml:"day_ahead_dataset"` // hourly clearing prices
	RealTimeDataset string `yaml:"real_time_dataset"` // 5-minute prices
	LocationType    string `yaml:"location_type"`     // e.g. "HUB"
}

// SimulationConfig controls phase and clock behavior.
type SimulationConfig struct {
	// CutoffHour is the clock hour at and after which no new bids are
	// accepted during BIDDING phase.
	CutoffHour int `yaml:"cutoff_hour"`
	// DefaultHour is where the clock lands on phase transitions when no
	// bid hour dictates a later one.
	DefaultHour int `yaml:"default_hour"`
	// BiddingDate / DeliveryDate are the two fixed reference days
	// (YYYY-MM-DD). If empty, they default to yesterday and today.
	BiddingDate  string `yaml:"bidding_date"`
	DeliveryDate string `yaml:"delivery_date"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Market: MarketConfig{
			Name:            "PJM",
			DayAheadDataset: "pjm_lmp_day_ahead_hourly",
			RealTimeDataset: "pjm_lmp_real_time_5_min",
			LocationType:    "HUB",
		},
		Simulation: SimulationConfig{
			// Default hour sits before the cutoff so a round trip back to
			// BIDDING leaves the window open.
			CutoffHour:  11,
			DefaultHour: 8,
		},
	}
}

// Load reads, merges with defaults, and validates a YAML config file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Market.Name == "" {
		return errors.New("market.name is required")
	}
	if c.Market.DayAheadDataset == "" || c.Market.RealTimeDataset == "" {
		return errors.New("market.day_ahead_dataset and market.real_time_dataset are required")
	}
	if c.Simulation.CutoffHour < 0 || c.Simulation.CutoffHour > 23 {
		return fmt.Errorf("simulation.cutoff_hour must be in [0,23], got %d", c.Simulation.CutoffHour)
	}
	if c.Simulation.DefaultHour < 0 || c.Simulation.DefaultHour > 23 {
		return fmt.Errorf("simulation.default_hour must be in [0,23], got %d", c.Simulation.DefaultHour)
	}
	if _, err := c.BiddingDate(); err != nil {
		return fmt.Errorf("simulation.bidding_date: %w", err)
	}
	if _, err := c.DeliveryDate(); err != nil {
		return fmt.Errorf("simulation.delivery_date: %w", err)
	}
	return nil
}

// BiddingDate returns the bidding reference day (D-1). Defaults to
// yesterday (UTC) when unset, matching the data window that Grid Status
// has fully published.
func (c *Config) BiddingDate() (time.Time, error) {
	if c.Simulation.BiddingDate == "" {
		return midnightUTC(time.Now().UTC().AddDate(0, 0, -1)), nil
	}
	return time.Parse("2006-01-02", c.Simulation.BiddingDate)
}

// DeliveryDate returns the delivery reference day (D0). Defaults to the
// day after the bidding date.
func (c *Config) DeliveryDate() (time.Time, error) {
	if c.Simulation.DeliveryDate == "" {
		bd, err := c.BiddingDate()
		if err != nil {
			return time.Time{}, err
		}
		return bd.AddDate(0, 0, 1), nil
	}
	return time.Parse("2006-01-02", c.Simulation.DeliveryDate)
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
