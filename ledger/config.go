// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the parameters consumed by the commit pipeline.
// Zero values are not meaningful, start from DefaultConfig.
type Config struct {
	Staking  StakingConfig  `yaml:"staking"`
	Accounts AccountsConfig `yaml:"accounts"`
	Tokens   TokensConfig   `yaml:"tokens"`
}

type StakingConfig struct {
	RewardHistory RewardHistoryConfig `yaml:"rewardHistory"`
	// RewardRate is the numerator of the per-period reward rate, in tinybars.
	RewardRate int64 `yaml:"rewardRate"`
	// StartThreshold is the funding account balance that activates rewards.
	StartThreshold          int64 `yaml:"startThreshold"`
	PeriodMins              int64 `yaml:"periodMins"`
	RequireMinStakeToReward bool  `yaml:"requireMinStakeToReward"`
}

type RewardHistoryConfig struct {
	NumStoredPeriods int `yaml:"numStoredPeriods"`
}

type AccountsConfig struct {
	StakingRewardAccount AccountNum `yaml:"stakingRewardAccount"`
	NodeRewardAccount    AccountNum `yaml:"nodeRewardAccount"`
	LastReservedNum      AccountNum `yaml:"lastReservedNum"`
}

type TokensConfig struct {
	MaxNumber    int `yaml:"maxNumber"`
	MaxPerCommit int `yaml:"maxPerCommit"`
}

// DefaultConfig returns the mainnet defaults.
func DefaultConfig() Config {
	return Config{
		Staking: StakingConfig{
			RewardHistory:           RewardHistoryConfig{NumStoredPeriods: 365},
			RewardRate:              273_972_602_739_726,
			StartThreshold:          250_000_000 * HbarsToTinybars,
			PeriodMins:              1440,
			RequireMinStakeToReward: true,
		},
		Accounts: AccountsConfig{
			StakingRewardAccount: 800,
			NodeRewardAccount:    801,
			LastReservedNum:      1000,
		},
		Tokens: TokensConfig{
			MaxNumber:    10_000_000,
			MaxPerCommit: 1000,
		},
	}
}

// Validate checks the config for values the pipeline cannot operate with.
func (c *Config) Validate() error {
	if c.Staking.RewardHistory.NumStoredPeriods < 1 {
		return errors.New("staking.rewardHistory.numStoredPeriods must be positive")
	}
	if c.Staking.RewardRate < 0 {
		return errors.New("staking.rewardRate must not be negative")
	}
	if c.Staking.StartThreshold < 0 {
		return errors.New("staking.startThreshold must not be negative")
	}
	if c.Staking.PeriodMins < 1 {
		return errors.New("staking.periodMins must be positive")
	}
	for name, num := range map[string]AccountNum{
		"accounts.stakingRewardAccount": c.Accounts.StakingRewardAccount,
		"accounts.nodeRewardAccount":    c.Accounts.NodeRewardAccount,
	} {
		if num <= 0 || num > c.Accounts.LastReservedNum {
			return errors.Errorf("%s must be a reserved account in [1, %d], got %d", name, c.Accounts.LastReservedNum, num)
		}
	}
	if c.Accounts.StakingRewardAccount == c.Accounts.NodeRewardAccount {
		return errors.New("accounts.stakingRewardAccount and accounts.nodeRewardAccount must differ")
	}
	if c.Tokens.MaxNumber < 0 || c.Tokens.MaxPerCommit < 0 {
		return errors.New("tokens limits must not be negative")
	}
	return nil
}

// RewardHistorySize is the length of each node's reward sum ring.
func (c *Config) RewardHistorySize() int {
	return c.Staking.RewardHistory.NumStoredPeriods + 1
}

// LoadConfig reads a YAML config file over the defaults.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}
