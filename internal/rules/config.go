package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openbarrio/automod/internal/model"
)

// ErrInvalidConfig is returned when a rule configuration fails validation.
// Configs are validated before persistence, so an invalid config should never
// reach the evaluator.
var ErrInvalidConfig = errors.New("invalid rule config")

// Limits on rule configuration values.
const (
	MaxBannedWords    = 1000
	MaxLinkLimit      = 50
	MaxAccountAgeDays = 365
)

// Config is one of the six typed rule configurations. Validate reports
// whether the configuration is structurally sound and within bounds.
type Config interface {
	Type() model.RuleType
	Validate() error
}

// BannedWordsConfig matches content against a word list, whole-word and
// case-insensitive.
type BannedWordsConfig struct {
	Words []string `json:"words"`
}

func (c *BannedWordsConfig) Type() model.RuleType { return model.RuleBannedWords }

func (c *BannedWordsConfig) Validate() error {
	if c.Words == nil {
		return fmt.Errorf("%w: banned_words requires a words array", ErrInvalidConfig)
	}
	if len(c.Words) > MaxBannedWords {
		return fmt.Errorf("%w: at most %d banned words", ErrInvalidConfig, MaxBannedWords)
	}
	return nil
}

// SpamFilterConfig bounds link counts and repetition. A nil MaxLinks disables
// the link-count sub-check; an explicit zero forbids links entirely.
type SpamFilterConfig struct {
	MaxLinks *int `json:"maxLinks,omitempty"`
}

func (c *SpamFilterConfig) Type() model.RuleType { return model.RuleSpamFilter }

func (c *SpamFilterConfig) Validate() error {
	if c.MaxLinks != nil && (*c.MaxLinks < 0 || *c.MaxLinks > MaxLinkLimit) {
		return fmt.Errorf("%w: maxLinks must be between 0 and %d", ErrInvalidConfig, MaxLinkLimit)
	}
	return nil
}

// KarmaMinimumConfig requires the author's summed post score to reach a floor.
type KarmaMinimumConfig struct {
	MinKarma *int64 `json:"minKarma"`
}

func (c *KarmaMinimumConfig) Type() model.RuleType { return model.RuleKarmaMinimum }

func (c *KarmaMinimumConfig) Validate() error {
	if c.MinKarma == nil {
		return fmt.Errorf("%w: karma_minimum requires minKarma", ErrInvalidConfig)
	}
	if *c.MinKarma < 0 {
		return fmt.Errorf("%w: minKarma must not be negative", ErrInvalidConfig)
	}
	return nil
}

// AccountAgeConfig requires the author's account to be at least MinAgeDays old.
type AccountAgeConfig struct {
	MinAgeDays *int `json:"minAge"`
}

func (c *AccountAgeConfig) Type() model.RuleType { return model.RuleAccountAge }

func (c *AccountAgeConfig) Validate() error {
	if c.MinAgeDays == nil {
		return fmt.Errorf("%w: account_age requires minAge", ErrInvalidConfig)
	}
	if *c.MinAgeDays < 0 || *c.MinAgeDays > MaxAccountAgeDays {
		return fmt.Errorf("%w: minAge must be between 0 and %d days", ErrInvalidConfig, MaxAccountAgeDays)
	}
	return nil
}

// LinkFilterConfig constrains URLs by substring. With a whitelist, every URL
// must contain at least one whitelisted substring; with a blacklist, any URL
// containing a blacklisted substring fails. Both may apply at once.
type LinkFilterConfig struct {
	Whitelist []string `json:"whitelist,omitempty"`
	Blacklist []string `json:"blacklist,omitempty"`
}

func (c *LinkFilterConfig) Type() model.RuleType { return model.RuleLinkFilter }

func (c *LinkFilterConfig) Validate() error {
	if len(c.Whitelist) == 0 && len(c.Blacklist) == 0 {
		return fmt.Errorf("%w: link_filter requires a whitelist or a blacklist", ErrInvalidConfig)
	}
	return nil
}

// CapsFilterConfig bounds the ratio of uppercase letters to total letters.
type CapsFilterConfig struct {
	MaxCapsPercent *float64 `json:"maxCapsPercent"`
}

func (c *CapsFilterConfig) Type() model.RuleType { return model.RuleCapsFilter }

func (c *CapsFilterConfig) Validate() error {
	if c.MaxCapsPercent == nil {
		return fmt.Errorf("%w: caps_filter requires maxCapsPercent", ErrInvalidConfig)
	}
	if *c.MaxCapsPercent < 0 || *c.MaxCapsPercent > 100 {
		return fmt.Errorf("%w: maxCapsPercent must be between 0 and 100", ErrInvalidConfig)
	}
	return nil
}

// ParseConfig decodes and validates a raw JSON config for the given rule
// type. Unknown fields and malformed shapes are rejected rather than
// silently coerced.
func ParseConfig(typ model.RuleType, raw []byte) (Config, error) {
	var cfg Config
	switch typ {
	case model.RuleBannedWords:
		cfg = &BannedWordsConfig{}
	case model.RuleSpamFilter:
		cfg = &SpamFilterConfig{}
	case model.RuleKarmaMinimum:
		cfg = &KarmaMinimumConfig{}
	case model.RuleAccountAge:
		cfg = &AccountAgeConfig{}
	case model.RuleLinkFilter:
		cfg = &LinkFilterConfig{}
	case model.RuleCapsFilter:
		cfg = &CapsFilterConfig{}
	default:
		return nil, fmt.Errorf("%w: unknown rule type %q", ErrInvalidConfig, typ)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
