package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/openbarrio/automod/internal/model"
)

func TestParseConfig_Valid(t *testing.T) {
	tests := []struct {
		typ model.RuleType
		raw string
	}{
		{model.RuleBannedWords, `{"words": ["spam", "scam"]}`},
		{model.RuleBannedWords, `{"words": []}`},
		{model.RuleSpamFilter, `{"maxLinks": 3}`},
		{model.RuleSpamFilter, `{}`},
		{model.RuleKarmaMinimum, `{"minKarma": 0}`},
		{model.RuleAccountAge, `{"minAge": 7}`},
		{model.RuleLinkFilter, `{"whitelist": ["example.com"]}`},
		{model.RuleLinkFilter, `{"blacklist": ["spam.example"]}`},
		{model.RuleCapsFilter, `{"maxCapsPercent": 70}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.raw, func(t *testing.T) {
			cfg, err := ParseConfig(tt.typ, []byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if cfg.Type() != tt.typ {
				t.Errorf("Type() = %q, want %q", cfg.Type(), tt.typ)
			}
		})
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		typ  model.RuleType
		raw  string
	}{
		{"unknown type", model.RuleType("bogus"), `{}`},
		{"malformed json", model.RuleBannedWords, `{"words": [`},
		{"unknown field", model.RuleBannedWords, `{"words": [], "extra": true}`},
		{"missing words", model.RuleBannedWords, `{}`},
		{"negative maxLinks", model.RuleSpamFilter, `{"maxLinks": -1}`},
		{"maxLinks over limit", model.RuleSpamFilter, fmt.Sprintf(`{"maxLinks": %d}`, MaxLinkLimit+1)},
		{"missing minKarma", model.RuleKarmaMinimum, `{}`},
		{"negative minKarma", model.RuleKarmaMinimum, `{"minKarma": -1}`},
		{"missing minAge", model.RuleAccountAge, `{}`},
		{"minAge over limit", model.RuleAccountAge, fmt.Sprintf(`{"minAge": %d}`, MaxAccountAgeDays+1)},
		{"link filter with no lists", model.RuleLinkFilter, `{}`},
		{"missing maxCapsPercent", model.RuleCapsFilter, `{}`},
		{"maxCapsPercent over 100", model.RuleCapsFilter, `{"maxCapsPercent": 101}`},
		{"wrong shape", model.RuleCapsFilter, `{"maxCapsPercent": "high"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.typ, []byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseConfig_TooManyBannedWords(t *testing.T) {
	words := make([]string, MaxBannedWords+1)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	raw, _ := json.Marshal(map[string]any{"words": words})

	if _, err := ParseConfig(model.RuleBannedWords, raw); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}
