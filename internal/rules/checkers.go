package rules

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Checkers are pure predicates over content and configuration. Each returns
// a human-readable violation reason, or the empty string when the content
// passes. Reasons are surfaced to moderators, not to content authors.

const (
	maxRepeatedChars = 10 // a run longer than this is spam
	maxWordRepeats   = 10 // a word (>3 chars) appearing more often is spam
	minRepeatWordLen = 4
)

// checkBannedWords matches content against the word list, whole-word and
// case-insensitive. Words are quoted before compiling so user-supplied regex
// metacharacters match literally and cannot be used for pattern injection or
// catastrophic backtracking.
func checkBannedWords(text string, cfg *BannedWordsConfig) string {
	if len(cfg.Words) == 0 {
		return ""
	}
	folded := foldText(text)
	for _, word := range cfg.Words {
		if word == "" {
			continue
		}
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(foldText(word)) + `\b`)
		if err != nil {
			continue
		}
		if pattern.MatchString(folded) {
			return fmt.Sprintf("contains banned word %q", word)
		}
	}
	return ""
}

// checkSpam runs three independent sub-checks; the first failure wins:
// too many links, a long single-character run, or a word repeated to excess.
func checkSpam(text string, cfg *SpamFilterConfig) string {
	if cfg.MaxLinks != nil {
		if n := len(extractURLs(text)); n > *cfg.MaxLinks {
			return fmt.Sprintf("too many links (%d, limit %d)", n, *cfg.MaxLinks)
		}
	}

	if hasLongRun(text, maxRepeatedChars) {
		return "contains excessively repeated characters"
	}

	counts := make(map[string]int)
	for _, word := range tokenize(text) {
		if utf8.RuneCountInString(word) < minRepeatWordLen {
			continue
		}
		counts[word]++
		if counts[word] > maxWordRepeats {
			return fmt.Sprintf("word %q repeated excessively", word)
		}
	}
	return ""
}

// hasLongRun reports whether any rune repeats consecutively more than limit
// times. Regexp backreferences are unavailable in RE2, so this is a plain
// scan.
func hasLongRun(text string, limit int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run > limit {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// checkKarma compares the author's total post score against the floor. The
// total is fetched by the evaluator; the check itself is pure.
func checkKarma(totalKarma int64, cfg *KarmaMinimumConfig) string {
	if totalKarma < *cfg.MinKarma {
		return fmt.Sprintf("insufficient karma (%d, minimum %d)", totalKarma, *cfg.MinKarma)
	}
	return ""
}

// checkAccountAge compares the author's account age in days against the floor.
func checkAccountAge(createdAt, now time.Time, cfg *AccountAgeConfig) string {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < float64(*cfg.MinAgeDays) {
		return fmt.Sprintf("account too new (%d days, minimum %d)", int(math.Floor(ageDays)), *cfg.MinAgeDays)
	}
	return ""
}

// checkLinks applies whitelist and blacklist substring filters to every URL
// in the content. Whitelist failures win over blacklist failures.
func checkLinks(text string, cfg *LinkFilterConfig) string {
	urls := extractURLs(text)
	if len(urls) == 0 {
		return ""
	}

	if len(cfg.Whitelist) > 0 {
		for _, url := range urls {
			if !containsAny(url, cfg.Whitelist) {
				return "links only allowed from approved domains"
			}
		}
	}

	if len(cfg.Blacklist) > 0 {
		for _, url := range urls {
			if containsAny(url, cfg.Blacklist) {
				return fmt.Sprintf("blocked link: %s", url)
			}
		}
	}
	return ""
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// checkCaps fails content whose uppercase-letter ratio exceeds the threshold.
// Non-letters are excluded from the denominator; content with no letters
// never fails.
func checkCaps(text string, cfg *CapsFilterConfig) string {
	var letters, uppers int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters == 0 {
		return ""
	}
	percent := float64(uppers) / float64(letters) * 100
	if percent > *cfg.MaxCapsPercent {
		return fmt.Sprintf("excessive capitalization (%.0f%%, limit %.0f%%)", percent, *cfg.MaxCapsPercent)
	}
	return ""
}
