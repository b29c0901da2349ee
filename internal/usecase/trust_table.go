package usecase

import (
	"strings"

	"github.com/9endu/Dealicious/config"
)

// TrustTier is the coarse trust classification of a claimed platform
type TrustTier int

const (
	TierUnknown TrustTier = iota
	TierModerate
	TierTrusted
)

func (t TrustTier) String() string {
	switch t {
	case TierTrusted:
		return "trusted"
	case TierModerate:
		return "moderate"
	default:
		return "unknown"
	}
}

// Built-in marketplace tables
var (
	defaultWhitelistedDomains = []string{
		"amazon.in", "flipkart.com", "myntra.com",
		"bigbasket.com", "blinkit.com", "amazon.com",
	}
	defaultTrustedPlatforms  = []string{"amazon.in", "flipkart.com", "myntra.com"}
	defaultModeratePlatforms = []string{"bigbasket.com", "blinkit.com"}
)

// TrustTable holds the whitelisted source domains and the platform trust tiers.
// It is immutable after construction and safe for concurrent use.
type TrustTable struct {
	whitelist map[string]struct{}
	trusted   map[string]struct{}
	moderate  map[string]struct{}
}

// DefaultTrustTable returns the built-in marketplace table
func DefaultTrustTable() *TrustTable {
	return NewTrustTable(nil, nil, nil)
}

// NewTrustTable builds a table; any empty list falls back to its built-in default
func NewTrustTable(whitelist, trusted, moderate []string) *TrustTable {
	if len(whitelist) == 0 {
		whitelist = defaultWhitelistedDomains
	}
	if len(trusted) == 0 {
		trusted = defaultTrustedPlatforms
	}
	if len(moderate) == 0 {
		moderate = defaultModeratePlatforms
	}
	return &TrustTable{
		whitelist: toSet(whitelist),
		trusted:   toSet(trusted),
		moderate:  toSet(moderate),
	}
}

// TrustTableFromConfig builds the table from the trust config section
func TrustTableFromConfig(cfg config.TrustConfig) *TrustTable {
	return NewTrustTable(cfg.WhitelistedDomains, cfg.TrustedPlatforms, cfg.ModeratePlatforms)
}

// IsWhitelisted reports whether a bare host is an approved listing origin
func (t *TrustTable) IsWhitelisted(host string) bool {
	_, ok := t.whitelist[normalizeHost(host)]
	return ok
}

// Tier returns the trust tier of a claimed platform
func (t *TrustTable) Tier(platform string) TrustTier {
	p := normalizeHost(platform)
	if _, ok := t.trusted[p]; ok {
		return TierTrusted
	}
	if _, ok := t.moderate[p]; ok {
		return TierModerate
	}
	return TierUnknown
}

// normalizeHost lowercases a host and strips a leading "www."
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = normalizeHost(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
