// Package token models captured spend.cloud bearer tokens: the record shape,
// the persisted store, and the selection logic that picks a usable token for
// a tenant/environment pair.
package token

import (
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Source records where a token was observed.
type Source string

const (
	// SourceWebRequest marks tokens lifted off requests passing through the
	// capture proxy.
	SourceWebRequest Source = "webRequest"
	// SourceContentScript marks tokens reported by page scripts via the
	// daemon's reportAuthToken action.
	SourceContentScript Source = "content-script"
	// SourceDirect marks tokens added by hand on the command line.
	SourceDirect Source = "direct"
)

// Record is a single captured bearer token plus the context it was seen in.
type Record struct {
	Token             string     `json:"token"`
	Timestamp         time.Time  `json:"timestamp"`
	URL               string     `json:"url"`
	Source            Source     `json:"source"`
	ClientEnvironment string     `json:"clientEnvironment"`
	IsDevRoute        bool       `json:"isDevRoute"`
	IsValid           bool       `json:"isValid"`
	ExpiryDate        *time.Time `json:"expiryDate"`
}

var (
	tenantRoute = regexp.MustCompile(`^https?://([a-z0-9-]+)(\.dev)?\.spend\.cloud(/|$)`)
	apiRoute    = regexp.MustCompile(`^https?://[a-z0-9-]+(\.dev)?\.spend\.cloud/api(/|$)`)
)

// ParseRoute extracts the tenant subdomain and dev flag from a spend.cloud
// URL. ok is false for URLs outside spend.cloud.
func ParseRoute(rawURL string) (tenant string, isDev bool, ok bool) {
	m := tenantRoute.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false, false
	}
	return m[1], m[2] != "", true
}

// IsAPIRoute reports whether rawURL points at the spend.cloud JSON:API.
func IsAPIRoute(rawURL string) bool {
	return apiRoute.MatchString(rawURL)
}

// NewRecord builds a Record from a raw credential header value and the URL it
// was seen on. A leading "Bearer " prefix is stripped. The JWT payload is
// decoded (unverified) for the expiry and an optional tenant claim; a payload
// that cannot be decoded leaves the token marked valid. That fail-open policy
// mirrors the upstream tooling and is deliberate: some credential formats in
// the wild are not JWTs at all. Flagged for product-owner review.
func NewRecord(raw, rawURL string, source Source, now time.Time) Record {
	tenant, isDev, _ := ParseRoute(rawURL)

	rec := Record{
		Token:             strings.TrimPrefix(raw, "Bearer "),
		Timestamp:         now.UTC(),
		URL:               rawURL,
		Source:            source,
		ClientEnvironment: tenant,
		IsDevRoute:        isDev,
		IsValid:           true,
	}

	exp, claimTenant, err := DecodeClaims(rec.Token)
	if err != nil {
		return rec
	}
	if rec.ClientEnvironment == "" && claimTenant != "" {
		rec.ClientEnvironment = claimTenant
	}
	if exp != nil {
		rec.ExpiryDate = exp
		rec.IsValid = exp.After(now)
	}
	return rec
}

// DecodeClaims reads the expiry and tenant claim out of a JWT without
// verifying its signature. The expiry is nil when the token carries no exp
// claim.
func DecodeClaims(tok string) (expiry *time.Time, tenant string, err error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err = parser.ParseUnverified(tok, claims); err != nil {
		return nil, "", err
	}

	if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
		t := exp.Time
		expiry = &t
	}

	// The tenant claim name has varied across token versions.
	for _, key := range []string{"client", "tenant", "clientEnvironment"} {
		if v, ok := claims[key].(string); ok && v != "" {
			tenant = v
			break
		}
	}
	return expiry, tenant, nil
}

// ValidAt reports whether the record should be treated as usable at t. A
// record explicitly marked invalid stays invalid; otherwise a known expiry
// wins, then a fresh decode of the token is attempted, and a token that still
// cannot be decoded is treated as usable (fail-open).
func (r Record) ValidAt(t time.Time) bool {
	if !r.IsValid {
		return false
	}
	if r.ExpiryDate != nil {
		return r.ExpiryDate.After(t)
	}
	if exp, _, err := DecodeClaims(r.Token); err == nil && exp != nil {
		return exp.After(t)
	}
	return true
}

// Environment renders the dev flag as a short label for display.
func (r Record) Environment() string {
	if r.IsDevRoute {
		return "dev"
	}
	return "prod"
}
