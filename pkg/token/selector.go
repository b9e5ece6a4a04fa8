package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
)

var (
	// ErrNoTokens means nothing has been captured yet.
	ErrNoTokens = errors.New("no tokens captured yet - open a spend.cloud page or run the capture proxy first")

	// ErrNoMatch means tokens exist but none carry the requested
	// tenant/environment tag.
	ErrNoMatch = errors.New("no token found for the requested tenant and environment")

	// ErrAllExpired means matching tokens exist but every one has expired.
	// A page refresh re-captures a fresh one.
	ErrAllExpired = errors.New("all matching tokens have expired - refresh the spend.cloud page to capture a fresh one")
)

// Options narrows Select to a tenant and/or environment. A zero Tenant leaves
// the tenant filter off; Dev uses a pointer so "prod only" (false) stays
// distinguishable from "either".
type Options struct {
	Tenant string
	Dev    *bool
}

// Select returns the most recent usable token from records, which are assumed
// newest-first as maintained by Store. The error distinguishes an empty
// store, no tag match, and matches that have all expired.
func Select(records []Record, opts Options, now time.Time) (Record, error) {
	if len(records) == 0 {
		return Record{}, ErrNoTokens
	}

	matching := lo.Filter(records, func(r Record, _ int) bool {
		if opts.Tenant != "" && r.ClientEnvironment != opts.Tenant {
			return false
		}
		if opts.Dev != nil && r.IsDevRoute != *opts.Dev {
			return false
		}
		return true
	})
	if len(matching) == 0 {
		if opts.Tenant != "" {
			return Record{}, fmt.Errorf("%w (tenant %q)", ErrNoMatch, opts.Tenant)
		}
		return Record{}, ErrNoMatch
	}

	for _, r := range matching {
		if r.ValidAt(now) {
			return r, nil
		}
	}
	if opts.Tenant != "" {
		return Record{}, fmt.Errorf("%w (tenant %q)", ErrAllExpired, opts.Tenant)
	}
	return Record{}, ErrAllExpired
}

// Provider adapts a Store to the token source interface consumed by the API
// client: it selects the freshest valid token for the tenant/environment.
type Provider struct {
	Store *Store
	Now   func() time.Time
}

// Token implements selection for an API call.
func (p Provider) Token(tenant string, dev bool) (string, error) {
	records, err := p.Store.List()
	if err != nil {
		return "", err
	}
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	rec, err := Select(records, Options{Tenant: tenant, Dev: &dev}, now)
	if err != nil {
		return "", err
	}
	return rec.Token, nil
}
