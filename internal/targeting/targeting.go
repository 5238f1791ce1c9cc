// Package targeting builds the attribute bag a flag provider uses to decide a
// flag's value for the current request. Contexts are built fresh per request,
// never persisted, and never mutated after construction.
package targeting

import (
	"strings"
)

// Well-known attribute keys. Flag targeting rules reference these names.
const (
	AttrCountry         = "country"
	AttrSubscription    = "subscription"
	AttrAmountBucket    = "amountBucket"
	AttrCurrency        = "currency"
	AttrPaymentProvider = "paymentProvider"
)

// Context describes the subject of a flag evaluation.
// An all-empty Context is valid: the provider then applies its
// unconditioned defaults.
type Context struct {
	Identifier string
	Email      string
	Attributes map[string]string
}

// NewContext builds a Context from an optional identifier, an optional email,
// and optional attributes. Empty attribute keys and values are dropped so the
// provider never sees blank targeting inputs. The attribute map is copied.
func NewContext(identifier, email string, attrs map[string]string) Context {
	c := Context{
		Identifier: strings.TrimSpace(identifier),
		Email:      strings.TrimSpace(email),
	}
	for k, v := range attrs {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		c.Attributes[k] = v
	}
	return c
}

// IsAnonymous reports whether the context carries no targeting information at
// all. Anonymous contexts evaluate to provider-side defaults.
func (c Context) IsAnonymous() bool {
	return c.Identifier == "" && c.Email == "" && len(c.Attributes) == 0
}

// AmountBucket coerces a payment amount into a coarse string bucket so
// targeting rules can condition on order size without numeric comparisons.
func AmountBucket(amount float64) string {
	switch {
	case amount < 10:
		return "micro"
	case amount < 100:
		return "small"
	case amount < 1000:
		return "medium"
	default:
		return "large"
	}
}
