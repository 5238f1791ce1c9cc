// Package provider owns the flag provider client handles, one per logical
// project. Each handle wraps a ConfigCat SDK client in auto-poll mode: the
// SDK refreshes its local flag cache on the configured interval in the
// background, and every evaluation reads that cache without network I/O.
// Targeting-rule matching is the SDK's algorithm; this package only maps our
// targeting context onto the SDK's user model.
package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	configcat "github.com/configcat/go-sdk/v9"

	"github.com/TimurManjosov/flagdemo/internal/targeting"
)

// Config configures one project handle.
type Config struct {
	SDKKey       string
	PollInterval time.Duration
	BaseURL      string // optional, for proxied or self-hosted config fetches
	Offline      bool   // no network; evaluations error until a cache exists
}

// Client is a per-project flag client handle. One instance per project,
// shared by all concurrent requests, alive for the process lifetime.
type Client struct {
	project string
	cc      *configcat.Client
}

// New builds a handle for the given project. The SDK starts its background
// poller immediately; the first poll may still be in flight when New returns,
// so callers wanting a warm cache should WarmUp first.
func New(project string, cfg Config) *Client {
	return &Client{
		project: project,
		cc: configcat.NewCustomClient(configcat.Config{
			SDKKey:       cfg.SDKKey,
			PollingMode:  configcat.AutoPoll,
			PollInterval: cfg.PollInterval,
			BaseURL:      cfg.BaseURL,
			Offline:      cfg.Offline,
		}),
	}
}

// Project returns the logical project name this handle serves.
func (c *Client) Project() string {
	return c.project
}

// BoolValue evaluates a boolean flag against the cached flag set.
// The returned error reports a cold cache, an unknown key, or a provider
// evaluation failure; the value is the SDK's resolved value either way.
func (c *Client) BoolValue(key string, defaultValue bool, tc targeting.Context) (bool, error) {
	details := c.cc.GetBoolValueDetails(key, defaultValue, user(tc))
	return details.Value, details.Data.Error
}

// StringValue evaluates a string flag against the cached flag set.
func (c *Client) StringValue(key string, defaultValue string, tc targeting.Context) (string, error) {
	details := c.cc.GetStringValueDetails(key, defaultValue, user(tc))
	return details.Value, details.Data.Error
}

// WarmUp forces config fetches with exponential backoff until one succeeds or
// the budget elapses. A failed warmup is not fatal: evaluations degrade to
// defaults until the background poller recovers.
func (c *Client) WarmUp(ctx context.Context, budget time.Duration) error {
	op := func() (struct{}, error) {
		return struct{}{}, c.cc.Refresh(ctx)
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(budget),
	)
	return err
}

// Close stops the background poller and releases the handle.
func (c *Client) Close() {
	c.cc.Close()
}

// user maps a targeting context onto the SDK's user model. Country is a
// first-class SDK attribute; everything else rides in Custom. Anonymous
// contexts map to nil so the provider applies unconditioned defaults.
func user(tc targeting.Context) configcat.User {
	if tc.IsAnonymous() {
		return nil
	}
	u := &configcat.UserData{
		Identifier: tc.Identifier,
		Email:      tc.Email,
	}
	for k, v := range tc.Attributes {
		if k == targeting.AttrCountry {
			u.Country = v
			continue
		}
		if u.Custom == nil {
			u.Custom = make(map[string]interface{}, len(tc.Attributes))
		}
		u.Custom[k] = v
	}
	return u
}
