// Package mockapi simulates a remote API call that takes a while and fails
// about half of the time.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/amp-labs/fetchsim/config"
	"github.com/amp-labs/fetchsim/fetchmachine"
)

const (
	DefaultDelay       = time.Second
	DefaultFailureRate = 0.5
	DefaultPayload     = int64(123456)
)

// ErrMockAPI is the rejection every failed call wraps.
var ErrMockAPI = errors.New("Mock API error") //nolint:stylecheck,revive,staticcheck

// Client performs simulated calls. It is safe for concurrent use.
type Client struct {
	delay       time.Duration
	failureRate float64
	payload     int64

	mu   sync.Mutex
	draw func() float64
}

// Option configures a Client.
type Option func(*Client)

// WithDelay sets how long each call takes before settling.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = max(d, 0)
	}
}

// WithFailureRate sets the probability, within [0, 1], that a call fails.
func WithFailureRate(rate float64) Option {
	return func(c *Client) {
		c.failureRate = min(max(rate, 0), 1)
	}
}

// WithPayload sets the value successful calls resolve with.
func WithPayload(data int64) Option {
	return func(c *Client) {
		c.payload = data
	}
}

// WithSeed makes the outcome sequence reproducible. Zero keeps the default
// random source.
func WithSeed(seed uint64) Option {
	return func(c *Client) {
		if seed == 0 {
			return
		}

		rng := rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // Simulation, not security
		c.draw = rng.Float64
	}
}

// WithRand replaces the source of uniform draws in [0, 1).
func WithRand(draw func() float64) Option {
	return func(c *Client) {
		if draw != nil {
			c.draw = draw
		}
	}
}

// New creates a client with a one second delay, a 50% failure rate and a
// payload of 123456 unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		delay:       DefaultDelay,
		failureRate: DefaultFailureRate,
		payload:     DefaultPayload,
		draw:        rand.Float64, //nolint:gosec // Simulation, not security
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FromConfig creates a client from the FETCHSIM_* settings.
func FromConfig(cfg config.Mock, opts ...Option) *Client {
	base := []Option{
		WithDelay(cfg.Delay),
		WithFailureRate(cfg.FailureRate),
		WithPayload(cfg.Payload),
		WithSeed(cfg.Seed),
	}

	return New(append(base, opts...)...)
}

// Call waits for the configured delay, then rejects when a uniform draw is
// above 1 - failure rate and resolves with the payload otherwise. A
// cancelled ctx ends the wait early with ctx.Err().
func (c *Client) Call(ctx context.Context) (fetchmachine.Payload, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return fetchmachine.Payload{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return fetchmachine.Payload{}, err
	}

	c.mu.Lock()
	draw := c.draw()
	c.mu.Unlock()

	if draw > 1-c.failureRate {
		return fetchmachine.Payload{}, fmt.Errorf("%w, fails %s%% of the time", ErrMockAPI, c.percent())
	}

	return fetchmachine.Payload{Success: true, Data: c.payload}, nil
}

// Operation adapts the client to the machine's invocation contract.
func (c *Client) Operation() fetchmachine.Operation {
	return c.Call
}

func (c *Client) percent() string {
	return strconv.FormatFloat(c.failureRate*100, 'f', -1, 64) //nolint:mnd
}
