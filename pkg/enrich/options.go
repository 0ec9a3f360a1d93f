package enrich

import "time"

// Option tweaks a provider's HTTP client.
type Option func(*client)

func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
		c.http.Timeout = d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *client) { c.userAgent = ua }
}

func applyOptions(opts []Option) *client {
	c := newClient(DefaultTimeout, "")
	for _, opt := range opts {
		opt(c)
	}
	return c
}
