package updater

import "time"

// Config holds the updater configuration.
type Config struct {
	// Verify enables checksum verification after each read, erase, and
	// write chunk
	Verify bool

	// VerifyRetryLimit is the number of times a chunk is retried on
	// checksum mismatch before the mismatch becomes an error. Negative
	// means retry forever.
	VerifyRetryLimit int

	// VerifyRetryDelay is the pause before retrying a mismatched chunk
	VerifyRetryDelay time.Duration

	// RebootDelay is how long to wait after a jump command for the
	// controller to restart and re-arm its command interface
	RebootDelay time.Duration

	// Progress is called as chunked operations advance (optional)
	Progress ProgressCallback
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Verify:           true,
		VerifyRetryLimit: 3,
		VerifyRetryDelay: time.Millisecond,
		RebootDelay:      time.Second,
	}
}

// Option is a functional option for configuring the Updater.
type Option func(*Config)

// WithVerify enables or disables checksum verification of flash
// operations. Default is enabled.
//
// Example:
//
//	u := updater.New(dev, updater.WithVerify(false))
func WithVerify(verify bool) Option {
	return func(c *Config) {
		c.Verify = verify
	}
}

// WithVerifyRetryLimit sets how many times a chunk with a mismatched
// checksum is retried before the operation fails. Default is 3.
//
// Example:
//
//	u := updater.New(dev, updater.WithVerifyRetryLimit(10))
func WithVerifyRetryLimit(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.VerifyRetryLimit = retries
		}
	}
}

// WithUnlimitedVerifyRetries removes the retry bound: a persistently
// mismatched chunk is retried forever. This mirrors hardware that only
// ever mismatches transiently; with a controller that keeps returning a
// wrong checksum the operation will not terminate.
//
// Example:
//
//	u := updater.New(dev, updater.WithUnlimitedVerifyRetries())
func WithUnlimitedVerifyRetries() Option {
	return func(c *Config) {
		c.VerifyRetryLimit = -1
	}
}

// WithVerifyRetryDelay sets the pause before a mismatched chunk is
// retried. Default is one millisecond.
func WithVerifyRetryDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.VerifyRetryDelay = d
		}
	}
}

// WithRebootDelay sets the wait after a jump command while the
// controller restarts. Default is one second.
//
// Example:
//
//	u := updater.New(dev, updater.WithRebootDelay(2*time.Second))
func WithRebootDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.RebootDelay = d
		}
	}
}

// WithProgress sets a callback to track chunked flash operations.
//
// Example:
//
//	u := updater.New(dev,
//	    updater.WithProgress(func(p updater.Progress) {
//	        fmt.Printf("%d/%d\n", p.BytesDone, p.BytesTotal)
//	    }),
//	)
func WithProgress(callback ProgressCallback) Option {
	return func(c *Config) {
		c.Progress = callback
	}
}
