package hopchain

import (
	"time"

	"github.com/hopchain/hopchain/clients"
	"github.com/hopchain/hopchain/logger"
	"github.com/hopchain/hopchain/metrics"
)

type Option func(*Sender)

func WithLogger(l logger.Logger) Option {
	return func(s *Sender) {
		s.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Sender) {
		s.metrics = r
	}
}

func WithTimeout(t time.Duration) Option {
	return func(s *Sender) {
		s.config.DefaultTimeout = t
	}
}

// WithHTTPClient injects the transport used for ledger and notary calls.
func WithHTTPClient(doer clients.Doer) Option {
	return func(s *Sender) {
		s.httpc = doer
	}
}

// WithLedgerClient replaces the default HTTP ledger client.
func WithLedgerClient(c clients.LedgerClient) Option {
	return func(s *Sender) {
		s.ledger = c
	}
}

// WithNotaryClient replaces the default HTTP notary client.
func WithNotaryClient(c clients.NotaryClient) Option {
	return func(s *Sender) {
		s.notary = c
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Sender) {
		s.clock = clock
	}
}
