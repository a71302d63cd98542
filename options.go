package symcheck

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/symcheck/internal/usecase/triage"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	kb     *KB
	kbPath string

	driver   string // "memory" or "redis"
	addrs    []string
	password string

	keyPrefix  string
	sessionTTL time.Duration

	weights    triage.Weights
	thresholds triage.Thresholds
	topN       int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithKB supplies a knowledge base built with NewKB.
// Takes precedence over WithKBFile.
func WithKB(k *KB) Option {
	return func(c *clientConfig) {
		c.kb = k
	}
}

// WithKBFile loads the knowledge base from a YAML or JSON file at New time.
func WithKBFile(path string) Option {
	return func(c *clientConfig) {
		c.kbPath = path
	}
}

// WithMemoryStore keeps assessments in process memory. This is the default.
func WithMemoryStore() Option {
	return func(c *clientConfig) {
		c.driver = "memory"
	}
}

// WithRedis stores assessments in a Redis instance, so they survive restarts
// and can be shared between processes.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithKeyPrefix sets the storage key prefix. Default: "symcheck:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithSessionTTL expires stored assessments after d.
// Default 0 keeps them for the lifetime of the store.
func WithSessionTTL(d time.Duration) Option {
	return func(c *clientConfig) {
		c.sessionTTL = d
	}
}

// WithWeights overrides the scoring weights.
// Defaults: base 0.5, required 1.5, supporting 0.8, red flag 2.5.
func WithWeights(base, required, supporting, redFlag float64) Option {
	return func(c *clientConfig) {
		c.weights = triage.Weights{
			Base:       base,
			Required:   required,
			Supporting: supporting,
			RedFlag:    redFlag,
		}
	}
}

// WithThresholds overrides the urgency escalation thresholds on the
// top-ranked condition's normalized score. Defaults: urgent 0.35, seeGP 0.25.
func WithThresholds(urgent, seeGP float64) Option {
	return func(c *clientConfig) {
		c.thresholds = triage.Thresholds{Urgent: urgent, SeeGP: seeGP}
	}
}

// WithTopN sets how many leading conditions a report carries. Default: 3.
func WithTopN(n int) Option {
	return func(c *clientConfig) {
		c.topN = n
	}
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.metricsReg = reg
	}
}
