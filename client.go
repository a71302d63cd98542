package symcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/symcheck/internal/db"
	"github.com/kailas-cloud/symcheck/internal/db/memory"
	dbRedis "github.com/kailas-cloud/symcheck/internal/db/redis"
	"github.com/kailas-cloud/symcheck/internal/domain/kb"
	"github.com/kailas-cloud/symcheck/internal/domain/keyword"
	"github.com/kailas-cloud/symcheck/internal/repository/kbfile"
	sessionrepo "github.com/kailas-cloud/symcheck/internal/repository/session"
	"github.com/kailas-cloud/symcheck/internal/usecase/assess"
	"github.com/kailas-cloud/symcheck/internal/usecase/extract"
	"github.com/kailas-cloud/symcheck/internal/usecase/triage"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the symcheck SDK entry point: the full triage pipeline embedded
// in-process, without the HTTP service.
type Client struct {
	store     db.Store
	provider  *kbfile.Provider
	extractor *extract.Extractor
	engine    *triage.Engine
	svc       *assess.Service
	obs       *observer
}

// New creates a symcheck Client. A knowledge base is required (WithKB or
// WithKBFile); the session store defaults to in-process memory.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:     "memory",
		keyPrefix:  "symcheck:",
		weights:    triage.DefaultWeights(),
		thresholds: triage.DefaultThresholds(),
		topN:       triage.DefaultTopN,
	}
	for _, o := range opts {
		o(cfg)
	}

	snap, err := resolveKB(cfg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("symcheck: session store not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	provider := kbfile.NewProvider(snap)
	sessions := sessionrepo.New(store, cfg.keyPrefix, cfg.sessionTTL)
	extractor := extract.New()
	engine := triage.New(cfg.weights, cfg.thresholds, cfg.topN)
	svc := assess.New(extractor, engine, provider, sessions, nil)

	return &Client{
		store:     store,
		provider:  provider,
		extractor: extractor,
		engine:    engine,
		svc:       svc,
		obs:       obs,
	}, nil
}

func resolveKB(cfg *clientConfig) (*kb.KnowledgeBase, error) {
	switch {
	case cfg.kb != nil:
		return cfg.kb.snap, nil
	case cfg.kbPath != "":
		loaded, err := kbfile.Load(cfg.kbPath)
		if err != nil {
			return nil, fmt.Errorf("symcheck: %w", err)
		}
		return loaded, nil
	default:
		return nil, errors.New("symcheck: knowledge base required (use WithKB or WithKBFile)")
	}
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "memory":
		return memory.NewStore(), nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("symcheck: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("symcheck: unknown driver %q", cfg.driver)
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks session store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Extract parses free text and checklist selections into canonical symptom
// keywords, sorted. It does not persist anything.
func (c *Client) Extract(text string, selections []string) []string {
	start := time.Now()
	defer func() { c.obs.observe("extract", start, nil) }()

	set := c.extractor.Extract(text, selections, c.provider.Current())
	return set.Values()
}

// Score ranks every knowledge base condition against the given canonical
// keywords and derives the urgency verdict. It does not persist anything.
func (c *Client) Score(keywords []string) ScoreResult {
	start := time.Now()
	defer func() { c.obs.observe("score", start, nil) }()

	res := c.engine.Score(keyword.NewSet(keywords...), c.provider.Current())
	return fromScoreResult(res)
}

// Assess runs the full pipeline on one submission and stores the result
// under a fresh session id.
func (c *Client) Assess(ctx context.Context, in Input) (_ Report, err error) {
	start := time.Now()
	defer func() { c.obs.observe("assess", start, err) }()

	a, err := c.svc.Assess(ctx, toDomainInput(in))
	if err != nil {
		return Report{}, fmt.Errorf("assess: %w", err)
	}
	return fromAssessment(a), nil
}

// Assessment retrieves a stored report by session id.
// Returns ErrSessionNotFound if it does not exist or has expired.
func (c *Client) Assessment(ctx context.Context, id string) (_ Report, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	a, err := c.svc.Get(ctx, id)
	if err != nil {
		return Report{}, fmt.Errorf("assessment: %w", err)
	}
	return fromAssessment(a), nil
}

// Delete removes a stored report.
// Returns ErrSessionNotFound if it does not exist.
func (c *Client) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	if err = c.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return nil
}

// ExportJSON renders a stored report as indented JSON, byte-compatible with
// the HTTP API's export endpoint.
func (c *Client) ExportJSON(ctx context.Context, id string) (_ []byte, err error) {
	start := time.Now()
	defer func() { c.obs.observe("export", start, err) }()

	a, err := c.svc.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	data, err := json.MarshalIndent(fromAssessment(a), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}

// Symptoms lists the distinct required and supporting symptoms of the
// knowledge base, sorted. Useful for intake checklists.
func (c *Client) Symptoms() []string {
	return c.svc.Symptoms()
}
