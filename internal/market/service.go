// Package market is the aggregation facade: the single entry point for
// listings, detail, history and news. It owns the cache and orchestrates
// cascade and retry per request; providers and the cascade never touch
// the cache themselves.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sametyasit/cryptobuddy/internal/archive"
	"github.com/sametyasit/cryptobuddy/internal/cache"
	"github.com/sametyasit/cryptobuddy/internal/cascade"
	"github.com/sametyasit/cryptobuddy/internal/connectivity"
	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/metrics"
	"github.com/sametyasit/cryptobuddy/internal/provider"
	"github.com/sametyasit/cryptobuddy/internal/retry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Providers groups the configured adapters per capability, in cascade
// order. News providers are not a cascade: all of them are asked and the
// non-failing results are unioned.
type Providers struct {
	Listing []provider.ListingProvider
	Detail  provider.DetailProvider
	History []provider.HistoryProvider
	News    []provider.NewsProvider
}

// Config tunes the facade.
type Config struct {
	ListingTTL time.Duration
	DetailTTL  time.Duration
	HistoryTTL time.Duration
	NewsTTL    time.Duration

	// PrimaryPolicy applies to the first provider of a cascade,
	// SecondaryPolicy to the rest.
	PrimaryPolicy   retry.Policy
	SecondaryPolicy retry.Policy

	// FallbackPageSize bounds the listing fetched to locate an asset when
	// the detail provider fails.
	FallbackPageSize int

	// EnrichDays is the history span fetched synchronously on the detail
	// fallback path; RefineDays is the richer span fetched in the
	// background after a detail record has been returned.
	EnrichDays int
	RefineDays int

	// RefineTimeout bounds the detached background refinement.
	RefineTimeout time.Duration
}

// DefaultConfig returns the facade defaults.
func DefaultConfig() Config {
	return Config{
		ListingTTL:       60 * time.Second,
		DetailTTL:        120 * time.Second,
		HistoryTTL:       120 * time.Second,
		NewsTTL:          180 * time.Second,
		PrimaryPolicy:    retry.Policy{MaxAttempts: 3, Backoff: retry.Linear(2 * time.Second), TimeoutDelay: time.Second},
		SecondaryPolicy:  retry.Policy{MaxAttempts: 2, Backoff: retry.Fixed(time.Second), TimeoutDelay: time.Second},
		FallbackPageSize: 100,
		EnrichDays:       7,
		RefineDays:       30,
		RefineTimeout:    30 * time.Second,
	}
}

// Service implements the aggregation facade.
type Service struct {
	cfg       Config
	providers Providers
	cache     *cache.Store
	conn      connectivity.Checker
	metrics   *metrics.Registry
	log       *zap.Logger
	snapshots *archive.Snapshotter

	flight singleflight.Group
	bg     sync.WaitGroup
}

// New creates the facade. The snapshotter is optional; see SetSnapshotter.
func New(cfg Config, providers Providers, conn connectivity.Checker, reg *metrics.Registry, log *zap.Logger) *Service {
	if conn == nil {
		conn = connectivity.Static{Online: true}
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		providers: providers,
		cache:     cache.New(),
		conn:      conn,
		metrics:   reg,
		log:       log,
	}
}

// SetSnapshotter enables best-effort background listing snapshots.
func (s *Service) SetSnapshotter(snap *archive.Snapshotter) {
	s.snapshots = snap
}

// Wait blocks until detached background work (snapshots, refinements)
// has drained. Used on shutdown and in tests.
func (s *Service) Wait() {
	s.bg.Wait()
}

// Invalidate clears the cache for one capability, or everything when
// capability is empty. This backs the caller-visible refresh action.
func (s *Service) Invalidate(capability core.Capability) {
	prefix := ""
	if capability != "" {
		prefix = string(capability) + ":"
		if capability == core.CapabilityNews {
			prefix = cache.NewsKey()
		}
	}
	s.cache.Invalidate(prefix)
}

// Listing is a listing page plus the provider that served it, so callers
// can show data provenance.
type Listing struct {
	Assets   []core.Asset
	Provider string
}

// FetchListing returns one page of the market listing. A fresh cache
// entry short-circuits the whole cascade; the cached provider name is
// returned as provenance.
func (s *Service) FetchListing(ctx context.Context, page, perPage int) (*Listing, error) {
	if page < 1 || perPage < 1 {
		return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("page=%d perPage=%d", page, perPage))
	}

	key := cache.ListingKey(page, perPage)
	if payload, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(string(core.CapabilityListing), true)
		return payload.(*Listing), nil
	}
	s.metrics.RecordCacheLookup(string(core.CapabilityListing), false)

	v, err, _ := s.flight.Do(key, func() (any, error) {
		listing, err := s.resolveListing(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, listing, s.cfg.ListingTTL)
		s.snapshotListing(listing, page, perPage)
		return listing, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Listing), nil
}

// resolveListing runs the listing cascade without touching the cache.
func (s *Service) resolveListing(ctx context.Context, page, perPage int) (*Listing, error) {
	if !s.conn.Connected() {
		return nil, core.ErrNotConnected
	}

	reqID := requestID()
	log := s.log.With(zap.String("request_id", reqID), zap.Int("page", page), zap.Int("per_page", perPage))

	sources := make([]cascade.Source[[]core.Asset], 0, len(s.providers.Listing))
	for i, p := range s.providers.Listing {
		p := p
		sources = append(sources, instrument(s, core.CapabilityListing, p.Name(), s.policyFor(i),
			func(ctx context.Context) ([]core.Asset, error) {
				return p.FetchListing(ctx, page, perPage)
			}))
	}

	assets, providerName, err := cascade.Resolve(ctx, core.CapabilityListing, log, sources)
	if err != nil {
		s.recordCascadeFailure(core.CapabilityListing, err)
		return nil, err
	}

	log.Info("listing resolved",
		zap.String("provider", providerName),
		zap.Int("assets", len(assets)),
	)
	return &Listing{Assets: assets, Provider: providerName}, nil
}

// FetchDetail returns the extended record for one asset. The primary
// detail provider is tried first; on failure the asset is located inside
// a fresh bounded listing and opportunistically enriched with history.
// After the record is returned, a detached task fetches a richer series
// and merges it into the cached entry.
func (s *Service) FetchDetail(ctx context.Context, assetID string) (*core.Asset, error) {
	if assetID == "" {
		return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("empty asset id"))
	}

	key := cache.DetailKey(assetID)
	if payload, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(string(core.CapabilityDetail), true)
		return payload.(*core.Asset), nil
	}
	s.metrics.RecordCacheLookup(string(core.CapabilityDetail), false)

	v, err, _ := s.flight.Do(key, func() (any, error) {
		asset, err := s.resolveDetail(ctx, assetID)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, asset, s.cfg.DetailTTL)
		s.refineDetail(assetID)
		return asset, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Asset), nil
}

func (s *Service) resolveDetail(ctx context.Context, assetID string) (*core.Asset, error) {
	if !s.conn.Connected() {
		return nil, core.ErrNotConnected
	}

	reqID := requestID()
	log := s.log.With(zap.String("request_id", reqID), zap.String("asset_id", assetID))

	if s.providers.Detail != nil {
		src := instrument(s, core.CapabilityDetail, s.providers.Detail.Name(), s.cfg.PrimaryPolicy,
			func(ctx context.Context) (*core.Asset, error) {
				return s.providers.Detail.FetchDetail(ctx, assetID)
			})
		asset, err := retry.Do(ctx, src.Policy, src.Fetch)
		if err == nil {
			log.Info("detail resolved", zap.String("provider", src.Name))
			return asset, nil
		}
		log.Warn("detail provider failed, locating in listing",
			zap.String("provider", src.Name), zap.Error(err))
		s.metrics.RecordCascadeFallback(string(core.CapabilityDetail), src.Name)
	}

	// Fallback: find the asset in a fresh bounded listing.
	listing, err := s.resolveListing(ctx, 1, s.cfg.FallbackPageSize)
	if err != nil {
		return nil, core.WrapError(core.ErrAssetNotFound, err)
	}

	for i := range listing.Assets {
		if listing.Assets[i].ID != assetID {
			continue
		}
		found := listing.Assets[i]

		// Opportunistic enrichment; its failure is not the caller's
		// problem. A basic record is still a success.
		if history, herr := s.resolveHistory(ctx, assetID, s.cfg.EnrichDays); herr == nil {
			found.Detail = &core.AssetDetail{History: history}
		} else {
			log.Warn("history enrichment failed, returning basic record", zap.Error(herr))
		}
		log.Info("detail located in fallback listing", zap.String("provider", listing.Provider))
		return &found, nil
	}

	return nil, core.WrapError(core.ErrAssetNotFound,
		fmt.Errorf("asset %q not in first %d listed", assetID, s.cfg.FallbackPageSize))
}

// refineDetail issues the secondary richer history fetch after the
// primary record has already been returned. It runs detached: failure is
// logged and swallowed, success merges into the cached entry by
// copy-on-write so earlier readers are unaffected.
func (s *Service) refineDetail(assetID string) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RefineTimeout)
		defer cancel()

		history, err := s.resolveHistory(ctx, assetID, s.cfg.RefineDays)
		if err != nil {
			s.metrics.RecordRefinement("failed")
			s.log.Debug("background refinement failed",
				zap.String("asset_id", assetID), zap.Error(err))
			return
		}

		s.cache.Mutate(cache.DetailKey(assetID), func(current any, fresh bool) (any, bool) {
			if !fresh {
				return nil, false
			}
			prev := current.(*core.Asset)
			next := *prev
			if prev.Detail != nil {
				detail := *prev.Detail
				next.Detail = &detail
			} else {
				next.Detail = &core.AssetDetail{}
			}
			if len(history) >= len(next.Detail.History) {
				next.Detail.History = history
			}
			return &next, true
		})
		s.metrics.RecordRefinement("merged")
	}()
}

// FetchHistory returns a price series for the asset over the given span.
func (s *Service) FetchHistory(ctx context.Context, assetID string, days int) (core.History, error) {
	if assetID == "" || days < 1 {
		return nil, core.WrapError(core.ErrInvalidRequest,
			fmt.Errorf("assetID=%q days=%d", assetID, days))
	}

	key := cache.HistoryKey(assetID, days)
	if payload, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(string(core.CapabilityHistory), true)
		return payload.(core.History), nil
	}
	s.metrics.RecordCacheLookup(string(core.CapabilityHistory), false)

	v, err, _ := s.flight.Do(key, func() (any, error) {
		history, err := s.resolveHistory(ctx, assetID, days)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, history, s.cfg.HistoryTTL)
		return history, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(core.History), nil
}

func (s *Service) resolveHistory(ctx context.Context, assetID string, days int) (core.History, error) {
	if !s.conn.Connected() {
		return nil, core.ErrNotConnected
	}

	sources := make([]cascade.Source[core.History], 0, len(s.providers.History))
	for i, p := range s.providers.History {
		p := p
		sources = append(sources, instrument(s, core.CapabilityHistory, p.Name(), s.policyFor(i),
			func(ctx context.Context) (core.History, error) {
				return p.FetchHistory(ctx, assetID, days)
			}))
	}

	history, _, err := cascade.Resolve(ctx, core.CapabilityHistory, s.log, sources)
	if err != nil {
		s.recordCascadeFailure(core.CapabilityHistory, err)
		return nil, err
	}
	return history, nil
}

// FetchNews asks every news provider and unions the non-failing results,
// sorted by publish time descending. One success is a success for the
// whole operation; only a unanimous failure surfaces an error.
func (s *Service) FetchNews(ctx context.Context) ([]core.NewsArticle, error) {
	key := cache.NewsKey()
	if payload, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(string(core.CapabilityNews), true)
		return payload.([]core.NewsArticle), nil
	}
	s.metrics.RecordCacheLookup(string(core.CapabilityNews), false)

	v, err, _ := s.flight.Do(key, func() (any, error) {
		articles, err := s.resolveNews(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, articles, s.cfg.NewsTTL)
		return articles, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.NewsArticle), nil
}

func (s *Service) resolveNews(ctx context.Context) ([]core.NewsArticle, error) {
	if !s.conn.Connected() {
		return nil, core.ErrNotConnected
	}

	type outcome struct {
		provider string
		articles []core.NewsArticle
		err      error
	}

	results := make(chan outcome, len(s.providers.News))
	for i, p := range s.providers.News {
		p := p
		src := instrument(s, core.CapabilityNews, p.Name(), s.policyFor(i),
			func(ctx context.Context) ([]core.NewsArticle, error) {
				return p.FetchNews(ctx)
			})
		go func() {
			articles, err := retry.Do(ctx, src.Policy, src.Fetch)
			results <- outcome{provider: src.Name, articles: articles, err: err}
		}()
	}

	var merged []core.NewsArticle
	var failures []core.ProviderFailure
	for range s.providers.News {
		out := <-results
		if out.err != nil {
			s.log.Warn("news provider failed",
				zap.String("provider", out.provider), zap.Error(out.err))
			s.metrics.RecordCascadeFallback(string(core.CapabilityNews), out.provider)
			failures = append(failures, core.ProviderFailure{Provider: out.provider, Err: out.err})
			continue
		}
		merged = append(merged, out.articles...)
	}

	if len(merged) == 0 && len(failures) == len(s.providers.News) && len(failures) > 0 {
		err := &core.CascadeError{Capability: core.CapabilityNews, Failures: failures}
		s.recordCascadeFailure(core.CapabilityNews, err)
		return nil, err
	}

	core.SortArticles(merged)
	return merged, nil
}

// snapshotListing hands a successful page to the archive collaborator in
// the background. Never blocks or fails the caller.
func (s *Service) snapshotListing(listing *Listing, page, perPage int) {
	if s.snapshots == nil {
		return
	}
	assets := listing.Assets
	providerName := listing.Provider

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.snapshots.SaveListing(ctx, providerName, page, perPage, assets); err != nil {
			s.log.Warn("listing snapshot failed", zap.Error(err))
		}
	}()
}

// policyFor picks the retry policy by cascade position: the first
// provider gets the primary tuning, everyone after it the secondary.
func (s *Service) policyFor(index int) retry.Policy {
	if index == 0 {
		return s.cfg.PrimaryPolicy
	}
	return s.cfg.SecondaryPolicy
}

func (s *Service) recordCascadeFailure(capability core.Capability, err error) {
	var cascadeErr *core.CascadeError
	if errors.As(err, &cascadeErr) {
		s.metrics.RecordCascadeExhausted(string(capability))
		for _, f := range cascadeErr.Failures {
			s.metrics.RecordCascadeFallback(string(capability), f.Provider)
		}
	}
}

// instrument wraps a provider call with request/retry/duration metrics.
func instrument[T any](s *Service, capability core.Capability, name string, policy retry.Policy, fetch func(context.Context) (T, error)) cascade.Source[T] {
	calls := 0
	return cascade.Source[T]{
		Name:   name,
		Policy: policy,
		Fetch: func(ctx context.Context) (T, error) {
			if calls > 0 {
				s.metrics.RecordProviderRetry(name, string(capability))
			}
			calls++

			start := time.Now()
			result, err := fetch(ctx)
			s.metrics.RecordProviderRequest(name, string(capability), errStatus(err), time.Since(start).Seconds())
			return result, err
		},
	}
}

// errStatus maps an error onto a low-cardinality metric label.
func errStatus(err error) string {
	if err == nil {
		return "success"
	}
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return strings.ToLower(coreErr.Code)
	}
	return "error"
}

func requestID() string {
	return uuid.NewString()[:8]
}
