// Package fx holds the session USD→JPY rate.
package fx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
)

// RateSource fetches a live USD→JPY rate.
type RateSource interface {
	USDJPY(ctx context.Context) (decimal.Decimal, error)
}

// Snapshot describes the rate currently in use.
type Snapshot struct {
	USDJPY    decimal.Decimal `json:"usdJpy"`
	Fallback  bool            `json:"fallback"`
	FetchedAt *time.Time      `json:"fetchedAt,omitempty"`
}

// Service owns the one piece of process-lifetime state: the USD→JPY rate.
// Reads are concurrent; only Refresh writes.
type Service struct {
	source RateSource
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	rate      decimal.Decimal
	fetchedAt time.Time
}

// NewService starts with the fallback rate. A fetched rate is reused by
// Refresh until ttl has passed.
func NewService(source RateSource, fallback decimal.Decimal, ttl time.Duration) *Service {
	if source == nil {
		panic("fx.NewService: source is nil")
	}
	return &Service{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		rate:   fallback,
	}
}

// Rate returns the current USD→JPY rate.
func (s *Service) Rate() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// Table returns the conversion table for the current rate.
func (s *Service) Table() domain.FXTable {
	return domain.NewFXTable(s.Rate())
}

// Snapshot returns the current rate with its provenance.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{USDJPY: s.rate, Fallback: s.fetchedAt.IsZero()}
	if !snap.Fallback {
		at := s.fetchedAt
		snap.FetchedAt = &at
	}
	return snap
}

// Refresh fetches a live rate unless the last successful fetch is younger
// than the TTL. On failure the current rate is kept and the error is
// returned as a warning; the returned rate is always usable.
func (s *Service) Refresh(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	fresh := !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < s.ttl
	current := s.rate
	s.mu.RUnlock()
	if fresh {
		return current, nil
	}

	rate, err := s.source.USDJPY(ctx)
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("non-positive rate %s", rate)
	}
	if err != nil {
		slog.Warn("USDJPY refresh failed, keeping current rate", "rate", current.String(), "error", err)
		return current, fmt.Errorf("refreshing USDJPY, keeping %s: %w", current, err)
	}

	s.mu.Lock()
	s.rate = rate
	s.fetchedAt = s.now()
	s.mu.Unlock()

	slog.Info("USDJPY refreshed", "rate", rate.String())
	return rate, nil
}
