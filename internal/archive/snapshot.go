package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
)

// ListingSnapshot is the persisted form of one successful listing fetch.
type ListingSnapshot struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Provider  string       `json:"provider"`
	Page      int          `json:"page"`
	PerPage   int          `json:"per_page"`
	Assets    []core.Asset `json:"assets"`
}

// Snapshotter writes listing snapshots to a Storage backend.
type Snapshotter struct {
	storage Storage
	now     func() time.Time
}

// NewSnapshotter creates a Snapshotter over the given backend.
func NewSnapshotter(storage Storage) *Snapshotter {
	return &Snapshotter{storage: storage, now: time.Now}
}

// SaveListing persists one listing page. Paths are date-partitioned so
// backends can expire whole days at once.
func (s *Snapshotter) SaveListing(ctx context.Context, providerName string, page, perPage int, assets []core.Asset) error {
	now := s.now().UTC()
	snap := ListingSnapshot{
		FetchedAt: now,
		Provider:  providerName,
		Page:      page,
		PerPage:   perPage,
		Assets:    assets,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	path := fmt.Sprintf("listing/%s/page-%d-%d-%d.json",
		now.Format("2006-01-02"), page, perPage, now.Unix())
	return s.storage.Write(ctx, path, data)
}

// ReadListing loads a snapshot back.
func (s *Snapshotter) ReadListing(ctx context.Context, path string) (*ListingSnapshot, error) {
	data, err := s.storage.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	var snap ListingSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// ListDay returns the snapshot paths written on the given day.
func (s *Snapshotter) ListDay(ctx context.Context, day time.Time) ([]string, error) {
	return s.storage.List(ctx, "listing/"+day.UTC().Format("2006-01-02"))
}
