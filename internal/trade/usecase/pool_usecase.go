package usecase

import (
	"context"
	"log"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/internal/trade/repository"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
	"github.com/navinavi029/Circld-sub003/pkg/geo"
	"github.com/navinavi029/Circld-sub003/pkg/retry"
)

const (
	maxPoolLimit = 100
	// overFetchFactor compensates for candidates the client-side
	// predicates will drop.
	overFetchFactor = 3
)

// candidatePage is one server-side page of pool candidates.
type candidatePage struct {
	items []*domain.Item
	next  string
}

// poolUsecase implements PoolUsecase
type poolUsecase struct {
	items repository.ItemRepository
	seq   *Sequencer
	exec  *retry.Executor
}

// NewPoolUsecase creates a new instance of poolUsecase
func NewPoolUsecase(items repository.ItemRepository, seq *Sequencer, exec *retry.Executor) PoolUsecase {
	return &poolUsecase{items: items, seq: seq, exec: exec}
}

// BuildItemPool fetches a superset of candidates and narrows it through
// the exclusion predicates: ownership, prior decisions, category,
// condition and geo distance. Pure read; no side effects beyond I/O.
func (u *poolUsecase) BuildItemPool(ctx context.Context, userID string, history []string, limit int, cursor string, filters *domain.PoolFilters, userLocation *geo.Point) (*PoolResult, error) {
	if userID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id is required")
	}
	if limit < 1 || limit > maxPoolLimit {
		return nil, errs.Newf(errs.InvalidArgument, "limit must be between 1 and %d", maxPoolLimit)
	}

	fetchLimit := limit * overFetchFactor
	if fetchLimit > maxPoolLimit {
		fetchLimit = maxPoolLimit
	}

	return Sequenced(ctx, u.seq, func() (*PoolResult, error) {
		page, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (candidatePage, error) {
			items, next, fetchErr := u.items.FetchCandidates(ctx, userID, fetchLimit, cursor)
			return candidatePage{items: items, next: next}, fetchErr
		})
		if err != nil {
			return nil, err
		}
		candidates, nextCursor := page.items, page.next
		if len(candidates) == 0 {
			return &PoolResult{NoCandidates: true}, nil
		}

		kept := u.applyPredicates(candidates, userID, history, filters)

		if filters != nil && filters.MaxDistanceKm > 0 && userLocation != nil {
			kept, err = u.applyDistance(ctx, kept, filters.MaxDistanceKm, *userLocation)
			if err != nil {
				return nil, err
			}
		}

		filtered := len(candidates) - len(kept)
		if len(kept) > limit {
			kept = kept[:limit]
		}
		log.Printf("[Pool] user=%s: %d candidates, %d filtered, returning %d", userID, len(candidates), filtered, len(kept))

		return &PoolResult{
			Items:       kept,
			NextCursor:  nextCursor,
			FilteredOut: filtered,
		}, nil
	})
}

func (u *poolUsecase) applyPredicates(candidates []*domain.Item, userID string, history []string, filters *domain.PoolFilters) []*domain.Item {
	decided := make(map[string]struct{}, len(history))
	for _, id := range history {
		decided[id] = struct{}{}
	}

	var categories, conditions map[string]struct{}
	if filters != nil {
		categories = allowList(filters.Categories)
		conditions = allowList(filters.Conditions)
	}

	kept := make([]*domain.Item, 0, len(candidates))
	for _, item := range candidates {
		// ownership and status are filtered server-side; re-checked here
		// so the page contract holds even against a stale index
		if item.OwnerID == userID || item.Status != domain.ItemStatusAvailable {
			continue
		}
		if _, swiped := decided[item.ID]; swiped {
			continue
		}
		if categories != nil {
			if _, ok := categories[item.Category]; !ok {
				continue
			}
		}
		if conditions != nil {
			if _, ok := conditions[item.Condition]; !ok {
				continue
			}
		}
		kept = append(kept, item)
	}
	return kept
}

// applyDistance resolves owner coordinates in one deduplicated batch and
// drops candidates whose owner is unknown or too far away.
func (u *poolUsecase) applyDistance(ctx context.Context, candidates []*domain.Item, maxKm float64, origin geo.Point) ([]*domain.Item, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}
	seen := make(map[string]struct{}, len(candidates))
	ownerIDs := make([]string, 0, len(candidates))
	for _, item := range candidates {
		if _, ok := seen[item.OwnerID]; ok {
			continue
		}
		seen[item.OwnerID] = struct{}{}
		ownerIDs = append(ownerIDs, item.OwnerID)
	}

	locations, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (map[string]*geo.Point, error) {
		return u.items.OwnerLocations(ctx, ownerIDs)
	})
	if err != nil {
		return nil, err
	}

	kept := make([]*domain.Item, 0, len(candidates))
	for _, item := range candidates {
		loc, ok := locations[item.OwnerID]
		if !ok || loc == nil {
			continue
		}
		if geo.DistanceKm(origin, *loc) > maxKm {
			continue
		}
		kept = append(kept, item)
	}
	return kept, nil
}

func allowList(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
