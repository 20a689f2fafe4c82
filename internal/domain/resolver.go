package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"splice.dev/pkg/splice/internal/adapter"
	m "splice.dev/pkg/splice/internal/model"
)

// ResolveArgs configures one dependency resolution.
type ResolveArgs struct {
	Coordinates []string
	Mirrors     []m.MirrorConfig
	Parallel    int
	LockPath    m.Path
	// OnResult, when set, observes each outcome in source order.
	OnResult func(index int, result m.FetchResult, err error)
}

// SearchPathExtender receives fetched artifacts.
type SearchPathExtender interface {
	Extend(path m.Path) error
}

// DependencyResolver turns dependency coordinates into search path roots.
type DependencyResolver interface {
	Resolve(ctx context.Context, args ResolveArgs) ([]m.FetchResult, error)
}

type dependencyResolver struct {
	fetcher  adapter.ArtifactFetcher
	lock     adapter.LockStore
	extender SearchPathExtender
	now      func() time.Time
}

// NewDependencyResolver creates a resolver that fetches through fetcher,
// pins results in lock and appends them to extender.
func NewDependencyResolver(fetcher adapter.ArtifactFetcher, lock adapter.LockStore, extender SearchPathExtender) DependencyResolver {
	return &dependencyResolver{
		fetcher:  fetcher,
		lock:     lock,
		extender: extender,
		now:      time.Now,
	}
}

// Resolve parses every coordinate first, fetches with bounded concurrency,
// then verifies, pins and extends the search path in source order.
func (r *dependencyResolver) Resolve(ctx context.Context, args ResolveArgs) ([]m.FetchResult, error) {
	coordinates := make([]m.Coordinate, 0, len(args.Coordinates))

	for _, text := range args.Coordinates {
		c, err := m.ParseCoordinate(text)
		if err != nil {
			return nil, err
		}

		coordinates = append(coordinates, c)
	}

	if len(coordinates) == 0 {
		return nil, nil
	}

	results := make([]m.FetchResult, len(coordinates))
	errs := make([]error, len(coordinates))

	var group errgroup.Group
	if args.Parallel > 0 {
		group.SetLimit(args.Parallel)
	}

	for i, c := range coordinates {
		group.Go(func() error {
			slog.Debug("fetching artifact", "coordinate", c.String())

			results[i], errs[i] = r.fetcher.Fetch(ctx, c, args.Mirrors)

			return nil
		})
	}

	_ = group.Wait()

	var lock m.LockFile

	if args.LockPath != "" {
		var err error

		lock, err = r.lock.Load(args.LockPath)
		if err != nil {
			return nil, err
		}
	}

	for i, res := range results {
		err := errs[i]
		if err == nil {
			err = r.verify(lock, res)
		}

		if args.OnResult != nil {
			args.OnResult(i, res, err)
		}

		if err != nil {
			errs[i] = err
			continue
		}

		if err := r.extender.Extend(res.Path); err != nil {
			errs[i] = fmt.Errorf("extend search path with %s: %w", res.Coordinate, err)
			continue
		}

		if args.LockPath != "" {
			entry := m.LockedArtifact{
				Coordinate: res.Coordinate.String(),
				Path:       string(res.Path),
				Mirror:     res.Mirror,
				SHA256:     res.SHA256,
				FetchedAt:  r.now().UTC(),
			}

			if prev, ok := lock.Lookup(entry.Coordinate); ok && res.Cached {
				entry.Mirror = prev.Mirror
				entry.FetchedAt = prev.FetchedAt
			}

			lock.Put(entry)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return results, err
	}

	if args.LockPath != "" {
		if err := r.lock.Save(args.LockPath, lock); err != nil {
			return results, fmt.Errorf("save lock file: %w", err)
		}
	}

	return results, nil
}

// verify rejects an artifact whose content no longer matches its pin.
func (r *dependencyResolver) verify(lock m.LockFile, res m.FetchResult) error {
	pinned, ok := lock.Lookup(res.Coordinate.String())
	if !ok || pinned.SHA256 == "" || pinned.SHA256 == res.SHA256 {
		return nil
	}

	return fmt.Errorf("%s: checksum mismatch: locked %s, got %s", res.Coordinate, pinned.SHA256, res.SHA256)
}
