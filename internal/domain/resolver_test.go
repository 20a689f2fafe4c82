package domain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adaptermocks "splice.dev/pkg/splice/internal/adapter/mocks"
	"splice.dev/pkg/splice/internal/domain"
	m "splice.dev/pkg/splice/internal/model"
)

type recordingExtender struct {
	mu    sync.Mutex
	paths []m.Path
	fail  map[m.Path]error
}

func (r *recordingExtender) Extend(path m.Path) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fail[path]; err != nil {
		return err
	}

	r.paths = append(r.paths, path)

	return nil
}

func coordinate(t *testing.T, text string) m.Coordinate {
	t.Helper()

	c, err := m.ParseCoordinate(text)
	require.NoError(t, err)

	return c
}

func fetched(t *testing.T, text, sha string) m.FetchResult {
	t.Helper()

	c := coordinate(t, text)

	return m.FetchResult{
		Coordinate: c,
		Path:       m.Path("/cache/" + c.FileName()),
		Mirror:     "https://repo.example.com/maven2",
		SHA256:     sha,
	}
}

func TestDependencyResolver_ExtendsInSourceOrder(t *testing.T) {
	mockFetcher := adaptermocks.NewMockArtifactFetcher(t)
	mockLock := adaptermocks.NewMockLockStore(t)
	extender := &recordingExtender{}

	mirrors := []m.MirrorConfig{{URL: "https://repo.example.com/maven2"}}
	coords := []string{"org.example:alpha:1.0", "org.example:beta:2.0", "org.example:gamma:3.0:tests"}

	for i, text := range coords {
		result := fetched(t, text, "")
		call := mockFetcher.EXPECT().Fetch(mock.Anything, coordinate(t, text), mirrors).Return(result, nil).Once()

		// Later coordinates finish first.
		call.WaitUntil(time.After(time.Duration(len(coords)-i) * 10 * time.Millisecond))
	}

	var observed []int

	results, err := domain.NewDependencyResolver(mockFetcher, mockLock, extender).Resolve(context.Background(), domain.ResolveArgs{
		Coordinates: coords,
		Mirrors:     mirrors,
		Parallel:    3,
		OnResult: func(index int, result m.FetchResult, err error) {
			assert.NoError(t, err)
			assert.Equal(t, coords[index], result.Coordinate.String())

			observed = append(observed, index)
		},
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []int{0, 1, 2}, observed)
	assert.Equal(t, []m.Path{
		"/cache/alpha-1.0.jar",
		"/cache/beta-2.0.jar",
		"/cache/gamma-3.0-tests.jar",
	}, extender.paths)
}

func TestDependencyResolver_InvalidCoordinateFetchesNothing(t *testing.T) {
	mockFetcher := adaptermocks.NewMockArtifactFetcher(t)
	mockLock := adaptermocks.NewMockLockStore(t)
	extender := &recordingExtender{}

	_, err := domain.NewDependencyResolver(mockFetcher, mockLock, extender).Resolve(context.Background(), domain.ResolveArgs{
		Coordinates: []string{"org.example:alpha:1.0", "not-a-coordinate"},
	})

	assert.ErrorIs(t, err, m.ErrInvalidCoordinate)
	assert.Empty(t, extender.paths)
}

func TestDependencyResolver_NoDependencies(t *testing.T) {
	results, err := domain.NewDependencyResolver(
		adaptermocks.NewMockArtifactFetcher(t),
		adaptermocks.NewMockLockStore(t),
		&recordingExtender{},
	).Resolve(context.Background(), domain.ResolveArgs{LockPath: "splice.lock"})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDependencyResolver_FetchFailureStillExtendsOthers(t *testing.T) {
	mockFetcher := adaptermocks.NewMockArtifactFetcher(t)
	mockLock := adaptermocks.NewMockLockStore(t)
	extender := &recordingExtender{}

	alpha := coordinate(t, "org.example:alpha:1.0")
	beta := coordinate(t, "org.example:beta:2.0")
	failure := &m.FetchError{Coordinate: alpha, Failures: []m.MirrorFailure{{Mirror: "https://down.example.com", Err: errors.New("connection refused")}}}

	mockFetcher.EXPECT().Fetch(mock.Anything, alpha, mock.Anything).Return(m.FetchResult{Coordinate: alpha}, failure).Once()
	mockFetcher.EXPECT().Fetch(mock.Anything, beta, mock.Anything).Return(fetched(t, "org.example:beta:2.0", "beef"), nil).Once()
	mockLock.EXPECT().Load(m.Path("splice.lock")).Return(m.LockFile{Version: 1}, nil).Once()

	var failed []int

	_, err := domain.NewDependencyResolver(mockFetcher, mockLock, extender).Resolve(context.Background(), domain.ResolveArgs{
		Coordinates: []string{alpha.String(), beta.String()},
		LockPath:    "splice.lock",
		OnResult: func(index int, _ m.FetchResult, err error) {
			if err != nil {
				failed = append(failed, index)
			}
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, m.ErrArtifactFetchFailed)

	var fetchErr *m.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Len(t, fetchErr.Failures, 1)

	assert.Equal(t, []int{0}, failed)
	assert.Equal(t, []m.Path{"/cache/beta-2.0.jar"}, extender.paths)
}

func TestDependencyResolver_PinsLockFile(t *testing.T) {
	mockFetcher := adaptermocks.NewMockArtifactFetcher(t)
	mockLock := adaptermocks.NewMockLockStore(t)
	extender := &recordingExtender{}

	pinnedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	alpha := fetched(t, "org.example:alpha:1.0", "aaaa")
	alpha.Cached = true
	alpha.Mirror = ""
	beta := fetched(t, "org.example:beta:2.0", "bbbb")

	mockFetcher.EXPECT().Fetch(mock.Anything, alpha.Coordinate, mock.Anything).Return(alpha, nil).Once()
	mockFetcher.EXPECT().Fetch(mock.Anything, beta.Coordinate, mock.Anything).Return(beta, nil).Once()

	mockLock.EXPECT().Load(m.Path("splice.lock")).Return(m.LockFile{
		Version: 1,
		Artifacts: []m.LockedArtifact{{
			Coordinate: "org.example:alpha:1.0",
			Path:       "/cache/alpha-1.0.jar",
			Mirror:     "https://old.example.com",
			SHA256:     "aaaa",
			FetchedAt:  pinnedAt,
		}},
	}, nil).Once()

	mockLock.EXPECT().Save(m.Path("splice.lock"), mock.MatchedBy(func(lock m.LockFile) bool {
		if len(lock.Artifacts) != 2 {
			return false
		}

		first, second := lock.Artifacts[0], lock.Artifacts[1]

		return first.Coordinate == "org.example:alpha:1.0" &&
			first.Mirror == "https://old.example.com" &&
			first.FetchedAt.Equal(pinnedAt) &&
			second.Coordinate == "org.example:beta:2.0" &&
			second.SHA256 == "bbbb" &&
			second.Mirror == beta.Mirror &&
			!second.FetchedAt.IsZero()
	})).Return(nil).Once()

	_, err := domain.NewDependencyResolver(mockFetcher, mockLock, extender).Resolve(context.Background(), domain.ResolveArgs{
		Coordinates: []string{"org.example:alpha:1.0", "org.example:beta:2.0"},
		LockPath:    "splice.lock",
		Parallel:    1,
	})

	require.NoError(t, err)
	assert.Len(t, extender.paths, 2)
}

func TestDependencyResolver_ChecksumMismatch(t *testing.T) {
	mockFetcher := adaptermocks.NewMockArtifactFetcher(t)
	mockLock := adaptermocks.NewMockLockStore(t)
	extender := &recordingExtender{}

	alpha := fetched(t, "org.example:alpha:1.0", "ffff")

	mockFetcher.EXPECT().Fetch(mock.Anything, alpha.Coordinate, mock.Anything).Return(alpha, nil).Once()
	mockLock.EXPECT().Load(m.Path("splice.lock")).Return(m.LockFile{
		Version:   1,
		Artifacts: []m.LockedArtifact{{Coordinate: "org.example:alpha:1.0", SHA256: "aaaa"}},
	}, nil).Once()

	_, err := domain.NewDependencyResolver(mockFetcher, mockLock, extender).Resolve(context.Background(), domain.ResolveArgs{
		Coordinates: []string{"org.example:alpha:1.0"},
		LockPath:    "splice.lock",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch: locked aaaa, got ffff")
	assert.Empty(t, extender.paths)
}

func TestDependencyResolver_ExtendFailure(t *testing.T) {
	mockFetcher := adaptermocks.NewMockArtifactFetcher(t)
	mockLock := adaptermocks.NewMockLockStore(t)

	alpha := fetched(t, "org.example:alpha:1.0", "aaaa")
	extender := &recordingExtender{fail: map[m.Path]error{alpha.Path: m.ErrSearchPathFrozen}}

	mockFetcher.EXPECT().Fetch(mock.Anything, alpha.Coordinate, mock.Anything).Return(alpha, nil).Once()

	_, err := domain.NewDependencyResolver(mockFetcher, mockLock, extender).Resolve(context.Background(), domain.ResolveArgs{
		Coordinates: []string{"org.example:alpha:1.0"},
	})

	assert.ErrorIs(t, err, m.ErrSearchPathFrozen)
}
