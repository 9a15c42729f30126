// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(types.CacheConfig{
		Path: filepath.Join(t.TempDir(), "cache.db"),
		TTL:  ttl,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t, time.Hour)

	require.NoError(t, s.Put("k1", []byte(`{"a":1}`)))
	got, err := s.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t, time.Hour)

	_, err := s.Get("absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestPutIsIdempotentUpsert(t *testing.T) {
	s := openTestStore(t, time.Hour)

	require.NoError(t, s.Put("k", []byte("first")))
	require.NoError(t, s.Put("k", []byte("second")))

	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestExpiredEntryMisses(t *testing.T) {
	s := openTestStore(t, time.Hour)

	require.NoError(t, s.Put("k", []byte("v")))

	// Advance the clock past the TTL.
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := s.Get("k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t, time.Hour)

	require.NoError(t, s.Put("old", []byte("v")))
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.NoError(t, s.Put("fresh", []byte("v")))

	n, err := s.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get("fresh")
	assert.NoError(t, err)
}

func TestKeyDeterministic(t *testing.T) {
	req := types.ReviewRequest{
		Query: "knee pain exercise therapy",
		Filters: types.ReviewFilters{
			YearFrom:         2015,
			PeerReviewedOnly: true,
		},
	}
	assert.Equal(t, Key(req), Key(req))

	other := req
	other.Filters.YearFrom = 2016
	assert.NotEqual(t, Key(req), Key(other))
}
