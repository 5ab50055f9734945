package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/a11y-audit/internal/audit"
)

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(4)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_EvictsSoonestExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "new", []byte("3"), time.Hour))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "long")
	assert.True(t, ok)

	// Overwriting an existing key never evicts.
	require.NoError(t, c.Set(ctx, "long", []byte("4"), time.Hour))
	assert.Equal(t, 2, c.Len())
}

func TestReportCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rc := NewReportCache(NewMemoryCache(8), time.Minute)
	reports := map[string]*audit.AuditReport{
		"desktop": {Score: 91.5, Level: audit.LevelAAA, Status: audit.StatusPass},
	}
	require.NoError(t, rc.Put(ctx, "abc", reports))

	got, ok := rc.Get(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, 91.5, got["desktop"].Score)

	_, ok = rc.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestReportCache_Disabled(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache(8)
	rc := NewReportCache(mem, 0)
	require.NoError(t, rc.Put(ctx, "abc", map[string]*audit.AuditReport{"desktop": {}}))
	_, ok := rc.Get(ctx, "abc")
	assert.False(t, ok)
	assert.Equal(t, 0, mem.Len())

	var nilCache *ReportCache
	_, ok = nilCache.Get(ctx, "abc")
	assert.False(t, ok)
	assert.NoError(t, nilCache.Put(ctx, "abc", nil))
	assert.NoError(t, nilCache.Close())
}

func TestReportKey(t *testing.T) {
	req := AuditRequest{HTML: "<p>a</p>", Profiles: []string{"desktop"}}
	k1 := ReportKey([]byte(req.HTML), req)
	assert.Len(t, k1, 16)
	assert.Equal(t, k1, ReportKey([]byte(req.HTML), req))

	other := req
	other.Scope = "#main"
	assert.NotEqual(t, k1, ReportKey([]byte(req.HTML), other))
	assert.NotEqual(t, k1, ReportKey([]byte("<p>b</p>"), req))
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not a url", "a11y:")
	assert.ErrorContains(t, err, "invalid redis URL")
}
