package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalvarado/sitegate/settings"
)

func TestEmptyStoreReturnsNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ReadPublic(ctx)
	assert.ErrorIs(t, err, settings.ErrNotFound)

	_, err = s.ReadPrivate(ctx)
	assert.ErrorIs(t, err, settings.ErrNotFound)
}

func TestWriteThenRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WritePrivate(ctx, settings.Private{SitePassword: "hunter2", SitePasswordVersion: 2}))
	require.NoError(t, s.WritePublic(ctx, settings.Public{SitePassword: "hunter2", SitePasswordVersion: 2}))

	priv, err := s.ReadPrivate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, priv.SitePasswordVersion)

	pub, err := s.ReadPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pub.SitePassword)
}

func TestSeedPopulatesBothViews(t *testing.T) {
	s := New()
	s.Seed(settings.Private{SitePassword: "hunter2", SitePasswordVersion: 7})
	ctx := context.Background()

	pub, err := s.ReadPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, pub.SitePasswordVersion)

	priv, err := s.ReadPrivate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", priv.SitePassword)
}

func TestWriteIsFullOverwrite(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Seed(settings.Private{SitePassword: "hunter2", SitePasswordVersion: 1})
	require.NoError(t, s.WritePublic(ctx, settings.Public{SitePasswordVersion: 2}))

	pub, err := s.ReadPublic(ctx)
	require.NoError(t, err)
	assert.Empty(t, pub.SitePassword, "overwrite must not merge with the previous record")
}
