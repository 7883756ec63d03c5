package integrationtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/adammck/lrucache/pkg/api"
	"github.com/adammck/lrucache/pkg/impl/store/mongo"
	"github.com/adammck/lrucache/pkg/impl/store/s3"
	"github.com/adammck/lrucache/pkg/readthrough"
	"github.com/adammck/lrucache/pkg/testdeps"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name  string
	setup func(ctx context.Context, t *testing.T, clock clockwork.Clock) api.Store
}

var backends = []backend{
	{
		name: "mongo",
		setup: func(ctx context.Context, t *testing.T, clock clockwork.Clock) api.Store {
			env := testdeps.New(ctx, t, testdeps.WithMongo())
			return mongo.New(env.Mongo().Database("lrucache"), clock)
		},
	},
	{
		name: "s3",
		setup: func(ctx context.Context, t *testing.T, clock clockwork.Clock) api.Store {
			env := testdeps.New(ctx, t, testdeps.WithMinio())
			s := s3.New(env.S3Bucket, "lrucache/")
			require.NoError(t, s.Ping(ctx))
			return s
		},
	},
}

func forEachBackend(t *testing.T, f func(t *testing.T, ctx context.Context, store api.Store, clock *clockwork.FakeClock)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			clock := clockwork.NewFakeClockAt(time.Now().Truncate(time.Second))
			f(t, ctx, b.setup(ctx, t, clock), clock)
		})
	}
}

func TestReadThrough(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, store api.Store, clock *clockwork.FakeClock) {
		c := readthrough.New(store, 2, readthrough.WithClock(clock))
		defer c.Close()

		for i := 1; i <= 3; i++ {
			require.NoError(t, c.Put(ctx, fmt.Sprintf("k%d", i), []byte(fmt.Sprintf("v%d", i))))
		}

		// k1 was evicted when k3 went in, so it comes from the store.
		require.False(t, c.Contains("k1"))
		val, stats, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		require.Equal(t, []byte("v1"), val)
		require.Equal(t, api.SourceStore, stats.Source)

		val, stats, err = c.Get(ctx, "k1")
		require.NoError(t, err)
		require.Equal(t, []byte("v1"), val)
		require.Equal(t, api.SourceCache, stats.Source)

		require.NoError(t, c.Delete(ctx, "k1"))
		_, _, err = c.Get(ctx, "k1")
		require.ErrorIs(t, err, &api.NotFound{})
	})
}

func TestFilter(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, store api.Store, clock *clockwork.FakeClock) {
		for i := 0; i < 20; i++ {
			k := fmt.Sprintf("doc-%d", i)
			require.NoError(t, store.Put(ctx, k, []byte(k)))
		}

		c := readthrough.New(store, 4, readthrough.WithClock(clock))
		defer c.Close()
		require.NoError(t, c.RebuildFilter(ctx))

		for i := 0; i < 20; i++ {
			k := fmt.Sprintf("doc-%d", i)
			val, _, err := c.Get(ctx, k)
			require.NoError(t, err)
			require.Equal(t, []byte(k), val)
		}

		for i := 0; i < 20; i++ {
			_, _, err := c.Get(ctx, fmt.Sprintf("absent-%d", i))
			require.ErrorIs(t, err, &api.NotFound{})
		}

		m := c.Metrics()
		require.Greater(t, m.Filtered, int64(15))
		require.Equal(t, m.Misses-m.Filtered, m.Loads)
	})
}
