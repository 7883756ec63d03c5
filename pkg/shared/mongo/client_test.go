package mongo

import (
	"context"
	"testing"

	"github.com/adammck/lrucache/pkg/testdeps"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	env := testdeps.New(ctx, t, testdeps.WithMongo())

	c := NewClient(env.MongoURL()).WithDatabase("clienttest")

	db, err := c.DB(ctx)
	require.NoError(t, err)
	require.Equal(t, "clienttest", db.Name())

	again, err := c.DB(ctx)
	require.NoError(t, err)
	require.Same(t, db, again)

	require.NoError(t, c.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

func TestClientDefaults(t *testing.T) {
	c := NewClient("mongodb://example.invalid:27017")
	require.Equal(t, DefaultDB, c.dbName)
	require.False(t, c.direct)

	c.WithDirect(true)
	require.True(t, c.direct)
}
