package secrets

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoScope(t *testing.T) {
	_, err := Resolve(context.Background(), "DROPBOX_ACCESS_TOKEN")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "DROPBOX_ACCESS_TOKEN")
	assert.Contains(t, err.Error(), "no secret scope")
}

func TestResolve_FromScope(t *testing.T) {
	ctx := WithSecrets(context.Background(), map[string]string{"DROPBOX_ACCESS_TOKEN": "HI"})

	v, err := Resolve(ctx, "DROPBOX_ACCESS_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "HI", v)

	_, err = Resolve(ctx, "TEST_SECRET")
	assert.True(t, IsNotFound(err))
}

func TestNestedScopeShadowsOuter(t *testing.T) {
	outer := WithSecrets(context.Background(), map[string]string{"A": "outer", "B": "outer-only"})
	inner := WithSecrets(outer, map[string]string{"A": "inner"})

	v, err := Resolve(inner, "A")
	require.NoError(t, err)
	assert.Equal(t, "inner", v)

	_, err = Resolve(inner, "B")
	assert.True(t, IsNotFound(err), "内层作用域不应看到外层的值")

	v, err = Resolve(outer, "A")
	require.NoError(t, err)
	assert.Equal(t, "outer", v)
}

func TestScope(t *testing.T) {
	ctx := context.Background()
	called := false

	err := Scope(ctx, map[string]string{"K": "V"}, func(ctx context.Context) error {
		called = true
		v, err := Resolve(ctx, "K")
		require.NoError(t, err)
		assert.Equal(t, "V", v)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	_, err = Resolve(ctx, "K")
	assert.True(t, IsNotFound(err), "作用域结束后不应泄漏")
}

func TestMapProviderCopiesInput(t *testing.T) {
	values := map[string]string{"K": "before"}
	ctx := WithSecrets(context.Background(), values)
	values["K"] = "after"

	v, err := Resolve(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, "before", v)
}

func TestConcurrentScopesIsolated(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx := WithSecrets(context.Background(), map[string]string{"T": "HI"})
			v, err := Resolve(ctx, "T")
			assert.NoError(t, err)
			assert.Equal(t, "HI", v)
		}()
		go func() {
			defer wg.Done()
			ctx := WithSecrets(context.Background(), map[string]string{"T": "BYE"})
			v, err := Resolve(ctx, "T")
			assert.NoError(t, err)
			assert.Equal(t, "BYE", v)
		}()
	}
	wg.Wait()
}
