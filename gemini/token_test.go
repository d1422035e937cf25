package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/curator"
	"github.com/fwojciec/curator/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter("gemini-2.0-flash")
	require.NoError(t, err)

	var _ curator.TokenCounter = tc

	t.Run("counts tokens in code", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "import sunpy.map\nm = sunpy.map.Map(path)")

		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("longer code returns more tokens", func(t *testing.T) {
		t.Parallel()

		shortCount, err := tc.CountTokens(context.Background(), "x = 1")
		require.NoError(t, err)

		longCount, err := tc.CountTokens(context.Background(), "import numpy as np\nimport matplotlib.pyplot as plt\nx = np.linspace(0, 1, 100)\nplt.plot(x, np.sin(x))\nplt.show()")
		require.NoError(t, err)

		assert.Greater(t, longCount, shortCount)
	})
}
