package apikey

import (
	"net/http"
	"testing"

	"github.com/hookline/hookline/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyedProvider(keys ...string) provider.Provider {
	return provider.Provider{
		Name:         "internal",
		APIKeyHeader: "X-Api-Key",
		APIKeys:      keys,
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Api-Key", "secret-key")

		require.NoError(t, NewValidator(keyedProvider("secret-key")).Validate(headers))
	})

	t.Run("missing key", func(t *testing.T) {
		err := NewValidator(keyedProvider("secret-key")).Validate(http.Header{})
		require.Error(t, err)
		assert.Equal(t, "Missing API key", err.Error())
	})

	t.Run("blank key", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Api-Key", "  ")

		err := NewValidator(keyedProvider("secret-key")).Validate(headers)
		require.Error(t, err)
		assert.Equal(t, "Missing API key", err.Error())
	})

	t.Run("wrong key", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Api-Key", "not-it")

		err := NewValidator(keyedProvider("secret-key")).Validate(headers)
		require.Error(t, err)
		assert.Equal(t, "Invalid API key", err.Error())
	})

	t.Run("key rotation accepts any configured key", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Api-Key", "previous")

		require.NoError(t, NewValidator(keyedProvider("current", "previous")).Validate(headers))
	})

	t.Run("no-op without configuration", func(t *testing.T) {
		p := provider.Provider{Name: "bare"}
		require.NoError(t, NewValidator(p).Validate(http.Header{}))
	})
}
