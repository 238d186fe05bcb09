package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("full provider entry", func(t *testing.T) {
		registry, err := Parse([]byte(`
providers:
  - name: stripe
    signature_header: Stripe-Signature
    signature_format: timestamped
    secrets:
      - whsec_a
      - whsec_b
    event_type_key: type
    retry:
      enabled: true
      max_retries: 5
      delay: fixed
      delay_seconds: 60
`))
		require.NoError(t, err)

		p, ok := registry.Get("stripe")
		require.True(t, ok)
		assert.Equal(t, FormatTimestamped, p.SignatureFormat)
		assert.Equal(t, []string{"whsec_a", "whsec_b"}, p.Secrets)
		assert.Equal(t, 5, p.Retry.MaxRetries)
		assert.Equal(t, DelayFixed, p.Retry.Delay.Kind)
		assert.Equal(t, 60, p.Retry.Delay.FixedSeconds)
	})

	t.Run("retry section merges over defaults", func(t *testing.T) {
		registry, err := Parse([]byte(`
providers:
  - name: github
    signature_header: X-Hub-Signature-256
    secrets: [secret]
    retry:
      max_retries: 1
`))
		require.NoError(t, err)

		p, _ := registry.Get("github")
		assert.True(t, p.Retry.Enabled, "enabled should default to true")
		assert.Equal(t, 1, p.Retry.MaxRetries)
		assert.Equal(t, DelayExponential, p.Retry.Delay.Kind)
	})

	t.Run("disabling retries survives the merge", func(t *testing.T) {
		registry, err := Parse([]byte(`
providers:
  - name: github
    retry:
      enabled: false
`))
		require.NoError(t, err)

		p, _ := registry.Get("github")
		assert.False(t, p.Retry.Enabled)
	})

	t.Run("api key only provider", func(t *testing.T) {
		registry, err := Parse([]byte(`
providers:
  - name: internal
    api_key_header: X-Api-Key
    api_keys: [current, previous]
`))
		require.NoError(t, err)

		p, _ := registry.Get("internal")
		assert.Empty(t, p.SignatureHeader)
		assert.Equal(t, []string{"current", "previous"}, p.APIKeys)
	})

	t.Run("invalid YAML", func(t *testing.T) {
		_, err := Parse([]byte(`providers: [`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing providers YAML")
	})

	t.Run("partial auth config is a startup error", func(t *testing.T) {
		_, err := Parse([]byte(`
providers:
  - name: broken
    signature_header: X-Sig
`))
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads a providers file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "providers.yaml")
		content := []byte("providers:\n  - name: github\n")
		require.NoError(t, os.WriteFile(path, content, 0o600))

		registry, err := Load(path)
		require.NoError(t, err)

		_, ok := registry.Get("github")
		assert.True(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading providers file")
	})
}
