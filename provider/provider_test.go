package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayPolicy(t *testing.T) {
	t.Run("exponential doubles from five seconds", func(t *testing.T) {
		policy := DelayPolicy{Kind: DelayExponential}

		assert.Equal(t, 5*time.Second, policy.Delay(0))
		assert.Equal(t, 10*time.Second, policy.Delay(1))
		assert.Equal(t, 20*time.Second, policy.Delay(2))
		assert.Equal(t, 40*time.Second, policy.Delay(3))
	})

	t.Run("fixed ignores the attempt number", func(t *testing.T) {
		policy := DelayPolicy{Kind: DelayFixed, FixedSeconds: 30}

		assert.Equal(t, 30*time.Second, policy.Delay(0))
		assert.Equal(t, 30*time.Second, policy.Delay(5))
	})

	t.Run("fixed requires positive seconds", func(t *testing.T) {
		err := DelayPolicy{Kind: DelayFixed}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "positive number of seconds")
	})

	t.Run("unknown kind is invalid", func(t *testing.T) {
		err := DelayPolicy{Kind: "linear"}.Validate()
		require.Error(t, err)
	})
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.True(t, policy.Enabled)
	assert.Equal(t, 3, policy.MaxRetries)
	assert.Equal(t, DelayExponential, policy.Delay.Kind)
}

func TestProviderValidate(t *testing.T) {
	valid := Provider{
		Name:               "stripe",
		SignatureHeader:    "Stripe-Signature",
		SignatureAlgorithm: "sha256",
		SignatureFormat:    FormatTimestamped,
		Secrets:            []string{"whsec_test"},
		Retry:              DefaultRetryPolicy(),
	}

	t.Run("valid provider", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("empty name", func(t *testing.T) {
		p := valid
		p.Name = ""
		require.Error(t, p.Validate())
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		p := valid
		p.SignatureAlgorithm = "md5"
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported signature algorithm")
	})

	t.Run("signature header without secrets fails loudly", func(t *testing.T) {
		p := valid
		p.Secrets = nil
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no secrets")
	})

	t.Run("secrets without signature header fails loudly", func(t *testing.T) {
		p := valid
		p.SignatureHeader = ""
		require.Error(t, p.Validate())
	})

	t.Run("api keys without header fails loudly", func(t *testing.T) {
		p := valid
		p.APIKeys = []string{"key"}
		require.Error(t, p.Validate())
	})

	t.Run("negative max retries", func(t *testing.T) {
		p := valid
		p.Retry.MaxRetries = -1
		require.Error(t, p.Validate())
	})
}

func TestProviderEventTypePath(t *testing.T) {
	t.Run("defaults to top-level type", func(t *testing.T) {
		assert.Equal(t, []string{"type"}, Provider{}.EventTypePath())
	})

	t.Run("splits nested paths on dots", func(t *testing.T) {
		p := Provider{EventTypeKey: "event.kind"}
		assert.Equal(t, []string{"event", "kind"}, p.EventTypePath())
	})
}

func TestNewRegistry(t *testing.T) {
	t.Run("applies defaults before validating", func(t *testing.T) {
		registry, err := NewRegistry(Provider{Name: "github"})
		require.NoError(t, err)

		p, ok := registry.Get("github")
		require.True(t, ok)
		assert.Equal(t, "sha256", p.SignatureAlgorithm)
		assert.Equal(t, FormatSimple, p.SignatureFormat)
		assert.Equal(t, DefaultRetryPolicy(), p.Retry)
	})

	t.Run("unknown provider is not found", func(t *testing.T) {
		registry, err := NewRegistry()
		require.NoError(t, err)

		_, ok := registry.Get("nope")
		assert.False(t, ok)
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		_, err := NewRegistry(Provider{Name: "github"}, Provider{Name: "github"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate provider name")
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		_, err := NewRegistry(Provider{Name: "bad", SignatureHeader: "X-Sig"})
		require.Error(t, err)
	})
}
