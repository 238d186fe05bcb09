package webhook_test

import (
	"testing"

	"github.com/hookline/hookline/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	cases := map[webhook.Status]string{
		webhook.Pending:    "pending",
		webhook.Processing: "processing",
		webhook.Processed:  "processed",
		webhook.Retrying:   "retrying",
		webhook.Failed:     "failed",
		webhook.Unhandled:  "unhandled",
	}

	for status, name := range cases {
		assert.Equal(t, name, status.String())
		assert.Equal(t, status, webhook.NewStatus(name))
	}

	assert.Equal(t, "unknown", webhook.Status(99).String())
	assert.Equal(t, webhook.Pending, webhook.NewStatus("bogus"))
}

func TestStatusValidate(t *testing.T) {
	require.NoError(t, webhook.Pending.Validate())
	require.NoError(t, webhook.Unhandled.Validate())
	require.Error(t, webhook.Status(0).Validate())
	require.Error(t, webhook.Status(99).Validate())
}

func TestStatusIsFinal(t *testing.T) {
	assert.True(t, webhook.Processed.IsFinal())
	assert.True(t, webhook.Failed.IsFinal())
	assert.True(t, webhook.Unhandled.IsFinal())
	assert.False(t, webhook.Pending.IsFinal())
	assert.False(t, webhook.Processing.IsFinal())
	assert.False(t, webhook.Retrying.IsFinal())
}

func TestStatusIsClaimable(t *testing.T) {
	assert.True(t, webhook.Pending.IsClaimable())
	assert.True(t, webhook.Retrying.IsClaimable())
	assert.False(t, webhook.Processing.IsClaimable())
	assert.False(t, webhook.Processed.IsClaimable())
	assert.False(t, webhook.Failed.IsClaimable())
	assert.False(t, webhook.Unhandled.IsClaimable())
}

func TestWebhookValidate(t *testing.T) {
	valid := webhook.Webhook{
		Provider:  "stripe",
		EventType: "charge.succeeded",
		Payload:   []byte(`{"id":"evt_1"}`),
		Status:    webhook.Pending,
	}

	t.Run("valid record", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("missing provider", func(t *testing.T) {
		wh := valid
		wh.Provider = ""
		require.Error(t, wh.Validate())
	})

	t.Run("missing event type", func(t *testing.T) {
		wh := valid
		wh.EventType = ""
		require.Error(t, wh.Validate())
	})

	t.Run("missing payload", func(t *testing.T) {
		wh := valid
		wh.Payload = nil
		require.Error(t, wh.Validate())
	})

	t.Run("negative retry count", func(t *testing.T) {
		wh := valid
		wh.RetryCount = -1
		require.Error(t, wh.Validate())
	})
}
