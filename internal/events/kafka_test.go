package events

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	a := Activity{Type: ProductPurchased, UserID: "u1", ProductID: "p1", Category: "men", Quantity: 2, OccurredAt: at}

	msg, err := serializeToMessage(a)
	require.NoError(t, err)

	assert.Equal(t, []byte("u1"), msg.Key)
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "product_purchased", string(msg.Headers[0].Value))

	var decoded Activity
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, a, decoded)
	assert.NotContains(t, string(msg.Value), "query")
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "activity")
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Activity{Type: ProductViewed}))
	assert.NoError(t, p.Close())
}
