package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
)

func TestKitchenTopic(t *testing.T) {
	assert.Equal(t, "restaurants/7/orders", KitchenTopic("", 7))
	assert.Equal(t, "pos/restaurants/7/orders", KitchenTopic("pos", 7))
	assert.Equal(t, "pos/restaurants/7/orders", KitchenTopic("pos/", 7))
}

func TestEncode(t *testing.T) {
	raw, err := Encode([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(raw))

	str, err := Encode("text")
	require.NoError(t, err)
	assert.Equal(t, "text", string(str))

	data, err := Encode(OrderEvent{Event: EventOrderCreated, OrderNumber: "20240101-0001", Status: "pending"})
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "order.created", decoded["event"])
	assert.NotContains(t, decoded, "from_status")

	_, err = Encode(make(chan int))
	assert.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	c := NewClient(&config.MQTTConfig{
		Broker:         "broker.local:1883",
		ClientIDPrefix: "pos-",
		KeepAlive:      30,
		ConnectTimeout: 5,
		AutoReconnect:  true,
	})
	opts := c.ClientOptions()

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "tcp", opts.Servers[0].Scheme)
	assert.Equal(t, "broker.local:1883", opts.Servers[0].Host)
	assert.Contains(t, opts.ClientID, "pos-")
	assert.Equal(t, int64(30), opts.KeepAlive)
	assert.Equal(t, 5*time.Second, opts.ConnectTimeout)
	assert.True(t, opts.AutoReconnect)
	assert.False(t, c.IsConnected())
}

func TestPublishWithoutConnection(t *testing.T) {
	c := NewClient(&config.MQTTConfig{Broker: "tcp://localhost:1883"})
	err := c.PublishWithContext(context.Background(), "topic", "x")
	assert.Error(t, err)
}
