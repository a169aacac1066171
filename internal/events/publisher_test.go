package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/carbvium/internal/models"
)

// fakeClient records publishes. Unused mqtt.Client methods panic via the nil embed.
type fakeClient struct {
	mqtt.Client
	mu           sync.Mutex
	topics       []string
	payloads     [][]byte
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return &mqtt.DummyToken{}
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.disconnected = true
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	p := newMQTTPublisher(client, "carbvium/search")

	p.Publish(models.SearchEvent{
		ID:          "evt-1",
		Endpoint:    "/api/vehicles",
		VehicleType: "EV",
		PriceRange:  "mid",
		Category:    "all",
		ResultCount: 4,
		CreatedAt:   time.Now(),
	})

	require.Len(t, client.payloads, 1)
	assert.Equal(t, "carbvium/search", client.topics[0])

	var got models.SearchEvent
	require.NoError(t, json.Unmarshal(client.payloads[0], &got))
	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, "EV", got.VehicleType)
	assert.Equal(t, 4, got.ResultCount)

	p.Close()
	assert.True(t, client.disconnected)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NotPanics(t, func() {
		p.Publish(models.SearchEvent{})
		p.Close()
	})
}

func TestNewMQTTPublisher_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping broker connection test in short mode")
	}
	_, err := NewMQTTPublisher("tcp://127.0.0.1:1", "test", "topic")
	assert.Error(t, err)
}
