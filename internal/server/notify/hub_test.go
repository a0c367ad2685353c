package notify

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/mori-tea/mori/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient builds a client with no connection for hub-only tests.
func mockClient(hub *Hub, centraID int64) *Client {
	return NewClient(hub, nil, centraID)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	a := mockClient(hub, 3)
	b := mockClient(hub, 3)
	c := mockClient(hub, 5)

	hub.Register(a)
	hub.Register(b)
	hub.Register(c)
	assert.Equal(t, 2, hub.ClientCount(3))
	assert.Equal(t, 1, hub.ClientCount(5))
	assert.Equal(t, 3, hub.Total())

	hub.Unregister(a)
	assert.Equal(t, 1, hub.ClientCount(3))

	_, ok := <-a.send
	assert.False(t, ok, "send channel should be closed")

	hub.Unregister(a)
	hub.Unregister(b)
	hub.Unregister(c)
	assert.Zero(t, hub.Total())
}

func TestHub_PublishScopedToCentra(t *testing.T) {
	hub := NewHub(nil)
	mine := mockClient(hub, 3)
	other := mockClient(hub, 5)
	hub.Register(mine)
	hub.Register(other)

	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	hub.Publish(&models.Notification{ID: 11, CentraID: 3, Message: "Drying machine M1 is now running", CreatedAt: created})

	select {
	case data := <-mine.send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, Event{Type: "notification", ID: 11, CentraID: 3, Message: "Drying machine M1 is now running", CreatedAt: created}, ev)
	case <-time.After(time.Second):
		t.Fatal("subscriber of centra 3 got nothing")
	}

	select {
	case <-other.send:
		t.Fatal("subscriber of centra 5 must not see centra 3 notifications")
	default:
	}
}

func TestHub_PublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	c := mockClient(hub, 3)
	hub.Register(c)

	for i := 0; i < sendBufferSize+5; i++ {
		hub.Publish(&models.Notification{ID: int64(i), CentraID: 3})
	}
	assert.Len(t, c.send, sendBufferSize)
}

func TestHub_PublishNilAndNoSubscribers(t *testing.T) {
	hub := NewHub(nil)
	assert.NotPanics(t, func() {
		hub.Publish(nil)
		hub.Publish(&models.Notification{ID: 1, CentraID: 99})
	})
}

func TestHub_Concurrent(t *testing.T) {
	hub := NewHub(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := mockClient(hub, int64(i%3))
			hub.Register(c)
			hub.Publish(&models.Notification{ID: int64(i), CentraID: int64(i % 3)})
			hub.Unregister(c)
		}(i)
	}
	wg.Wait()
	assert.Zero(t, hub.Total())
}
