package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrative-server/pkg/api"
)

func TestBroadcaster_RegisterAndBroadcast(t *testing.T) {
	b := NewBroadcaster()
	a := b.Register("a")
	c := b.Register("c")
	assert.Equal(t, 2, b.SubscriberCount())

	b.Broadcast(api.ServerResponse{Type: api.TypeSnapshot, Round: 3})

	msg := <-a
	assert.Equal(t, 3, msg.Round)
	msg = <-c
	assert.Equal(t, api.TypeSnapshot, msg.Type)
}

func TestBroadcaster_SendToTargetsOneSubscriber(t *testing.T) {
	b := NewBroadcaster()
	a := b.Register("a")
	c := b.Register("c")

	b.SendTo("a", api.ServerResponse{Round: 1})

	require.Len(t, a, 1)
	assert.Empty(t, c)
}

func TestBroadcaster_UnregisterClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("a")
	b.Unregister("a")

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBroadcaster_ReRegisterReplacesChannel(t *testing.T) {
	b := NewBroadcaster()
	old := b.Register("a")
	fresh := b.Register("a")

	_, open := <-old
	assert.False(t, open, "old channel closed on re-register")

	b.Broadcast(api.ServerResponse{Round: 9})
	msg := <-fresh
	assert.Equal(t, 9, msg.Round)
}

func TestBroadcaster_FullChannelDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroadcaster()
	b.Register("slow")

	assert.NotPanics(t, func() {
		for i := 0; i < 250; i++ {
			b.Broadcast(api.ServerResponse{Round: i})
		}
	})
}
