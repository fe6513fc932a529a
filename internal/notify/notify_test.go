// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequiresOpenQueue(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Send("unix:///tmp/a.sock", Action{Kind: 1}))
}

func TestOpenSendDrain(t *testing.T) {
	r := NewRegistry()
	q := r.Open("unix:///tmp/a.sock")

	require.True(t, r.Send("unix:///tmp/a.sock", Action{Kind: 1, Data: "hello"}))
	got := <-q
	assert.Equal(t, Action{Kind: 1, Data: "hello"}, got)
}

func TestSendDropsWhenFull(t *testing.T) {
	r := NewRegistry()
	r.Open("unix:///tmp/a.sock")

	for i := 0; i < queueCapacity; i++ {
		require.True(t, r.Send("unix:///tmp/a.sock", Action{Kind: i}))
	}
	assert.False(t, r.Send("unix:///tmp/a.sock", Action{Kind: 999}))
}

func TestCloseRemovesQueue(t *testing.T) {
	r := NewRegistry()
	r.Open("unix:///tmp/a.sock")
	r.Close("unix:///tmp/a.sock")

	assert.False(t, r.IsOpen("unix:///tmp/a.sock"))
	assert.False(t, r.Send("unix:///tmp/a.sock", Action{Kind: 1}))
}
