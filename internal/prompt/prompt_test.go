// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package prompt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmediator/mediator/internal/clock"
	"github.com/flowmediator/mediator/internal/model"
)

func TestRespondResolvesAsk(t *testing.T) {
	b := New(time.Minute, model.ActionAllow, model.DurationOnce, clock.NewMock(time.Now()), nil)

	type result struct {
		rule model.Rule
		id   string
	}
	resCh := make(chan result, 1)
	go func() {
		r, id := b.Ask(context.Background(), "node-a", model.Connection{ProcessPath: "/usr/bin/curl", DstPort: 443})
		resCh <- result{r, id}
	}()

	// Wait for the prompt to register before responding.
	require.Eventually(t, func() bool { return len(b.Pending()) == 1 }, time.Second, time.Millisecond)

	pending := b.Pending()
	require.Len(t, pending, 1)
	want := model.Rule{Name: "curl-443", Action: model.ActionDeny, Duration: model.DurationOnce}
	require.True(t, b.Respond(pending[0].ID, want))

	res := <-resCh
	assert.Equal(t, want, res.rule)
	assert.Empty(t, b.Pending())
}

func TestRespondTwiceReturnsFalseSecondTime(t *testing.T) {
	b := New(time.Minute, model.ActionAllow, model.DurationOnce, clock.NewMock(time.Now()), nil)

	go b.Ask(context.Background(), "node-a", model.Connection{ProcessPath: "/usr/bin/curl", DstPort: 443})
	require.Eventually(t, func() bool { return len(b.Pending()) == 1 }, time.Second, time.Millisecond)

	id := b.Pending()[0].ID
	assert.True(t, b.Respond(id, model.Rule{Name: "a"}))
	assert.False(t, b.Respond(id, model.Rule{Name: "b"}))
}

func TestAskTimesOutToDefaultRule(t *testing.T) {
	mc := clock.NewMock(time.Now())
	b := New(time.Minute, model.ActionAllow, model.DurationOnce, mc, nil)

	type result struct {
		rule model.Rule
	}
	resCh := make(chan result, 1)
	go func() {
		r, _ := b.Ask(context.Background(), "node-a", model.Connection{ProcessPath: "/usr/bin/wget", DstPort: 80})
		resCh <- result{r}
	}()

	require.Eventually(t, func() bool { return len(b.Pending()) == 1 }, time.Second, time.Millisecond)
	mc.Advance(time.Minute)

	select {
	case res := <-resCh:
		assert.Equal(t, "wget-80", res.rule.Name)
		assert.Equal(t, model.ActionAllow, res.rule.Action)
	case <-time.After(time.Second):
		t.Fatal("Ask did not resolve after timeout advance")
	}
}

func TestCancelNodeResolvesOnlyThatNodesPrompts(t *testing.T) {
	mc := clock.NewMock(time.Now())
	b := New(time.Hour, model.ActionAllow, model.DurationOnce, mc, nil)

	doneA := make(chan model.Rule, 1)
	doneB := make(chan model.Rule, 1)
	go func() {
		r, _ := b.Ask(context.Background(), "node-a", model.Connection{ProcessPath: "/usr/bin/a", DstPort: 1})
		doneA <- r
	}()
	go func() {
		r, _ := b.Ask(context.Background(), "node-b", model.Connection{ProcessPath: "/usr/bin/b", DstPort: 2})
		doneB <- r
	}()

	require.Eventually(t, func() bool { return len(b.Pending()) == 2 }, time.Second, time.Millisecond)

	n := b.CancelNode("node-a")
	assert.Equal(t, 1, n)

	select {
	case r := <-doneA:
		assert.Equal(t, "a-1", r.Name)
	case <-time.After(time.Second):
		t.Fatal("node-a prompt was not cancelled")
	}

	pending := b.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "node-b", pending[0].Address)

	select {
	case <-doneB:
		t.Fatal("node-b prompt should still be pending")
	default:
	}
}

func TestAskCancelledByContext(t *testing.T) {
	b := New(time.Hour, model.ActionAllow, model.DurationOnce, clock.NewMock(time.Now()), nil)
	ctx, cancel := context.WithCancel(context.Background())

	resCh := make(chan model.Rule, 1)
	go func() {
		r, _ := b.Ask(ctx, "node-a", model.Connection{ProcessPath: "/usr/bin/c", DstPort: 3})
		resCh <- r
	}()

	require.Eventually(t, func() bool { return len(b.Pending()) == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case r := <-resCh:
		assert.Equal(t, "c-3", r.Name)
	case <-time.After(time.Second):
		t.Fatal("Ask did not resolve after context cancellation")
	}
}
