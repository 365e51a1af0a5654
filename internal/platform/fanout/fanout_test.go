package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliver_IndependentOutcomes(t *testing.T) {
	var calls atomic.Int32
	rep := Deliver(context.Background(), []string{"a", "b", "c", "d"}, func(_ context.Context, r string) error {
		calls.Add(1)
		switch r {
		case "b":
			return errors.New("mailbox full")
		case "c":
			panic("boom")
		}
		return nil
	})

	assert.EqualValues(t, 4, calls.Load(), "every recipient is attempted")
	assert.Equal(t, 2, rep.Delivered())

	recipients := make([]string, 0, len(rep.Results))
	for _, r := range rep.Results {
		recipients = append(recipients, r.Recipient)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, recipients)

	failed := rep.Failed()
	if assert.Len(t, failed, 2) {
		assert.Equal(t, "b", failed[0].Recipient)
		assert.EqualError(t, failed[0].Err, "mailbox full")
		assert.Equal(t, "c", failed[1].Recipient)
		assert.Contains(t, failed[1].Err.Error(), "boom")
	}
}

func TestDeliver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := Deliver(ctx, []string{"a"}, func(context.Context, string) error {
		t.Fatal("send must not run with a cancelled context")
		return nil
	})
	assert.ErrorIs(t, rep.Results[0].Err, context.Canceled)
}

func TestDeliver_NoRecipients(t *testing.T) {
	rep := Deliver(context.Background(), nil, func(context.Context, string) error { return nil })
	assert.Empty(t, rep.Results)
	assert.Zero(t, rep.Delivered())
}
