package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
	"github.com/Skotchmaster/storefront/pkg/kafka"
)

type fakePublisher struct {
	got []kafka.Message
	err error
}

func (f *fakePublisher) Publish(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, msgs...)
	return nil
}

func seed(t *testing.T, r *repo.GormRepo) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, r.AddOutbox(ctx, "order_events", "o1", "order.created", map[string]string{"id": "o1"}))
	require.NoError(t, r.AddOutbox(ctx, "order_events", "o2", "order.paid", map[string]string{"id": "o2"}))
	require.NoError(t, r.AddOutbox(ctx, "other", "x", "noise", map[string]string{}))
}

func TestFlush_PublishesAndMarks(t *testing.T) {
	db := repotest.New(t)
	r := repo.New(db)
	seed(t, r)

	pub := &fakePublisher{}
	relay := &Relay{Store: r, Publisher: pub, Topic: "order_events", Batch: 10}

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.got, 2)
	assert.Equal(t, "o1", pub.got[0].Key)
	assert.JSONEq(t, `{"id":"o1"}`, string(pub.got[0].Value))

	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	var pending int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Where("sent_at IS NULL").Count(&pending).Error)
	assert.EqualValues(t, 1, pending)
}

func TestFlush_PublishFailureKeepsRowsPending(t *testing.T) {
	db := repotest.New(t)
	r := repo.New(db)
	seed(t, r)

	relay := &Relay{Store: r, Publisher: &fakePublisher{err: errors.New("broker down")}, Topic: "order_events"}

	_, err := relay.Flush(context.Background())
	require.Error(t, err)

	var pending int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Where("sent_at IS NULL").Count(&pending).Error)
	assert.EqualValues(t, 3, pending)
}
