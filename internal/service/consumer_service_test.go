package service

import (
	"context"
	"testing"
	"time"

	"fundocs-be/internal/repository/cache"
	"fundocs-be/pkg/contentapi"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConsumerRefreshesProgress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	userID := uuid.New().String()
	api := &mockAPI{}
	api.On("GetProgress", mock.Anything, userID).Return(&contentapi.Progress{XP: 77}, nil)
	progressCache := cache.NewMemoryProgressCache(time.Minute)
	progress := NewProgressService(newFactory(t), api, progressCache, nopLog)

	consumer := NewConsumerService(pubSub, ProgressRefreshTopic, progress, nopLog)
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(ProgressRefreshTopic, pubSub)
	require.NoError(t, pubSub.Publish(ProgressRefreshTopic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	requestProgressRefresh(ctx, publisher, nopLog, userID, "test")

	require.Eventually(t, func() bool {
		p, ok := progressCache.Get(ctx, userID)
		return ok && p.XP == 77
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, len(api.Calls))
}
