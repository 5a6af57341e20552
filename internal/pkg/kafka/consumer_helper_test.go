package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lattice/internal/model"
)

func TestToNotificationEvent(t *testing.T) {
	payload, err := json.Marshal(&model.NotificationEvent{
		Kind:        model.NotificationKindLike,
		ActorID:     2,
		RecipientID: 1,
		SubjectID:   10,
	})
	require.NoError(t, err)

	event, err := ToNotificationEvent(&sarama.ConsumerMessage{Value: payload})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationKindLike, event.Kind)
	assert.Equal(t, uint64(1), event.RecipientID)
	assert.Equal(t, uint64(10), event.SubjectID)
}

func TestToNotificationEvent_Invalid(t *testing.T) {
	_, err := ToNotificationEvent(&sarama.ConsumerMessage{Value: []byte("not-json")})
	assert.Error(t, err)

	// 缺少接收者的事件无处投递
	payload, _ := json.Marshal(&model.NotificationEvent{Kind: model.NotificationKindLike})
	_, err = ToNotificationEvent(&sarama.ConsumerMessage{Value: payload})
	assert.Error(t, err)
}
