package kafka

import (
	"Lattice/internal/api/config"
	"Lattice/internal/model"
	"context"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// EventProducer 把通知事件写入 Kafka
// 消息键为接收者 id，同一接收者的事件按序落在同一分区
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventProducer(cfg *config.Config) (*EventProducer, error) {
	saramaCfg := newSaramaProducerConfig(cfg.Kafka)

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create sync producer")
	}

	return &EventProducer{
		producer: producer,
		topic:    cfg.KafkaNotifyConsumer.Topic,
	}, nil
}

// Publish 同步发送，broker 确认后才返回
func (s *EventProducer) Publish(_ context.Context, event *model.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal notification event")
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(event.RecipientID, 10)),
		Value: sarama.ByteEncoder(payload),
	}

	if _, _, err = s.producer.SendMessage(msg); err != nil {
		return errors.Wrap(err, "send notification event")
	}
	return nil
}

func (s *EventProducer) Close() error {
	return s.producer.Close()
}
