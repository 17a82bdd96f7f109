package event

import (
	"context"
	"time"

	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/writer"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	RETRY_COUNT  = 3
	writeTimeout = 2 * time.Second
)

// MessageWriter kafka.Writer 的最小子集
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaEventWriter struct {
	mq MessageWriter
	tl *zap.Logger

	topic string
}

func NewKafkaEventWriter(mq MessageWriter, tl *zap.Logger, topic string) writer.BatchWriter[model.LiveEvent] {
	return &KafkaEventWriter{mq: mq, tl: tl, topic: topic}
}

func (w *KafkaEventWriter) BWrite(ctx context.Context, events []model.LiveEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := w.marshalToMsg(ev)
		if err != nil {
			w.tl.Warn("Skip unmarshalable live event", zap.String("type", ev.Type), zap.Error(err))
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		err = w.mq.WriteMessages(newCtx, msgs...)
		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("MQ write failed, exceeded the maximum number of retries", zap.Int("size", len(msgs)), zap.Error(err))
		return err
	}
	return nil
}

func (w *KafkaEventWriter) Close() error {
	return nil
}

func (w *KafkaEventWriter) marshalToMsg(ev model.LiveEvent) (kafka.Message, error) {
	value, err := sonic.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: w.topic,
		Key:   []byte(ev.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}, nil
}
