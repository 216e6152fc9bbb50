package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"
)

func NewKafkaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Consumer.Return.Errors = true
	return cfg
}

// KafkaPublisher writes ticket messages to one topic keyed by ticket id, so
// all messages of a ticket land on the same partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *KafkaPublisher) Publish(_ context.Context, msg TicketMessage) error {
	const op = "broker.KafkaPublisher.Publish"

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.TicketID.String()),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// KafkaSubscriber reads every partition of the topic from the newest
// offset.
type KafkaSubscriber struct {
	consumer sarama.Consumer
	topic    string
	logger   *slog.Logger
}

func NewKafkaSubscriber(consumer sarama.Consumer, topic string, logger *slog.Logger) *KafkaSubscriber {
	return &KafkaSubscriber{
		consumer: consumer,
		topic:    topic,
		logger:   logger,
	}
}

func (s *KafkaSubscriber) Subscribe(ctx context.Context, handler func(ctx context.Context, msg TicketMessage)) error {
	const op = "broker.KafkaSubscriber.Subscribe"

	partitions, err := s.consumer.Partitions(s.topic)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var wg sync.WaitGroup
	for _, partition := range partitions {
		pc, err := s.consumer.ConsumePartition(s.topic, partition, sarama.OffsetNewest)
		if err != nil {
			return fmt.Errorf("%s: partition %d: %w", op, partition, err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer pc.AsyncClose()

			for {
				select {
				case <-ctx.Done():
					return
				case m, ok := <-pc.Messages():
					if !ok {
						return
					}
					var msg TicketMessage
					if err := json.Unmarshal(m.Value, &msg); err != nil {
						s.logger.Warn("kafka: bad ticket message", slog.Int64("offset", m.Offset), slog.Any("err", err))
						continue
					}
					handler(ctx, msg)
				case err, ok := <-pc.Errors():
					if !ok {
						return
					}
					s.logger.Error("kafka consumer error", slog.Any("err", err))
				}
			}
		}()
	}

	wg.Wait()

	return nil
}

func (s *KafkaSubscriber) Close() error {
	return s.consumer.Close()
}
