// Package events publishes workflow progress and call lifecycle events to
// Kafka. Publishing is fire-and-forget: a broker failure is logged and the
// pipeline keeps running.
package events

import (
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/IBM/sarama"

	"influencerflow/calltrack"
	"influencerflow/types"
)

const (
	progressTopic = "workflow.progress"
	callTopic     = "calls.lifecycle"
)

// Publisher writes events to Kafka via a synchronous producer.
type Publisher struct {
	producer sarama.SyncProducer
}

// NewPublisher connects a sync producer to the given brokers.
func NewPublisher(brokers []string) (*Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Kafka producer connected (brokers: %v)", brokers)
	return &Publisher{producer: producer}, nil
}

// NewPublisherFromEnv reads KAFKA_BROKERS (comma-separated). Returns
// (nil, nil) when unset so callers can run without Kafka.
func NewPublisherFromEnv() (*Publisher, error) {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		return nil, nil
	}
	return NewPublisher(strings.Split(raw, ","))
}

// PublishProgress emits a workflow stage transition.
func (p *Publisher) PublishProgress(ev types.ProgressEvent) {
	p.send(progressTopic, ev.Stage, ev)
}

// PublishCallEvent emits a call lifecycle transition.
func (p *Publisher) PublishCallEvent(ev calltrack.CallEvent) {
	p.send(callTopic, ev.CallID, ev)
}

func (p *Publisher) send(topic, key string, payload any) {
	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("❌ Failed to marshal %s event: %v", topic, err)
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		log.Printf("❌ Failed to publish to %s: %v", topic, err)
	}
}

// Close shuts down the producer.
func (p *Publisher) Close() error {
	log.Println("Closing Kafka producer...")
	return p.producer.Close()
}
