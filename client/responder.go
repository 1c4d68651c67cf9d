package client

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/Shopify/sarama"
	"github.com/wvanbergen/kafka/consumergroup"

	"github.com/deciphernow/contact-registry-server/events"
)

// RegistryResponder consumes the GEM event stream the server publishes,
// handing each parsed event to Fetch.
type RegistryResponder struct {
	DebugMode bool
	Consumer  *consumergroup.ConsumerGroup
	Conf      Config
	Fetch     func(*RegistryResponder, *events.GEM) error
	Timeout   time.Duration
}

// NewRegistryResponder joins a consumer group on the registry event topic.
func NewRegistryResponder(
	cfg Config,
	groupName string,
	zkLocation string,
	fetch func(*RegistryResponder, *events.GEM) error,
) (*RegistryResponder, error) {
	cgconf := consumergroup.NewConfig()
	consumerGroup, err := consumergroup.JoinConsumerGroup(
		groupName,
		[]string{"contact-registry-event"},
		strings.Split(zkLocation, ","),
		cgconf,
	)
	if err != nil {
		return nil, err
	}
	c := &RegistryResponder{
		Conf:     cfg,
		Fetch:    fetch,
		Consumer: consumerGroup,
	}
	return c, nil
}

// Note logs when debugging is enabled.
func (c *RegistryResponder) Note(msg string, args ...interface{}) {
	if c.DebugMode {
		log.Printf(msg, args...)
	}
}

// ParseGemEvent unmarshals a kafka message into a GEM.
func ParseGemEvent(msg *sarama.ConsumerMessage) (*events.GEM, error) {
	var gem events.GEM
	err := json.Unmarshal(msg.Value, &gem)
	if err != nil {
		return nil, err
	}
	return &gem, nil
}

// Handle parses a kafka message and forwards it to Fetch.
func (c *RegistryResponder) Handle(msg *sarama.ConsumerMessage) error {
	gem, err := ParseGemEvent(msg)
	if err != nil {
		return err
	}
	if gem == nil {
		return nil
	}
	return c.Fetch(c, gem)
}

// ConsumeKafka reads from the consumer group until the timeout elapses.
func (c *RegistryResponder) ConsumeKafka() error {
	timeout := time.After(c.Timeout)
	msgs := c.Consumer.Messages()
	for {
		select {
		case msg := <-msgs:
			c.Consumer.CommitUpto(msg)
			c.Handle(msg)
		case <-timeout:
			return nil
		}
	}
}
