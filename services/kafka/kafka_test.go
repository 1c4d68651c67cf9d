package kafka

import (
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/events"
)

func successEvent(action string) events.GEM {
	return events.GEM{Action: action, Payload: events.Payload{StatusCode: 200}}
}

func failureEvent(action string) events.GEM {
	return events.GEM{Action: action, Payload: events.Payload{StatusCode: 500}}
}

func mockedProducer(t *testing.T, successActions, failureActions []string) (*AsyncProducer, *mocks.AsyncProducer) {
	mp := mocks.NewAsyncProducer(t, mocks.NewTestConfig())
	ap := &AsyncProducer{producer: mp}
	defaults(ap)
	WithPublishActions(successActions, failureActions)(ap)
	return ap, mp
}

func TestPublishWildcardSuccessAction(t *testing.T) {
	ap, mp := mockedProducer(t, []string{"*"}, []string{})
	mp.ExpectInputAndSucceed()
	ap.Publish(successEvent("list"))
	if err := mp.Close(); err != nil {
		t.Errorf("unexpected producer state: %v", err)
	}
}

func TestPublishNamedAction(t *testing.T) {
	ap, mp := mockedProducer(t, []string{"list"}, []string{})
	mp.ExpectInputAndSucceed()
	ap.Publish(successEvent("list"))
	if err := mp.Close(); err != nil {
		t.Errorf("unexpected producer state: %v", err)
	}
}

func TestPublishUnlistedActionFiltered(t *testing.T) {
	ap, mp := mockedProducer(t, []string{"list"}, []string{})
	ap.Publish(successEvent("get"))
	// no expectation was queued, so a clean close proves the filter held
	if err := mp.Close(); err != nil {
		t.Errorf("unexpected producer state: %v", err)
	}
}

func TestPublishFailureAction(t *testing.T) {
	ap, mp := mockedProducer(t, []string{}, []string{"*"})
	mp.ExpectInputAndSucceed()
	ap.Publish(failureEvent("get"))
	if err := mp.Close(); err != nil {
		t.Errorf("unexpected producer state: %v", err)
	}

	ap2, mp2 := mockedProducer(t, []string{}, []string{})
	ap2.Publish(failureEvent("get"))
	if err := mp2.Close(); err != nil {
		t.Errorf("unexpected producer state: %v", err)
	}
}

func TestPublishUsesConfiguredTopic(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	mp := mocks.NewAsyncProducer(t, cfg)
	ap := &AsyncProducer{producer: mp}
	defaults(ap)
	WithTopic("registry-audit")(ap)
	WithPublishActions([]string{"*"}, []string{"*"})(ap)

	mp.ExpectInputWithCheckerFunctionAndSucceed(func(val []byte) error {
		return nil
	})
	ap.Publish(successEvent("stats"))
	// drain the success channel so Close does not race the mock
	msg := <-mp.Successes()
	if msg.Topic != "registry-audit" {
		t.Errorf("expected topic registry-audit, got %s", msg.Topic)
	}
	if err := mp.Close(); err != nil {
		t.Errorf("unexpected producer state: %v", err)
	}
}

func TestRequiresReconnect(t *testing.T) {
	fatal := &sarama.ProducerError{Err: sarama.ErrUnknown}
	if !requiresReconnect(fatal) {
		t.Error("expected ErrUnknown to require reconnect")
	}
	transient := &sarama.ProducerError{Err: sarama.ErrRequestTimedOut}
	if requiresReconnect(transient) {
		t.Error("expected ErrRequestTimedOut to not require reconnect")
	}
	if requiresReconnect(nil) {
		t.Error("expected nil to not require reconnect")
	}
}

func TestFakeAsyncProducer(t *testing.T) {
	fake := NewFakeAsyncProducer(zap.NewNop())
	fake.Publish(successEvent("list"))
	if fake.Reconnect() {
		t.Error("expected the fake to never request reconnect")
	}
}
