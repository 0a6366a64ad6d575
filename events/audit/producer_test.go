package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sih-ehealth/event-backbone/events"
	"github.com/sih-ehealth/event-backbone/events/routing"
)

func TestProducerSend(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mock, zaptest.NewLogger(t))

	event := events.NewPatientAdmitted("p1", "Jean", "Martin")
	payload, err := events.Encode(event)
	require.NoError(t, err)

	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		decoded, decodeErr := events.Decode(value)
		if decodeErr != nil {
			return decodeErr
		}
		if decoded.Meta().EventID != event.EventID {
			return errors.New("wrong event appended")
		}
		return nil
	})

	err = producer.Send(context.Background(), routing.TopicPatientEvents, event.PartitionKey(), payload)
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestProducerSendFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mock, zaptest.NewLogger(t))

	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.Send(context.Background(), routing.TopicClinicalEvents, "key", []byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Contains(t, err.Error(), routing.TopicClinicalEvents)
	require.NoError(t, producer.Close())
}

func TestProducerSendCanceledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mock, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := producer.Send(ctx, routing.TopicPatientEvents, "key", []byte("{}"))
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, producer.Close())
}
