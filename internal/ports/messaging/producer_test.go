package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQSClient struct {
	inputs []*sqs.SendMessageInput
	failOn string
}

func (f *fakeSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if *params.QueueUrl == f.failOn {
		return nil, errors.New("queue unavailable")
	}
	return &sqs.SendMessageOutput{}, nil
}

func TestProducer_PublishShiftClosed(t *testing.T) {
	event := ShiftClosedEvent{PalletID: "PLT-1", WorkerName: "Ali", TotalDuration: "00:20:00", DurationSeconds: 1200}

	t.Run("sends to both queues", func(t *testing.T) {
		client := &fakeSQSClient{}
		p := NewSQSProducer(client, "email-q", "wms-q")

		require.NoError(t, p.PublishShiftClosed(context.Background(), event))
		require.Len(t, client.inputs, 2)
		assert.Equal(t, "email-q", *client.inputs[0].QueueUrl)
		assert.Equal(t, "wms-q", *client.inputs[1].QueueUrl)

		var got ShiftClosedEvent
		require.NoError(t, json.Unmarshal([]byte(*client.inputs[0].MessageBody), &got))
		assert.Equal(t, event.PalletID, got.PalletID)
		assert.Equal(t, int64(1200), got.DurationSeconds)
		assert.Equal(t, EventTypeShiftClosed, *client.inputs[0].MessageAttributes["EventType"].StringValue)
	})

	t.Run("skips unset queues", func(t *testing.T) {
		client := &fakeSQSClient{}
		p := NewSQSProducer(client, "", "wms-q")

		require.NoError(t, p.PublishShiftClosed(context.Background(), event))
		require.Len(t, client.inputs, 1)
		assert.Equal(t, "wms-q", *client.inputs[0].QueueUrl)
	})

	t.Run("keeps sending after a failure", func(t *testing.T) {
		client := &fakeSQSClient{failOn: "email-q"}
		p := NewSQSProducer(client, "email-q", "wms-q")

		err := p.PublishShiftClosed(context.Background(), event)
		assert.Error(t, err)
		assert.Len(t, client.inputs, 2)
	})
}
