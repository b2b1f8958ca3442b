package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records messages written.
type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishImported(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(fw, nil)

	err := p.PublishImported(context.Background(), RateCardImported{
		RateCardID:      "card-1",
		TemplateID:      "tmpl-1",
		TemplateVersion: 2,
		CarrierID:       "acme",
		ProcessedCount:  99,
		SkippedCount:    1,
	})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)

	msg := fw.msgs[0]
	assert.Equal(t, "tmpl-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventRateCardImported, string(msg.Headers[0].Value))

	var evt RateCardImported
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.Equal(t, EventRateCardImported, evt.Type)
	assert.Equal(t, "card-1", evt.RateCardID)
	assert.Equal(t, 99, evt.ProcessedCount)
	assert.False(t, evt.OccurredAt.IsZero())
}

func TestPublishImportedWriteError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(fw, nil)

	err := p.PublishImported(context.Background(), RateCardImported{RateCardID: "card-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestKafkaPublisherClose(t *testing.T) {
	fw := &fakeWriter{}
	require.NoError(t, NewKafkaPublisherWithWriter(fw, nil).Close())
	assert.True(t, fw.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishImported(context.Background(), RateCardImported{}))
	assert.NoError(t, p.Close())
}
