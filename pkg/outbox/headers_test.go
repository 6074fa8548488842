package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/product-management/pkg/correlationid"
	"github.com/tuanvumaihuynh/product-management/pkg/outbox"
)

func TestHeadersRoundTripCorrelationID(t *testing.T) {
	ctx := correlationid.NewContext(context.Background(), "corr-1")

	headers := outbox.BuildHeaders(ctx, "product.created")
	assert.Equal(t, "product.created", headers[outbox.EventTypeHeader])
	assert.Equal(t, "corr-1", headers[correlationid.Header])

	restored := outbox.ExtractContextFromHeaders(context.Background(), headers)
	id, ok := correlationid.FromContext(restored)
	assert.True(t, ok)
	assert.Equal(t, "corr-1", id)
}

func TestInjectCorrelationIDFromRecord(t *testing.T) {
	rec := &kgo.Record{Headers: []kgo.RecordHeader{{Key: correlationid.Header, Value: []byte("corr-2")}}}

	ctx := outbox.InjectCorrelationIDFromRecord(context.Background(), rec)
	id, ok := correlationid.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "corr-2", id)

	_, ok = correlationid.FromContext(outbox.InjectCorrelationIDFromRecord(context.Background(), &kgo.Record{}))
	assert.False(t, ok)
}

func TestRecordHeaders(t *testing.T) {
	rec := &kgo.Record{Headers: []kgo.RecordHeader{
		{Key: outbox.EventTypeHeader, Value: []byte("product.deleted")},
		{Key: "k", Value: []byte("v1")},
		{Key: "k", Value: []byte("v2")},
	}}

	headers := outbox.RecordHeaders(rec)
	assert.Equal(t, map[string]string{outbox.EventTypeHeader: "product.deleted", "k": "v2"}, headers)
}
