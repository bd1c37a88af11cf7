package mq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecttracker/internal/model"
)

func TestRecordCreatedKey(t *testing.T) {
	assert.Equal(t, "record.created.cost_estimation", RecordCreatedKey(model.CategoryCostEstimation))
	assert.Equal(t, "record.created.project", RecordCreatedKey(model.CategoryProject))
}

func TestRecordCreatedPayloadOmitsEmptyProject(t *testing.T) {
	body, err := json.Marshal(RecordCreatedPayload{
		Category:  model.CategoryTraining,
		ID:        3,
		CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"training","id":3,"created_at":"2024-01-02T00:00:00Z"}`, string(body))
}

func TestPublisherIsConnectedWithoutConnection(t *testing.T) {
	assert.False(t, (&Publisher{}).IsConnected())
}
