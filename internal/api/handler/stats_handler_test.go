package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

type stubStatsService struct {
	stats *domain.Stats
	err   error
}

func (s stubStatsService) Snapshot(context.Context) (*domain.Stats, error) {
	return s.stats, s.err
}

func TestStatsHandler_Snapshot(t *testing.T) {
	h := NewStatsHandler(stubStatsService{stats: &domain.Stats{
		Licenses: domain.LicenseCounts{Total: 3, Available: 1, Generated: 1, Used: 1},
		Activity: domain.RecentActivity{RecentGenerations: 1, Last24Hours: 1},
		Network:  domain.NetworkStats{ActiveNodes: 1},
	}})

	c, rec := newTestContext(http.MethodGet, "/api/stats", "")
	require.NoError(t, h.Snapshot(c))

	var body struct {
		Success bool         `json:"success"`
		Data    domain.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.EqualValues(t, 3, body.Data.Licenses.Total)
	assert.EqualValues(t, 1, body.Data.Network.ActiveNodes)
}

func TestStatsHandler_Snapshot_Failure(t *testing.T) {
	boom := domain.StorageError("count licenses", errors.New("connection refused"))
	h := NewStatsHandler(stubStatsService{err: boom})

	c, _ := newTestContext(http.MethodGet, "/api/stats", "")
	err := h.Snapshot(c)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, "Failed to fetch statistics", c.Get(CtxFailureMessage))
}
