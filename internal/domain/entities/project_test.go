package entities_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpc-gateway.backend/internal/domain/entities"
)

func TestProjectData_HasFeature(t *testing.T) {
	p := &entities.ProjectData{
		Features: []entities.ProjectFeature{
			{ID: "websockets", IsEnabled: true},
			{ID: "archive", IsEnabled: false},
		},
	}

	assert.True(t, p.HasFeature("websockets"))
	assert.False(t, p.HasFeature("archive"))
	assert.False(t, p.HasFeature("unknown"))
}

func TestProjectData_QuotaExceeded(t *testing.T) {
	cases := []struct {
		name     string
		quota    entities.ProjectQuota
		exceeded bool
	}{
		{"under quota", entities.ProjectQuota{Current: 10, Max: 100, IsValid: true}, false},
		{"at quota", entities.ProjectQuota{Current: 100, Max: 100, IsValid: true}, true},
		{"over quota", entities.ProjectQuota{Current: 150, Max: 100, IsValid: true}, true},
		{"unlimited", entities.ProjectQuota{Current: 1 << 40, Max: 0, IsValid: true}, false},
		{"invalid accounting", entities.ProjectQuota{Current: 0, Max: 100, IsValid: false}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &entities.ProjectData{Quota: tc.quota}
			assert.Equal(t, tc.exceeded, p.QuotaExceeded())
		})
	}
}

func TestCachedProject_RoundTripsNegativeResults(t *testing.T) {
	// Negative cache entries must survive the Redis hop, otherwise a
	// missing project would hit the registry on every request.
	in := entities.CachedProject{NotFound: true}
	blob, err := json.Marshal(in)
	require.NoError(t, err)

	var out entities.CachedProject
	require.NoError(t, json.Unmarshal(blob, &out))
	assert.True(t, out.NotFound)
	assert.Nil(t, out.Data)
}

func TestNewRPCRequest(t *testing.T) {
	rpc, err := entities.NewRPCRequest(7, "eth_getBalance", []string{"0xabc", "latest"})
	require.NoError(t, err)

	assert.Equal(t, "2.0", rpc.JSONRPC)
	assert.Equal(t, "eth_getBalance", rpc.Method)
	assert.JSONEq(t, `7`, string(rpc.ID))
	assert.JSONEq(t, `["0xabc","latest"]`, string(rpc.Params))
}

func TestNewRPCRequest_NilParams(t *testing.T) {
	rpc, err := entities.NewRPCRequest(1, "eth_blockNumber", nil)
	require.NoError(t, err)
	assert.Nil(t, rpc.Params)

	blob, err := json.Marshal(rpc)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "params")
}
