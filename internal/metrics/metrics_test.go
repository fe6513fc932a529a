// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordConnectionIncrementsCounters(t *testing.T) {
	m := New()
	m.RecordConnection("node-a", "allow", "curl-443")
	m.RecordConnection("node-a", "allow", "curl-443")

	var out dto.Metric
	require.NoError(t, m.ConnectionsTotal.WithLabelValues("node-a", "allow").Write(&out))
	assert.Equal(t, float64(2), out.GetCounter().GetValue())

	require.NoError(t, m.RuleHitsTotal.WithLabelValues("node-a", "curl-443").Write(&out))
	assert.Equal(t, float64(2), out.GetCounter().GetValue())
}

func TestRegisterTwiceOnSameRegistryFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg))
}
