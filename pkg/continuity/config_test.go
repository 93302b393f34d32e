package continuity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/pkg/schema"
)

func TestResolveGateConfigDefaults(t *testing.T) {
	gate := ResolveGateConfig(schema.WorkflowConfig{})

	assert.True(t, gate.Enabled)
	assert.Equal(t, DefaultPassScore, gate.PassScore)
	assert.Equal(t, DefaultRejectScore, gate.RejectScore)
	assert.Equal(t, 1, gate.MaxRepairAttempts)
}

func TestResolveGateConfigDerivedPassScore(t *testing.T) {
	t.Run("derived from review threshold", func(t *testing.T) {
		gate := ResolveGateConfig(schema.WorkflowConfig{
			Review: schema.ReviewSettings{PassThreshold: 8.5},
		})
		assert.InDelta(t, 7.9, gate.PassScore, 1e-9)
	})

	t.Run("derived value is clamped", func(t *testing.T) {
		gate := ResolveGateConfig(schema.WorkflowConfig{
			Review: schema.ReviewSettings{PassThreshold: 9.9},
		})
		assert.InDelta(t, 8.2, gate.PassScore, 1e-9)

		gate = ResolveGateConfig(schema.WorkflowConfig{
			Review: schema.ReviewSettings{PassThreshold: 1.0},
		})
		assert.InDelta(t, 5.8, gate.PassScore, 1e-9)
	})

	t.Run("explicit override wins over review threshold", func(t *testing.T) {
		gate := ResolveGateConfig(schema.WorkflowConfig{
			Review:         schema.ReviewSettings{PassThreshold: 8.5},
			ContinuityGate: schema.GateSettings{PassScore: 7.0},
		})
		assert.InDelta(t, 7.0, gate.PassScore, 1e-9)
	})

	t.Run("override clamps to its own wider window", func(t *testing.T) {
		gate := ResolveGateConfig(schema.WorkflowConfig{
			ContinuityGate: schema.GateSettings{PassScore: 11.0},
		})
		assert.InDelta(t, 9.5, gate.PassScore, 1e-9)
	})
}

func TestResolveGateConfigRejectScore(t *testing.T) {
	t.Run("reject stays below pass", func(t *testing.T) {
		gate := ResolveGateConfig(schema.WorkflowConfig{
			ContinuityGate: schema.GateSettings{PassScore: 6.0, RejectScore: 9.0},
		})
		assert.InDelta(t, 5.6, gate.RejectScore, 1e-9)
	})

	t.Run("reject floor", func(t *testing.T) {
		gate := ResolveGateConfig(schema.WorkflowConfig{
			ContinuityGate: schema.GateSettings{RejectScore: 1.0},
		})
		assert.InDelta(t, 3.5, gate.RejectScore, 1e-9)
	})
}

func TestResolveGateConfigStringTolerance(t *testing.T) {
	gate := ResolveGateConfig(schema.WorkflowConfig{
		ContinuityGate: schema.GateSettings{
			Enabled:           "false",
			PassScore:         " 7.4 ",
			RejectScore:       "5",
			MaxRepairAttempts: "2",
		},
	})

	assert.False(t, gate.Enabled)
	assert.InDelta(t, 7.4, gate.PassScore, 1e-9)
	assert.InDelta(t, 5.0, gate.RejectScore, 1e-9)
	assert.Equal(t, 2, gate.MaxRepairAttempts)
}

func TestResolveGateConfigGarbage(t *testing.T) {
	gate := ResolveGateConfig(schema.WorkflowConfig{
		Review: schema.ReviewSettings{PassThreshold: "not a number"},
		ContinuityGate: schema.GateSettings{
			Enabled:           42,
			PassScore:         "NaN",
			RejectScore:       []string{"nope"},
			MaxRepairAttempts: -3,
		},
	})

	assert.True(t, gate.Enabled)
	assert.Equal(t, DefaultPassScore, gate.PassScore)
	assert.Equal(t, DefaultRejectScore, gate.RejectScore)
	assert.Equal(t, 0, gate.MaxRepairAttempts)
}

func TestResolveGateConfigNeverInverts(t *testing.T) {
	inputs := []schema.WorkflowConfig{
		{},
		{ContinuityGate: schema.GateSettings{PassScore: 4.5, RejectScore: 9.5}},
		{ContinuityGate: schema.GateSettings{PassScore: "9.5", RejectScore: "9.5"}},
		{Review: schema.ReviewSettings{PassThreshold: 0.1}},
	}
	for _, cfg := range inputs {
		gate := ResolveGateConfig(cfg)
		assert.Less(t, gate.RejectScore, gate.PassScore, "config %+v", cfg)
	}
}
