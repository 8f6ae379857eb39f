package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_CheckAll(t *testing.T) {
	var alerts []string
	m := NewMonitor(func(component, status, message string) {
		alerts = append(alerts, component+":"+message)
	})

	fail := errors.New("连接被拒绝")
	var natsErr error
	m.Register("collector", func(context.Context) error { return nil })
	m.Register("nats", func(context.Context) error { return natsErr })
	m.Register("llm", nil)

	assert.True(t, m.CheckAll(context.Background()))
	assert.Equal(t, StatusHealthy, m.GetStatus("nats").Status)
	assert.Equal(t, StatusDisabled, m.GetStatus("llm").Status)

	natsErr = fail
	assert.False(t, m.CheckAll(context.Background()))
	assert.False(t, m.CheckAll(context.Background()))

	s := m.GetStatus("nats")
	require.NotNil(t, s)
	assert.Equal(t, StatusUnhealthy, s.Status)
	assert.Equal(t, "连接被拒绝", s.Message)
	// 状态未变化时不重复告警
	assert.Equal(t, []string{"nats:连接被拒绝"}, alerts)

	all := m.GetAllStatus()
	require.Len(t, all, 3)
	assert.Equal(t, "collector", all[0].Component)
	assert.Nil(t, m.GetStatus("database"))
}
