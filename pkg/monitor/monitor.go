package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"
)

// 组件状态
const (
	StatusUnknown   = "unknown"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled" // 未配置的可选组件
)

// HealthStatus 健康状态
type HealthStatus struct {
	Component   string    `json:"component"`
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Message     string    `json:"message,omitempty"`
}

// CheckFunc 组件健康检查，返回 nil 表示健康
type CheckFunc func(ctx context.Context) error

// Monitor 组件健康登记
type Monitor struct {
	components map[string]*HealthStatus
	checks     map[string]CheckFunc
	mutex      sync.RWMutex
	alertFunc  func(component, status, message string)
	now        func() time.Time
}

// NewMonitor 创建新的监控系统，alertFunc 在组件变为不健康时调用
func NewMonitor(alertFunc func(component, status, message string)) *Monitor {
	if alertFunc == nil {
		alertFunc = func(component, status, message string) {
			log.Warn().Str("component", component).Str("status", status).Msg(message)
		}
	}
	return &Monitor{
		components: make(map[string]*HealthStatus),
		checks:     make(map[string]CheckFunc),
		alertFunc:  alertFunc,
		now:        time.Now,
	}
}

// Register 注册组件，check 为 nil 时组件标记为 disabled
func (m *Monitor) Register(component string, check CheckFunc) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	status := StatusUnknown
	if check == nil {
		status = StatusDisabled
	} else {
		m.checks[component] = check
	}
	m.components[component] = &HealthStatus{
		Component:   component,
		Status:      status,
		LastChecked: m.now(),
	}
}

// UpdateStatus 更新组件状态
func (m *Monitor) UpdateStatus(component, status, message string) {
	m.mutex.Lock()
	s, exists := m.components[component]
	if !exists {
		s = &HealthStatus{Component: component}
		m.components[component] = s
	}
	oldStatus := s.Status
	s.Status = status
	s.LastChecked = m.now()
	s.Message = message
	m.mutex.Unlock()

	if oldStatus != status && status == StatusUnhealthy {
		m.alertFunc(component, status, message)
	}
}

// CheckAll 运行全部检查，返回是否全部健康
func (m *Monitor) CheckAll(ctx context.Context) bool {
	m.mutex.RLock()
	checks := make(map[string]CheckFunc, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mutex.RUnlock()

	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			healthy = false
			m.UpdateStatus(name, StatusUnhealthy, err.Error())
			continue
		}
		m.UpdateStatus(name, StatusHealthy, "")
	}
	return healthy
}

// GetStatus 获取组件状态
func (m *Monitor) GetStatus(component string) *HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if status, exists := m.components[component]; exists {
		s := *status
		return &s
	}
	return nil
}

// GetAllStatus 获取所有组件状态，按名称排序
func (m *Monitor) GetAllStatus() []HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	statuses := make([]HealthStatus, 0, len(m.components))
	for _, status := range m.components {
		statuses = append(statuses, *status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Component < statuses[j].Component })
	return statuses
}

// StartChecking 定期运行检查直到 ctx 结束
func (m *Monitor) StartChecking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckAll(ctx)
			}
		}
	}()
}
