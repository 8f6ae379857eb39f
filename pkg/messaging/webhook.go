package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"PatternRadar/pkg/config"
	"PatternRadar/pkg/model"
)

// Sink 触发事件下游
type Sink interface {
	PublishTrigger(ctx context.Context, event *model.TriggerEvent) error
}

// WebhookNotifier 以群机器人 text 消息格式推送触发提醒
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier 创建 webhook 推送
func NewWebhookNotifier(cfg config.NotifyConfig) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

type webhookMessage struct {
	MsgType string `json:"msgtype"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
}

// PublishTrigger 推送触发提醒
func (n *WebhookNotifier) PublishTrigger(ctx context.Context, event *model.TriggerEvent) error {
	msg := webhookMessage{MsgType: "text"}
	msg.Text.Content = FormatTrigger(event)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化通知失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建通知请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送通知失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("通知接口返回错误(%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

// FormatTrigger 格式化触发提醒
func FormatTrigger(e *model.TriggerEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "股票图形提醒\n\n股票：%s (%s)\n", e.Name, e.Code)
	fmt.Fprintf(&b, "当前价格：%.2f\n", e.Data.Current)
	fmt.Fprintf(&b, "涨跌幅：%.2f%%\n", e.Data.ChangePercent())
	fmt.Fprintf(&b, "图形：%s\n触发规则：%s\n", e.Pattern, e.Rule)

	if e.Suggestion != nil {
		fmt.Fprintf(&b, "\n操作建议：%s（%s）\n%s\n", e.Suggestion.Action, e.Suggestion.Confidence, e.Suggestion.Reasoning)
	}
	if e.AIAnalysis != "" {
		fmt.Fprintf(&b, "\nAI分析：\n%s\n", e.AIAnalysis)
	} else if e.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Message)
	}
	fmt.Fprintf(&b, "\n时间：%s", e.TriggeredAt.Format("2006-01-02 15:04:05"))
	return b.String()
}

// MultiSink 依次发布到多个下游，单个失败不影响其余
type MultiSink []Sink

// PublishTrigger 发布到所有下游并合并错误
func (m MultiSink) PublishTrigger(ctx context.Context, event *model.TriggerEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.PublishTrigger(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
