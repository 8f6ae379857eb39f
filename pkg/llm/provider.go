package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured 未配置大模型密钥
var ErrNotConfigured = errors.New("未配置AI密钥")

// Provider 大模型网关：输入系统提示与用户提示，返回文本
type Provider interface {
	Name() string
	Chat(ctx context.Context, system, prompt string) (string, error)
}

// Result 异步调用结果
type Result struct {
	Text string
	Err  error
}

// Async 在独立 goroutine 中调用 Provider，结果写入只读通道后关闭
func Async(ctx context.Context, p Provider, system, prompt string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		text, err := p.Chat(ctx, system, prompt)
		ch <- Result{Text: text, Err: err}
	}()
	return ch
}
