package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternRadar/pkg/config"
)

func TestLLMClient_Chat(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"判断结果：假跳水"}}]}`))
	}))
	defer srv.Close()

	c := NewLLMClient("openai", srv.URL, "sk-test", "gpt-4o-mini", 1000, 0.3, time.Second)
	text, err := c.Chat(context.Background(), "系统", "用户")
	require.NoError(t, err)

	assert.Equal(t, "判断结果：假跳水", text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "用户", got.Messages[1].Content)
}

func TestLLMClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
		case "/empty":
			_, _ = w.Write([]byte(`{"choices":[]}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	for _, path := range []string{"/fail", "/empty", "/garbage"} {
		c := NewLLMClient("openai", srv.URL+path, "sk", "m", 0, 0, time.Second)
		_, err := c.Chat(context.Background(), "", "p")
		assert.Error(t, err, path)
	}

	_, err := NewLLMClient("openai", srv.URL, "", "m", 0, 0, time.Second).Chat(context.Background(), "", "p")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLLMClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewLLMClient("openai", srv.URL, "sk", "m", 0, 0, 5*time.Second).Chat(ctx, "", "p")
	assert.Error(t, err)
}

func TestAsync(t *testing.T) {
	m := NewMockProvider("ok")
	res := <-Async(context.Background(), m, "s", "hello")
	require.NoError(t, res.Err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, []string{"hello"}, m.Prompts())

	m.Err = errors.New("boom")
	res = <-Async(context.Background(), m, "s", "again")
	assert.EqualError(t, res.Err, "boom")
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, config.LLMConfig{Provider: "openai"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	p, err := NewProvider(ctx, config.LLMConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())

	p, err = NewProvider(ctx, config.LLMConfig{Provider: "deepseek", APIKey: "sk"})
	require.NoError(t, err)
	client := p.(*LLMClient)
	assert.Equal(t, DeepSeekURL, client.apiURL)
	assert.Equal(t, "deepseek-chat", client.modelName)

	p, err = NewProvider(ctx, config.LLMConfig{Provider: "claude", APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, "claude", p.Name())

	_, err = NewProvider(ctx, config.LLMConfig{Provider: "wenxin", APIKey: "sk"})
	assert.Error(t, err)
}
