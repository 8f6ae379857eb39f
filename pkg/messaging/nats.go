package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/phuslu/log"

	"PatternRadar/pkg/config"
	"PatternRadar/pkg/model"
)

// NATSClient JetStream 客户端，负责发布图形触发事件
type NATSClient struct {
	conn      *nats.Conn
	jetStream jetstream.JetStream
	stream    string
	subject   string
	ctx       context.Context
	cancel    context.CancelFunc
	consumers map[string]jetstream.ConsumeContext
	mu        sync.Mutex
}

// TriggerHandler 触发事件处理函数
type TriggerHandler func(event *model.TriggerEvent) error

// NewNATSClient 连接 NATS 并确保事件 Stream 存在
func NewNATSClient(cfg config.NATSConfig) (*NATSClient, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("PatternRadar"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS连接断开")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS重新连接成功")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("创建JetStream失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &NATSClient{
		conn:      nc,
		jetStream: js,
		stream:    cfg.Stream,
		subject:   cfg.Subject,
		ctx:       ctx,
		cancel:    cancel,
		consumers: make(map[string]jetstream.ConsumeContext),
	}

	if err := c.setupStream(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *NATSClient) setupStream(ctx context.Context) error {
	_, err := c.jetStream.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        c.stream,
		Subjects:    []string{c.subject},
		Description: "图形触发事件",
		Retention:   jetstream.LimitsPolicy,
		MaxMsgs:     50000,
		MaxBytes:    50 * 1024 * 1024,
		MaxAge:      7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("创建/更新Stream %s 失败: %w", c.stream, err)
	}
	log.Info().Str("stream", c.stream).Str("subject", c.subject).Msg("Stream 设置成功")
	return nil
}

// PublishTrigger 发布触发事件，消息 ID 取事件 ID 以便服务端去重
func (c *NATSClient) PublishTrigger(ctx context.Context, event *model.TriggerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化触发事件失败: %w", err)
	}
	_, err = c.jetStream.Publish(ctx, c.subject, payload, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("发布消息到 %s 失败: %w", c.subject, err)
	}
	log.Debug().Str("subject", c.subject).Int("bytes", len(payload)).Msg("发布触发事件")
	return nil
}

// SubscribeTriggers 以持久消费者订阅触发事件，处理失败的消息会被重投
func (c *NATSClient) SubscribeTriggers(consumerName string, handler TriggerHandler) error {
	consumer, err := c.jetStream.CreateOrUpdateConsumer(c.ctx, c.stream, jetstream.ConsumerConfig{
		Durable:       consumerName,
		FilterSubject: c.subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("创建消费者 %s 失败: %w", consumerName, err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var event model.TriggerEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			log.Warn().Str("consumer", consumerName).Err(err).Msg("解析触发事件失败，丢弃")
			_ = msg.Term()
			return
		}
		if err := handler(&event); err != nil {
			log.Warn().Str("consumer", consumerName).Err(err).Msg("处理触发事件失败")
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("订阅 %s 失败: %w", c.subject, err)
	}

	c.mu.Lock()
	if old, ok := c.consumers[consumerName]; ok {
		old.Stop()
	}
	c.consumers[consumerName] = cc
	c.mu.Unlock()
	return nil
}

// Ping 检查连接状态，供健康检查使用
func (c *NATSClient) Ping(ctx context.Context) error {
	if !c.IsConnected() {
		return errors.New("NATS未连接")
	}
	if _, err := c.jetStream.Stream(ctx, c.stream); err != nil {
		return fmt.Errorf("获取Stream信息失败: %w", err)
	}
	return nil
}

// IsConnected 检查连接状态
func (c *NATSClient) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close 停止所有消费者并关闭连接
func (c *NATSClient) Close() error {
	c.cancel()

	c.mu.Lock()
	for name, cc := range c.consumers {
		cc.Stop()
		delete(c.consumers, name)
	}
	c.mu.Unlock()

	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.conn.Close()
		}
	}
	log.Info().Msg("NATS连接已关闭")
	return nil
}
