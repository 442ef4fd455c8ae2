// Package mqtt 提供 MQTT 客户端封装，用于向后厨显示屏推送订单事件
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
)

// Publisher 消息发布接口
type Publisher interface {
	PublishWithContext(ctx context.Context, topic string, payload interface{}) error
}

// Client MQTT 客户端
type Client struct {
	config *config.MQTTConfig
	client mqtt.Client
}

// NewClient 创建 MQTT 客户端
func NewClient(cfg *config.MQTTConfig) *Client {
	return &Client{config: cfg}
}

// ClientOptions 根据配置构造 paho 连接参数
func (c *Client) ClientOptions() *mqtt.ClientOptions {
	broker := c.config.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(c.config.ClientIDPrefix + uuid.NewString()[:8])
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(time.Duration(c.config.KeepAlive) * time.Second)
	opts.SetAutoReconnect(c.config.AutoReconnect)
	opts.SetConnectTimeout(time.Duration(c.config.ConnectTimeout) * time.Second)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetReconnectingHandler(c.onReconnecting)
	return opts
}

// Connect 连接 MQTT Broker
func (c *Client) Connect() error {
	c.client = mqtt.NewClient(c.ClientOptions())

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect error: %w", token.Error())
	}
	return nil
}

// Disconnect 断开连接
func (c *Client) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		logger.Info("mqtt disconnected", zap.String("broker", c.config.Broker))
	}
}

// IsConnected 检查是否已连接
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// PublishWithContext 发布消息，ctx 取消时不再等待确认
func (c *Client) PublishWithContext(ctx context.Context, topic string, payload interface{}) error {
	if !c.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}

	data, err := Encode(payload)
	if err != nil {
		return err
	}

	token := c.client.Publish(topic, c.config.QoS, c.config.Retained, data)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("mqtt publish error: %w", token.Error())
		}
		return nil
	}
}

// Encode 序列化消息负载
func Encode(payload interface{}) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("mqtt marshal payload error: %w", err)
		}
		return data, nil
	}
}

func (c *Client) onConnect(_ mqtt.Client) {
	logger.Info("mqtt connected", zap.String("broker", c.config.Broker))
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	logger.Warn("mqtt connection lost", zap.Error(err))
}

func (c *Client) onReconnecting(_ mqtt.Client, _ *mqtt.ClientOptions) {
	logger.Info("mqtt reconnecting", zap.String("broker", c.config.Broker))
}
