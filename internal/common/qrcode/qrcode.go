// Package qrcode 生成营业点点餐二维码
package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

// Generator 二维码生成器
type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

// Option 生成器选项
type Option func(*Generator)

// WithSize 设置边长（像素），非正数忽略
func WithSize(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.size = size
		}
	}
}

// WithHighRecovery 使用 25% 纠错，适合印在会磨损的桌贴上
func WithHighRecovery() Option {
	return func(g *Generator) {
		g.level = qrcode.High
	}
}

// NewGenerator 创建二维码生成器，默认 256 像素、15% 纠错
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{size: defaultSize, level: qrcode.Medium}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PNG 将内容编码为 PNG
func (g *Generator) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qrcode content is empty")
	}
	data, err := qrcode.Encode(content, g.level, g.size)
	if err != nil {
		return nil, fmt.Errorf("encode qrcode: %w", err)
	}
	return data, nil
}

// MenuURL 营业点点餐页地址 {base}/{domain}/{center_id}
func MenuURL(baseURL, domain string, revenueCenterID int64) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimRight(baseURL, "/"), url.PathEscape(domain), revenueCenterID)
}
