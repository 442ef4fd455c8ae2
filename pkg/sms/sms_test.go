package sms

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSender(t *testing.T) {
	sender := NewMockSender()
	ctx := context.Background()

	t.Run("记录发送内容", func(t *testing.T) {
		require.NoError(t, sender.Send(ctx, "+393331234567", "SMS_READY", map[string]string{"order_number": "20240301-0001"}))

		msg := sender.Last()
		require.NotNil(t, msg)
		assert.Equal(t, "+393331234567", msg.Phone)
		assert.Equal(t, "SMS_READY", msg.TemplateCode)
		assert.Equal(t, "20240301-0001", msg.Params["order_number"])
		assert.NotZero(t, msg.SentAt)
	})

	t.Run("并发发送", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = sender.Send(ctx, "+390000000", "T", nil)
			}()
		}
		wg.Wait()
		assert.Len(t, sender.Messages(), 21)
	})

	t.Run("模拟失败", func(t *testing.T) {
		sender.FailWith(stderrors.New("quota exceeded"))
		assert.EqualError(t, sender.Send(ctx, "+390000000", "T", nil), "quota exceeded")
		assert.Len(t, sender.Messages(), 21)
	})
}

func TestNewAliyunSender(t *testing.T) {
	t.Run("缺少签名", func(t *testing.T) {
		_, err := NewAliyunSender(&AliyunConfig{AccessKeyID: "id", AccessKeySecret: "secret"})
		assert.Error(t, err)
	})

	t.Run("已取消的请求不发送", func(t *testing.T) {
		s, err := NewAliyunSender(&AliyunConfig{AccessKeyID: "id", AccessKeySecret: "secret", SignName: "Trattoria"})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, s.Send(ctx, "+390000000", "T", nil), context.Canceled)
	})
}
