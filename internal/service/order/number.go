package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
)

// BusinessDate 返回时间在营业时区下的日期 YYYY-MM-DD
func BusinessDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

// FormatOrderNumber 生成订单号 YYYYMMDD-NNNN
func FormatOrderNumber(businessDate string, seq int) string {
	return fmt.Sprintf("%s-%04d", strings.ReplaceAll(businessDate, "-", ""), seq)
}

// ParseSequence 解析订单号中的序号部分
func ParseSequence(orderNumber string) (int, bool) {
	i := strings.LastIndexByte(orderNumber, '-')
	if i < 0 || i == len(orderNumber)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(orderNumber[i+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// nextOrderNumber 在当前事务中分配订单号
// 正常情况下以当日订单数作为序列初值；catchUp 时以当日已用的最大序号为准，
// 用于序列行丢失或与订单表不一致后的重试
func nextOrderNumber(ctx context.Context, r *repository.Repositories, restaurantID int64, businessDate string, catchUp bool) (string, error) {
	seed, err := r.Order.CountByBusinessDate(ctx, restaurantID, businessDate)
	if err != nil {
		return "", err
	}

	if catchUp {
		numbers, err := r.Order.ListNumbersByBusinessDate(ctx, restaurantID, businessDate)
		if err != nil {
			return "", err
		}
		for _, no := range numbers {
			if n, ok := ParseSequence(no); ok && int64(n) > seed {
				seed = int64(n)
			}
		}
	}

	seq, err := r.OrderSequence.Next(ctx, restaurantID, businessDate, seed)
	if err != nil {
		return "", err
	}
	return FormatOrderNumber(businessDate, seq), nil
}
