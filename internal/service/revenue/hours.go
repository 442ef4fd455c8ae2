package revenue

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// ParseClock 解析 HH:MM 或 HH:MM:SS，返回当天零点起的秒数
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	limits := []int{23, 59, 59}
	total := 0
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("invalid clock %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("invalid clock %q", s)
		}
		total = total*60 + n
	}
	if len(parts) == 2 {
		total *= 60
	}
	return total, nil
}

// NormalizeClock 统一为 HH:MM:SS
func NormalizeClock(s string) (string, error) {
	secs, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60), nil
}

// IsOpenAt 判断营业时间在时刻 t 是否营业
//
// t 应已转换到业务时区；hours 为 nil 表示当天没有配置，视为休息。
// 跨午夜的时段（收市早于开市）在 t >= 开市 或 t <= 收市 时营业，边界均包含在内。
func IsOpenAt(hours *models.BusinessHours, t time.Time) bool {
	if hours == nil || hours.IsClosed || hours.OpenTime == nil || hours.CloseTime == nil {
		return false
	}
	open, err := ParseClock(*hours.OpenTime)
	if err != nil {
		return false
	}
	closing, err := ParseClock(*hours.CloseTime)
	if err != nil {
		return false
	}

	now := t.Hour()*3600 + t.Minute()*60 + t.Second()
	if closing < open {
		return now >= open || now <= closing
	}
	return now >= open && now <= closing
}
