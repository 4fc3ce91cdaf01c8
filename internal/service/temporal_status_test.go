package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestClassifyExpiry(t *testing.T) {
	now := date(2024, time.March, 1)
	window := 30

	tests := []struct {
		name   string
		expiry *time.Time
		window int
		want   ExpiryStatus
	}{
		{"无到期日", nil, window, StatusNeverExpires},
		{"昨天到期", datePtr(2024, time.February, 29), window, StatusExpired},
		{"到期时刻等于当前时刻", &now, window, StatusExpiringSoon},
		{"窗口内", datePtr(2024, time.March, 15), window, StatusExpiringSoon},
		{"窗口最后一天之前", datePtr(2024, time.March, 30), window, StatusExpiringSoon},
		{"恰好等于 now+window", datePtr(2024, time.March, 31), window, StatusValid},
		{"远期", datePtr(2025, time.January, 1), window, StatusValid},
		{"窗口为 0 时当天到期视为有效", &now, 0, StatusValid},
		{"窗口为 0 时过期", datePtr(2024, time.February, 1), 0, StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyExpiry(tt.expiry, now, tt.window))
		})
	}
}

// 对一段连续日期逐日分类，结果必须恰好落在一个区间且区间边界单调
func TestClassifyExpiry_Partition(t *testing.T) {
	now := date(2024, time.June, 10)
	window := DefaultWarningWindowDays

	rank := map[ExpiryStatus]int{StatusExpired: 0, StatusExpiringSoon: 1, StatusValid: 2}
	prev := -1
	for offset := -60; offset <= 90; offset++ {
		expiry := now.AddDate(0, 0, offset)
		got := ClassifyExpiry(&expiry, now, window)

		r, ok := rank[got]
		if !assert.True(t, ok, "offset=%d 得到意外状态 %s", offset, got) {
			return
		}
		assert.GreaterOrEqual(t, r, prev, "offset=%d 状态回退", offset)
		prev = r

		switch {
		case offset < 0:
			assert.Equal(t, StatusExpired, got, "offset=%d", offset)
		case offset < 30:
			assert.Equal(t, StatusExpiringSoon, got, "offset=%d", offset)
		default:
			assert.Equal(t, StatusValid, got, "offset=%d", offset)
		}
	}
}

// 窗口按日历天计算：跨越夏令时切换时边界仍落在本地零点
func TestClassifyExpiry_WindowAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("时区数据不可用: %v", err)
	}
	// 2024-03-10 起夏令时，3 月 1 日到 3 月 31 日实际只有 719 小时
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, loc)
	boundary := time.Date(2024, time.March, 31, 0, 0, 0, 0, loc)
	lastDay := time.Date(2024, time.March, 30, 0, 0, 0, 0, loc)

	assert.Equal(t, StatusValid, ClassifyExpiry(&boundary, now, 30))
	assert.Equal(t, StatusExpiringSoon, ClassifyExpiry(&lastDay, now, 30))
}

func TestExpiryStatus_IsCurrent(t *testing.T) {
	assert.True(t, StatusValid.IsCurrent())
	assert.True(t, StatusNeverExpires.IsCurrent())
	assert.False(t, StatusExpiringSoon.IsCurrent())
	assert.False(t, StatusExpired.IsCurrent())
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"普通", date(2023, time.January, 15), 12, date(2024, time.January, 15)},
		{"月末截断", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"闰年月末", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"跨年", date(2023, time.November, 30), 3, date(2024, time.February, 29)},
		{"六个月", date(2024, time.August, 31), 6, date(2025, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.months))
		})
	}
}

func TestExpiryAfterMonths(t *testing.T) {
	start := date(2024, time.May, 2)
	assert.Nil(t, expiryAfterMonths(start, nil))

	zero := 0
	assert.Nil(t, expiryAfterMonths(start, &zero))

	six := 6
	got := expiryAfterMonths(start, &six)
	if assert.NotNil(t, got) {
		assert.Equal(t, date(2024, time.November, 2), *got)
	}
}
