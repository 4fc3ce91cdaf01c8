package service

import "time"

// ExpiryStatus 时效性合规项的生命周期状态。
// 对外只会出现以下四个字面量。
type ExpiryStatus string

const (
	StatusNeverExpires ExpiryStatus = "NeverExpires"
	StatusExpired      ExpiryStatus = "Expired"
	StatusExpiringSoon ExpiryStatus = "ExpiringSoon"
	StatusValid        ExpiryStatus = "Valid"
)

// DefaultWarningWindowDays 默认到期预警窗口（天）
const DefaultWarningWindowDays = 30

// ClassifyExpiry 根据到期时间、参考时间和预警窗口（天）计算状态。
//
// 区间划分（互斥且完备）：
//   - expiry == nil                          → NeverExpires
//   - expiry <  now                          → Expired
//   - now <= expiry < now + windowDays 天    → ExpiringSoon
//   - expiry >= now + windowDays 天          → Valid
//
// Expired 仅在 expiry < now 时成立，到期当天仍属 ExpiringSoon（以区间划分为准，而非"到期即过期"的字面说法）。
// 窗口按日历天累加，夏令时切换日不会使边界偏移一小时；windowDays <= 0 时不存在 ExpiringSoon 区间。
func ClassifyExpiry(expiry *time.Time, now time.Time, windowDays int) ExpiryStatus {
	if expiry == nil {
		return StatusNeverExpires
	}
	if expiry.Before(now) {
		return StatusExpired
	}
	if windowDays > 0 && expiry.Before(now.AddDate(0, 0, windowDays)) {
		return StatusExpiringSoon
	}
	return StatusValid
}

// IsCurrent 状态是否视为"当前有效"（无需续期）
func (s ExpiryStatus) IsCurrent() bool {
	return s == StatusValid || s == StatusNeverExpires
}

// AddMonths 在日期上增加月数，目标月份天数不足时取该月最后一天
// （1 月 31 日 + 1 个月 = 2 月 28/29 日），时分秒与时区保持不变。
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// expiryAfterMonths 到期日 = 起始日 + months；months 为空或非正数时永不过期
func expiryAfterMonths(start time.Time, months *int) *time.Time {
	if months == nil || *months <= 0 {
		return nil
	}
	exp := AddMonths(start, *months)
	return &exp
}
