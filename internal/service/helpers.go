package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgerrors "conser-control/backend/pkg/errors"
)

const (
	timeLayout = "2006-01-02T15:04:05Z"
	dateLayout = "2006-01-02"
)

var ErrInvalidDate = fmt.Errorf("%w: 日期格式无效，应为 YYYY-MM-DD", pkgerrors.ErrValidation)

// clock 返回当前时间，测试中替换为固定时刻
type clock func() time.Time

// lookupErr 将 gorm.ErrRecordNotFound 转换为模块级 NotFound 错误，其余原样返回
func lookupErr(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// parseDate 按业务时区解析 YYYY-MM-DD
func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// dedupeIDs 去重并保持首次出现顺序，丢弃空字符串
func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func strPtr(s string) *string { return &s }

// startOfDay 截断到业务时区当日零点；合规日期均为日粒度
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
