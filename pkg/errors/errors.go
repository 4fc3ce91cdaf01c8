package errors

import "errors"

// ── 错误类别 ──
//
// 业务错误一律包装以下两类之一（fmt.Errorf("%w: ...", ErrNotFound)），
// Handler 层先按类别决定 HTTP 状态码，再按具体错误决定业务码。

var (
	// ErrNotFound 引用的 ID 不存在或对应实体已停用
	ErrNotFound = errors.New("资源不存在")
	// ErrValidation 引用有效但违反跨字段业务规则
	ErrValidation = errors.New("业务规则校验失败")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// IsNotFound 判断错误是否属于 NotFound 类别
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation 判断错误是否属于 ValidationError 类别
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
