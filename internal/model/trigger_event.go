package model

import (
	"fmt"

	"gorm.io/datatypes"
)

// TriggerEvent 触发体检的劳动事件（封闭枚举）
type TriggerEvent string

const (
	TriggerHiring         TriggerEvent = "hiring"          // 入职体检
	TriggerPeriodic       TriggerEvent = "periodic"        // 定期体检
	TriggerFunctionChange TriggerEvent = "function_change" // 转岗体检
	TriggerReturnToWork   TriggerEvent = "return_to_work"  // 复工体检
	TriggerTermination    TriggerEvent = "termination"     // 离职体检
)

// AllTriggerEvents 按业务流程顺序排列的全部触发事件
var AllTriggerEvents = []TriggerEvent{
	TriggerHiring,
	TriggerPeriodic,
	TriggerFunctionChange,
	TriggerReturnToWork,
	TriggerTermination,
}

// Valid 判断是否为已知触发事件
func (e TriggerEvent) Valid() bool {
	switch e {
	case TriggerHiring, TriggerPeriodic, TriggerFunctionChange, TriggerReturnToWork, TriggerTermination:
		return true
	}
	return false
}

// ParseTriggerEvent 将外部输入转换为 TriggerEvent，未知值返回错误
func ParseTriggerEvent(s string) (TriggerEvent, error) {
	e := TriggerEvent(s)
	if !e.Valid() {
		return "", fmt.Errorf("未知的触发事件 %q", s)
	}
	return e, nil
}

// TriggerEventSet 体检适用的触发事件集合，以 JSON 数组落库
type TriggerEventSet = datatypes.JSONSlice[TriggerEvent]

// ContainsTrigger 判断集合中是否包含指定事件
func ContainsTrigger(set []TriggerEvent, e TriggerEvent) bool {
	for _, t := range set {
		if t == e {
			return true
		}
	}
	return false
}
