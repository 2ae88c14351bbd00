package dao

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateKeyError 判定唯一约束冲突
// TranslateError 启用后多数方言映射到 gorm.ErrDuplicatedKey，
// 字符串匹配兜底没有映射的方言版本
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
