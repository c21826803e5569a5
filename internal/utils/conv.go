package utils

import (
	"strconv"
)

// StringToInt 表单字段转 int，解析失败返回 0（验证码答案、分页参数用）
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
