package services

import (
	"fmt"
	"math/rand"
	"time"
)

// CaptchaService 注册表单用的算术验证码。题面给用户看，答案存 session 里比对。
type CaptchaService struct {
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return &CaptchaService{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateMathProblem 生成一道个位数加减法，返回题面（如 "3 + 5"）和整数答案
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	a := s.rnd.Intn(10) // 0-9
	b := s.rnd.Intn(10) // 0-9
	op := s.rnd.Intn(2) // 0: +, 1: -

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	// 减法保证结果非负
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}
