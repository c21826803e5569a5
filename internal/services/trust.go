package services

import (
	"log"
	"sync"
	"time"

	"moke/internal/db"
	"moke/internal/models"
	"moke/internal/moderation"
)

// TrustService 异步刷新用户信任等级提示的服务。
// 审核时核心总是现算信任等级，这里维护的只是展示和后台筛选用的提示值。
type TrustService struct {
	queue   chan uint // 待刷新的用户 ID 队列
	pending map[uint]bool
	mu      sync.Mutex
}

var (
	trustService *TrustService
	trustOnce    sync.Once
)

// GetTrustService 获取单例信任刷新服务
func GetTrustService() *TrustService {
	trustOnce.Do(func() {
		trustService = &TrustService{
			queue:   make(chan uint, 1000), // 缓冲队列，防止阻塞
			pending: make(map[uint]bool),
		}
		// 启动后台 worker
		go trustService.worker()
	})
	return trustService
}

// ScheduleRefresh 把用户加入刷新队列（异步）
// 使用去重机制避免短时间内重复计算同一用户
func (s *TrustService) ScheduleRefresh(userID uint) {
	s.mu.Lock()
	if s.pending[userID] {
		// 已在队列中，跳过
		s.mu.Unlock()
		return
	}
	s.pending[userID] = true
	s.mu.Unlock()

	// 非阻塞发送到队列
	select {
	case s.queue <- userID:
		// 成功加入队列
	default:
		// 队列满了，移除 pending 标记
		s.mu.Lock()
		delete(s.pending, userID)
		s.mu.Unlock()
		log.Printf("信任刷新队列已满，跳过用户 %d", userID)
	}
}

// worker 后台处理队列中的刷新请求
func (s *TrustService) worker() {
	// 批量处理：收集一批请求后统一处理
	batch := make([]uint, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case userID := <-s.queue:
			batch = append(batch, userID)
			if len(batch) >= 50 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *TrustService) processBatch(userIDs []uint) {
	for _, userID := range userIDs {
		s.refreshUserTrust(userID)

		s.mu.Lock()
		delete(s.pending, userID)
		s.mu.Unlock()
	}
}

// refreshUserTrust 重算并落库单个用户的信任等级提示。
// 只读聚合列，库里存的 3 经由 CalculateTrustLevelFromDB 保持粘性；
// 管理员撤销手动信任时由后台操作直接改写，不走这里。
func (s *TrustService) refreshUserTrust(userID uint) {
	var user models.User
	if err := db.DB.Select("id, trust_level").First(&user, userID).Error; err != nil {
		log.Printf("刷新信任等级失败：用户 %d 不存在", userID)
		return
	}
	currentLevel := user.TrustLevel

	var approved int64
	db.DB.Model(&models.Comment{}).
		Where("user_id = ? AND status = ?", userID, models.CommentStatusApproved).
		Count(&approved)

	since := time.Now().AddDate(0, 0, -RecentRejectionWindowDays)
	var rejected int64
	db.DB.Model(&models.Comment{}).
		Where("user_id = ? AND status = ? AND created_at >= ?", userID, models.CommentStatusRejected, since).
		Count(&rejected)

	newLevel := moderation.CalculateTrustLevelFromDB(int(approved), rejected > 0, currentLevel)
	if newLevel == currentLevel {
		return
	}

	if err := db.DB.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("trust_level", newLevel).Error; err != nil {
		log.Printf("更新用户 %d 信任等级失败: %v", userID, err)
	}
}

// RefreshUserTrustSync 同步刷新（需要立即生效的场景，比如管理员操作后）
func RefreshUserTrustSync(userID uint) {
	GetTrustService().refreshUserTrust(userID)
}
