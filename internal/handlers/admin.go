package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moke/internal/db"
	"moke/internal/middleware"
	"moke/internal/models"
	"moke/internal/services"
	"moke/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

func (h *AdminHandler) currentAdmin(c *gin.Context) *models.User {
	u, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		return nil
	}
	return u.(*models.User)
}

// QueueEntry 待审队列展示条目，把逗号分隔的规则标签拆开
type QueueEntry struct {
	models.Comment
	Flags []string
}

// Queue 待审核评论队列
func (h *AdminHandler) Queue(c *gin.Context) {
	var comments []models.Comment
	db.DB.Preload("User").Preload("Post").
		Where("status = ?", models.CommentStatusPending).
		Order("created_at ASC").
		Find(&comments)

	entries := make([]QueueEntry, len(comments))
	for i, com := range comments {
		var flags []string
		if com.RuleFlags != "" {
			flags = strings.Split(com.RuleFlags, ",")
		}
		entries[i] = QueueEntry{Comment: com, Flags: flags}
	}

	Render(c, http.StatusOK, "admin/queue.html", gin.H{
		"Title":   "审核队列",
		"Entries": entries,
	})
}

// resolveComment 管理员改判的公共部分：改状态、记审计、通知作者、失效缓存、刷新信任
func (h *AdminHandler) resolveComment(c *gin.Context, status string, verdictText string) {
	admin := h.currentAdmin(c)
	cid := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Preload("Post").Where("cid = ?", cid).First(&comment).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	db.DB.Model(&comment).Updates(map[string]interface{}{
		"status":     status,
		"mod_source": "manual",
	})

	services.GetModerationService().LogManualAction(&comment, status, admin.ID)

	// 通知评论作者审核结果
	notification := models.Notification{
		UserID: comment.UserID,
		Type:   models.NotificationTypeModeration,
		Reason: fmt.Sprintf("您在文章 <a href=\"/p/%s\" target=\"_blank\" class=\"text-ink font-medium hover:underline tracking-tight\">《%s》</a> 下的评论%s",
			comment.Post.Pid, comment.Post.Title, verdictText),
	}
	db.DB.Create(&notification)

	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", comment.Post.Pid))
	services.GetTrustService().ScheduleRefresh(comment.UserID)

	c.Header("HX-Refresh", "true")
	c.Status(http.StatusOK)
}

// Approve 人工通过
func (h *AdminHandler) Approve(c *gin.Context) {
	h.resolveComment(c, models.CommentStatusApproved, "已通过审核")
}

// Reject 人工拒绝
func (h *AdminHandler) Reject(c *gin.Context) {
	h.resolveComment(c, models.CommentStatusRejected, "未通过审核")
}

// TogglePin 置顶/取消置顶评论
func (h *AdminHandler) TogglePin(c *gin.Context) {
	cid := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Preload("Post").Where("cid = ?", cid).First(&comment).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	// 只有已通过的评论才会出现在树里，置顶未通过的没有意义
	if comment.Status != models.CommentStatusApproved {
		c.Status(http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{"is_pinned": !comment.IsPinned}
	if comment.IsPinned {
		updates["pinned_at"] = nil
	} else {
		now := time.Now()
		updates["pinned_at"] = &now
	}
	db.DB.Model(&comment).Updates(updates)

	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", comment.Post.Pid))

	// HTMX: 返回按钮新状态
	label := "置顶"
	if !comment.IsPinned {
		label = "取消置顶"
	}
	c.String(http.StatusOK, label)
}

// ToggleTrust 授予/撤销用户的手动信任
func (h *AdminHandler) ToggleTrust(c *gin.Context) {
	userIDStr := c.Param("id")
	userID, _ := strconv.Atoi(userIDStr)

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if user.IsTrusted {
		// 撤销：先清掉粘性的等级 3，再按历史同步重算
		db.DB.Model(&user).Updates(map[string]interface{}{
			"is_trusted":  false,
			"trust_level": 0,
		})
		services.RefreshUserTrustSync(user.ID)
	} else {
		db.DB.Model(&user).Updates(map[string]interface{}{
			"is_trusted":  true,
			"trust_level": 3,
		})
	}

	c.Header("HX-Refresh", "true")
	c.Status(http.StatusOK)
}

// PunishUser 惩罚用户（禁言、封禁）
func (h *AdminHandler) PunishUser(c *gin.Context) {
	userIDStr := c.Param("id")
	userID, _ := strconv.Atoi(userIDStr)
	statusStr := c.PostForm("status") // 0: 正常, 1: 禁言, 2: 封禁
	status, _ := strconv.Atoi(statusStr)
	daysStr := c.PostForm("days")
	days, _ := strconv.Atoi(daysStr)

	updates := map[string]interface{}{
		"status": status,
	}

	if status != 0 && days > 0 {
		expires := time.Now().AddDate(0, 0, days)
		updates["punish_expires"] = &expires
	} else {
		updates["punish_expires"] = nil
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("HX-Refresh", "true")
	c.Status(http.StatusOK)
}

// DeleteComment 管理员删除评论（状态置为 deleted）
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	admin := h.currentAdmin(c)
	cid := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Preload("Post").Where("cid = ?", cid).First(&comment).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	db.DB.Model(&comment).UpdateColumn("status", models.CommentStatusDeleted)
	services.GetModerationService().LogManualAction(&comment, models.CommentStatusDeleted, admin.ID)

	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", comment.Post.Pid))
	services.GetTrustService().ScheduleRefresh(comment.UserID)

	c.Status(http.StatusOK)
}

// DeletePost 管理员删除文章
func (h *AdminHandler) DeletePost(c *gin.Context) {
	pid := c.Param("pid")
	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	// 发送系统通知给作者
	notification := models.Notification{
		UserID: post.UserID,
		Type:   models.NotificationTypeSystem,
		Reason: "很抱歉，您的文章《" + post.Title + "》因违规已被管理员删除。如有疑问请联系管理。",
	}
	db.DB.Create(&notification)

	// 彻底删除文章
	db.DB.Unscoped().Delete(&post)

	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))
	utils.GetCache().Delete("post:list:page:1")

	c.Header("HX-Redirect", "/")
	c.Status(http.StatusOK)
}

// ListReports 举报列表
func (h *AdminHandler) ListReports(c *gin.Context) {
	var reports []models.Report
	db.DB.Preload("User").Order("created_at DESC").Find(&reports)

	Render(c, http.StatusOK, "admin/reports.html", gin.H{
		"Title":   "举报管理",
		"Reports": reports,
	})
}

// HandleReport 处理/忽略举报
func (h *AdminHandler) HandleReport(c *gin.Context) {
	id := c.Param("id")
	db.DB.Delete(&models.Report{}, id)

	c.Status(http.StatusOK)
}
