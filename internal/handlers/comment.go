package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"moke/internal/db"
	"moke/internal/middleware"
	"moke/internal/models"
	"moke/internal/moderation"
	"moke/internal/services"
	"moke/internal/utils"

	"github.com/gin-gonic/gin"
)

// 评论长度限制（按字符数，不是字节数）
const (
	CommentMinLength = 1
	CommentMaxLength = 2000
)

type CommentHandler struct {
	mailService *services.MailService
}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{
		mailService: services.NewMailService(),
	}
}

func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	pid := c.Param("pid")

	// 检查用户状态
	if user.Status == 2 {
		// 封禁用户无法发布评论
		Render(c, http.StatusForbidden, "error.html", gin.H{"Error": "您的账号已被封禁,无法发布评论。"})
		return
	}
	if user.Status == 1 {
		// 禁言用户,检查是否已过期
		if user.PunishExpires != nil && time.Now().After(*user.PunishExpires) {
			// 禁言已过期,恢复状态
			db.DB.Model(user).Updates(map[string]interface{}{
				"status":         0,
				"punish_expires": nil,
			})
			user.Status = 0
		} else {
			// 仍在禁言期
			Render(c, http.StatusForbidden, "error.html", gin.H{"Error": "您处于禁言状态,暂时无法发布评论。"})
			return
		}
	}

	// 通过Pid查找文章
	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	content := c.PostForm("content")
	parentIDStr := c.PostForm("parent_id")

	length := utf8.RuneCountInString(content)
	if length < CommentMinLength || length > CommentMaxLength {
		Render(c, http.StatusBadRequest, "error.html", gin.H{"Error": "评论长度需在 1-2000 字之间"})
		return
	}

	// 回复评论时校验父评论属于同一篇文章
	var parentID *uint
	if parentIDStr != "" {
		pID, _ := strconv.Atoi(parentIDStr)
		uPID := uint(pID)

		var parentComment models.Comment
		if err := db.DB.First(&parentComment, uPID).Error; err != nil || parentComment.PostID != post.ID {
			Render(c, http.StatusBadRequest, "error.html", gin.H{"Error": "回复的评论不存在"})
			return
		}
		parentID = &uPID
	}

	comment := models.Comment{
		Cid:      utils.RandStringBytesMaskImpr(8),
		PostID:   post.ID,
		UserID:   user.ID,
		Content:  content,
		ParentID: parentID,
	}

	// 同步跑完整审核流水线，结果直接落到评论字段上
	modService := services.GetModerationService()
	result, trustLevel := modService.ModerateComment(c.Request.Context(), user, &comment)

	if err := db.DB.Create(&comment).Error; err != nil {
		Render(c, http.StatusInternalServerError, "error.html", gin.H{"Error": "评论发布失败"})
		return
	}

	// 审计记录，自动审核 actorID 为空
	modService.LogDecision(&comment, result, trustLevel, nil)

	// 主动失效详情页缓存
	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))

	// 异步刷新信任等级提示
	services.GetTrustService().ScheduleRefresh(user.ID)

	// 通知与邮件
	go h.notifyAfterModeration(&post, &comment, user, result)

	c.Redirect(http.StatusFound, "/p/"+pid)
}

// notifyAfterModeration 审核后的通知分发。
// 通过的评论才通知被回复者/文章作者；进待审队列的提醒管理员。
func (h *CommentHandler) notifyAfterModeration(post *models.Post, comment *models.Comment, user *models.User, result moderation.Result) {
	siteURL := os.Getenv("SITE_URL")

	switch result.Status {
	case moderation.StatusApproved:
		if comment.ParentID != nil {
			var parentComment models.Comment
			if err := db.DB.Preload("User").First(&parentComment, *comment.ParentID).Error; err == nil {
				// 不要通知自己
				if parentComment.UserID != user.ID {
					notification := models.Notification{
						UserID:  parentComment.UserID,
						ActorID: &user.ID,
						Type:    models.NotificationTypeReplyComment,
						Reason: fmt.Sprintf("在文章 <a href=\"/p/%s#comment-%d\" target=\"_blank\" class=\"text-ink font-medium hover:underline tracking-tight\">《%s》</a> 中回复了您的评论",
							post.Pid, comment.ID, post.Title),
					}
					db.DB.Create(&notification)

					postLink := fmt.Sprintf("%s/p/%s#comment-%d", siteURL, post.Pid, comment.ID)
					h.mailService.SendCommentNotification(
						parentComment.User.Email,
						user.Username,
						post.Title,
						comment.Content,
						parentComment.Content,
						postLink,
					)
				}
			}
		} else if post.UserID != user.ID {
			notification := models.Notification{
				UserID:  post.UserID,
				ActorID: &user.ID,
				Type:    models.NotificationTypeCommentPost,
				Reason: fmt.Sprintf("在您的文章 <a href=\"/p/%s#comment-%d\" target=\"_blank\" class=\"text-ink font-medium hover:underline tracking-tight\">《%s》</a> 中发布了新的评论",
					post.Pid, comment.ID, post.Title),
			}
			db.DB.Create(&notification)
		}
	case moderation.StatusPending:
		adminEmail := os.Getenv("ADMIN_EMAIL")
		if adminEmail != "" {
			queueLink := fmt.Sprintf("%s/admin/queue", siteURL)
			h.mailService.SendModerationAlert(adminEmail, user.Username, post.Title, comment.Content, queueLink)
		}
	}
}

// Delete 删除自己的评论（状态置为 deleted，不物理删除，保住审计链）
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	cid := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Where("cid = ?", cid).First(&comment).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	// 只允许删除自己的评论
	if comment.UserID != user.ID {
		c.Status(http.StatusForbidden)
		return
	}

	db.DB.Model(&comment).UpdateColumn("status", models.CommentStatusDeleted)

	// 主动失效详情页缓存
	var post models.Post
	if err := db.DB.First(&post, comment.PostID).Error; err == nil {
		utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))
	}

	// 删除已通过的评论会影响信任统计
	services.GetTrustService().ScheduleRefresh(user.ID)

	c.Status(http.StatusOK)
}

// Report 举报评论
func (h *CommentHandler) Report(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	cid := c.Param("cid")
	reason := c.PostForm("reason")

	if reason == "" {
		reason = "未填写原因"
	}

	var comment models.Comment
	if err := db.DB.Where("cid = ?", cid).First(&comment).Error; err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	report := models.Report{
		UserID:   user.ID,
		ItemType: "comment",
		ItemID:   comment.ID,
		ItemPid:  comment.Cid,
		Reason:   reason,
	}
	db.DB.Create(&report)

	c.Status(http.StatusOK)
}
