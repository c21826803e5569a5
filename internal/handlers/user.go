package handlers

import (
	"net/http"

	"moke/internal/db"
	"moke/internal/models"
	"moke/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile - 用户主页 /u/:id，只展示已通过的评论
func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		Render(c, http.StatusNotFound, "error.html", gin.H{"Error": "用户不存在"})
		return
	}

	levelName, levelIcon := utils.GetTrustLevelName(user.TrustLevel)
	daysSince := utils.GetDaysSinceJoined(user.CreatedAt)

	var comments []models.Comment
	db.DB.Preload("Post").
		Where("user_id = ? AND status = ?", user.ID, models.CommentStatusApproved).
		Order("created_at DESC").
		Limit(50).
		Find(&comments)

	Render(c, http.StatusOK, "user/public.html", gin.H{
		"Title":     user.Username + " 的主页",
		"User":      user,
		"LevelName": levelName,
		"LevelIcon": levelIcon,
		"DaysSince": daysSince,
		"Comments":  comments,
	})
}

// Dashboard - 个人后台概览，能看到自己每条评论的审核状态
func (h *UserHandler) Dashboard(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	// 按状态统计评论
	type StatusCount struct {
		Status string
		Count  int64
	}
	var statusCounts []StatusCount
	db.DB.Model(&models.Comment{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", user.ID).
		Group("status").
		Scan(&statusCounts)

	counts := map[string]int64{}
	for _, sc := range statusCounts {
		counts[sc.Status] = sc.Count
	}

	var comments []models.Comment
	db.DB.Preload("Post").
		Where("user_id = ? AND status <> ?", user.ID, models.CommentStatusDeleted).
		Order("created_at DESC").
		Limit(50).
		Find(&comments)

	levelName, levelIcon := utils.GetTrustLevelName(user.TrustLevel)
	daysSince := utils.GetDaysSinceJoined(user.CreatedAt)

	Render(c, http.StatusOK, "dashboard/overview.html", gin.H{
		"Title":         "个人后台",
		"User":          user,
		"LevelName":     levelName,
		"LevelIcon":     levelIcon,
		"DaysSince":     daysSince,
		"ApprovedCount": counts[models.CommentStatusApproved],
		"PendingCount":  counts[models.CommentStatusPending],
		"RejectedCount": counts[models.CommentStatusRejected],
		"Comments":      comments,
	})
}

// ShowSettings - 显示设置页面
func (h *UserHandler) ShowSettings(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	Render(c, http.StatusOK, "dashboard/settings.html", gin.H{
		"Title":        "设置",
		"User":         user,
		"CommonEmojis": utils.GetCommonEmojis(),
	})
}

// UpdateSettings - 更新设置
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}

	username := c.PostForm("username")
	email := c.PostForm("email")
	avatar := c.PostForm("avatar")
	bio := c.PostForm("bio")
	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")

	updates := make(map[string]interface{})

	if username != "" && username != user.Username {
		updates["username"] = username
	}

	if email != "" && email != user.Email {
		// 检查邮箱是否已被使用
		var existingUser models.User
		if err := db.DB.Where("email = ? AND id != ?", email, user.ID).First(&existingUser).Error; err == nil {
			Render(c, http.StatusBadRequest, "dashboard/settings.html", gin.H{
				"Error":        "该邮箱已被使用",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}
		updates["email"] = email
	}

	if avatar != "" {
		updates["avatar"] = avatar
	}

	if bio != user.Bio {
		updates["bio"] = bio
	}

	// 如果要修改密码
	if oldPassword != "" && newPassword != "" {
		if !utils.CheckPasswordHash(oldPassword, user.Password) {
			Render(c, http.StatusBadRequest, "dashboard/settings.html", gin.H{
				"Error":        "原密码错误",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}

		if len(newPassword) < 6 {
			Render(c, http.StatusBadRequest, "dashboard/settings.html", gin.H{
				"Error":        "新密码至少6位",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}

		hash, err := utils.HashPassword(newPassword)
		if err != nil {
			Render(c, http.StatusInternalServerError, "dashboard/settings.html", gin.H{
				"Error":        "系统错误",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			Render(c, http.StatusInternalServerError, "dashboard/settings.html", gin.H{
				"Error":        "更新失败",
				"User":         user,
				"CommonEmojis": utils.GetCommonEmojis(),
			})
			return
		}
	}

	c.Redirect(http.StatusFound, "/dashboard/settings?success=1")
}
