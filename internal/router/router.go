package router

import (
	"moke/internal/handlers"
	"moke/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	userHandler := handlers.NewUserHandler()
	notificationHandler := handlers.NewNotificationHandler()
	adminHandler := handlers.NewAdminHandler()

	// 公共路由 (Public Routes)
	r.GET("/", postHandler.List)         // 首页 - 文章列表
	r.GET("/p/:pid", postHandler.Detail) // 文章详情页（含评论树）
	r.GET("/u/:id", userHandler.Profile) // 用户主页

	r.GET("/signup", authHandler.ShowRegister)          // 注册页面
	r.POST("/signup", authHandler.Register)             // 提交注册
	r.GET("/login", authHandler.ShowLogin)              // 登录页面
	r.POST("/login", authHandler.Login)                 // 提交登录
	r.GET("/logout", authHandler.Logout)                // 退出登录
	r.GET("/captcha/refresh", authHandler.RefreshCaptcha) // 刷新验证码

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/p/:pid/comment", commentHandler.Create)        // 发表评论（走审核流水线）
		authorized.DELETE("/comment/:cid", commentHandler.Delete)        // 删除自己的评论
		authorized.POST("/comment/:cid/report", commentHandler.Report)   // 举报评论

		authorized.POST("/notifications/:id/read", notificationHandler.Read)    // 标记单条通知为已读
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)     // 删除单条通知
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll) // 全部通知标记为已读
	}

	// 仪表盘路由 (Dashboard Routes)
	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.AuthRequired())
	{
		dashboard.GET("", userHandler.Dashboard)                   // 仪表盘概览（自己评论的审核状态）
		dashboard.GET("/notifications", notificationHandler.List) // 我的通知列表
		dashboard.GET("/settings", userHandler.ShowSettings)      // 用户设置页面
		dashboard.POST("/settings", userHandler.UpdateSettings)   // 提交用户设置更新
	}

	// 管理后台路由 (Admin Routes)
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/queue", adminHandler.Queue)                     // 待审核评论队列
		admin.POST("/comment/:cid/approve", adminHandler.Approve)   // 人工通过
		admin.POST("/comment/:cid/reject", adminHandler.Reject)     // 人工拒绝
		admin.POST("/comment/:cid/pin", adminHandler.TogglePin)     // 置顶/取消置顶
		admin.DELETE("/comment/:cid", adminHandler.DeleteComment)   // 管理员删除评论
		admin.POST("/user/:id/trust", adminHandler.ToggleTrust)     // 授予/撤销手动信任
		admin.POST("/user/:id/punish", adminHandler.PunishUser)     // 禁言/封禁用户
		admin.GET("/reports", adminHandler.ListReports)             // 举报列表
		admin.POST("/report/:id/handle", adminHandler.HandleReport) // 处理举报
		admin.DELETE("/p/:pid", adminHandler.DeletePost)            // 删除文章

		// 文章由管理员撰写
		admin.GET("/submit", postHandler.ShowCreate)   // 写文章页面
		admin.POST("/submit", postHandler.Create)      // 提交发布文章
		admin.GET("/p/:pid/edit", postHandler.ShowEdit) // 编辑文章页面
		admin.POST("/p/:pid/edit", postHandler.Update) // 提交文章更新
	}
}
