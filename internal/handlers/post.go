package handlers

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"time"

	"moke/internal/db"
	"moke/internal/middleware"
	"moke/internal/models"
	"moke/internal/moderation"
	"moke/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// fillCommentCounts 批量填充帖子的评论数量（只统计已通过的）
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type CountResult struct {
		PostID uint
		Count  int
	}
	var results []CountResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ? AND status = ?", postIDs, models.CommentStatusApproved).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

// CommentView 评论树的渲染形态，内容已过 markdown + 清洗
type CommentView struct {
	ID           uint
	Cid          string
	AuthorID     uint
	AuthorName   string
	AuthorAvatar string
	ContentHTML  template.HTML
	IsPinned     bool
	CreatedAt    time.Time
	Children     []*CommentView
}

// cloneRenderData 浅拷贝共享缓存的渲染数据。缓存里的 map 被所有请求共享，
// 注入随请求变化的字段前必须先复制，直接写会并发写同一个 map
func cloneRenderData(shared gin.H) gin.H {
	out := make(gin.H, len(shared)+1)
	for k, v := range shared {
		out[k] = v
	}
	return out
}

// buildCommentViews 把核心树节点转成渲染视图，cidMap 用于补回短 ID
func buildCommentViews(nodes []*moderation.TreeNode, cidMap map[uint]string) []*CommentView {
	views := make([]*CommentView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, &CommentView{
			ID:           n.ID,
			Cid:          cidMap[n.ID],
			AuthorID:     n.AuthorID,
			AuthorName:   n.AuthorName,
			AuthorAvatar: n.AuthorAvatar,
			ContentHTML:  utils.RenderMarkdown(n.Content),
			IsPinned:     n.IsPinned,
			CreatedAt:    n.CreatedAt,
			Children:     buildCommentViews(n.Children, cidMap),
		})
	}
	return views
}

func (h *PostHandler) List(c *gin.Context) {
	// 分页参数
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	cacheKey := fmt.Sprintf("post:list:page:%d", page)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			Render(c, http.StatusOK, "post/list.html", hData)
			return
		}
	}

	perPage := 20
	offset := (page - 1) * perPage

	// 查询总数
	var total int64
	db.DB.Model(&models.Post{}).Where("published = ?", true).Count(&total)

	// 计算总页数
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	db.DB.Preload("User").
		Where("published = ?", true).
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset).
		Find(&posts)

	fillCommentCounts(posts)

	renderData := gin.H{
		"Posts":       posts,
		"Title":       "墨客",
		"CurrentPage": page,
		"TotalPages":  totalPages,
	}

	// 写入缓存，有效期 1 分钟
	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "post/list.html", renderData)
}

func (h *PostHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")

	// 获取当前用户 ID 用于实时状态查询
	userID := uint(0)
	if user, exists := c.Get(middleware.CheckUserKey); exists && user != nil {
		userID = user.(*models.User).ID
	}

	// 共享缓存：文章正文 + 已通过的评论树，不含用户私有数据
	cacheKey := fmt.Sprintf("post:detail:shared:%s", pid)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			data := cloneRenderData(hData)

			// 即使是缓存，也要增加浏览量
			if postData, ok := hData["Post"].(models.Post); ok {
				db.DB.Model(&models.Post{}).Where("id = ?", postData.ID).UpdateColumn("views", gorm.Expr("views + 1"))

				// 实时注入当前用户自己的待审评论，只写副本
				data["PendingComments"] = h.loadOwnPendingComments(postData.ID, userID)
			}

			Render(c, http.StatusOK, "post/detail.html", data)
			return
		}
	}

	var post models.Post
	if err := db.DB.Preload("User").Where("pid = ?", pid).First(&post).Error; err != nil {
		Render(c, http.StatusNotFound, "error.html", gin.H{"Error": "文章不存在"})
		return
	}
	if !post.Published {
		Render(c, http.StatusNotFound, "error.html", gin.H{"Error": "文章不存在"})
		return
	}

	// 增加浏览量
	db.DB.Model(&post).UpdateColumn("views", post.Views+1)
	post.Views++

	// 加载已通过的评论并重建成树
	var comments []models.Comment
	db.DB.Preload("User").
		Where("post_id = ? AND status = ?", post.ID, models.CommentStatusApproved).
		Order("created_at ASC").
		Find(&comments)

	treeInput := make([]moderation.TreeComment, len(comments))
	cidMap := make(map[uint]string, len(comments))
	for i, com := range comments {
		treeInput[i] = moderation.TreeComment{
			ID:           com.ID,
			ParentID:     com.ParentID,
			Status:       moderation.Status(com.Status),
			Content:      com.Content,
			AuthorID:     com.UserID,
			AuthorName:   com.User.Username,
			AuthorAvatar: com.User.Avatar,
			IsPinned:     com.IsPinned,
			PinnedAt:     com.PinnedAt,
			CreatedAt:    com.CreatedAt,
		}
		cidMap[com.ID] = com.Cid
	}

	tree := moderation.BuildCommentTree(treeInput)
	moderation.SortPinnedFirst(tree)
	commentViews := buildCommentViews(tree, cidMap)

	postContentHTML := utils.RenderMarkdown(post.Content)

	renderData := gin.H{
		"Post":         post,
		"PostContent":  postContentHTML,
		"Comments":     commentViews,
		"CommentCount": moderation.CountTreeComments(tree),
		"Title":        post.Title,
		"Author":       post.User.Username,
	}

	// 写入共享缓存，有效期 5 分钟。入缓存后 renderData 就是共享的，不能再写
	utils.GetCache().Set(cacheKey, renderData, 5*time.Minute)

	// 待审评论随请求变化，注入副本，不进缓存
	data := cloneRenderData(renderData)
	data["PendingComments"] = h.loadOwnPendingComments(post.ID, userID)

	Render(c, http.StatusOK, "post/detail.html", data)
}

// loadOwnPendingComments 取当前用户在该文章下等待审核的评论，只有作者自己可见
func (h *PostHandler) loadOwnPendingComments(postID, userID uint) []models.Comment {
	if userID == 0 {
		return nil
	}
	var pending []models.Comment
	db.DB.Preload("User").
		Where("post_id = ? AND user_id = ? AND status = ?", postID, userID, models.CommentStatusPending).
		Order("created_at ASC").
		Find(&pending)
	return pending
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/create.html", gin.H{
		"Title": "写文章",
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	title := c.PostForm("title")
	content := c.PostForm("content")
	published := c.PostForm("published") != "0"

	if title == "" {
		Render(c, http.StatusBadRequest, "post/create.html", gin.H{"Error": "标题不能为空"})
		return
	}

	post := models.Post{
		Pid:       utils.RandStringBytesMaskImpr(8),
		UserID:    user.ID,
		Title:     title,
		Content:   content, // 存 markdown 原文，展示时渲染
		Published: published,
	}

	if err := db.DB.Create(&post).Error; err != nil {
		Render(c, http.StatusInternalServerError, "post/create.html", gin.H{"Error": "发布失败"})
		return
	}

	// 列表页第一页失效
	utils.GetCache().Delete("post:list:page:1")

	c.Redirect(http.StatusFound, "/p/"+post.Pid)
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		Render(c, http.StatusNotFound, "error.html", gin.H{"Error": "文章不存在"})
		return
	}

	Render(c, http.StatusOK, "post/edit.html", gin.H{
		"Title": "编辑文章",
		"Post":  post,
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		Render(c, http.StatusNotFound, "error.html", gin.H{"Error": "文章不存在"})
		return
	}

	title := c.PostForm("title")
	content := c.PostForm("content")
	published := c.PostForm("published") != "0"

	if title == "" {
		Render(c, http.StatusBadRequest, "post/edit.html", gin.H{"Error": "标题不能为空", "Post": post})
		return
	}

	post.Title = title
	post.Content = content
	post.Published = published

	if err := db.DB.Save(&post).Error; err != nil {
		Render(c, http.StatusInternalServerError, "post/edit.html", gin.H{"Error": "保存失败", "Post": post})
		return
	}

	// 主动失效详情页和列表页缓存
	utils.GetCache().Delete(fmt.Sprintf("post:detail:shared:%s", post.Pid))
	utils.GetCache().Delete("post:list:page:1")

	c.Redirect(http.StatusFound, "/p/"+pid)
}
