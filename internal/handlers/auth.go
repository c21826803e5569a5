package handlers

import (
	"net/http"
	"strings"

	"moke/internal/db"
	"moke/internal/models"
	"moke/internal/services"
	"moke/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	captchaService *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		captchaService: services.NewCaptchaService(),
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Captcha": question})
}

// createUser 创建新用户的通用函数
func (h *AuthHandler) createUser(username, email, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Avatar:   utils.GetRandomEmoji(), // 随机 emoji 头像
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	captchaInput := c.PostForm("captcha")

	// Validate Captcha
	session := sessions.Default(c)
	expectedAnswer, ok := session.Get("captcha_answer").(int)
	if !ok || utils.StringToInt(captchaInput) != expectedAnswer {
		question, answer := h.captchaService.GenerateMathProblem()
		session.Set("captcha_answer", answer)
		session.Save()
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "验证码错误", "Captcha": question})
		return
	}
	// Clear captcha after use
	session.Delete("captcha_answer")
	session.Save()

	// Extract username from email
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		question, answer := h.captchaService.GenerateMathProblem()
		session.Set("captcha_answer", answer)
		session.Save()
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "邮箱格式不正确", "Captcha": question})
		return
	}
	username := parts[0]

	if len(password) < 6 {
		question, answer := h.captchaService.GenerateMathProblem()
		session.Set("captcha_answer", answer)
		session.Save()
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "密码至少6位", "Captcha": question})
		return
	}

	user, err := h.createUser(username, email, password)
	if err != nil {
		question, answer := h.captchaService.GenerateMathProblem()
		session.Set("captcha_answer", answer)
		session.Save()
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "邮箱已注册", "Captcha": question})
		return
	}

	// 注册即登录
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "邮箱或密码错误"})
		return
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "邮箱或密码错误"})
		return
	}

	// 检查用户是否被封禁
	if user.Status == 2 {
		Render(c, http.StatusForbidden, "auth/login.html", gin.H{"Error": "您的账号已被封禁,无法登录。"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// RefreshCaptcha 刷新验证码 (AJAX)
func (h *AuthHandler) RefreshCaptcha(c *gin.Context) {
	question, answer := h.captchaService.GenerateMathProblem()

	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()

	c.JSON(http.StatusOK, gin.H{"captcha": question})
}
