package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("⚠️ MailService disabled: Missing SMTP environment variables.")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Moke 墨客 <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		err := smtp.SendMail(addr, auth, s.From, to, msg)
		if err != nil {
			log.Printf("❌ Failed to send email to %v: %v", to, err)
		} else {
			log.Printf("✅ Email sent to %v: %s", to, subject)
		}
	}()
}

func (s *MailService) parseTemplate(templateName string, data interface{}) (string, error) {
	path := filepath.Join("web", "templates", "email", templateName)
	t, err := template.ParseFiles(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}

// SendCommentNotification 评论被回复后给原评论作者发邮件，只在回复已过审时发
func (s *MailService) SendCommentNotification(email, activeUser, articleTitle, replyContent, originalContent, postLink string) {
	data := map[string]string{
		"ActiveUser":      activeUser,
		"ArticleTitle":    articleTitle,
		"ReplyContent":    replyContent,
		"OriginalContent": originalContent,
		"PostLink":        postLink,
	}
	body, err := s.parseTemplate("notification.html", data)
	if err != nil {
		log.Printf("Error rendering notification email: %v", err)
		return
	}
	s.sendAsync([]string{email}, "💬 [新回响] "+activeUser+" 回复了你在《"+articleTitle+"》下的评论", body)
}

// SendModerationAlert 有评论进入待审队列时提醒管理员
func (s *MailService) SendModerationAlert(email, authorName, articleTitle, content, queueLink string) {
	data := map[string]string{
		"AuthorName":   authorName,
		"ArticleTitle": articleTitle,
		"Content":      content,
		"QueueLink":    queueLink,
	}
	body, err := s.parseTemplate("moderation_alert.html", data)
	if err != nil {
		log.Printf("Error rendering moderation alert email: %v", err)
		return
	}
	s.sendAsync([]string{email}, "🔍 [待审核] "+authorName+" 在《"+articleTitle+"》下的评论需要人工审核", body)
}
