package util

import (
	"Lattice/internal/api/config"
	"fmt"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

type mailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendVerifyMail 发送邮箱验证邮件，链接携带一次性 token
func SendVerifyMail(email string, token string) error {
	mailCfg := config.Cfg.Mail
	link := fmt.Sprintf("%s/verify-email?token=%s", mailCfg.LinkBase, token)
	return sendMail(email, "【Lattice】验证你的邮箱", fmt.Sprintf("点击链接完成邮箱验证: %s", link))
}

// SendResetPasswordMail 发送密码重置邮件
func SendResetPasswordMail(email string, token string) error {
	mailCfg := config.Cfg.Mail
	link := fmt.Sprintf("%s/reset-password?token=%s", mailCfg.LinkBase, token)
	return sendMail(email, "【Lattice】重置你的密码", fmt.Sprintf("点击链接重置密码: %s", link))
}

func sendMail(to, subject, body string) error {
	mailCfg := config.Cfg.Mail

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Authorization", "Bearer "+mailCfg.ApiKey)

	resp, err := client.R().
		SetBody(&mailPayload{To: to, Subject: subject, Body: body}).
		Post(mailCfg.URL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("mail send failed: %s", resp.Status())
	}

	log.Info("邮件已投递", "to", to, "subject", subject)
	return nil
}
