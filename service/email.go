package service

import (
	"fmt"

	"consec/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: &cfg.Email}
}

// SendWelcome 发送员工账号开通通知邮件。服务未启用时静默跳过。
func (s *EmailService) SendWelcome(toEmail, nome string) error {
	if !s.cfg.Enabled {
		return nil
	}

	subject := "【ConSec】Sua conta foi criada"
	body := s.generateWelcomeBody(nome, toEmail)

	return s.sendEmail(toEmail, subject, body)
}

// generateWelcomeBody 生成开通通知邮件内容
func (s *EmailService) generateWelcomeBody(nome, email string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #3498db, #2563eb); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .info-box { background: #eff6ff; border: 2px dashed #2563eb; border-radius: 12px; padding: 20px; margin: 20px 0; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>ConSec</h1>
        </div>
        <div class="content">
            <p>Olá, <strong>%s</strong>!</p>
            <p>Sua conta de funcionário foi criada pelo seu gestor. Use o email abaixo para acessar o sistema com a senha que lhe foi informada:</p>
            <div class="info-box">
                <p><strong>Email:</strong> %s</p>
            </div>
            <p>Recomendamos alterar sua senha após o primeiro acesso.</p>
        </div>
        <div class="footer">
            <p>Este email foi enviado automaticamente, não responda</p>
            <p>© ConSec - Controle de custos</p>
        </div>
    </div>
</body>
</html>
`, nome, email)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
