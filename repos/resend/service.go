package resend

import (
	"context"
	"fmt"
	"html"

	resend "github.com/resend/resend-go/v2"

	"github.com/nvbf/bingo-hall/pkg/logger"
)

const defaultFrom = "onboarding@resend.dev"

// Service sends account mails through Resend. Without an api key it only logs.
type Service struct {
	send    func(params *resend.SendEmailRequest) error
	from    string
	enabled bool
}

// NewService creates a mail service. An empty key disables delivery.
func NewService(resendKey, from string) *Service {
	if from == "" {
		from = defaultFrom
	}
	s := &Service{from: from}
	if resendKey == "" {
		s.send = func(*resend.SendEmailRequest) error { return nil }
		return s
	}
	client := resend.NewClient(resendKey)
	s.enabled = true
	s.send = func(params *resend.SendEmailRequest) error {
		_, err := client.Emails.Send(params)
		return err
	}
	return s
}

func (s *Service) Enabled() bool {
	return s.enabled
}

// SendCredentials mails a freshly created account its login details.
func (s *Service) SendCredentials(ctx context.Context, c Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.enabled {
		logger.Infof("mail disabled, skipping credentials for %s", c.Email)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{c.Email},
		Subject: "Your bingo account",
		Html:    credentialsTemplate(c),
	}
	if err := s.send(params); err != nil {
		logger.Errorf("Failed to send credentials to %s: %v", c.Email, err)
		return fmt.Errorf("send credentials: %w", err)
	}
	return nil
}

func credentialsTemplate(c Credentials) string {
	login := ""
	if c.LoginURL != "" {
		login = fmt.Sprintf(`<a href="%s" class="button">Log in</a>`, html.EscapeString(c.LoginURL))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            margin: 0;
            padding: 20px;
        }
        .container {
            background-color: #ffffff;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .button {
            display: block;
            width: 200px;
            height: 50px;
            margin: 20px auto;
            background-color: #007BFF;
            color: #ffffff;
            text-align: center;
            line-height: 50px;
            text-decoration: none;
            border-radius: 5px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h2>Hello %s,</h2>
        <p>An account has been created for you.</p>
        <p>Email: <b>%s</b><br>Password: <b>%s</b></p>
        %s
        <p>Please change your password after the first login.</p>
    </div>
</body>
</html>`,
		html.EscapeString(c.Username),
		html.EscapeString(c.Email),
		html.EscapeString(c.Password),
		login,
	)
}
