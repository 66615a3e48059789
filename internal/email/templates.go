package email

import (
	"fmt"
	"strings"
)

const otpExpireMinutes = 5

// Message agrupa asunto y cuerpos de un correo transaccional.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// BuildRegisterOTPEmail arma el correo de verificación de registro.
func BuildRegisterOTPEmail(appName, supportEmail, code string) Message {
	subject := fmt.Sprintf("%s verification code", appName)

	text := strings.TrimSpace(fmt.Sprintf(`
Hello,

Thanks for signing up at %s.
Your account verification code is:

%s

The code is valid for %d minutes.
If you did not sign up, you can safely ignore this email.

Regards,
%s
`, appName, code, otpExpireMinutes, appName))

	html := otpHTML(appName, supportEmail, "Account verification",
		fmt.Sprintf("Thanks for signing up at <strong>%s</strong>. Use the code below to verify your account:", appName),
		code)

	return Message{Subject: subject, Text: text, HTML: html}
}

// BuildResetPasswordEmail arma el correo con el código de reset de password.
func BuildResetPasswordEmail(appName, supportEmail, code string) Message {
	subject := fmt.Sprintf("%s password reset code", appName)

	text := strings.TrimSpace(fmt.Sprintf(`
Hello,

We received a request to reset the password of your %s account.
Your password reset code is:

%s

The code is valid for %d minutes.
If you did not request a reset, ignore this email and do not share the code.

Regards,
%s
`, appName, code, otpExpireMinutes, appName))

	html := otpHTML(appName, supportEmail, "Password reset",
		fmt.Sprintf("We received a request to <strong>reset the password</strong> of your %s account. Use the code below to continue:", appName),
		code)

	return Message{Subject: subject, Text: text, HTML: html}
}

// BuildAccountActivatedEmail arma la notificación de cuenta activada.
func BuildAccountActivatedEmail(appName, supportEmail, username string) Message {
	name := username
	if strings.TrimSpace(name) == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Your %s account is now active", appName)

	text := strings.TrimSpace(fmt.Sprintf(`
Hello %s,

Your %s account has been verified and is now active.
You can log in and start using every available feature.

If you never signed up, ignore this email or contact us at %s.

Regards,
%s
`, name, appName, supportEmail, appName))

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="margin:0;padding:0;background-color:#f3f4f6;font-family:system-ui,sans-serif;">
    <table width="100%%" cellpadding="0" cellspacing="0" style="padding:24px 0;">
      <tr><td align="center">
        <table cellpadding="0" cellspacing="0" style="max-width:480px;background-color:#ffffff;border-radius:12px;border:1px solid #e5e7eb;">
          <tr>
            <td style="padding:20px 24px;background-color:#111827;color:#f9fafb;">
              <div style="font-size:14px;text-transform:uppercase;opacity:0.8;">Account activated</div>
              <div style="font-size:20px;font-weight:600;margin-top:4px;">%s</div>
            </td>
          </tr>
          <tr>
            <td style="padding:24px;color:#111827;font-size:15px;line-height:1.6;">
              <p style="margin:0 0 12px 0;">Hello %s,</p>
              <p style="margin:0;">Your <strong>%s</strong> account has been verified and is now active. You can log in and start using every available feature.</p>
            </td>
          </tr>
          <tr>
            <td style="padding:16px 24px;border-top:1px solid #e5e7eb;color:#9ca3af;font-size:11px;text-align:center;">
              Need help? Contact <a href="mailto:%s" style="color:#4b5563;">%s</a>.
            </td>
          </tr>
        </table>
      </td></tr>
    </table>
  </body>
</html>`, appName, name, appName, supportEmail, supportEmail)

	return Message{Subject: subject, Text: text, HTML: html}
}

func otpHTML(appName, supportEmail, heading, intro, code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="margin:0;padding:0;background-color:#f3f4f6;font-family:system-ui,sans-serif;">
    <table width="100%%" cellpadding="0" cellspacing="0" style="padding:24px 0;">
      <tr><td align="center">
        <table cellpadding="0" cellspacing="0" style="max-width:480px;background-color:#ffffff;border-radius:12px;border:1px solid #e5e7eb;">
          <tr>
            <td style="padding:20px 24px;background-color:#111827;color:#f9fafb;">
              <div style="font-size:14px;text-transform:uppercase;opacity:0.8;">%s</div>
              <div style="font-size:20px;font-weight:600;margin-top:4px;">%s</div>
            </td>
          </tr>
          <tr>
            <td style="padding:24px 24px 8px 24px;color:#111827;font-size:15px;line-height:1.6;">
              <p style="margin:0 0 12px 0;">Hello,</p>
              <p style="margin:0 0 16px 0;">%s</p>
            </td>
          </tr>
          <tr>
            <td align="center" style="padding:8px 24px 20px 24px;">
              <div style="display:inline-block;padding:12px 24px;border-radius:999px;background-color:#111827;color:#f9fafb;font-size:24px;letter-spacing:0.35em;font-weight:600;">%s</div>
              <p style="margin:16px 0 0 0;font-size:13px;color:#6b7280;">The code is valid for <strong>%d minutes</strong>.</p>
            </td>
          </tr>
          <tr>
            <td style="padding:16px 24px;border-top:1px solid #e5e7eb;color:#9ca3af;font-size:11px;text-align:center;">
              Never share this code with anyone. Need help? Contact <a href="mailto:%s" style="color:#4b5563;">%s</a>.
            </td>
          </tr>
        </table>
      </td></tr>
    </table>
  </body>
</html>`, heading, appName, intro, code, otpExpireMinutes, supportEmail, supportEmail)
}
