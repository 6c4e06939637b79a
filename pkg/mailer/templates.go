package mailer

import "html/template"

// The HTML bodies keep the storefront's brown-on-cream branding. Styling is
// inlined because most mail clients strip <style> blocks.

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;background:#f9f9f9;">
    <div style="background:#5d2b1a;color:#fff;padding:20px;text-align:center;">
      <h1>The Wild Nuts</h1>
      <p>Password Reset Request</p>
    </div>
    <div style="background:#fff;padding:30px;">
      <p>Hello,</p>
      <p>You have requested to reset your password. Please use the following One-Time Password (OTP) to proceed:</p>
      <div style="border:2px dashed #5d2b1a;padding:20px;text-align:center;font-size:32px;font-weight:bold;letter-spacing:5px;color:#5d2b1a;">{{.OTP}}</div>
      <p><strong>This OTP is valid for 10 minutes.</strong></p>
      <p>If you did not request this password reset, please ignore this email and your password will remain unchanged.</p>
      <p>Best regards,<br>The Wild Nuts Team</p>
    </div>
    <p style="text-align:center;font-size:12px;color:#666;">This is an automated email. Please do not reply to this message.</p>
  </div>
</body>
</html>`))

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;background:#f9f9f9;">
    <div style="background:#5d2b1a;color:#fff;padding:20px;text-align:center;">
      <h1>The Wild Nuts</h1>
    </div>
    <div style="background:#fff;padding:30px;">
      <p>Hi {{.Name}},</p>
      <p>Welcome to The Wild Nuts! Your account is ready. Browse our range of premium nuts and dry fruits whenever you are.</p>
      <p>Best regards,<br>The Wild Nuts Team</p>
    </div>
  </div>
</body>
</html>`))

var orderStatusTemplate = template.Must(template.New("order_status").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;background:#f9f9f9;">
    <div style="background:#5d2b1a;color:#fff;padding:20px;text-align:center;">
      <h1>The Wild Nuts</h1>
      <p>Order Update</p>
    </div>
    <div style="background:#fff;padding:30px;">
      <p>Hi {{.Name}},</p>
      <p>Your order <strong>{{.OrderID}}</strong> has a new status:</p>
      <div style="border:2px solid #5d2b1a;padding:15px;text-align:center;font-size:20px;font-weight:bold;color:#5d2b1a;">{{.Status}}</div>
      <p>Thank you for shopping with us.</p>
      <p>Best regards,<br>The Wild Nuts Team</p>
    </div>
  </div>
</body>
</html>`))

var orderCancelledTemplate = template.Must(template.New("order_cancelled").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;background:#f9f9f9;">
    <div style="background:#5d2b1a;color:#fff;padding:20px;text-align:center;">
      <h1>The Wild Nuts</h1>
      <p>Order Cancelled</p>
    </div>
    <div style="background:#fff;padding:30px;">
      <p>Hi {{.Name}},</p>
      <p>Your order <strong>{{.OrderID}}</strong> has been cancelled. If this was unexpected, please contact us and we will sort it out.</p>
      <p>Best regards,<br>The Wild Nuts Team</p>
    </div>
  </div>
</body>
</html>`))

var marketingTemplate = template.Must(template.New("marketing").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;background:#f9f9f9;">
    <div style="background:#5d2b1a;color:#fff;padding:20px;text-align:center;">
      <h1>The Wild Nuts</h1>
    </div>
    <div style="background:#fff;padding:30px;">
      {{.Content}}
    </div>
    <p style="text-align:center;font-size:12px;color:#666;">You are receiving this because you subscribed to The Wild Nuts newsletter.</p>
  </div>
</body>
</html>`))
