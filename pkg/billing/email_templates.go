package billing

import (
	"fmt"
	"html/template"
)

// buildCreditsPurchasedEmail returns the receipt for a credit pack purchase.
func buildCreditsPurchasedEmail(userName, pack string, credits, balance int, baseURL string) (subject, html, plainText string) {
	subject = fmt.Sprintf("%d credits added to your EasyProspect account", credits)

	html = fmt.Sprintf(`
		<html>
		<body>
			<h2>Payment confirmed</h2>
			<p>Hi %s,</p>
			<p>Your <strong>%s</strong> pack was paid and <strong>%d credits</strong> were added to your account.</p>
			<p>Your balance is now <strong>%d credits</strong>. One credit buys one company contact.</p>
			<p><a href="%s/explorar" style="background-color: #3b82f6; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Find companies</a></p>
			<p>Thanks,<br>The EasyProspect Team</p>
		</body>
		</html>
	`, template.HTMLEscapeString(userName), template.HTMLEscapeString(pack), credits, balance, baseURL)

	plainText = fmt.Sprintf(`Hi %s,

Your %s pack was paid and %d credits were added to your account.
Your balance is now %d credits. One credit buys one company contact.

Find companies: %s/explorar

Thanks,
The EasyProspect Team
`, userName, pack, credits, balance, baseURL)

	return
}
