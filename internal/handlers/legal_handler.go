package handlers

import (
	"github.com/gofiber/fiber/v2"
)

const legalStyle = `<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#2f3b2f}h1{color:#1f4d2b}h2{color:#2f6b3a;margin-top:30px}</style>`

// LegalHandler serves the static privacy and terms pages linked from the
// app stores.
type LegalHandler struct {
	contact string
}

func NewLegalHandler(contact string) *LegalHandler {
	if contact == "" {
		contact = "support@leafwise.app"
	}
	return &LegalHandler{contact: contact}
}

func (h *LegalHandler) page(c *fiber.Ctx, title, body string) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>` + title + ` - Leafwise</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
` + legalStyle + `
</head><body>
<h1>` + title + `</h1>
` + body + `
<h2>Contact</h2>
<p>Questions? Write to ` + h.contact + `.</p>
</body></html>`)
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return h.page(c, "Privacy Policy", `<p>Last updated: March 2024</p>
<h2>What we collect</h2>
<p>Your email address, the profile details you choose to add, the plants in your collection and the care events you log.</p>
<h2>Photos</h2>
<p>Photos you submit for identification or a health check are sent to our AI provider to produce the result. We keep a fingerprint of each photo to avoid analysing the same image twice; the photo itself is not stored.</p>
<h2>Chat</h2>
<p>Questions you ask the plant assistant are stored so the conversation has context. Email addresses, links and phone numbers are masked before a message leaves our servers.</p>
<h2>Payments</h2>
<p>Subscriptions are processed by Stripe. We never see or store your card details.</p>
<h2>Account deletion</h2>
<p>Deleting your account removes your profile, collection, diagnoses, chat history and points in one step.</p>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return h.page(c, "Terms of Service", `<p>Last updated: March 2024</p>
<h2>Acceptance</h2>
<p>By using Leafwise you agree to these terms.</p>
<h2>Advice</h2>
<p>Identifications and diagnoses are produced by an AI model and may be wrong. Do not rely on them to decide whether a plant is safe to eat or to touch.</p>
<h2>Fair use</h2>
<p>Free accounts include a limited number of plants, health checks and chat messages. Abusive messages are rejected.</p>
<h2>Subscriptions</h2>
<p>Premium renews automatically through Stripe until you cancel. Cancelling keeps Premium until the end of the paid period.</p>
<h2>Termination</h2>
<p>We may suspend accounts that abuse the service.</p>`)
}
