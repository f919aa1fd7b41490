// Package email sends localized transactional emails for the notification
// pipeline.
//
// The package provides an EmailSender interface with two implementations:
// a Postmark-backed client for production and a filesystem DevSender that
// writes rendered emails to a local directory during development.
//
// # Sending
//
//	client, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//		return err
//	}
//
//	err = client.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "student@example.com",
//		Subject:  "Enrolled in Hausa 101",
//		BodyHTML: body,
//		Tag:      "enrollment",
//	})
//
// # Templates
//
// Renderer renders the embedded HTML template set with localized subject
// lines from templates/catalog.yaml. Recipient language preferences are
// matched against the catalog's declared languages; unknown languages fall
// back to the first declared language.
//
//	renderer := email.MustNewRenderer()
//	subject, body, err := renderer.Render(email.TemplateEnrollment, "ha", map[string]string{
//		"user_name":    "Aisha",
//		"course_title": "Hausa 101",
//		"link":         "https://elearn.example.com/courses/hausa-101",
//	})
//
// Template data is a flat string map so the same values can feed both the
// subject line and the HTML body.
package email
