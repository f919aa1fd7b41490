// Package inbox exposes the notification inbox over HTTP.
//
// Endpoints, all scoped to the authenticated user:
//
//	GET  /            list notifications, newest first (limit, offset, unread, category filters)
//	GET  /unread      unread count
//	POST /{id}/read   mark one notification as read (idempotent)
//	GET  /stream      live notifications over Server-Sent Events
//
// The router expects an upstream middleware to put the authenticated user ID
// in the request context via WithIdentity; IdentityMiddleware adapts any
// resolver function into one. Mount it like any chi subrouter:
//
//	svc := inbox.NewService(notifications.NewInbox(storage), hub)
//	r.Route("/notifications", func(r chi.Router) {
//		r.Use(inbox.IdentityMiddleware(resolveSession))
//		r.Mount("/", svc.Router())
//	})
package inbox
