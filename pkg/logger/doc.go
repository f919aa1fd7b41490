// Package logger builds configured slog.Logger instances for the notification
// service, with optional context-driven attribute injection.
//
// # Usage
//
//	log := logger.New(
//		logger.WithProduction("elearn-notify"),
//	)
//	logger.SetAsDefault(log)
//
// Attribute helpers keep log keys consistent across packages:
//
//	log.Info("notification stored",
//		logger.NotificationID(n.ID),
//		logger.UserID(n.UserID),
//	)
package logger
