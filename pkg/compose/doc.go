// Package compose turns domain events into per-recipient notification
// messages.
//
// The Composer implements the platform's recipient table: which users hear
// about which event, with what inbox category, body text, and email
// template. It is deliberately pure. Recipient lists the event cannot carry
// (platform admins, enrolled students of a course) are resolved by the
// caller and passed via Inputs, and the composer performs no I/O of its own,
// which keeps every composition rule unit-testable with plain values.
//
//	composer := compose.New(compose.WithBaseURL("https://elearn.example.com"))
//	msgs, err := composer.Compose(evt, compose.Inputs{Admins: admins})
//
// The composer trusts the event: status-change events are assumed to be
// genuine transitions, detected upstream by event.Detector. Composing an
// already-published course's save, for example, is prevented there, not
// here.
package compose
