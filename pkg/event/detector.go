package event

import "time"

// Detector derives domain events from old/new entity snapshots. It is the one
// place where transition detection happens: callers pass the state they just
// persisted together with the previous state, and the detector decides which
// events, if any, that save represents. Re-saving an entity without changing
// a tracked field yields no events, so an idempotent re-save never re-fires
// a notification.
//
// Callers must invoke the detector only after the underlying mutation has
// durably committed, and exactly once per commit.
type Detector struct {
	now func() time.Time
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithClock overrides the detector's time source. Used in tests.
func WithClock(now func() time.Time) DetectorOption {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDetector creates a transition detector.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// UserSaved reports events for a user save. old is nil on creation.
func (d *Detector) UserSaved(old *User, user User) []Event {
	if old != nil {
		return nil
	}
	return []Event{NewUserRegistered(user, d.now())}
}

// CourseSaved reports events for a course save. old is nil on creation.
// A course created in pending state is a submission; a later change of the
// status field is a status transition.
func (d *Detector) CourseSaved(old *Course, course Course) []Event {
	if old == nil {
		if course.Status == CoursePending {
			return []Event{NewCourseSubmitted(course, d.now())}
		}
		return nil
	}
	if old.Status == course.Status {
		return nil
	}
	return []Event{NewCourseStatusChanged(course, old.Status, course.Status, d.now())}
}

// EnrollmentSaved reports events for an enrollment save. old is nil on
// creation. Marking an existing enrollment completed fires CourseCompleted
// once, on the false->true transition only.
func (d *Detector) EnrollmentSaved(old *Enrollment, enr Enrollment) []Event {
	if old == nil {
		events := []Event{NewEnrollmentCreated(enr, d.now())}
		if enr.Completed {
			// Created already-completed: both facts are new.
			events = append(events, NewCourseCompleted(enr, d.now()))
		}
		return events
	}
	if !old.Completed && enr.Completed {
		return []Event{NewCourseCompleted(enr, d.now())}
	}
	return nil
}

// LessonSaved reports events for a lesson save. old is nil on creation.
// The release event fires when an update moves the release date into the
// past, not on creation and not on every save of an already-released lesson.
func (d *Detector) LessonSaved(old *Lesson, lesson Lesson) []Event {
	if old == nil {
		return nil
	}
	now := d.now()
	if old.Released(now) || !lesson.Released(now) {
		return nil
	}
	return []Event{NewLessonReleased(lesson, now)}
}

// QuizAttemptRecorded reports the event for a newly recorded attempt.
// Attempts are append-only, so there is no old snapshot to diff.
func (d *Detector) QuizAttemptRecorded(attempt QuizAttempt) []Event {
	return []Event{NewQuizAttemptRecorded(attempt, d.now())}
}

// PaymentSaved reports events for a payment save. old is nil on creation.
// Only a genuine transition into a different status fires; in particular a
// webhook replay that re-saves a paid payment as paid stays silent.
func (d *Detector) PaymentSaved(old *Payment, payment Payment) []Event {
	var oldStatus PaymentStatus
	if old != nil {
		oldStatus = old.Status
	} else {
		oldStatus = PaymentPending
	}
	if oldStatus == payment.Status {
		return nil
	}
	return []Event{NewPaymentStatusChanged(payment, oldStatus, payment.Status, d.now())}
}

// CertificateIssued reports the event for a newly issued certificate.
func (d *Detector) CertificateIssued(cert Certificate) []Event {
	return []Event{NewCertificateIssued(cert, d.now())}
}
