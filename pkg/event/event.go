package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what happened in the domain.
type Kind string

const (
	KindUserRegistered       Kind = "user.registered"
	KindEnrollmentCreated    Kind = "enrollment.created"
	KindCourseSubmitted      Kind = "course.submitted"
	KindCourseStatusChanged  Kind = "course.status_changed"
	KindLessonReleased       Kind = "lesson.released"
	KindQuizAttemptRecorded  Kind = "quiz.attempt_recorded"
	KindPaymentStatusChanged Kind = "payment.status_changed"
	KindCourseCompleted      Kind = "course.completed"
	KindCertificateIssued    Kind = "certificate.issued"
)

// Event is an immutable description of a committed domain state change.
// Exactly one payload field is set, matching the Kind. Events are consumed
// once by the composer and are not persisted.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`

	User        *User        `json:"user,omitempty"`
	Enrollment  *Enrollment  `json:"enrollment,omitempty"`
	Course      *Course      `json:"course,omitempty"`
	Lesson      *Lesson      `json:"lesson,omitempty"`
	QuizAttempt *QuizAttempt `json:"quiz_attempt,omitempty"`
	Payment     *Payment     `json:"payment,omitempty"`
	Certificate *Certificate `json:"certificate,omitempty"`

	// OldStatus and NewStatus are set for status-change kinds only. The
	// emitter guarantees OldStatus != NewStatus; the composer never
	// re-derives transitions.
	OldStatus string `json:"old_status,omitempty"`
	NewStatus string `json:"new_status,omitempty"`
}

func newEvent(kind Kind, now time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Kind:       kind,
		OccurredAt: now,
	}
}

// NewUserRegistered describes a newly created account.
func NewUserRegistered(u User, now time.Time) Event {
	e := newEvent(KindUserRegistered, now)
	e.User = &u
	return e
}

// NewEnrollmentCreated describes a student enrolling in a course.
func NewEnrollmentCreated(enr Enrollment, now time.Time) Event {
	e := newEvent(KindEnrollmentCreated, now)
	e.Enrollment = &enr
	return e
}

// NewCourseSubmitted describes a course created in pending state, awaiting
// moderation.
func NewCourseSubmitted(c Course, now time.Time) Event {
	e := newEvent(KindCourseSubmitted, now)
	e.Course = &c
	return e
}

// NewCourseStatusChanged describes a genuine course status transition.
func NewCourseStatusChanged(c Course, old, new CourseStatus, now time.Time) Event {
	e := newEvent(KindCourseStatusChanged, now)
	e.Course = &c
	e.OldStatus = string(old)
	e.NewStatus = string(new)
	return e
}

// NewLessonReleased describes a lesson whose release date has just passed.
func NewLessonReleased(l Lesson, now time.Time) Event {
	e := newEvent(KindLessonReleased, now)
	e.Lesson = &l
	return e
}

// NewQuizAttemptRecorded describes a freshly recorded quiz attempt.
func NewQuizAttemptRecorded(a QuizAttempt, now time.Time) Event {
	e := newEvent(KindQuizAttemptRecorded, now)
	e.QuizAttempt = &a
	return e
}

// NewPaymentStatusChanged describes a genuine payment status transition.
func NewPaymentStatusChanged(p Payment, old, new PaymentStatus, now time.Time) Event {
	e := newEvent(KindPaymentStatusChanged, now)
	e.Payment = &p
	e.OldStatus = string(old)
	e.NewStatus = string(new)
	return e
}

// NewCourseCompleted describes an enrollment transitioning to completed.
func NewCourseCompleted(enr Enrollment, now time.Time) Event {
	e := newEvent(KindCourseCompleted, now)
	e.Enrollment = &enr
	return e
}

// NewCertificateIssued describes a completion certificate issued to a student.
func NewCertificateIssued(c Certificate, now time.Time) Event {
	e := newEvent(KindCertificateIssued, now)
	e.Certificate = &c
	return e
}

// Validate checks that the event carries the payload its kind requires.
// Malformed events are rejected before any delivery is attempted. A
// same-status change is not malformed: the composer treats it as a
// non-transition and produces nothing for it.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	}

	switch e.Kind {
	case KindUserRegistered:
		if e.User == nil || e.User.ID == "" {
			return fmt.Errorf("%w: %s requires a user snapshot", ErrInvalidEvent, e.Kind)
		}
	case KindEnrollmentCreated, KindCourseCompleted:
		if e.Enrollment == nil || e.Enrollment.Student.ID == "" || e.Enrollment.Course.ID == "" {
			return fmt.Errorf("%w: %s requires an enrollment snapshot", ErrInvalidEvent, e.Kind)
		}
	case KindCourseSubmitted:
		if e.Course == nil || e.Course.ID == "" {
			return fmt.Errorf("%w: %s requires a course snapshot", ErrInvalidEvent, e.Kind)
		}
	case KindCourseStatusChanged:
		if e.Course == nil || e.Course.ID == "" {
			return fmt.Errorf("%w: %s requires a course snapshot", ErrInvalidEvent, e.Kind)
		}
	case KindLessonReleased:
		if e.Lesson == nil || e.Lesson.ID == "" || e.Lesson.Course.ID == "" {
			return fmt.Errorf("%w: %s requires a lesson snapshot", ErrInvalidEvent, e.Kind)
		}
	case KindQuizAttemptRecorded:
		if e.QuizAttempt == nil || e.QuizAttempt.User.ID == "" {
			return fmt.Errorf("%w: %s requires a quiz attempt snapshot", ErrInvalidEvent, e.Kind)
		}
	case KindPaymentStatusChanged:
		if e.Payment == nil || e.Payment.User.ID == "" {
			return fmt.Errorf("%w: %s requires a payment snapshot", ErrInvalidEvent, e.Kind)
		}
	case KindCertificateIssued:
		if e.Certificate == nil || e.Certificate.User.ID == "" {
			return fmt.Errorf("%w: %s requires a certificate snapshot", ErrInvalidEvent, e.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}

	return nil
}
