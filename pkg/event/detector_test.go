package event_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hausasoft/elearn-notify/pkg/event"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newDetector() *event.Detector {
	return event.NewDetector(event.WithClock(func() time.Time { return fixedNow }))
}

func TestUserSaved(t *testing.T) {
	t.Parallel()

	d := newDetector()
	u := event.User{ID: "u1", Email: "u1@example.com", Role: event.RoleStudent}

	events := d.UserSaved(nil, u)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindUserRegistered, events[0].Kind)
	assert.Equal(t, "u1", events[0].User.ID)
	assert.Equal(t, fixedNow, events[0].OccurredAt)

	assert.Empty(t, d.UserSaved(&u, u), "update must not re-fire registration")
}

func TestCourseSaved_Submission(t *testing.T) {
	t.Parallel()

	d := newDetector()
	course := event.Course{ID: "c1", Title: "Go Basics", Status: event.CoursePending}

	events := d.CourseSaved(nil, course)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindCourseSubmitted, events[0].Kind)

	draft := course
	draft.Status = event.CourseDraft
	assert.Empty(t, d.CourseSaved(nil, draft), "draft creation is not a submission")
}

func TestCourseSaved_StatusTransition(t *testing.T) {
	t.Parallel()

	d := newDetector()
	old := event.Course{ID: "c1", Status: event.CoursePending}
	approved := event.Course{ID: "c1", Status: event.CoursePublished}

	events := d.CourseSaved(&old, approved)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindCourseStatusChanged, events[0].Kind)
	assert.Equal(t, string(event.CoursePending), events[0].OldStatus)
	assert.Equal(t, string(event.CoursePublished), events[0].NewStatus)

	// Re-saving a published course must stay silent.
	assert.Empty(t, d.CourseSaved(&approved, approved))
}

func TestEnrollmentSaved(t *testing.T) {
	t.Parallel()

	d := newDetector()
	enr := event.Enrollment{
		ID:      "e1",
		Student: event.User{ID: "s1", Email: "s1@example.com"},
		Course:  event.Course{ID: "c1", Instructor: event.User{ID: "i1"}},
	}

	events := d.EnrollmentSaved(nil, enr)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindEnrollmentCreated, events[0].Kind)

	completed := enr
	completed.Completed = true
	events = d.EnrollmentSaved(&enr, completed)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindCourseCompleted, events[0].Kind)

	// Progress updates on an already completed enrollment stay silent.
	assert.Empty(t, d.EnrollmentSaved(&completed, completed))
}

func TestLessonSaved_ReleaseTransition(t *testing.T) {
	t.Parallel()

	d := newDetector()
	future := fixedNow.Add(24 * time.Hour)
	past := fixedNow.Add(-time.Hour)

	unreleased := event.Lesson{ID: "l1", Title: "Intro", Course: event.Course{ID: "c1"}, ReleaseAt: &future}
	released := unreleased
	released.ReleaseAt = &past

	assert.Empty(t, d.LessonSaved(nil, released), "creation never fires a release")

	events := d.LessonSaved(&unreleased, released)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindLessonReleased, events[0].Kind)

	// Already released: further saves stay silent.
	assert.Empty(t, d.LessonSaved(&released, released))

	// A lesson without a release date is never released.
	noDate := unreleased
	noDate.ReleaseAt = nil
	assert.Empty(t, d.LessonSaved(&unreleased, noDate))
}

func TestPaymentSaved(t *testing.T) {
	t.Parallel()

	d := newDetector()
	pending := event.Payment{ID: "p1", User: event.User{ID: "u1"}, Course: event.Course{ID: "c1"}, Status: event.PaymentPending}
	paid := pending
	paid.Status = event.PaymentPaid

	events := d.PaymentSaved(&pending, paid)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindPaymentStatusChanged, events[0].Kind)
	assert.Equal(t, string(event.PaymentPaid), events[0].NewStatus)

	// Webhook replay: paid -> paid stays silent.
	assert.Empty(t, d.PaymentSaved(&paid, paid))

	// Creation directly in paid state is a transition from the default.
	events = d.PaymentSaved(nil, paid)
	require.Len(t, events, 1)
	assert.Equal(t, string(event.PaymentPending), events[0].OldStatus)

	// Creation in pending state stays silent.
	assert.Empty(t, d.PaymentSaved(nil, pending))
}

func TestQuizAttemptAndCertificate(t *testing.T) {
	t.Parallel()

	d := newDetector()

	attempts := d.QuizAttemptRecorded(event.QuizAttempt{ID: "a1", User: event.User{ID: "u1"}, Score: 80})
	require.Len(t, attempts, 1)
	assert.Equal(t, event.KindQuizAttemptRecorded, attempts[0].Kind)

	certs := d.CertificateIssued(event.Certificate{ID: "cert1", User: event.User{ID: "u1"}, Course: event.Course{ID: "c1"}})
	require.Len(t, certs, 1)
	assert.Equal(t, event.KindCertificateIssued, certs[0].Kind)
}
