package compose_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hausasoft/elearn-notify/pkg/compose"
	"github.com/hausasoft/elearn-notify/pkg/email"
	"github.com/hausasoft/elearn-notify/pkg/event"
	"github.com/hausasoft/elearn-notify/pkg/notifications"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

var (
	student = event.User{
		ID:       "user-student",
		Name:     "Aisha Bello",
		Email:    "aisha@example.com",
		Role:     event.RoleStudent,
		Language: "ha",
	}
	instructor = event.User{
		ID:    "user-instructor",
		Name:  "Musa Ibrahim",
		Email: "musa@example.com",
		Role:  event.RoleInstructor,
	}
	admin = event.User{
		ID:    "user-admin",
		Name:  "Admin",
		Email: "admin@example.com",
		Role:  event.RoleAdmin,
	}
	course = event.Course{
		ID:         "course-1",
		Title:      "Hausa 101",
		Status:     event.CoursePublished,
		Instructor: instructor,
	}
)

func TestComposeUserRegistered(t *testing.T) {
	t.Parallel()

	c := compose.New()
	msgs, err := c.Compose(event.NewUserRegistered(student, fixedNow), compose.Inputs{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	msg := msgs[0]
	assert.Equal(t, student.ID, msg.RecipientID)
	assert.Equal(t, notifications.CategoryInfo, msg.Category)
	assert.Equal(t, "Welcome to Hausasoft E-Learn!", msg.Body)
	assert.Equal(t, "ha", msg.Language)
	assert.Equal(t, fixedNow, msg.CreatedAt)
	require.NotNil(t, msg.Email)
	assert.Equal(t, email.TemplateWelcome, msg.Email.Template)
	assert.Equal(t, "Aisha Bello", msg.Email.Data["user_name"])
}

func TestComposeEnrollmentCreated(t *testing.T) {
	t.Parallel()

	enr := event.Enrollment{ID: "enr-1", Student: student, Course: course}
	c := compose.New()

	msgs, err := c.Compose(event.NewEnrollmentCreated(enr, fixedNow), compose.Inputs{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	studentMsg, instructorMsg := msgs[0], msgs[1]

	assert.Equal(t, student.ID, studentMsg.RecipientID)
	assert.Equal(t, notifications.CategoryInfo, studentMsg.Category)
	assert.Equal(t, "You have been enrolled in Hausa 101", studentMsg.Body)
	require.NotNil(t, studentMsg.Email)
	assert.Equal(t, email.TemplateEnrollment, studentMsg.Email.Template)

	assert.Equal(t, instructor.ID, instructorMsg.RecipientID)
	assert.Equal(t, notifications.CategoryInfo, instructorMsg.Category)
	assert.Contains(t, instructorMsg.Body, "Aisha Bello")
	require.NotNil(t, instructorMsg.Email)
	assert.Equal(t, email.TemplateStudentEnrolledInstructor, instructorMsg.Email.Template)

	// Distinct templates per recipient, same event.
	assert.NotEqual(t, studentMsg.Email.Template, instructorMsg.Email.Template)
}

func TestComposeCourseSubmitted(t *testing.T) {
	t.Parallel()

	pending := course
	pending.Status = event.CoursePending
	c := compose.New()

	msgs, err := c.Compose(event.NewCourseSubmitted(pending, fixedNow),
		compose.Inputs{Admins: []event.User{admin}})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	adminMsg := msgs[0]
	assert.Equal(t, admin.ID, adminMsg.RecipientID)
	require.NotNil(t, adminMsg.Email)
	assert.Equal(t, email.TemplateNewCourseSubmitted, adminMsg.Email.Template)
	assert.Equal(t, "Musa Ibrahim", adminMsg.Email.Data["instructor_name"])

	instructorMsg := msgs[1]
	assert.Equal(t, instructor.ID, instructorMsg.RecipientID)
	assert.Nil(t, instructorMsg.Email, "instructor submitted the course themselves, no email")
}

func TestComposeCourseStatusChanged(t *testing.T) {
	t.Parallel()

	c := compose.New()

	t.Run("published", func(t *testing.T) {
		t.Parallel()

		evt := event.NewCourseStatusChanged(course, event.CoursePending, event.CoursePublished, fixedNow)
		msgs, err := c.Compose(evt, compose.Inputs{})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, instructor.ID, msgs[0].RecipientID)
		assert.Equal(t, notifications.CategorySuccess, msgs[0].Category)
		assert.Equal(t, `Your course "Hausa 101" has been approved!`, msgs[0].Body)
		require.NotNil(t, msgs[0].Email)
		assert.Equal(t, email.TemplateCourseApproval, msgs[0].Email.Template)
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		evt := event.NewCourseStatusChanged(course, event.CoursePending, event.CourseRejected, fixedNow)
		msgs, err := c.Compose(evt, compose.Inputs{})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, notifications.CategoryError, msgs[0].Category)
		assert.Equal(t, email.TemplateCourseRejection, msgs[0].Email.Template)
	})

	t.Run("re-save of a published course composes nothing", func(t *testing.T) {
		t.Parallel()

		evt := event.NewCourseStatusChanged(course, event.CoursePublished, event.CoursePublished, fixedNow)
		msgs, err := c.Compose(evt, compose.Inputs{})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("transition to pending notifies nobody", func(t *testing.T) {
		t.Parallel()

		evt := event.NewCourseStatusChanged(course, event.CourseDraft, event.CoursePending, fixedNow)
		msgs, err := c.Compose(evt, compose.Inputs{})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestComposeLessonReleased(t *testing.T) {
	t.Parallel()

	other := event.User{ID: "user-other", Name: "Binta", Email: "binta@example.com", Role: event.RoleStudent}
	release := fixedNow.Add(-time.Hour)
	lesson := event.Lesson{ID: "lesson-1", Title: "Greetings", Course: course, ReleaseAt: &release}

	c := compose.New()
	msgs, err := c.Compose(event.NewLessonReleased(lesson, fixedNow),
		compose.Inputs{EnrolledStudents: []event.User{student, other}})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	for i, u := range []event.User{student, other} {
		assert.Equal(t, u.ID, msgs[i].RecipientID)
		assert.Equal(t, notifications.CategoryInfo, msgs[i].Category)
		assert.Equal(t, `New lesson "Greetings" has been released in Hausa 101`, msgs[i].Body)
		require.NotNil(t, msgs[i].Email)
		assert.Equal(t, email.TemplateLessonRelease, msgs[i].Email.Template)
	}

	t.Run("no enrolled students yields no messages", func(t *testing.T) {
		t.Parallel()

		msgs, err := c.Compose(event.NewLessonReleased(lesson, fixedNow), compose.Inputs{})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestComposeQuizAttemptRecorded(t *testing.T) {
	t.Parallel()

	attempt := event.QuizAttempt{
		ID:          "attempt-1",
		User:        student,
		LessonTitle: "Greetings",
		Course:      course,
		Score:       87.5,
	}

	c := compose.New()
	msgs, err := c.Compose(event.NewQuizAttemptRecorded(attempt, fixedNow), compose.Inputs{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, student.ID, msgs[0].RecipientID)
	assert.Equal(t, "Quiz results for Greetings in Hausa 101 are out!", msgs[0].Body)
	require.NotNil(t, msgs[0].Email)
	assert.Equal(t, email.TemplateQuizResult, msgs[0].Email.Template)
	assert.Equal(t, "87.5", msgs[0].Email.Data["score"])
}

func TestComposePaymentStatusChanged(t *testing.T) {
	t.Parallel()

	payment := event.Payment{
		ID:     "payment-1",
		User:   student,
		Course: course,
		Amount: "4500.00 NGN",
		Status: event.PaymentPaid,
	}
	c := compose.New()

	t.Run("paid", func(t *testing.T) {
		t.Parallel()

		evt := event.NewPaymentStatusChanged(payment, event.PaymentPending, event.PaymentPaid, fixedNow)
		msgs, err := c.Compose(evt, compose.Inputs{})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, student.ID, msgs[0].RecipientID)
		assert.Equal(t, notifications.CategoryInfo, msgs[0].Category)
		assert.Equal(t, "Payment received for Hausa 101", msgs[0].Body)
		require.NotNil(t, msgs[0].Email)
		assert.Equal(t, email.TemplatePaymentConfirmation, msgs[0].Email.Template)
		assert.Equal(t, "4500.00 NGN", msgs[0].Email.Data["amount"])
	})

	t.Run("failed notifies nobody", func(t *testing.T) {
		t.Parallel()

		evt := event.NewPaymentStatusChanged(payment, event.PaymentPending, event.PaymentFailed, fixedNow)
		msgs, err := c.Compose(evt, compose.Inputs{})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("re-save of a paid payment composes nothing", func(t *testing.T) {
		t.Parallel()

		evt := event.NewPaymentStatusChanged(payment, event.PaymentPaid, event.PaymentPaid, fixedNow)
		msgs, err := c.Compose(evt, compose.Inputs{})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestComposeCourseCompleted(t *testing.T) {
	t.Parallel()

	enr := event.Enrollment{ID: "enr-1", Student: student, Course: course, Completed: true}
	c := compose.New()

	msgs, err := c.Compose(event.NewCourseCompleted(enr, fixedNow), compose.Inputs{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, instructor.ID, msgs[0].RecipientID)
	assert.Equal(t, "Student Aisha Bello has completed Hausa 101", msgs[0].Body)
	require.NotNil(t, msgs[0].Email)
	assert.Equal(t, email.TemplateCourseCompletedInstructor, msgs[0].Email.Template)
}

func TestComposeCertificateIssued(t *testing.T) {
	t.Parallel()

	cert := event.Certificate{ID: "cert-1", User: student, Course: course, IssuedAt: fixedNow}
	c := compose.New()

	msgs, err := c.Compose(event.NewCertificateIssued(cert, fixedNow), compose.Inputs{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, student.ID, msgs[0].RecipientID)
	assert.Equal(t, notifications.CategoryCertificate, msgs[0].Category)
	assert.Equal(t, "/certificates/cert-1", msgs[0].Link)
	require.NotNil(t, msgs[0].Email)
	assert.Equal(t, email.TemplateCertificateIssued, msgs[0].Email.Template)
}

func TestComposeIsDeterministic(t *testing.T) {
	t.Parallel()

	enr := event.Enrollment{ID: "enr-1", Student: student, Course: course}
	evt := event.NewEnrollmentCreated(enr, fixedNow)
	c := compose.New()

	first, err := c.Compose(evt, compose.Inputs{})
	require.NoError(t, err)
	second, err := c.Compose(evt, compose.Inputs{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComposeRejectsMalformedEvent(t *testing.T) {
	t.Parallel()

	c := compose.New()

	_, err := c.Compose(event.Event{ID: "evt-1", Kind: event.KindUserRegistered}, compose.Inputs{})
	require.ErrorIs(t, err, event.ErrInvalidEvent)

	_, err = c.Compose(event.Event{ID: "evt-2", Kind: event.Kind("bogus")}, compose.Inputs{})
	require.ErrorIs(t, err, event.ErrInvalidEvent)
}

func TestComposeSkipsEmailWithoutAddress(t *testing.T) {
	t.Parallel()

	noEmail := student
	noEmail.Email = ""

	c := compose.New()
	msgs, err := c.Compose(event.NewUserRegistered(noEmail, fixedNow), compose.Inputs{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].Email)
}

func TestComposeBaseURL(t *testing.T) {
	t.Parallel()

	enr := event.Enrollment{ID: "enr-1", Student: student, Course: course}
	c := compose.New(compose.WithBaseURL("https://elearn.example.com"))

	msgs, err := c.Compose(event.NewEnrollmentCreated(enr, fixedNow), compose.Inputs{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// Email links are absolute, inbox links stay relative.
	assert.Equal(t, "https://elearn.example.com/courses/course-1", msgs[0].Email.Data["link"])
	assert.Equal(t, "/courses/course-1", msgs[0].Link)
}
