package compose

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hausasoft/elearn-notify/pkg/email"
	"github.com/hausasoft/elearn-notify/pkg/event"
	"github.com/hausasoft/elearn-notify/pkg/notifications"
)

// Message is one composed notification addressed to a single recipient. It
// carries everything the dispatcher needs for all three channels so that
// dispatch never goes back to the domain model.
type Message struct {
	EventID        string                 `json:"event_id"`
	RecipientID    string                 `json:"recipient_id"`
	RecipientName  string                 `json:"recipient_name"`
	RecipientEmail string                 `json:"recipient_email,omitempty"`
	Language       string                 `json:"language,omitempty"`
	Category       notifications.Category `json:"category"`
	Body           string                 `json:"body"`
	Link           string                 `json:"link,omitempty"`
	Email          *EmailDirective        `json:"email,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// EmailDirective instructs the dispatcher to send a templated email. A nil
// directive on a Message means the recipient gets an inbox record and a
// realtime push but no email.
type EmailDirective struct {
	Template email.Template    `json:"template"`
	Data     map[string]string `json:"data"`
}

// Inputs carries recipient lists the composer cannot derive from the event
// itself. The caller resolves them from storage before composing.
type Inputs struct {
	// Admins receive moderation messages for CourseSubmitted.
	Admins []event.User
	// EnrolledStudents receive the fan-out for LessonReleased.
	EnrolledStudents []event.User
}

// Composer turns domain events into notification messages. It is pure: the
// same event and inputs always yield the same messages, and composing
// performs no I/O.
type Composer struct {
	baseURL string
}

// Option configures a Composer.
type Option func(*Composer)

// WithBaseURL sets the absolute URL prefix for links embedded in emails.
// Inbox links stay relative regardless.
func WithBaseURL(u string) Option {
	return func(c *Composer) { c.baseURL = u }
}

// New creates a Composer.
func New(opts ...Option) *Composer {
	c := &Composer{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose produces the messages for a single event. Malformed events are
// rejected before anything is composed. Status-change events that are not a
// transition the recipient table cares about yield an empty slice.
func (c *Composer) Compose(e event.Event, in Inputs) ([]Message, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	switch e.Kind {
	case event.KindUserRegistered:
		return c.userRegistered(e), nil
	case event.KindEnrollmentCreated:
		return c.enrollmentCreated(e), nil
	case event.KindCourseSubmitted:
		return c.courseSubmitted(e, in.Admins), nil
	case event.KindCourseStatusChanged:
		return c.courseStatusChanged(e), nil
	case event.KindLessonReleased:
		return c.lessonReleased(e, in.EnrolledStudents), nil
	case event.KindQuizAttemptRecorded:
		return c.quizAttemptRecorded(e), nil
	case event.KindPaymentStatusChanged:
		return c.paymentStatusChanged(e), nil
	case event.KindCourseCompleted:
		return c.courseCompleted(e), nil
	case event.KindCertificateIssued:
		return c.certificateIssued(e), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", event.ErrInvalidEvent, e.Kind)
	}
}

func (c *Composer) userRegistered(e event.Event) []Message {
	u := *e.User
	msg := c.message(e, u, notifications.CategoryInfo, "Welcome to Hausasoft E-Learn!", "/courses")
	msg.Email = c.directive(u, email.TemplateWelcome, map[string]string{
		"user_name": u.DisplayName(),
		"link":      c.absolute("/courses"),
	})
	return []Message{msg}
}

func (c *Composer) enrollmentCreated(e event.Event) []Message {
	enr := *e.Enrollment
	courseLink := "/courses/" + enr.Course.ID

	student := c.message(e, enr.Student, notifications.CategoryInfo,
		fmt.Sprintf("You have been enrolled in %s", enr.Course.Title), courseLink)
	student.Email = c.directive(enr.Student, email.TemplateEnrollment, map[string]string{
		"user_name":    enr.Student.DisplayName(),
		"course_title": enr.Course.Title,
		"link":         c.absolute(courseLink),
	})

	instructorLink := "/instructor/courses/" + enr.Course.ID
	instructor := c.message(e, enr.Course.Instructor, notifications.CategoryInfo,
		fmt.Sprintf("%s has enrolled in your course %s", enr.Student.DisplayName(), enr.Course.Title), instructorLink)
	instructor.Email = c.directive(enr.Course.Instructor, email.TemplateStudentEnrolledInstructor, map[string]string{
		"user_name":    enr.Course.Instructor.DisplayName(),
		"student_name": enr.Student.DisplayName(),
		"course_title": enr.Course.Title,
		"link":         c.absolute(instructorLink),
	})

	return []Message{student, instructor}
}

func (c *Composer) courseSubmitted(e event.Event, admins []event.User) []Message {
	course := *e.Course
	reviewLink := "/admin/courses/" + course.ID

	msgs := make([]Message, 0, len(admins)+1)
	for _, admin := range admins {
		msg := c.message(e, admin, notifications.CategoryInfo,
			fmt.Sprintf("New course %q has been submitted for approval", course.Title), reviewLink)
		msg.Email = c.directive(admin, email.TemplateNewCourseSubmitted, map[string]string{
			"user_name":       admin.DisplayName(),
			"course_title":    course.Title,
			"instructor_name": course.Instructor.DisplayName(),
			"link":            c.absolute(reviewLink),
		})
		msgs = append(msgs, msg)
	}

	// The instructor gets an inbox confirmation but no email: they just
	// performed the submission themselves.
	msgs = append(msgs, c.message(e, course.Instructor, notifications.CategoryInfo,
		fmt.Sprintf("New course %q has been submitted for approval", course.Title),
		"/instructor/courses/"+course.ID))

	return msgs
}

func (c *Composer) courseStatusChanged(e event.Event) []Message {
	// A re-save of an already-published course is not a transition and must
	// not re-fire the approval notification.
	if e.OldStatus == e.NewStatus {
		return nil
	}

	course := *e.Course
	link := "/instructor/courses/" + course.ID

	switch event.CourseStatus(e.NewStatus) {
	case event.CoursePublished:
		msg := c.message(e, course.Instructor, notifications.CategorySuccess,
			fmt.Sprintf("Your course %q has been approved!", course.Title), link)
		msg.Email = c.directive(course.Instructor, email.TemplateCourseApproval, map[string]string{
			"user_name":    course.Instructor.DisplayName(),
			"course_title": course.Title,
			"link":         c.absolute(link),
		})
		return []Message{msg}
	case event.CourseRejected:
		msg := c.message(e, course.Instructor, notifications.CategoryError,
			fmt.Sprintf("Your course %q was rejected.", course.Title), link)
		msg.Email = c.directive(course.Instructor, email.TemplateCourseRejection, map[string]string{
			"user_name":    course.Instructor.DisplayName(),
			"course_title": course.Title,
			"link":         c.absolute(link),
		})
		return []Message{msg}
	default:
		// Transitions into draft or pending notify nobody.
		return nil
	}
}

func (c *Composer) lessonReleased(e event.Event, students []event.User) []Message {
	lesson := *e.Lesson
	link := "/courses/" + lesson.Course.ID + "/lessons/" + lesson.ID

	msgs := make([]Message, 0, len(students))
	for _, student := range students {
		msg := c.message(e, student, notifications.CategoryInfo,
			fmt.Sprintf("New lesson %q has been released in %s", lesson.Title, lesson.Course.Title), link)
		msg.Email = c.directive(student, email.TemplateLessonRelease, map[string]string{
			"user_name":    student.DisplayName(),
			"lesson_title": lesson.Title,
			"course_title": lesson.Course.Title,
			"link":         c.absolute(link),
		})
		msgs = append(msgs, msg)
	}
	return msgs
}

func (c *Composer) quizAttemptRecorded(e event.Event) []Message {
	attempt := *e.QuizAttempt
	link := "/courses/" + attempt.Course.ID

	msg := c.message(e, attempt.User, notifications.CategoryInfo,
		fmt.Sprintf("Quiz results for %s in %s are out!", attempt.LessonTitle, attempt.Course.Title), link)
	msg.Email = c.directive(attempt.User, email.TemplateQuizResult, map[string]string{
		"user_name":    attempt.User.DisplayName(),
		"lesson_title": attempt.LessonTitle,
		"course_title": attempt.Course.Title,
		"score":        strconv.FormatFloat(attempt.Score, 'f', -1, 64),
		"link":         c.absolute(link),
	})
	return []Message{msg}
}

func (c *Composer) paymentStatusChanged(e event.Event) []Message {
	payment := *e.Payment
	if e.OldStatus == e.NewStatus {
		return nil
	}
	if event.PaymentStatus(e.NewStatus) != event.PaymentPaid {
		// Only settlement is worth a notification; failures surface in the
		// checkout flow itself.
		return nil
	}

	link := "/courses/" + payment.Course.ID
	msg := c.message(e, payment.User, notifications.CategoryInfo,
		fmt.Sprintf("Payment received for %s", payment.Course.Title), link)
	msg.Email = c.directive(payment.User, email.TemplatePaymentConfirmation, map[string]string{
		"user_name":    payment.User.DisplayName(),
		"course_title": payment.Course.Title,
		"amount":       payment.Amount,
		"link":         c.absolute(link),
	})
	return []Message{msg}
}

func (c *Composer) courseCompleted(e event.Event) []Message {
	enr := *e.Enrollment
	link := "/instructor/courses/" + enr.Course.ID

	msg := c.message(e, enr.Course.Instructor, notifications.CategoryInfo,
		fmt.Sprintf("Student %s has completed %s", enr.Student.DisplayName(), enr.Course.Title), link)
	msg.Email = c.directive(enr.Course.Instructor, email.TemplateCourseCompletedInstructor, map[string]string{
		"user_name":    enr.Course.Instructor.DisplayName(),
		"student_name": enr.Student.DisplayName(),
		"course_title": enr.Course.Title,
		"link":         c.absolute(link),
	})
	return []Message{msg}
}

func (c *Composer) certificateIssued(e event.Event) []Message {
	cert := *e.Certificate
	link := "/certificates/" + cert.ID

	msg := c.message(e, cert.User, notifications.CategoryCertificate,
		fmt.Sprintf("Your certificate for %s is ready", cert.Course.Title), link)
	msg.Email = c.directive(cert.User, email.TemplateCertificateIssued, map[string]string{
		"user_name":    cert.User.DisplayName(),
		"course_title": cert.Course.Title,
		"link":         c.absolute(link),
	})
	return []Message{msg}
}

func (c *Composer) message(e event.Event, recipient event.User, category notifications.Category, body, link string) Message {
	return Message{
		EventID:        e.ID,
		RecipientID:    recipient.ID,
		RecipientName:  recipient.DisplayName(),
		RecipientEmail: recipient.Email,
		Language:       recipient.Language,
		Category:       category,
		Body:           body,
		Link:           link,
		CreatedAt:      e.OccurredAt,
	}
}

// directive builds the email instruction for a recipient, or nil when the
// recipient has no address on file.
func (c *Composer) directive(recipient event.User, tpl email.Template, data map[string]string) *EmailDirective {
	if recipient.Email == "" {
		return nil
	}
	return &EmailDirective{Template: tpl, Data: data}
}

func (c *Composer) absolute(link string) string {
	return c.baseURL + link
}
