package event

import "time"

// Role is a user's role on the platform.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// CourseStatus is the moderation state of a course.
type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePending   CourseStatus = "pending"
	CoursePublished CourseStatus = "published"
	CourseRejected  CourseStatus = "rejected"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// User is a value snapshot of a platform account at the moment an event was
// emitted. Events carry snapshots rather than live records so that dispatch
// never races with concurrent mutation of the source entity.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Language string `json:"language,omitempty"`
}

// DisplayName returns the user's name, falling back to the email address.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Course is a value snapshot of a course.
type Course struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Status     CourseStatus `json:"status"`
	Instructor User         `json:"instructor"`
}

// Enrollment is a value snapshot of a student's enrollment in a course.
type Enrollment struct {
	ID        string `json:"id"`
	Student   User   `json:"student"`
	Course    Course `json:"course"`
	Completed bool   `json:"completed"`
}

// Lesson is a value snapshot of a lesson within a course.
type Lesson struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Course    Course     `json:"course"`
	ReleaseAt *time.Time `json:"release_at,omitempty"`
}

// Released reports whether the lesson's release date has passed at the given
// moment. A lesson without a release date is not considered released.
func (l Lesson) Released(now time.Time) bool {
	return l.ReleaseAt != nil && !l.ReleaseAt.After(now)
}

// QuizAttempt is a value snapshot of a recorded quiz attempt.
type QuizAttempt struct {
	ID          string  `json:"id"`
	User        User    `json:"user"`
	LessonTitle string  `json:"lesson_title"`
	Course      Course  `json:"course"`
	Score       float64 `json:"score"`
}

// Payment is a value snapshot of a course payment.
type Payment struct {
	ID     string        `json:"id"`
	User   User          `json:"user"`
	Course Course        `json:"course"`
	Amount string        `json:"amount"`
	Status PaymentStatus `json:"status"`
}

// Certificate is a value snapshot of an issued completion certificate.
type Certificate struct {
	ID       string    `json:"id"`
	User     User      `json:"user"`
	Course   Course    `json:"course"`
	IssuedAt time.Time `json:"issued_at"`
}
