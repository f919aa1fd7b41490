package notifications

import (
	"time"
)

// Category classifies a notification for inbox filtering and display.
type Category string

const (
	CategoryInfo        Category = "info"
	CategorySuccess     Category = "success"
	CategoryWarning     Category = "warning"
	CategoryError       Category = "error"
	CategoryEnrollment  Category = "enrollment"
	CategoryCourse      Category = "course"
	CategoryLesson      Category = "lesson"
	CategoryQuiz        Category = "quiz"
	CategoryPayment     Category = "payment"
	CategoryCertificate Category = "certificate"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryInfo, CategorySuccess, CategoryWarning, CategoryError,
		CategoryEnrollment, CategoryCourse, CategoryLesson, CategoryQuiz,
		CategoryPayment, CategoryCertificate:
		return true
	}
	return false
}

// Notification is the persisted inbox record. CreatedAt never changes after
// insert and Read is monotonic: once marked read a record never reverts.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Category  Category   `json:"category"`
	Message   string     `json:"message"`
	Link      string     `json:"link,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MarkAsRead marks the notification as read with the current timestamp.
// Already-read notifications keep their original ReadAt.
func (n *Notification) MarkAsRead() {
	if n.Read {
		return
	}
	n.Read = true
	now := time.Now()
	n.ReadAt = &now
}
