package event_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hausasoft/elearn-notify/pkg/event"
)

func TestEventValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	user := event.User{ID: "u1", Email: "u1@example.com"}
	course := event.Course{ID: "c1", Title: "Go", Instructor: event.User{ID: "i1"}}

	tests := []struct {
		name    string
		event   event.Event
		wantErr bool
	}{
		{
			name:  "valid user registered",
			event: event.NewUserRegistered(user, now),
		},
		{
			name: "missing payload",
			event: event.Event{
				ID:         "x",
				Kind:       event.KindUserRegistered,
				OccurredAt: now,
			},
			wantErr: true,
		},
		{
			name:    "missing id",
			event:   event.Event{Kind: event.KindUserRegistered, User: &user},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			event:   event.Event{ID: "x", Kind: event.Kind("bogus")},
			wantErr: true,
		},
		{
			name:  "valid status change",
			event: event.NewCourseStatusChanged(course, event.CoursePending, event.CoursePublished, now),
		},
		{
			// Same-status events are valid; the composer produces nothing
			// for them.
			name:  "same-status change",
			event: event.NewCourseStatusChanged(course, event.CoursePublished, event.CoursePublished, now),
		},
		{
			name: "valid enrollment",
			event: event.NewEnrollmentCreated(event.Enrollment{
				ID:      "e1",
				Student: user,
				Course:  course,
			}, now),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.event.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, event.ErrInvalidEvent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Jane", event.User{Name: "Jane", Email: "j@example.com"}.DisplayName())
	assert.Equal(t, "j@example.com", event.User{Email: "j@example.com"}.DisplayName())
}
