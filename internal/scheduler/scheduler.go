// Package scheduler nudges learners who have not practiced today.
package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

const reminderText = "📚 You haven't practiced today. Tap /menu and drill a few words!"

// Notifier sends a plain text notice to a user.
type Notifier interface {
	Notify(userID, text string) error
}

// Activity reports which users have been idle since the start of the day.
type Activity interface {
	InactiveToday() []string
}

// Scheduler runs the hourly reminder check.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	activity  Activity
	hour      int // hour of day reminders go out
	now       func() time.Time
}

// New creates a scheduler that reminds idle users at the given hour.
func New(notifier Notifier, activity Activity, hour int) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		activity:  activity,
		hour:      hour,
		now:       time.Now,
	}
}

// Start begins the hourly check in the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndRemind)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndRemind() {
	if s.now().UTC().Hour() != s.hour {
		return
	}

	idle := s.activity.InactiveToday()
	if len(idle) == 0 {
		return
	}

	log.Printf("Sending practice reminders to %d users", len(idle))
	for _, id := range idle {
		if err := s.notifier.Notify(id, reminderText); err != nil {
			log.Printf("Error sending reminder to user %s: %v", id, err)
		}
	}
}
