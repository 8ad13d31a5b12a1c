package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/eventhub/internal/entity"
	invitationRepo "anoa.com/eventhub/internal/modules/invitation/repository"
	notifRepo "anoa.com/eventhub/internal/modules/notification/repository"
	notification "anoa.com/eventhub/internal/modules/notification/service"
	"anoa.com/eventhub/internal/queue"
	"anoa.com/eventhub/internal/templates"
)

const reminderWindow = 24 * time.Hour

// DeadlineReminderJob nudges invitees who have not answered an invitation
// whose event closes registration within the next day.
type DeadlineReminderJob struct {
	schedule      string
	invitations   invitationRepo.InvitationRepository
	notifRepo     notifRepo.NotificationRepository
	notifications notification.NotificationService
	dispatcher    queue.Dispatcher
	frontendURL   string
	now           func() time.Time
}

func NewDeadlineReminderJob(
	schedule string,
	invitations invitationRepo.InvitationRepository,
	notifRepo notifRepo.NotificationRepository,
	notifications notification.NotificationService,
	dispatcher queue.Dispatcher,
	frontendURL string,
) *DeadlineReminderJob {
	return &DeadlineReminderJob{
		schedule:      schedule,
		invitations:   invitations,
		notifRepo:     notifRepo,
		notifications: notifications,
		dispatcher:    dispatcher,
		frontendURL:   frontendURL,
		now:           time.Now,
	}
}

func (j *DeadlineReminderJob) Name() string     { return "deadline-reminder" }
func (j *DeadlineReminderJob) Schedule() string { return j.schedule }

func (j *DeadlineReminderJob) Run(ctx context.Context) error {
	now := j.now()
	pending, err := j.invitations.ListPendingWithDeadlineBetween(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return fmt.Errorf("list pending invitations: %w", err)
	}

	sent := 0
	for _, inv := range pending {
		if inv.Event == nil {
			continue
		}
		exists, err := j.notifRepo.Exists(ctx, inv.InviteeID, inv.EventID, entity.NotificationDeadlineReminder)
		if err != nil {
			log.Printf("⚠️ [%s] Failed to check reminder for %s: %v", j.Name(), inv.InviteeID, err)
			continue
		}
		if exists {
			continue
		}

		j.remind(ctx, inv)
		sent++
	}

	log.Printf("📨 [%s] Sent %d reminders", j.Name(), sent)
	return nil
}

func (j *DeadlineReminderJob) remind(ctx context.Context, inv *entity.Invitation) {
	ev := inv.Event
	eventID := inv.EventID
	n := &entity.Notification{
		UserID:  inv.InviteeID,
		EventID: &eventID,
		Type:    entity.NotificationDeadlineReminder,
		Message: fmt.Sprintf("Registration for %s closes on %s", ev.Title, ev.Deadline.Format("02 Jan 2006 15:04")),
	}
	if err := j.notifications.CreateNotification(ctx, n); err != nil {
		log.Printf("⚠️ [%s] Failed to notify %s: %v", j.Name(), inv.InviteeID, err)
		return
	}

	if j.dispatcher == nil || inv.Invitee == nil || !inv.Invitee.LineBound() {
		return
	}
	link := fmt.Sprintf("%s/events/%s", j.frontendURL, ev.ID)
	card := templates.EventCard(*inv.Invitee.LineUserID, ev.Title, ev.CoverImageURL, ev.Location, ev.StartAt, ev.Deadline, link)
	if err := j.dispatcher.Dispatch(ctx, queue.LineJob(card)); err != nil {
		log.Printf("⚠️ [%s] Failed to push LINE reminder to %s: %v", j.Name(), inv.InviteeID, err)
	}
}
