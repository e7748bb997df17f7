package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"hallpass-backend/internal/model"
	"hallpass-backend/internal/parse"
)

// Alert describes a policy violation on an active pass.
type Alert struct {
	PassID      string
	StudentID   string
	Destination string
	Violations  []string
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers delivering violation alerts to
// web-push subscribers.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Alert worker %d started", id)
	for {
		select {
		case alert := <-wp.jobs:
			wp.sendAlertsForDestination(ctx, alert)
		case <-ctx.Done():
			log.Printf("Alert worker %d shutting down", id)
			return
		}
	}
}

// Notify queues a violation alert. Delivery is fire-and-forget: when the
// queue is full the alert is dropped with a log line rather than blocking
// the pass handlers.
func (wp *WorkerPool) Notify(passID, studentID, destination string, violations []string) {
	alert := Alert{PassID: passID, StudentID: studentID, Destination: destination, Violations: violations}
	select {
	case wp.jobs <- alert:
	default:
		log.Printf("Alert queue full; dropping alert for pass %s", passID)
	}
}

// sendAlertsForDestination fetches the subscriptions watching the alert's
// destination and pushes the alert to each.
func (wp *WorkerPool) sendAlertsForDestination(ctx context.Context, alert Alert) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_destination_mapping sdm ON sdm.push_subscription_endpoint = push_subscriptions.endpoint").
		Joins("JOIN destinations d ON d.id = sdm.destination_id").
		Where("d.name = ?", parse.NormalizeLocation(alert.Destination)).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for destination %s: %v", alert.Destination, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d alerts for pass %s", len(subscriptions), alert.PassID)

	message := fmt.Sprintf("Hall pass alert for student %s (%s): %s",
		alert.StudentID, alert.Destination, strings.Join(alert.Violations, "; "))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
