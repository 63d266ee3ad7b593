package notify

import (
	"context"
	"encoding/json"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushSender delivers payloads over the Web Push protocol with VAPID
// authentication.
type WebPushSender struct {
	subscriber      string
	vapidPublicKey  string
	vapidPrivateKey string
}

func NewWebPushSender(subscriber, publicKey, privateKey string) *WebPushSender {
	return &WebPushSender{subscriber: subscriber, vapidPublicKey: publicKey, vapidPrivateKey: privateKey}
}

// Configured reports whether VAPID keys are present. An unconfigured
// sender is left out of the service so notices persist without dispatch.
func (w *WebPushSender) Configured() bool {
	return w.vapidPublicKey != "" && w.vapidPrivateKey != ""
}

func (w *WebPushSender) Send(ctx context.Context, sub Subscription, p Payload) error {
	msg, err := json.Marshal(p)
	if err != nil {
		return err
	}
	resp, err := webpush.SendNotificationWithContext(ctx, msg, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		Subscriber:      w.subscriber,
		VAPIDPublicKey:  w.vapidPublicKey,
		VAPIDPrivateKey: w.vapidPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrSubscriptionGone
	}
	return nil
}
