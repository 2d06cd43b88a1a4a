// Package push delivers Apple push notifications to registered devices.
package push

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// APNsNotifier sends alerts through the Apple Push Notification service
type APNsNotifier struct {
	client *apns2.Client
	topic  string
}

// NewAPNsNotifier loads the .p12 certificate and creates a client for the chosen environment
func NewAPNsNotifier(certFile, certPassword, topic string, production bool) (*APNsNotifier, error) {
	cert, err := certificate.FromP12File(certFile, certPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	return NewAPNsNotifierFromClient(client, topic), nil
}

// NewAPNsNotifierFromClient wraps an existing client
func NewAPNsNotifierFromClient(client *apns2.Client, topic string) *APNsNotifier {
	return &APNsNotifier{client: client, topic: topic}
}

// Send pushes an alert with optional custom data to one device
func (n *APNsNotifier) Send(ctx context.Context, deviceToken, alert string, data map[string]any) error {
	p := payload.NewPayload().Alert(alert).Sound("default")
	for k, v := range data {
		p = p.Custom(k, v)
	}

	res, err := n.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     p,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: status %d reason %s", res.StatusCode, res.Reason)
	}
	return nil
}
