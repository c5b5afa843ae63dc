package adsgo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/larskjeldsen/adsgo/internal/ads"
	"github.com/larskjeldsen/adsgo/internal/ams"
)

// Subscribe creates a new notification subscription against a raw
// IndexGroup/IndexOffset. The returned Subscription delivers notifications
// via its Notifications() channel. Call Close() on the Subscription when
// done to clean up resources.
func (c *Client) Subscribe(ctx context.Context, opts NotificationOptions) (*Subscription, error) {
	req := ads.AddDeviceNotificationRequest{
		IndexGroup:       opts.IndexGroup,
		IndexOffset:      opts.IndexOffset,
		Length:           opts.Length,
		TransmissionMode: opts.TransmissionMode,
		MaxDelay:         uint32(opts.MaxDelay / time.Millisecond),
		CycleTime:        uint32(opts.CycleTime / time.Millisecond),
	}
	reqData, _ := req.MarshalBinary()

	respPacket, err := c.sendRequest(ctx, ads.CmdAddDeviceNotification, reqData)
	if err != nil {
		return nil, err
	}

	var resp ads.AddDeviceNotificationResponse
	if err := resp.UnmarshalBinary(respPacket.Data); err != nil {
		return nil, err
	}
	if resp.Result != 0 {
		return nil, ads.Error(resp.Result)
	}

	sub := &Subscription{
		handle:  resp.NotificationHandle,
		client:  c,
		notifCh: make(chan Notification, 16),
		closed:  false,
		closeMu: sync.Mutex{},
		opts:    opts,
	}

	c.subscriptionsMu.Lock()
	c.subscriptions[sub.handle] = sub
	c.subscriptionsMu.Unlock()

	c.metrics.SubscriptionsActive(len(c.subscriptions))

	return sub, nil
}

// SubscribeSymbol creates a notification subscription by symbol name,
// resolving the symbol's index group, offset, and size automatically.
func (c *Client) SubscribeSymbol(ctx context.Context, symbolName string, opts SymbolNotificationOptions) (*Subscription, error) {
	indexGroup, indexOffset, size, err := c.resolveArraySymbol(ctx, symbolName)
	if err != nil {
		return nil, fmt.Errorf("subscribe symbol %q: %w", symbolName, err)
	}

	return c.Subscribe(ctx, NotificationOptions{
		IndexGroup:       indexGroup,
		IndexOffset:      indexOffset,
		Length:           size,
		TransmissionMode: opts.TransmissionMode,
		MaxDelay:         opts.MaxDelay,
		CycleTime:        opts.CycleTime,
	})
}

// unregisterSubscription removes a subscription from the registry.
func (c *Client) unregisterSubscription(handle uint32) {
	c.subscriptionsMu.Lock()
	delete(c.subscriptions, handle)
	count := len(c.subscriptions)
	c.subscriptionsMu.Unlock()
	c.metrics.SubscriptionsActive(count)
}

// resubscribeAll re-issues AddDeviceNotification for every still-open
// subscription, assigning each its new PLC-side handle. Used after a
// reconnect to restore notifications without requiring the caller to
// recreate Subscription objects.
func (c *Client) resubscribeAll(ctx context.Context) {
	c.subscriptionsMu.Lock()
	existing := make([]*Subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		existing = append(existing, sub)
	}
	c.subscriptions = make(map[uint32]*Subscription)
	c.subscriptionsMu.Unlock()

	for _, sub := range existing {
		sub.closeMu.Lock()
		closed := sub.closed
		opts := sub.opts
		sub.closeMu.Unlock()
		if closed {
			continue
		}

		fresh, err := c.Subscribe(ctx, opts)
		if err != nil {
			c.emitEvent(Event{Type: EventClientWarning, Err: fmt.Errorf("resubscribe: %w", err)})
			continue
		}

		sub.closeMu.Lock()
		sub.handle = fresh.handle
		sub.closeMu.Unlock()

		c.subscriptionsMu.Lock()
		c.subscriptions[sub.handle] = sub
		c.subscriptionsMu.Unlock()
	}
}

// handleNotification processes incoming DeviceNotification packets and
// routes each sample to the matching subscription.
func (c *Client) handleNotification(packet *ams.Packet) {
	var notifReq ads.DeviceNotificationRequest
	if err := notifReq.UnmarshalBinary(packet.Data); err != nil {
		c.metrics.NotificationDropped()
		return
	}

	for _, stamp := range notifReq.StampHeaders {
		timestamp := ads.FileTimeToTime(stamp.Timestamp)

		for _, sample := range stamp.Samples {
			c.subscriptionsMu.RLock()
			sub, exists := c.subscriptions[sample.NotificationHandle]
			c.subscriptionsMu.RUnlock()

			if exists {
				c.metrics.NotificationReceived()
				sub.notify(sample.Data, timestamp)
			} else {
				c.metrics.NotificationDropped()
				if !c.hideConsoleWarnings {
					c.logger.Warn("adsgo: notification sample for unknown handle", "handle", sample.NotificationHandle)
				}
				if c.deleteUnknownSubscriptions {
					go c.deleteUnknownNotification(sample.NotificationHandle)
				}
			}
		}
	}
}

// deleteUnknownNotification best-effort deletes a notification handle the
// PLC is still streaming samples for but that has no local subscription
// (e.g. left over from a previous process instance). Errors are ignored;
// there is no subscriber to report them to.
func (c *Client) deleteUnknownNotification(handle uint32) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := ads.DeleteDeviceNotificationRequest{NotificationHandle: handle}
	reqData, err := req.MarshalBinary()
	if err != nil {
		return
	}
	c.sendRequest(ctx, ads.CmdDelDeviceNotification, reqData)
}
