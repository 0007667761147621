package cacheredis

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// MessageListener receives messages published on subscribed channels.
type MessageListener interface {
	OnMessage(channel, message string)
}

// ListenerFunc adapts a function to MessageListener.
type ListenerFunc func(channel, message string)

// OnMessage calls f(channel, message).
func (f ListenerFunc) OnMessage(channel, message string) {
	f(channel, message)
}

// Subscription is a listener bound to channels over its own connection.
type Subscription struct {
	client    *Client
	pubsub    *redis.PubSub
	channels  []string
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Publish sends message as plain text on channel and returns the number of
// subscribers that received it. The value serializer is not involved.
func (c *Client) Publish(ctx context.Context, channel, message string) (int64, error) {
	var receivers int64
	err := c.breaker.do(func() error {
		var err error
		receivers, err = c.pubsub.Publish(ctx, channel, message).Result()
		return err
	})
	if err != nil {
		return 0, translate("publish", channel, err)
	}
	return receivers, nil
}

// Subscribe opens a new dedicated pub/sub connection, subscribes it to
// channels and dispatches every message to listener on a separate goroutine.
// It returns once the server has confirmed every channel, so a message
// published afterwards is delivered.
//
// Every call holds one connection until the Subscription or the Client is
// closed.
func (c *Client) Subscribe(ctx context.Context, listener MessageListener, channels ...string) (*Subscription, error) {
	label := strings.Join(channels, ",")
	if listener == nil {
		return nil, &ClientError{Op: "subscribe", Key: label, Err: ErrNilListener}
	}
	if len(channels) == 0 {
		return nil, &ClientError{Op: "subscribe", Err: ErrNoChannels}
	}

	c.subsMu.Lock()
	closed := c.closed
	c.subsMu.Unlock()
	if closed {
		return nil, &ClientError{Op: "subscribe", Key: label, Err: ErrClosed}
	}

	var ps *redis.PubSub
	var early []*redis.Message
	err := c.breaker.do(func() error {
		ps = c.pubsub.Subscribe(ctx, channels...)
		var err error
		early, err = awaitConfirmations(ctx, ps, len(channels))
		return err
	})
	if err != nil {
		if ps != nil {
			_ = ps.Close()
		}
		return nil, translate("subscribe", label, err)
	}

	sub := &Subscription{
		client:   c,
		pubsub:   ps,
		channels: append([]string(nil), channels...),
		done:     make(chan struct{}),
	}

	c.subsMu.Lock()
	if c.closed {
		c.subsMu.Unlock()
		_ = ps.Close()
		return nil, &ClientError{Op: "subscribe", Key: label, Err: ErrClosed}
	}
	c.subs[sub] = struct{}{}
	c.subsMu.Unlock()

	ch := ps.Channel()
	go sub.dispatch(listener, early, ch)

	c.logger.Info("redis subscription created", "channels", sub.channels)
	return sub, nil
}

// awaitConfirmations reads n subscribe confirmations. Messages that arrive
// on already confirmed channels in the meantime are returned for delivery.
func awaitConfirmations(ctx context.Context, ps *redis.PubSub, n int) ([]*redis.Message, error) {
	var early []*redis.Message
	for confirmed := 0; confirmed < n; {
		msg, err := ps.Receive(ctx)
		if err != nil {
			return nil, err
		}
		switch m := msg.(type) {
		case *redis.Subscription:
			confirmed++
		case *redis.Message:
			early = append(early, m)
		case *redis.Pong:
		default:
			return nil, fmt.Errorf("unexpected pub/sub reply %T", msg)
		}
	}
	return early, nil
}

func (s *Subscription) dispatch(listener MessageListener, early []*redis.Message, ch <-chan *redis.Message) {
	defer close(s.done)
	for _, msg := range early {
		s.deliver(listener, msg)
	}
	for msg := range ch {
		s.deliver(listener, msg)
	}
}

func (s *Subscription) deliver(listener MessageListener, msg *redis.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.client.logger.Error("redis message listener panicked", "channel", msg.Channel, "panic", r)
		}
	}()
	listener.OnMessage(msg.Channel, msg.Payload)
}

// Channels returns the subscribed channel names.
func (s *Subscription) Channels() []string {
	return append([]string(nil), s.channels...)
}

// Done is closed once the dispatch goroutine has delivered its last message.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close unsubscribes and releases the dedicated connection. It does not wait
// for an in-progress listener call, so it may be called from a listener.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.pubsub.Close()
		s.client.subsMu.Lock()
		delete(s.client.subs, s)
		s.client.subsMu.Unlock()
		s.client.logger.Info("redis subscription closed", "channels", s.channels)
	})
	return s.closeErr
}
