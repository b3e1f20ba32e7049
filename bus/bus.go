// bus.go
package bus

import (
	"sync"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a path of string tokens, e.g. {"dram", "health"}.
type Topic []string

// T builds a topic from tokens.
func T(tokens ...string) Topic { return Topic(tokens) }

func (t Topic) key() string {
	n := 0
	for _, s := range t {
		n += len(s) + 1
	}
	b := make([]byte, 0, n)
	for i, s := range t {
		if i > 0 {
			b = append(b, '/')
		}
		b = append(b, s...)
	}
	return string(b)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// NewMessage is a convenience constructor.
func NewMessage(t Topic, payload any, retained bool) *Message {
	return &Message{Topic: t, Payload: payload, Retained: retained}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type entry struct {
	subs     []*Subscription
	retained *Message
}

// Bus is a small in-process pub/sub with retained messages. Delivery never
// blocks the publisher: a full queue drops its oldest message.
type Bus struct {
	mu     sync.Mutex
	topics map[string]*entry
	qLen   int
}

// NewBus creates a bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 4
	}
	return &Bus{topics: map[string]*entry{}, qLen: queueLen}
}

func (b *Bus) entryFor(t Topic) *entry {
	k := t.key()
	e := b.topics[k]
	if e == nil {
		e = &entry{}
		b.topics[k] = e
	}
	return e
}

// Publish delivers msg to every subscriber of its topic and, if retained,
// stores it for later subscribers. A retained nil payload clears the slot.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.entryFor(msg.Topic)
	for _, sub := range e.subs {
		deliver(sub.ch, msg)
	}
	if msg.Retained {
		if msg.Payload == nil {
			e.retained = nil
		} else {
			e.retained = msg
		}
	}
}

// Retained returns the retained message on t, if any.
func (b *Bus) Retained(t Topic) (*Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.topics[t.key()]
	if e == nil || e.retained == nil {
		return nil, false
	}
	return e.retained, true
}

func deliver(ch chan *Message, msg *Message) {
	select {
	case ch <- msg:
	default:
		// drop oldest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- msg:
		default:
		}
	}
}

func (b *Bus) subscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entryFor(sub.topic)
	e.subs = append(e.subs, sub)
	if e.retained != nil {
		deliver(sub.ch, e.retained)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := sub.topic.key()
	e := b.topics[k]
	if e == nil {
		return
	}
	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			break
		}
	}
	if len(e.subs) == 0 && e.retained == nil {
		delete(b.topics, k)
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection groups the subscriptions of one client.
type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

// NewConnection creates a connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection. A retained
// message on the topic is delivered immediately.
func (c *Connection) Subscribe(t Topic) *Subscription {
	sub := &Subscription{
		topic: t,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.subscribe(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection and closes
// its channel.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.unsubscribe(sub)
	close(sub.ch)
}

// Disconnect closes all subscriptions of the connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
