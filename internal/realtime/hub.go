// Package realtime fans change notifications out to live subscribers so
// open roster, subject-list and session views refresh on every remote write.
package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"uniattend/internal/metrics"
)

// Event is one change notification on a topic.
type Event struct {
	Topic   string          `json:"topic"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Publisher is the write side. Services hold this and may receive a nil hub.
type Publisher interface {
	Publish(ctx context.Context, topic, kind string, payload any) error
}

// Hub is the abstraction over different backends.
type Hub interface {
	Publisher
	// Subscribe opens a long-lived subscription. The caller owns the returned
	// handle and must Close it when the consuming view goes away.
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
}

// Subscription delivers events for one topic in publish order. Close is
// idempotent and releases the slot; after Close the channel is closed.
type Subscription struct {
	C     <-chan Event
	close func()
	once  sync.Once
}

// Close tears the subscription down.
func (s *Subscription) Close() {
	s.once.Do(func() {
		metrics.Subscribers.Dec()
		s.close()
	})
}

// Publish is a nil-safe helper for services holding an optional hub.
func Publish(ctx context.Context, p Publisher, topic, kind string, payload any) {
	if p == nil {
		return
	}
	// Fan-out failures must not fail the triggering write.
	_ = p.Publish(ctx, topic, kind, payload)
}

// Topic names shared by publishers and the websocket surface.
func SubjectsTopic(department string, semester int) string {
	return "subjects:" + department + ":" + strconv.Itoa(semester)
}

func RosterTopic(department string, semester int) string {
	return "roster:" + department + ":" + strconv.Itoa(semester)
}

func SessionTopic(subjectID, date string) string {
	return "session:" + subjectID + ":" + date
}
