// Package events publishes asset lifecycle events to NATS.
//
// Events are published to subjects:
//   - assets.{project}.{branch}.registered
//   - assets.{project}.{branch}.retrieved
//
// Subject tokens are storage-safe identifiers (project names and sanitized
// branches), so subscribers can filter with subject wildcards, e.g.
// "assets.demo.>" for everything in one project or "assets.*.prod.registered"
// for production registrations across projects.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types appended to the subject hierarchy.
const (
	EventRegistered = "registered"
	EventRetrieved  = "retrieved"
)

// Event describes one asset operation.
type Event struct {
	// Kind is the asset kind ("data" or "model").
	Kind string `json:"kind"`

	// AssetID identifies the asset within the project.
	AssetID string `json:"asset_id"`

	// Project is the owning project.
	Project string `json:"project"`

	// Branch is the sanitized branch the operation touched.
	Branch string `json:"branch"`

	// VersionID is the version the operation produced or returned.
	VersionID string `json:"version_id"`

	// RunID identifies the run that performed the operation.
	RunID string `json:"run_id,omitempty"`

	// Pathspec identifies the step execution, when known.
	Pathspec string `json:"pathspec,omitempty"`

	// Timestamp is when the operation happened.
	Timestamp time.Time `json:"timestamp"`
}

// Publisher publishes asset events. A Publisher constructed with a nil
// connection is a no-op, so store-only deployments run without a broker.
type Publisher struct {
	nc *nats.Conn
}

// NewPublisher creates a publisher on an established NATS connection.
// Passing nil yields a no-op publisher.
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

// Enabled reports whether events actually reach a broker.
func (p *Publisher) Enabled() bool {
	return p != nil && p.nc != nil
}

// Registered publishes a "registered" event for a newly written version.
func (p *Publisher) Registered(event Event) error {
	return p.publish(EventRegistered, event)
}

// Retrieved publishes a "retrieved" event for a read version.
func (p *Publisher) Retrieved(event Event) error {
	return p.publish(EventRetrieved, event)
}

func (p *Publisher) publish(eventType string, event Event) error {
	if !p.Enabled() {
		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	subject := fmt.Sprintf("assets.%s.%s.%s", event.Project, event.Branch, eventType)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}
