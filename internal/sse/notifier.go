package sse

import "time"

// PopulateNotifier is the interface the pipeline uses to emit progress events.
type PopulateNotifier interface {
	NotifyRunStarted(runID string)
	NotifyGameProcessed(runID, title, status string, err error)
	NotifyRunFinished(runID string, created, skipped, failed int)
}

// HubNotifier implements PopulateNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyRunStarted(runID string) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&PopulateEvent{Event: EventRunStarted, RunID: runID, Timestamp: time.Now()})
}

func (n *HubNotifier) NotifyGameProcessed(runID, title, status string, err error) {
	if n.hub.ClientCount() == 0 {
		return
	}
	ev := &PopulateEvent{
		Event:     EventGameProcessed,
		RunID:     runID,
		Title:     title,
		Status:    status,
		Timestamp: time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	n.hub.Broadcast(ev)
}

func (n *HubNotifier) NotifyRunFinished(runID string, created, skipped, failed int) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&PopulateEvent{
		Event:     EventRunFinished,
		RunID:     runID,
		Created:   &created,
		Skipped:   &skipped,
		Failed:    &failed,
		Timestamp: time.Now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifyRunStarted(string)                           {}
func (NopNotifier) NotifyGameProcessed(string, string, string, error) {}
func (NopNotifier) NotifyRunFinished(string, int, int, int)           {}
