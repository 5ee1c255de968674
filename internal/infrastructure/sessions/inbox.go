package sessions

import (
	"context"
	"sync"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

const defaultInboxSize = 50

// Inbox keeps the most recent notifications per open session until they are
// drained by the client. Notifications for sessions that were never opened,
// or were forgotten, are discarded.
type Inbox struct {
	mu    sync.Mutex
	size  int
	boxes map[string][]domain.Notification
}

var _ ports.NotificationSink = (*Inbox)(nil)

// NewInbox keeps at most size notifications per session; older ones are
// discarded first.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = defaultInboxSize
	}
	return &Inbox{size: size, boxes: make(map[string][]domain.Notification)}
}

// Open starts collecting for sessionID.
func (in *Inbox) Open(sessionID string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if _, ok := in.boxes[sessionID]; !ok {
		in.boxes[sessionID] = []domain.Notification{}
	}
}

func (in *Inbox) Deliver(_ context.Context, n domain.Notification) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	box, ok := in.boxes[n.SessionID]
	if !ok {
		return nil
	}
	box = append(box, n)
	if len(box) > in.size {
		box = box[len(box)-in.size:]
	}
	in.boxes[n.SessionID] = box
	return nil
}

// Drain returns and clears the notifications queued for sessionID. The
// session stays open.
func (in *Inbox) Drain(sessionID string) []domain.Notification {
	in.mu.Lock()
	defer in.mu.Unlock()

	box, ok := in.boxes[sessionID]
	if !ok {
		return nil
	}
	in.boxes[sessionID] = []domain.Notification{}
	return box
}

// Forget closes sessionID and discards anything queued for it.
func (in *Inbox) Forget(sessionID string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	delete(in.boxes, sessionID)
}
