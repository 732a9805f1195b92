package notify

import (
	"context"
	"sync"

	"notesmarket/dashboard/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Notifier delivers transient toasts to the user
type Notifier interface {
	Notify(ctx context.Context, toast domain.Toast)
}

// LogNotifier prints toasts through logrus
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, toast domain.Toast) {
	switch toast.Kind {
	case domain.ToastError:
		log.Errorf("❌ %s", toast.Message)
	default:
		log.Infof("✅ %s", toast.Message)
	}
}

// Multi fans a toast out to every notifier
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, toast domain.Toast) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, toast)
		}
	}
}

// Recorder keeps toasts in memory
type Recorder struct {
	mu     sync.Mutex
	toasts []domain.Toast
}

func (r *Recorder) Notify(_ context.Context, toast domain.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast)
}

// Toasts returns a copy of everything recorded so far
func (r *Recorder) Toasts() []domain.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Toast(nil), r.toasts...)
}

// Last returns the most recent toast
func (r *Recorder) Last() (domain.Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return domain.Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}
