package store

import (
	"sync"

	"github.com/reunionrs/reunion-site-backend/models"
)

// subscriber owns a one-slot mailbox. A newer snapshot replaces an
// undelivered older one, so a slow callback only ever sees the latest state.
type subscriber struct {
	mailbox chan []models.Project
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func (s *subscriber) run(onChange func([]models.Project)) {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case snapshot := <-s.mailbox:
			select {
			case <-s.stop:
				return
			default:
			}
			onChange(snapshot)
		}
	}
}

// offer replaces whatever is waiting in the mailbox. Callers hold the hub lock.
func (s *subscriber) offer(snapshot []models.Project) {
	select {
	case <-s.mailbox:
	default:
	}
	s.mailbox <- snapshot
}

type hub struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]*subscriber
}

func newHub() *hub {
	return &hub{subscribers: make(map[int]*subscriber)}
}

// add registers onChange and queues the first snapshot for it.
// The returned function detaches the subscriber and waits for an in-flight
// callback to return. It must not be called from inside onChange.
func (h *hub) add(initial []models.Project, onChange func([]models.Project)) func() {
	sub := &subscriber{
		mailbox: make(chan []models.Project, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = sub
	sub.offer(initial)
	h.mu.Unlock()

	go sub.run(onChange)

	return func() {
		sub.once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
			close(sub.stop)
		})
		<-sub.done
	}
}

func (h *hub) broadcast(snapshot []models.Project) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subscribers {
		sub.offer(copySnapshot(snapshot))
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// copySnapshot deep-copies the collection, screenshots included.
func copySnapshot(snapshot []models.Project) []models.Project {
	out := make([]models.Project, len(snapshot))
	for i, project := range snapshot {
		project.Screenshots = append(project.Screenshots[:0:0], project.Screenshots...)
		out[i] = project
	}
	return out
}
