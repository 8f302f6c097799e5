package store

import (
	"testing"
	"time"

	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(titles ...string) []models.Project {
	out := make([]models.Project, 0, len(titles))
	for _, title := range titles {
		out = append(out, models.Project{Title: title})
	}
	return out
}

func TestHubSlowSubscriberSeesLatest(t *testing.T) {
	h := newHub()

	release := make(chan struct{})
	seen := make(chan []models.Project, 8)
	unsubscribe := h.add(snapshotOf("a"), func(projects []models.Project) {
		seen <- projects
		<-release
	})

	first := <-seen
	require.Len(t, first, 1)

	// Three writes while the callback is blocked collapse into the newest.
	h.broadcast(snapshotOf("a", "b"))
	h.broadcast(snapshotOf("a", "b", "c"))
	h.broadcast(snapshotOf("a", "b", "c", "d"))

	release <- struct{}{}
	latest := <-seen
	assert.Len(t, latest, 4)

	close(release)
	unsubscribe()
	assert.Equal(t, 0, h.count())

	select {
	case <-seen:
		t.Fatal("unexpected delivery")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribeIsIdempotent(t *testing.T) {
	h := newHub()
	unsubscribe := h.add(nil, func([]models.Project) {})
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, h.count())
}

func TestHubSnapshotsAreIndependent(t *testing.T) {
	h := newHub()
	a := make(chan []models.Project, 4)
	b := make(chan []models.Project, 4)
	defer h.add(nil, func(p []models.Project) { a <- p })()
	defer h.add(nil, func(p []models.Project) { b <- p })()
	<-a
	<-b

	shared := []models.Project{{Title: "x", Screenshots: []string{"http://s/1"}}}
	h.broadcast(shared)

	fromA := <-a
	fromB := <-b
	fromA[0].Title = "changed"
	fromA[0].Screenshots[0] = "changed"
	assert.Equal(t, "x", fromB[0].Title)
	assert.Equal(t, "http://s/1", fromB[0].Screenshots[0])
	assert.Equal(t, "x", shared[0].Title)
}
