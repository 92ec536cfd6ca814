package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

type ActivityRepository struct {
	mu         sync.RWMutex
	activities map[int64]models.Activity
	nextID     int64
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{
		activities: make(map[int64]models.Activity),
	}
}

func (r *ActivityRepository) ListActivities(_ context.Context, ownerID int64) ([]models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Activity, 0)
	for _, a := range r.activities {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ActivityRepository) CreateActivity(_ context.Context, activity models.Activity) (*models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	activity.ID = r.nextID
	r.activities[activity.ID] = activity

	return &activity, nil
}

func (r *ActivityRepository) UpdateActivityStatus(
	_ context.Context,
	ownerID, id int64,
	status models.ActivityStatus,
	now time.Time,
) (*models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[id]
	if !ok || a.OwnerID != ownerID {
		return nil, storage.ErrActivityNotFound
	}
	a.Status = status
	a.UpdatedAt = &now
	r.activities[id] = a

	return &a, nil
}

func (r *ActivityRepository) DeleteActivity(_ context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[id]
	if !ok || a.OwnerID != ownerID {
		return storage.ErrActivityNotFound
	}
	delete(r.activities, id)

	return nil
}
