package backend

import (
	"context"
	"strings"
	"time"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

const msgInvalidStatus = "Not a valid choice."

type ActivityService struct {
	repo storage.ActivityRepository
	now  func() time.Time
}

func NewActivityService(repo storage.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo, now: time.Now}
}

func (s *ActivityService) List(ctx context.Context, ownerID int64) ([]models.Activity, error) {
	return s.repo.ListActivities(ctx, ownerID)
}

func (s *ActivityService) Create(ctx context.Context, ownerID int64, req models.CreateActivityRequest) (*models.Activity, error) {
	errs := fieldErrors{}
	if strings.TrimSpace(req.Title) == "" {
		errs.add("title", msgRequired)
	}
	if !req.Status.Valid() {
		errs.add("status", msgInvalidStatus)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return s.repo.CreateActivity(ctx, models.Activity{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	})
}

func (s *ActivityService) Update(ctx context.Context, ownerID, id int64, req models.UpdateActivityRequest) (*models.Activity, error) {
	if !req.Status.Valid() {
		return nil, &ValidationError{Fields: map[string][]string{"status": {msgInvalidStatus}}}
	}
	return s.repo.UpdateActivityStatus(ctx, ownerID, id, req.Status, s.now().UTC())
}

func (s *ActivityService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.repo.DeleteActivity(ctx, ownerID, id)
}
