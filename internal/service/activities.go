package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rryowa/fitness_session/internal/models"
)

const activitiesPath = "/activities/"

func activityPath(id int64) string {
	return fmt.Sprintf("%s%d/", activitiesPath, id)
}

func (s *SessionService) ListActivities(ctx context.Context) ([]models.Activity, error) {
	var out []models.Activity
	if err := s.call(ctx, ErrFetchFailed, http.MethodGet, activitiesPath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Activity{}
	}
	return out, nil
}

func (s *SessionService) CreateActivity(ctx context.Context, data models.CreateActivityRequest) (*models.Activity, error) {
	var out models.Activity
	if err := s.call(ctx, ErrCreateFailed, http.MethodPost, activitiesPath, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SessionService) UpdateActivity(ctx context.Context, id int64, data models.UpdateActivityRequest) (*models.Activity, error) {
	var out models.Activity
	if err := s.call(ctx, ErrUpdateFailed, http.MethodPatch, activityPath(id), data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SessionService) DeleteActivity(ctx context.Context, id int64) error {
	return s.call(ctx, ErrDeleteFailed, http.MethodDelete, activityPath(id), nil, nil)
}
