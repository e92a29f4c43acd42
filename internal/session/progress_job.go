package session

import (
	"context"
	"time"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/models"
)

// progressJob pushes one learn-mode progress tick to the backend.
type progressJob struct {
	backend   api.Backend
	sessionID string
	entry     models.ProgressEntry
}

func (j *progressJob) Name() string { return "progress-tick" }

func (j *progressJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return j.backend.TrackLearningProgress(ctx, j.sessionID, []models.ProgressEntry{j.entry})
}
