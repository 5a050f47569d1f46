package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "kidtimer/internal/errors"
	"kidtimer/internal/model"
	"kidtimer/internal/repository"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

type TimerSessionService struct {
	sessionRepo *repository.TimerSessionRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewTimerSessionService(sessionRepo *repository.TimerSessionRepository, logger *zap.Logger) *TimerSessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimerSessionService{
		sessionRepo: sessionRepo,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type BeginSessionInput struct {
	PresetID      string
	PresetLabel   string
	TotalDuration int
}

type FinishSessionInput struct {
	TimeSpent int
	Completed int
}

func (s *TimerSessionService) Begin(ctx context.Context, userID string, input BeginSessionInput) (*model.TimerSession, *apperrors.APIError) {
	if _, ok := model.FindPreset(input.PresetID); !ok {
		return nil, apperrors.Invalid("presetId", "invalid_preset", "unknown timer preset")
	}
	label := strings.TrimSpace(input.PresetLabel)
	if label == "" {
		return nil, apperrors.Invalid("presetLabel", "invalid_preset_label", "presetLabel is required")
	}
	if input.TotalDuration < 1 || input.TotalDuration > model.MaxTimerDurationSeconds {
		return nil, apperrors.Invalid("totalDuration", "invalid_duration", "totalDuration must be between 1 and 3600 seconds")
	}

	session := model.TimerSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		PresetID:      input.PresetID,
		PresetLabel:   label,
		TotalDuration: input.TotalDuration,
		TimeSpent:     0,
		Completed:     model.SessionInProgress,
		StartedAt:     s.now(),
	}
	if err := s.sessionRepo.Insert(ctx, &session); err != nil {
		s.logger.Error("insert timer session", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to record timer session")
	}
	return &session, nil
}

// Finish records the outcome of a session. Sessions owned by another user
// are reported as not found.
func (s *TimerSessionService) Finish(ctx context.Context, userID, sessionID string, input FinishSessionInput) (*model.TimerSession, *apperrors.APIError) {
	if input.Completed != model.SessionInProgress && input.Completed != model.SessionCompleted {
		return nil, apperrors.Invalid("completed", "invalid_completed", "completed must be 0 or 1")
	}

	session, err := s.sessionRepo.GetForUser(ctx, userID, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("session_not_found", "timer session not found")
	}
	if err != nil {
		s.logger.Error("load timer session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Internal("failed to load timer session")
	}

	session.TimeSpent = clamp(input.TimeSpent, 0, session.TotalDuration)
	session.Completed = input.Completed
	endedAt := s.now()
	session.EndedAt = &endedAt

	if err := s.sessionRepo.Finish(ctx, session); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("session_not_found", "timer session not found")
		}
		s.logger.Error("update timer session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Internal("failed to update timer session")
	}
	return session, nil
}

func (s *TimerSessionService) History(ctx context.Context, userID string, limit int) ([]model.TimerSession, *apperrors.APIError) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	sessions, err := s.sessionRepo.ListForUser(ctx, userID, limit)
	if err != nil {
		s.logger.Error("list timer sessions", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to load timer history")
	}
	return sessions, nil
}

func (s *TimerSessionService) Summary(ctx context.Context, userID string) (*model.SessionSummary, *apperrors.APIError) {
	summary, err := s.sessionRepo.SummaryForUser(ctx, userID)
	if err != nil {
		s.logger.Error("summarize timer sessions", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to summarize timer history")
	}
	return &summary, nil
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
