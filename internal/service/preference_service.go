package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "kidtimer/internal/errors"
	"kidtimer/internal/model"
	"kidtimer/internal/preferences"
	"kidtimer/internal/repository"
)

type PreferenceService struct {
	prefRepo *repository.PreferenceRepository
	logger   *zap.Logger
}

func NewPreferenceService(prefRepo *repository.PreferenceRepository, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{prefRepo: prefRepo, logger: logger}
}

// UpdatePreferencesInput holds optional fields; nil fields are left alone.
type UpdatePreferencesInput struct {
	LastPresetID          *string
	CustomDurationSeconds *int
	SelectedSoundID       *string
}

func (s *PreferenceService) Get(ctx context.Context, userID string) (*model.UserPreferences, *apperrors.APIError) {
	prefs := s.store(userID).Load(ctx)
	return &prefs, nil
}

func (s *PreferenceService) Update(ctx context.Context, userID string, input UpdatePreferencesInput) (*model.UserPreferences, *apperrors.APIError) {
	if input.LastPresetID != nil {
		if _, ok := model.FindPreset(*input.LastPresetID); !ok {
			return nil, apperrors.Invalid("lastPresetId", "invalid_preset", "unknown timer preset")
		}
	}
	if input.CustomDurationSeconds != nil {
		if !model.IsValidCustomSeconds(*input.CustomDurationSeconds) {
			return nil, apperrors.Invalid("customDurationSeconds", "invalid_duration", "customDurationSeconds must be between 60 and 3600")
		}
	}
	if input.SelectedSoundID != nil && !model.IsValidSound(*input.SelectedSoundID) {
		return nil, apperrors.Invalid("selectedSoundId", "invalid_sound", "unknown sound")
	}

	store := s.store(userID)
	var err error
	if input.LastPresetID != nil {
		err = errors.Join(err, store.SavePreset(ctx, *input.LastPresetID))
	}
	if input.CustomDurationSeconds != nil {
		err = errors.Join(err, store.SaveCustomDuration(ctx, *input.CustomDurationSeconds))
	}
	if input.SelectedSoundID != nil {
		err = errors.Join(err, store.SaveSound(ctx, *input.SelectedSoundID))
	}
	if err != nil {
		s.logger.Error("save preferences", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to save preferences")
	}

	prefs := store.Load(ctx)
	return &prefs, nil
}

func (s *PreferenceService) store(userID string) *preferences.Store {
	return preferences.NewStore(&userBackend{repo: s.prefRepo, userID: userID}, s.logger)
}

// userBackend scopes the preference table to one user.
type userBackend struct {
	repo   *repository.PreferenceRepository
	userID string
}

func (b *userBackend) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := b.repo.Get(ctx, b.userID, key)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (b *userBackend) Set(ctx context.Context, key, value string) error {
	return b.repo.Put(ctx, b.userID, key, value)
}
