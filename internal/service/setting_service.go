package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/repository"
)

var ErrUnknownSetting = errors.New("unknown setting key")

// knownSettings whitelists the runtime-tunable keys and their defaults.
// Unknown keys are rejected so a typo cannot silently create a dead
// setting.
var knownSettings = map[string]string{
	"registration_enabled": "true",
	"tutor_enabled":        "true",
	"maintenance_banner":   "",
}

// SettingService manages runtime application settings.
type SettingService struct {
	settingRepo *repository.SettingRepository
	log         zerolog.Logger
}

// NewSettingService creates a new SettingService.
func NewSettingService(settingRepo *repository.SettingRepository, log zerolog.Logger) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		log:         log.With().Str("component", "setting_service").Logger(),
	}
}

// GetAllSettings returns every known setting, merging stored overrides
// over the defaults.
func (s *SettingService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settingsMap := make(map[string]string, len(knownSettings))
	for key, def := range knownSettings {
		settingsMap[key] = def
	}

	stored, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}
	for _, setting := range stored {
		if _, known := knownSettings[setting.Key]; known {
			settingsMap[setting.Key] = setting.Value
		}
	}
	return settingsMap, nil
}

// UpdateSettings upserts the given keys. Settings are low volume, so an
// iterative upsert is fine.
func (s *SettingService) UpdateSettings(ctx context.Context, settingsMap map[string]string) error {
	for key := range settingsMap {
		if _, known := knownSettings[key]; !known {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
		}
	}

	for key, value := range settingsMap {
		if err := s.settingRepo.Upsert(ctx, key, value); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("failed to update setting")
			return err
		}
	}
	return nil
}

// TutorEnabled reports whether the tutor surface is switched on.
func (s *SettingService) TutorEnabled(ctx context.Context) bool {
	return s.settingRepo.GetBool(ctx, "tutor_enabled", true)
}
