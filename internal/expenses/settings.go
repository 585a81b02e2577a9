package expenses

import (
	"context"
	"strings"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/sanitize"
	"github.com/Veraticus/homehub/internal/service"
)

// Settings returns the expense settings with defaults applied.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	values, err := s.store.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	settings := model.SettingsFromValues(values)
	if strings.TrimSpace(values[model.SettingCurrency]) == "" {
		settings.Currency = s.currency
	}
	return settings, nil
}

// UpdateSettings stores the currency symbol and category list. Only the
// configured administrator may change them.
func (s *Service) UpdateSettings(ctx context.Context, user, currency, categories string) (model.Settings, error) {
	if !s.policy.IsOwnerAdmin(user) {
		return model.Settings{}, common.Forbidden("update expense settings")
	}

	currency = sanitize.Text(currency)
	normalized := strings.Join(model.SplitCategories(sanitize.Text(categories)), ",")

	err := s.store.WithTx(ctx, func(tx service.Store) error {
		if err := tx.PutSetting(ctx, model.SettingCurrency, currency); err != nil {
			return err
		}
		return tx.PutSetting(ctx, model.SettingCategories, normalized)
	})
	if err != nil {
		return model.Settings{}, err
	}
	return s.Settings(ctx)
}
