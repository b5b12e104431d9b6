package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/internal/verification/models"
)

// requireAuthenticated rejects the zero address, which stands for "no caller".
func requireAuthenticated(caller common.Address) error {
	if caller == (common.Address{}) {
		return ErrUnauthenticated
	}
	return nil
}

// requireOwner is the only ownership check; privileged operations reach it through asOwner.
func requireOwner(settings *models.Settings, caller common.Address) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if settings.Owner != caller {
		return ErrNotOwner
	}
	return nil
}

// ownerMutation changes settings in place and returns the event describing the change.
type ownerMutation func(settings *models.Settings) (models.Event, error)

// asOwner runs mutate under the ownership check inside one transaction.
// A rejected caller or a failed mutation leaves settings untouched and emits nothing.
func (s *Service) asOwner(ctx context.Context, caller common.Address, setting string, mutate ownerMutation) error {
	ctx, span := s.tracer.Start(ctx, "verification.config."+setting)
	var err error
	defer func() { span.End(err) }()

	var event models.Event
	err = s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		current, loadErr := stores.Settings.LoadForUpdate(ctx)
		if loadErr != nil {
			return wrapSettingsErr(loadErr, "failed to load settings")
		}
		if authErr := requireOwner(current, caller); authErr != nil {
			return authErr
		}

		updated := current.Clone()
		ev, mutateErr := mutate(updated)
		if mutateErr != nil {
			return mutateErr
		}
		updated.UpdatedAt = s.now()
		if saveErr := stores.Settings.Save(ctx, updated); saveErr != nil {
			return wrapSettingsErr(saveErr, "failed to save settings")
		}
		event = ev
		return nil
	})
	if err != nil {
		if isAccessError(err) {
			s.logDenied(ctx, setting, err, "caller", caller.Hex())
		}
		return err
	}

	event.Caller = caller.Hex()
	event.OccurredAt = s.now()
	s.emit(ctx, event)
	s.incrementConfigChange(setting)
	s.logAudit(ctx, string(event.Kind),
		"caller", caller.Hex(),
		"previous", event.Previous,
		"current", event.Current,
	)
	return nil
}
