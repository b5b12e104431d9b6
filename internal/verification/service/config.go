package service

import (
	"context"
	"errors"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
	dErrors "bridgeid/pkg/domain-errors"
)

// Initialize stores the bootstrap owner and responder configuration if no
// settings exist yet. It reports whether it created them; existing settings win.
func (s *Service) Initialize(ctx context.Context, owner common.Address, cfg models.ResponderConfig) (bool, error) {
	if id.IsZeroAddress(owner) {
		return false, dErrors.New(dErrors.CodeInvalidInput, "owner cannot be the zero address")
	}
	if id.IsZeroAddress(cfg.ResponderAddress) {
		return false, dErrors.New(dErrors.CodeInvalidInput, "responder cannot be the zero address")
	}
	if err := models.ValidateCorrelationTag(cfg.CorrelationTag); err != nil {
		return false, err
	}
	if err := models.ValidateFee(cfg.FeeAmount); err != nil {
		return false, err
	}

	var created bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		var err error
		created, err = stores.Settings.Initialize(ctx, &models.Settings{
			Owner:     owner,
			Responder: cfg,
			UpdatedAt: s.now(),
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize settings")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		s.logAudit(ctx, "settings_initialized",
			"owner", owner.Hex(),
			"responder", cfg.ResponderAddress.Hex(),
			"mock_mode", cfg.MockModeEnabled,
		)
	}
	return created, nil
}

// Config returns the current owner and responder configuration.
func (s *Service) Config(ctx context.Context) (*models.Settings, error) {
	settings, err := s.stores.Settings.Load(ctx)
	if err != nil {
		return nil, wrapSettingsErr(err, "failed to load settings")
	}
	return settings, nil
}

// Owner returns the current owner.
func (s *Service) Owner(ctx context.Context) (common.Address, error) {
	settings, err := s.Config(ctx)
	if err != nil {
		return common.Address{}, err
	}
	return settings.Owner, nil
}

func (s *Service) SetResponderAddress(ctx context.Context, caller, responder common.Address) error {
	return s.asOwner(ctx, caller, "responder_address", func(settings *models.Settings) (models.Event, error) {
		if id.IsZeroAddress(responder) {
			return models.Event{}, dErrors.New(dErrors.CodeInvalidInput, "responder cannot be the zero address")
		}
		previous := settings.Responder.ResponderAddress
		settings.Responder.ResponderAddress = responder
		return models.Event{
			Kind:     models.EventResponderAddressUpdated,
			Previous: previous.Hex(),
			Current:  responder.Hex(),
		}, nil
	})
}

// SetCorrelationTag replaces the tag sent with future requests. Pending requests
// keep the tag they were created with.
func (s *Service) SetCorrelationTag(ctx context.Context, caller common.Address, tag []byte) error {
	return s.asOwner(ctx, caller, "correlation_tag", func(settings *models.Settings) (models.Event, error) {
		if err := models.ValidateCorrelationTag(tag); err != nil {
			return models.Event{}, err
		}
		previous := settings.Responder.CorrelationTag
		settings.Responder.CorrelationTag = append([]byte(nil), tag...)
		return models.Event{
			Kind:     models.EventCorrelationTagUpdated,
			Previous: hexutil.Encode(previous),
			Current:  hexutil.Encode(tag),
		}, nil
	})
}

func (s *Service) SetFeeAmount(ctx context.Context, caller common.Address, amount *big.Int) error {
	return s.asOwner(ctx, caller, "fee_amount", func(settings *models.Settings) (models.Event, error) {
		if err := models.ValidateFee(amount); err != nil {
			return models.Event{}, err
		}
		previous := settings.Responder.FeeAmount
		settings.Responder.FeeAmount = new(big.Int).Set(amount)
		return models.Event{
			Kind:     models.EventFeeAmountUpdated,
			Previous: previous.String(),
			Current:  amount.String(),
		}, nil
	})
}

func (s *Service) SetMockModeEnabled(ctx context.Context, caller common.Address, enabled bool) error {
	return s.asOwner(ctx, caller, "mock_mode", func(settings *models.Settings) (models.Event, error) {
		previous := settings.Responder.MockModeEnabled
		settings.Responder.MockModeEnabled = enabled
		return models.Event{
			Kind:     models.EventMockModeUpdated,
			Previous: strconv.FormatBool(previous),
			Current:  strconv.FormatBool(enabled),
		}, nil
	})
}

// TransferOwnership hands every owner capability to newOwner.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	return s.asOwner(ctx, caller, "owner", func(settings *models.Settings) (models.Event, error) {
		if id.IsZeroAddress(newOwner) {
			return models.Event{}, dErrors.New(dErrors.CodeInvalidInput, "new owner cannot be the zero address")
		}
		previous := settings.Owner
		settings.Owner = newOwner
		return models.Event{
			Kind:     models.EventOwnershipTransferred,
			Previous: previous.Hex(),
			Current:  newOwner.Hex(),
		}, nil
	})
}

func isAccessError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrNotOwner)
}
