package preferences

import (
	"context"
	"fmt"

	"github.com/gebeyalink/storefront/pkg/enums"
	pkgerrors "github.com/gebeyalink/storefront/pkg/errors"
	"github.com/gebeyalink/storefront/pkg/logger"
)

const (
	nameLanguage = "language"
	nameCurrency = "currency"
	nameRegion   = "region"
)

// Settings is the full preference view for a session, with defaults applied
// for anything never set.
type Settings struct {
	Language enums.Language `json:"language"`
	Currency enums.Currency `json:"currency"`
	Region   enums.Region   `json:"region,omitempty"`
}

// Service reads and writes per-session display preferences.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Settings, error)
	SetLanguage(ctx context.Context, sessionID, value string) (*Settings, error)
	SetCurrency(ctx context.Context, sessionID, value string) (*Settings, error)
	SetRegion(ctx context.Context, sessionID, value string) (*Settings, error)
}

type service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("preference store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, logger: logg}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Settings, error) {
	settings := &Settings{
		Language: enums.LanguageEnglish,
		Currency: enums.CurrencyETB,
	}

	if raw, ok, err := s.store.Get(ctx, sessionID, nameLanguage); err != nil {
		return nil, err
	} else if ok {
		if lang, err := enums.ParseLanguage(raw); err == nil {
			settings.Language = lang
		}
	}

	if raw, ok, err := s.store.Get(ctx, sessionID, nameCurrency); err != nil {
		return nil, err
	} else if ok {
		if currency, err := enums.ParseCurrency(raw); err == nil {
			settings.Currency = currency
		}
	}

	if raw, ok, err := s.store.Get(ctx, sessionID, nameRegion); err != nil {
		return nil, err
	} else if ok {
		if region, err := enums.ParseRegion(raw); err == nil {
			settings.Region = region
		}
	}

	return settings, nil
}

func (s *service) SetLanguage(ctx context.Context, sessionID, value string) (*Settings, error) {
	lang, err := enums.ParseLanguage(value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported language")
	}
	if err := s.store.Set(ctx, sessionID, nameLanguage, lang.String()); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *service) SetCurrency(ctx context.Context, sessionID, value string) (*Settings, error) {
	currency, err := enums.ParseCurrency(value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	if err := s.store.Set(ctx, sessionID, nameCurrency, currency.String()); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *service) SetRegion(ctx context.Context, sessionID, value string) (*Settings, error) {
	region, err := enums.ParseRegion(value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported region")
	}
	if err := s.store.Set(ctx, sessionID, nameRegion, region.String()); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}
