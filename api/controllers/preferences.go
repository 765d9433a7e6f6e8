package controllers

import (
	"net/http"

	"github.com/gebeyalink/storefront/api/responses"
	"github.com/gebeyalink/storefront/api/validators"
	prefsvc "github.com/gebeyalink/storefront/internal/preferences"
	"github.com/gebeyalink/storefront/pkg/enums"
	"github.com/gebeyalink/storefront/pkg/logger"
)

// PreferencesGet returns the session's display preferences with defaults
// applied.
func PreferencesGet(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

type setPreferenceRequest struct {
	Value string `json:"value" validate:"required"`
}

func setPreference(logg *logger.Logger, apply func(r *http.Request, sessionID, value string) (*prefsvc.Settings, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setPreferenceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := apply(r, id, payload.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// PreferencesSetLanguage stores the display language.
func PreferencesSetLanguage(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setPreference(logg, func(r *http.Request, sessionID, value string) (*prefsvc.Settings, error) {
		return svc.SetLanguage(r.Context(), sessionID, value)
	})
}

// PreferencesSetCurrency stores the display currency.
func PreferencesSetCurrency(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setPreference(logg, func(r *http.Request, sessionID, value string) (*prefsvc.Settings, error) {
		return svc.SetCurrency(r.Context(), sessionID, value)
	})
}

// PreferencesSetRegion stores the delivery region.
func PreferencesSetRegion(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setPreference(logg, func(r *http.Request, sessionID, value string) (*prefsvc.Settings, error) {
		return svc.SetRegion(r.Context(), sessionID, value)
	})
}

// PreferencesRegions lists the accepted delivery regions.
func PreferencesRegions(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"regions": enums.Regions()})
	}
}
