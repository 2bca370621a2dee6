package controllers

import (
	"net/http"

	"github.com/bidboard/bidboard-backend/api/responses"
	"github.com/bidboard/bidboard-backend/api/validators"
	"github.com/bidboard/bidboard-backend/internal/bids"
	"github.com/bidboard/bidboard-backend/pkg/logger"
)

// CreateLineItem appends a row to a door.
func CreateLineItem(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doorID, err := parseUUIDParam(r, "doorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input bids.LineItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDoorID(ctx, doorID.String())
		}

		dto, err := svc.CreateLineItem(ctx, doorID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UpdateLineItem replaces the editable fields of a row.
func UpdateLineItem(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doorID, err := parseUUIDParam(r, "doorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input bids.LineItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDoorID(ctx, doorID.String())
		}

		dto, err := svc.UpdateLineItem(ctx, doorID, itemID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DeleteLineItem removes a row from a door.
func DeleteLineItem(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doorID, err := parseUUIDParam(r, "doorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDoorID(ctx, doorID.String())
		}

		if err := svc.DeleteLineItem(ctx, doorID, itemID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"ok": true})
	}
}
