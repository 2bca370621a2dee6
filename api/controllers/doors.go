package controllers

import (
	"net/http"

	"github.com/bidboard/bidboard-backend/api/responses"
	"github.com/bidboard/bidboard-backend/api/validators"
	"github.com/bidboard/bidboard-backend/internal/bids"
	"github.com/bidboard/bidboard-backend/pkg/logger"
)

type duplicateDoorRequest struct {
	TargetNumbers []int `json:"target_numbers" validate:"required,min=1"`
}

// CreateDoor adds a door to a bid. A zero door number means "next available".
func CreateDoor(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bidID, err := parseUUIDParam(r, "bidId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input bids.CreateDoorInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBidID(ctx, bidID.String())
		}

		dto, err := svc.CreateDoor(ctx, bidID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// DuplicateDoor fans a door out to a set of new door numbers, all or nothing.
func DuplicateDoor(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doorID, err := parseUUIDParam(r, "doorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input duplicateDoorRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDoorID(ctx, doorID.String())
		}

		result, err := svc.DuplicateDoor(ctx, doorID, input.TargetNumbers)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// DeleteDoor removes a door and its line items.
func DeleteDoor(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doorID, err := parseUUIDParam(r, "doorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDoorID(ctx, doorID.String())
		}

		if err := svc.DeleteDoor(ctx, doorID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"ok": true})
	}
}
