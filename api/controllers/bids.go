package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bidboard/bidboard-backend/api/responses"
	"github.com/bidboard/bidboard-backend/api/validators"
	"github.com/bidboard/bidboard-backend/internal/bids"
	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
	"github.com/bidboard/bidboard-backend/pkg/logger"
)

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name)
	}
	return id, nil
}

// ListBids pages through bids newest-first.
func ListBids(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			limit = parsed
		}

		result, err := svc.ListBids(r.Context(), bids.ListBidsInput{
			Cursor: r.URL.Query().Get("cursor"),
			Limit:  limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateBid opens a new draft bid.
func CreateBid(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input bids.CreateBidInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateBid(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// GetBid returns the bid snapshot with nested doors and line items.
func GetBid(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bidID, err := parseUUIDParam(r, "bidId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBidID(ctx, bidID.String())
		}

		dto, err := svc.GetBid(ctx, bidID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// SaveChanges applies a bulk save of changed rows in one transaction.
func SaveChanges(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bidID, err := parseUUIDParam(r, "bidId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input bids.SaveChangesInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBidID(ctx, bidID.String())
		}

		if err := svc.SaveChanges(ctx, bidID, input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"ok": true})
	}
}

// AutoSaveBid applies the best-effort background save.
func AutoSaveBid(svc bids.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bidID, err := parseUUIDParam(r, "bidId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input bids.AutoSaveInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBidID(ctx, bidID.String())
		}

		if err := svc.AutoSave(ctx, bidID, input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"ok": true})
	}
}
