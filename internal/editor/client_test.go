package editor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
	"github.com/bidboard/bidboard-backend/pkg/types"
)

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank base url")
	}
}

func TestClientGetBidDecodesEnvelope(t *testing.T) {
	t.Parallel()

	bidID := uuid.New()
	doorID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/bids/"+bidID.String() {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: Bid{
			ID:     bidID,
			Status: "draft",
			Doors:  []Door{{ID: doorID, BidID: bidID, DoorNumber: 1}},
		}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	bid, err := client.GetBid(context.Background(), bidID)
	if err != nil {
		t.Fatalf("GetBid: %v", err)
	}
	if bid.ID != bidID || len(bid.Doors) != 1 || bid.Doors[0].ID != doorID {
		t.Fatalf("bid = %+v", bid)
	}
}

func TestClientUpdateLineItemSendsNumbersNotStrings(t *testing.T) {
	t.Parallel()

	doorID := uuid.New()
	itemID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		// Numeric fields must be JSON numbers and description a string.
		var qty float64
		if err := json.Unmarshal(raw["quantity"], &qty); err != nil || qty != 2 {
			t.Errorf("quantity payload %s: %v", raw["quantity"], err)
		}
		var desc string
		if err := json.Unmarshal(raw["description"], &desc); err != nil {
			t.Errorf("description payload %s: %v", raw["description"], err)
		}
		_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: LineItem{ID: itemID, DoorID: doorID}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	fields := Fields{Description: "Entry door", Quantity: 2, Price: 10, Hardware: 5}
	if _, err := client.UpdateLineItem(context.Background(), doorID, itemID, fields); err != nil {
		t.Fatalf("UpdateLineItem: %v", err)
	}
}

func TestClientMapsErrorEnvelopeToCodedError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: types.APIError{
			Code:    string(pkgerrors.CodeNotFound),
			Message: "resource not found",
		}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.GetBid(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("got %v, want coded not-found", err)
	}
}

func TestClientMapsBareStatusToCode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = client.DeleteLineItem(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("got %v, want coded validation error", err)
	}
}

func TestClientSaveChangesHitsBulkRoute(t *testing.T) {
	t.Parallel()

	bidID := uuid.New()
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req SaveChangesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(req.Doors) != 1 {
			t.Errorf("doors = %+v", req.Doors)
		}
		_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: map[string]bool{"ok": true}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	req := SaveChangesRequest{Doors: []DoorChanges{{DoorID: uuid.New()}}}
	if err := client.SaveChanges(context.Background(), bidID, req); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}
	if want := "/api/v1/bids/" + bidID.String() + "/save-changes"; gotPath != want {
		t.Fatalf("path = %s, want %s", gotPath, want)
	}
}

func TestClientImplementsBidAPI(t *testing.T) {
	t.Parallel()

	var _ BidAPI = (*Client)(nil)
}
