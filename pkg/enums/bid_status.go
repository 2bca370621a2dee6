package enums

import "fmt"

// BidStatus tracks where a bid sits in the proposal workflow.
type BidStatus string

const (
	BidStatusDraft    BidStatus = "draft"
	BidStatusSent     BidStatus = "sent"
	BidStatusApproved BidStatus = "approved"
	BidStatusDeclined BidStatus = "declined"
)

var validBidStatuses = []BidStatus{
	BidStatusDraft,
	BidStatusSent,
	BidStatusApproved,
	BidStatusDeclined,
}

// String implements fmt.Stringer.
func (b BidStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BidStatus.
func (b BidStatus) IsValid() bool {
	for _, candidate := range validBidStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBidStatus converts raw input into a BidStatus.
func ParseBidStatus(value string) (BidStatus, error) {
	for _, candidate := range validBidStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bid status %q", value)
}
