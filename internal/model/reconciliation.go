// Package model defines the core domain models used throughout the application.
package model

// DiscrepancyFlag categorizes the outcome of comparing one warehouse item
// against its best partner listing.
type DiscrepancyFlag string

// Discrepancy flag constants.
const (
	FlagMatch       DiscrepancyFlag = "match"
	FlagShortage    DiscrepancyFlag = "shortage"
	FlagSurplus     DiscrepancyFlag = "surplus"
	FlagUnpredicted DiscrepancyFlag = "unpredicted"
	FlagUnmatched   DiscrepancyFlag = "unmatched"
)

// PredictedQuery is a candidate search term set produced by the parameter
// predictor for one stock item. Terms are tried in order.
type PredictedQuery struct {
	SourceItemID string
	Terms        []string
	Confidence   float64
}

// PartnerListing is a candidate product scraped from the partner catalogue.
// Price and AvailableQuantity are nil when the listing did not expose them.
type PartnerListing struct {
	Title             string
	Price             *float64
	AvailableQuantity *float64
	MatchTerm         string
}

// ReconciliationRow is the per-item comparison result handed to the
// presenter. Listing is nil when no candidate cleared the match threshold.
type ReconciliationRow struct {
	Item    StockItem
	Listing *PartnerListing
	Flag    DiscrepancyFlag
}

// CompareFlag derives the discrepancy flag for a matched listing. Quantity
// wins when both sides carry it; otherwise prices are compared. A listing
// with neither quantity nor price still counts as a match on presence.
func CompareFlag(item StockItem, listing *PartnerListing) DiscrepancyFlag {
	if listing == nil {
		return FlagUnmatched
	}

	if listing.AvailableQuantity != nil {
		switch {
		case item.Quantity < *listing.AvailableQuantity:
			return FlagShortage
		case item.Quantity > *listing.AvailableQuantity:
			return FlagSurplus
		default:
			return FlagMatch
		}
	}

	if listing.Price != nil && item.UnitPrice != nil {
		switch {
		case *item.UnitPrice < *listing.Price:
			return FlagShortage
		case *item.UnitPrice > *listing.Price:
			return FlagSurplus
		default:
			return FlagMatch
		}
	}

	return FlagMatch
}
