package model

import "time"

// Auction is an active listing. The listed item lives in escrow on the
// record itself (ItemID/ItemName snapshot) from creation until buyout;
// a settled auction is deleted rather than kept with a status flag.
type Auction struct {
	ID                string    `json:"id"`
	SellerID          string    `json:"seller_id"`
	SellerName        string    `json:"seller_name"`
	ItemID            string    `json:"item_id"`
	ItemName          string    `json:"item_name"`
	CurrentPrice      int64     `json:"current_price"`
	HighestBidderID   string    `json:"highest_bidder_id,omitempty"`
	HighestBidderName string    `json:"highest_bidder_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
