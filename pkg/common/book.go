package common

import (
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

// BookLevel is one (price, size) rung of an order-book side. Level slices
// are ordered best-price-first: ascending for asks, descending for bids.
type BookLevel struct {
	Price fixed.Point `json:"price"`
	Size  fixed.Point `json:"size"`
}

// Fill describes how an order executed. Size may be smaller than the order
// size for limit orders; market fills always report the full size.
type Fill struct {
	Price fixed.Point `json:"price"`
	Size  fixed.Point `json:"size"`
	Maker bool        `json:"maker"`
}
