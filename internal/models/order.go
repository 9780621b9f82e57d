package models

// OrderRecord is a single row of the order table.
//
// Price and DeliveryDelay hold NaN when the source cell is empty or not numeric.
// Location is nil when either coordinate is missing; such rows never reach a map view.
type OrderRecord struct {
	SellerCity    string       // SellerCity is the city the order is attributed to.
	Price         float64      // Price is the revenue contribution of the order.
	DeliveryDelay float64      // DeliveryDelay is actual minus estimated delivery, in days.
	Location      *Coordinates // Location is the geolocation of the order, if known.
}

// Located reports whether the record can be placed on a map.
func (o OrderRecord) Located() bool {
	return o.Location != nil
}
