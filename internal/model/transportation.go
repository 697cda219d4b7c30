package model

import "time"

// Transport type values stored in transportations.transport_type.
const (
	TransportPublic  = "public"
	TransportPrivate = "private"
	TransportWalking = "walking"
)

// Passenger type values for private transport.
const (
	PassengerDriver  = "driver"
	PassengerCarpool = "carpool"
)

// Transportation describes how a registrant travels to the venue.  A
// registrant has at most one record and the record cannot exist
// without its registrant.  It is created together with the
// registrant when transport information was provided and may later be
// replaced wholesale by an admin edit.
//
// Which optional fields are populated depends on TransportType:
// public transport carries a subtype (or free text), private
// transport carries a vehicle type, fuel type and passenger type
// (each with an "other" free-text escape), and walking carries
// nothing further.
type Transportation struct {
	ID              uint64    // transportations.id
	RegistrantID    uint64    // transportations.registrant_id
	TransportType   string    // transportations.transport_type
	PublicSubtypeID *uint64   // transportations.public_subtype_id (nullable)
	PublicOther     *string   // transportations.public_other (nullable)
	VehicleTypeID   *uint64   // transportations.vehicle_type_id (nullable)
	VehicleOther    *string   // transportations.vehicle_other (nullable)
	FuelType        *string   // transportations.fuel_type (nullable)
	FuelOther       *string   // transportations.fuel_other (nullable)
	PassengerType   *string   // transportations.passenger_type (nullable)
	CreatedAt       time.Time // transportations.created_at
}

// GiftEligible is the single authoritative gift-eligibility rule: a
// registrant who travels by public transport or on foot qualifies for
// the souvenir.  Every display or UI gate goes through this function
// rather than re-deriving the condition.
func GiftEligible(transportType string) bool {
	return transportType == TransportPublic || transportType == TransportWalking
}
