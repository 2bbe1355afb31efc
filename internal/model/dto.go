package model

type DashboardStats struct {
	TotalPassengers  int64                     `json:"total_passengers"`
	TotalDrivers     int64                     `json:"total_drivers"`
	AvailableDrivers int64                     `json:"available_drivers"`
	TotalVehicles    int64                     `json:"total_vehicles"`
	TotalBookings    int64                     `json:"total_bookings"`
	BookingRevenue   float64                   `json:"booking_revenue"`
	PaymentRevenue   float64                   `json:"payment_revenue"`
	RevenueByMethod  map[PaymentMethod]float64 `json:"revenue_by_method"`
}

type FareEstimate struct {
	DistanceKm float64 `json:"distance_km"`
	BaseFare   float64 `json:"base_fare"`
	PerKm      float64 `json:"per_km"`
	Fare       float64 `json:"fare"`
}
