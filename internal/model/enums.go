package model

import "strings"

// Enum values are stored in their display form ("In Progress", "UPI"), while
// API callers tend to send "IN_PROGRESS" or "upi". Matching is done on a
// normalized key.
func enumKey(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.ReplaceAll(value, "-", " ")
	return strings.Join(strings.Fields(value), " ")
}

func parseEnum[T ~string](raw string, known []T) (T, bool) {
	key := enumKey(raw)
	for _, v := range known {
		if enumKey(string(v)) == key {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func ParseBookingStatus(raw string) (BookingStatus, bool) {
	return parseEnum(raw, BookingStatuses)
}

func ParseAvailability(raw string) (Availability, bool) {
	return parseEnum(raw, Availabilities)
}

func ParseVehicleType(raw string) (VehicleType, bool) {
	return parseEnum(raw, VehicleTypes)
}

func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	return parseEnum(raw, PaymentMethods)
}

func ParsePaymentStatus(raw string) (PaymentStatus, bool) {
	return parseEnum(raw, PaymentStatuses)
}

func ParseUserRole(raw string) (UserRole, bool) {
	return parseEnum(raw, UserRoles)
}
