package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('ADMIN', 'PASSENGER', 'DRIVER');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'driver_availability') THEN
			CREATE TYPE driver_availability AS ENUM ('Available', 'Busy', 'Offline');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_type') THEN
			CREATE TYPE vehicle_type AS ENUM ('Sedan', 'SUV', 'Hatchback', 'Luxury');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'booking_status') THEN
			CREATE TYPE booking_status AS ENUM ('Pending', 'Confirmed', 'In Progress', 'Completed', 'Cancelled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_method') THEN
			CREATE TYPE payment_method AS ENUM ('Cash', 'Card', 'UPI', 'Wallet');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_status') THEN
			CREATE TYPE payment_status AS ENUM ('Pending', 'Completed', 'Failed');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(50) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role user_role NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_role ON accounts (role);`,
	`CREATE TABLE IF NOT EXISTS passengers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL UNIQUE,
		phone VARCHAR(20) NOT NULL UNIQUE,
		address TEXT,
		account_id UUID UNIQUE REFERENCES accounts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(100) NOT NULL,
		license_number VARCHAR(50) NOT NULL UNIQUE,
		phone VARCHAR(20) NOT NULL UNIQUE,
		email VARCHAR(100),
		availability driver_availability NOT NULL DEFAULT 'Available',
		account_id UUID UNIQUE REFERENCES accounts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_availability ON drivers (availability);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		model VARCHAR(100) NOT NULL,
		license_plate VARCHAR(20) NOT NULL UNIQUE,
		vehicle_type vehicle_type NOT NULL DEFAULT 'Sedan',
		color VARCHAR(30),
		year INT,
		driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_driver_id ON vehicles (driver_id);`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		passenger_id UUID NOT NULL REFERENCES passengers(id) ON DELETE CASCADE,
		driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		pickup_location VARCHAR(255) NOT NULL,
		destination VARCHAR(255) NOT NULL,
		status booking_status NOT NULL DEFAULT 'Pending',
		fare NUMERIC(10, 2),
		distance_km NUMERIC(10, 2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_passenger_id ON bookings (passenger_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_driver_id ON bookings (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings (status);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings (created_at);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		booking_id UUID NOT NULL UNIQUE REFERENCES bookings(id) ON DELETE CASCADE,
		amount NUMERIC(10, 2) NOT NULL,
		payment_method payment_method NOT NULL DEFAULT 'Cash',
		payment_status payment_status NOT NULL DEFAULT 'Pending',
		paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (payment_status);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_paid_at ON payments (paid_at);`,
	`CREATE TABLE IF NOT EXISTS booking_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		old_status booking_status,
		new_status booking_status NOT NULL,
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_booking_status_log_booking_id ON booking_status_log (booking_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
