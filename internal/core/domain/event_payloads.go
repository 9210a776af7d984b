package domain

import "time"

// VehicleSnapshot is the latest known set of vehicle positions.
type VehicleSnapshot struct {
	Vehicles  []Record
	UpdatedAt time.Time
	// LastError is the most recent feed failure since the last success.
	LastError string
	// Stale is set when the latest poll failed and older data is served.
	Stale bool
}

// Clone returns a copy whose vehicle slice can be handed to callers.
func (s VehicleSnapshot) Clone() VehicleSnapshot {
	vehicles := make([]Record, len(s.Vehicles))
	copy(vehicles, s.Vehicles)
	s.Vehicles = vehicles
	return s
}

// VehicleSnapshotPayload matches the API response shape for vehicle snapshots.
type VehicleSnapshotPayload struct {
	Vehicles  []Record `json:"vehicles"`
	Count     int      `json:"count"`
	UpdatedAt *string  `json:"updatedAt"`
	Stale     bool     `json:"stale"`
	LastError string   `json:"lastError,omitempty"`
}

// NewVehicleSnapshotPayload builds the wire shape from a snapshot.
func NewVehicleSnapshotPayload(s VehicleSnapshot) VehicleSnapshotPayload {
	var updatedAt *string
	if !s.UpdatedAt.IsZero() {
		value := s.UpdatedAt.UTC().Format(time.RFC3339)
		updatedAt = &value
	}

	vehicles := s.Vehicles
	if vehicles == nil {
		vehicles = []Record{}
	}

	return VehicleSnapshotPayload{
		Vehicles:  vehicles,
		Count:     len(vehicles),
		UpdatedAt: updatedAt,
		Stale:     s.Stale,
		LastError: s.LastError,
	}
}
