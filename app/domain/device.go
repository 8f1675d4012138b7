package domain

import "context"

// DeviceCommand is the payload published to a dispenser device.
type DeviceCommand struct {
	DeviceID string `json:"device_id"`
	Action   string `json:"action"`
	Slot     int    `json:"slot"`
}

// DeviceCommander is the narrow capability the withdrawal flow needs from the
// device transport. Delivery is best effort: the caller decides whether a
// publish failure is fatal.
type DeviceCommander interface {
	SendWithdrawCommand(ctx context.Context, deviceID string, slot int) error
}
