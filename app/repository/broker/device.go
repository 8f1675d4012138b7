package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"labstock-service/app/domain"

	"github.com/nats-io/nats.go/jetstream"
)

type deviceCommander struct {
	js jetstream.JetStream
}

func NewDeviceCommander(stream jetstream.JetStream) domain.DeviceCommander {
	return &deviceCommander{
		js: stream,
	}
}

func (d *deviceCommander) SendWithdrawCommand(ctx context.Context, deviceID string, slot int) error {
	command := domain.DeviceCommand{
		DeviceID: deviceID,
		Action:   "withdraw",
		Slot:     slot,
	}

	msg, err := json.Marshal(command)
	if err != nil {
		slog.ErrorContext(ctx, "[deviceCommander] SendWithdrawCommand", "json.Marshal", err)
		return err
	}

	subject := fmt.Sprintf("devices.%s.withdraw", deviceID)
	if _, err = d.js.Publish(ctx, subject, msg); err != nil {
		slog.ErrorContext(ctx, "[deviceCommander] SendWithdrawCommand", "Publish", err)
		return err
	}

	slog.InfoContext(ctx, "[deviceCommander] SendWithdrawCommand", "subject", subject)
	return nil
}
