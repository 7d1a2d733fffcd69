package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	WsEventUsageReported = "usage.reported"
	WsEventProcessAdded  = "process.tracked"
	WsEventProcessGone   = "process.untracked"
)

type WsClientMessage struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type WsServerEvent struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

type ProcessTrackingChanged struct {
	MachineID uuid.UUID `json:"machine_id"`
	PID       int32     `json:"pid"`
}

func GetMachineUsageChannel(machineID uuid.UUID) string {
	return fmt.Sprintf("machine:%s:usage", machineID)
}

func GetMachineProcessesChannel(machineID uuid.UUID) string {
	return fmt.Sprintf("machine:%s:processes", machineID)
}

func GetMachineUsageStream(machineID uuid.UUID) string {
	return fmt.Sprintf("machine:%s:usage:stream", machineID)
}

const (
	EventUsageReported    = "usage_reported"
	EventProcessTracked   = "process_tracked"
	EventProcessUntracked = "process_untracked"
)

type EventBus interface {
	Publish(eventName string, event any)
}
