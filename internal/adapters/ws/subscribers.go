package ws

import (
	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/event"

	"github.com/google/uuid"
)

// RegisterSubscribers forwards machine events from the bus to ws channels.
func RegisterSubscribers(bus *event.Bus, hub *Hub, machineID uuid.UUID) {
	bus.Subscribe(domain.EventUsageReported, func(event any) {
		report, ok := event.(domain.UsageReport)
		if !ok {
			return
		}

		hub.Broadcast(&domain.WsServerEvent{
			Channel: domain.GetMachineUsageChannel(report.MachineID),
			Event:   domain.WsEventUsageReported,
			Payload: report,
		})
	})

	forwardTracking := func(name string) event.Handler {
		return func(event any) {
			evt, ok := event.(domain.ProcessTrackingChanged)
			if !ok {
				return
			}

			hub.Broadcast(&domain.WsServerEvent{
				Channel: domain.GetMachineProcessesChannel(machineID),
				Event:   name,
				Payload: evt,
			})
		}
	}

	bus.Subscribe(domain.EventProcessTracked, forwardTracking(domain.WsEventProcessAdded))
	bus.Subscribe(domain.EventProcessUntracked, forwardTracking(domain.WsEventProcessGone))
}
