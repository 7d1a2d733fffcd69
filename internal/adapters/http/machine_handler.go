package http

import (
	"errors"
	"net/http"
	"strconv"

	"horizonx-machine/internal/adapters/http/request"
	"horizonx-machine/internal/adapters/http/response"
	"horizonx-machine/internal/adapters/http/validator"
	"horizonx-machine/internal/domain"

	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 60
	maxHistoryLimit     = 1000
)

type MachineHandler struct {
	svc       domain.MachineService
	usage     domain.UsageReader
	stream    domain.UsageStream
	bus       domain.EventBus
	machineID uuid.UUID

	decoder   request.RequestDecoder
	writer    response.ResponseWriter
	validator validator.Validator
}

type MachineHandlerDeps struct {
	Service   domain.MachineService
	Usage     domain.UsageReader
	Stream    domain.UsageStream
	Bus       domain.EventBus
	MachineID uuid.UUID
}

// NewMachineHandler accepts a nil Stream when redis is unavailable.
func NewMachineHandler(
	deps MachineHandlerDeps,
	d request.RequestDecoder,
	w response.ResponseWriter,
	v validator.Validator,
) *MachineHandler {
	return &MachineHandler{
		svc:       deps.Service,
		usage:     deps.Usage,
		stream:    deps.Stream,
		bus:       deps.Bus,
		machineID: deps.MachineID,
		decoder:   d,
		writer:    w,
		validator: v,
	}
}

func (h *MachineHandler) Info(w http.ResponseWriter, r *http.Request) {
	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: h.svc.SystemInfo(r.Context()),
	})
}

func (h *MachineHandler) Graphics(w http.ResponseWriter, r *http.Request) {
	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: h.svc.GraphicsStatus(r.Context()),
	})
}

// Status serves the latest collected report. Polling the monitor here would
// move the baselines under the collector.
func (h *MachineHandler) Status(w http.ResponseWriter, r *http.Request) {
	report, ok := h.usage.Latest()
	if !ok {
		h.writer.Write(w, http.StatusNotFound, &response.Response{
			Message: "usage not collected yet",
		})
		return
	}

	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: report,
	})
}

func (h *MachineHandler) Processes(w http.ResponseWriter, r *http.Request) {
	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: h.svc.TrackedProcesses(),
	})
}

func (h *MachineHandler) TrackProcess(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.TrackProcessRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
		return
	}

	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.writer.WriteValidationError(w, errs)
		return
	}

	if err := h.svc.TrackProcess(r.Context(), req.PID); err != nil {
		switch {
		case errors.Is(err, domain.ErrProcessNotFound):
			h.writer.Write(w, http.StatusNotFound, &response.Response{
				Message: "process not found",
			})
		case errors.Is(err, domain.ErrSampling):
			h.writer.Write(w, http.StatusServiceUnavailable, &response.Response{
				Message: "failed to read process table",
			})
		default:
			h.writer.Write(w, http.StatusInternalServerError, &response.Response{
				Message: "failed to track process",
			})
		}
		return
	}

	evt := domain.ProcessTrackingChanged{MachineID: h.machineID, PID: req.PID}
	h.bus.Publish(domain.EventProcessTracked, evt)

	h.writer.Write(w, http.StatusCreated, &response.Response{
		Message: "process tracked",
		Data:    evt,
	})
}

func (h *MachineHandler) UntrackProcess(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.ParseInt(r.PathValue("pid"), 10, 32)
	if err != nil || pid <= 0 {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: "invalid pid",
		})
		return
	}

	h.svc.UntrackProcess(int32(pid))

	evt := domain.ProcessTrackingChanged{MachineID: h.machineID, PID: int32(pid)}
	h.bus.Publish(domain.EventProcessUntracked, evt)

	h.writer.Write(w, http.StatusOK, &response.Response{
		Message: "process untracked",
		Data:    evt,
	})
}

func (h *MachineHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.stream == nil {
		h.writer.Write(w, http.StatusServiceUnavailable, &response.Response{
			Message: "usage history unavailable",
		})
		return
	}

	limit := int64(defaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			h.writer.Write(w, http.StatusBadRequest, &response.Response{
				Message: "invalid limit",
			})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	reports, err := h.stream.Recent(r.Context(), h.machineID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrUsageNotFound) {
			h.writer.Write(w, http.StatusNotFound, &response.Response{
				Message: "usage history not found",
			})
			return
		}

		h.writer.Write(w, http.StatusInternalServerError, &response.Response{
			Message: "failed to get usage history",
		})
		return
	}

	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: reports,
		Meta: map[string]int64{"limit": limit},
	})
}
