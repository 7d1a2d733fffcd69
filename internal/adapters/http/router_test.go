package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"horizonx-machine/internal/adapters/http/request"
	"horizonx-machine/internal/adapters/http/response"
	"horizonx-machine/internal/adapters/http/validator"
	"horizonx-machine/internal/config"
	"horizonx-machine/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMachine struct {
	mock.Mock
}

func (m *mockMachine) SystemInfo(ctx context.Context) domain.SystemInfo {
	return m.Called().Get(0).(domain.SystemInfo)
}

func (m *mockMachine) GraphicsStatus(ctx context.Context) []domain.GraphicsUsage {
	return m.Called().Get(0).([]domain.GraphicsUsage)
}

func (m *mockMachine) TrackProcess(ctx context.Context, pid int32) error {
	return m.Called(pid).Error(0)
}

func (m *mockMachine) UntrackProcess(pid int32) {
	m.Called(pid)
}

func (m *mockMachine) TrackedProcesses() []int32 {
	return m.Called().Get(0).([]int32)
}

func (m *mockMachine) ProcessesStatus(ctx context.Context) []domain.ProcessUsage {
	return m.Called().Get(0).([]domain.ProcessUsage)
}

func (m *mockMachine) SystemStatus(ctx context.Context) (domain.SystemStatus, error) {
	args := m.Called()
	return args.Get(0).(domain.SystemStatus), args.Error(1)
}

type mockStream struct {
	mock.Mock
}

func (m *mockStream) Publish(ctx context.Context, report domain.UsageReport) error {
	return m.Called(report).Error(0)
}

func (m *mockStream) Recent(ctx context.Context, machineID uuid.UUID, limit int64) ([]domain.UsageReport, error) {
	args := m.Called(machineID, limit)
	reports, _ := args.Get(0).([]domain.UsageReport)
	return reports, args.Error(1)
}

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	if req.Password != "correct-horse" {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.AuthResponse{AccessToken: "good", ExpiresAt: 1900000000}, nil
}

func (stubAuth) Validate(token string) error {
	if token == "good" {
		return nil
	}
	return domain.ErrUnauthorized
}

type latestUsage struct {
	report *domain.UsageReport
}

func (l latestUsage) Latest() (domain.UsageReport, bool) {
	if l.report == nil {
		return domain.UsageReport{}, false
	}
	return *l.report, true
}

type recordingBus struct {
	events []string
	last   any
}

func (b *recordingBus) Publish(name string, event any) {
	b.events = append(b.events, name)
	b.last = event
}

type fixture struct {
	machine   *mockMachine
	stream    *mockStream
	bus       *recordingBus
	machineID uuid.UUID
	handler   http.Handler
}

func newFixture(t *testing.T, latest *domain.UsageReport, withStream bool) *fixture {
	t.Helper()

	f := &fixture{
		machine:   &mockMachine{},
		stream:    &mockStream{},
		bus:       &recordingBus{},
		machineID: uuid.New(),
	}

	var stream domain.UsageStream
	if withStream {
		stream = f.stream
	}

	d, w, v := request.NewJSONDecoder(), response.NewJSONWriter(), validator.New()
	f.handler = NewRouter(&config.Config{}, &RouterDeps{
		Auth: NewAuthHandler(stubAuth{}, d, w, v),
		Machine: NewMachineHandler(MachineHandlerDeps{
			Service:   f.machine,
			Usage:     latestUsage{report: latest},
			Stream:    stream,
			Bus:       f.bus,
			MachineID: f.machineID,
		}, d, w, v),
		AuthService: stubAuth{},
	})

	t.Cleanup(func() {
		f.machine.AssertExpectations(t)
		f.stream.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil, false)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t, nil, false)

	for _, target := range []string{"/machine/info", "/machine/status", "/processes"} {
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil, false)

	rec := f.do(http.MethodPost, "/auth/login", `{"password":"correct-horse"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, "good", rec.Result().Cookies()[0].Value)

	rec = f.do(http.MethodPost, "/auth/login", `{"password":"wrong-horse"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/auth/login", `{"password":"short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodPost, "/auth/login", `{"user":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMachineInfo(t *testing.T) {
	f := newFixture(t, nil, false)
	f.machine.On("SystemInfo").Return(domain.SystemInfo{Hostname: "box", TotalProcessors: 8}).Once()

	rec := f.do(http.MethodGet, "/machine/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "box", data["hostname"])
	assert.Equal(t, float64(8), data["total_processors"])
}

func TestMachineGraphics(t *testing.T) {
	f := newFixture(t, nil, false)
	f.machine.On("GraphicsStatus").Return([]domain.GraphicsUsage{{ID: "GPU-1", GPU: 40}}).Once()

	rec := f.do(http.MethodGet, "/machine/graphics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"], 1)
}

func TestMachineStatus(t *testing.T) {
	f := newFixture(t, nil, false)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/machine/status", "").Code)

	report := &domain.UsageReport{
		System:    &domain.SystemStatus{CPU: 12.5, Memory: 4096},
		Processes: []domain.ProcessUsage{{PID: 3, CPU: 1}},
	}
	f = newFixture(t, report, false)

	rec := f.do(http.MethodGet, "/machine/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, 12.5, data["system"].(map[string]any)["cpu"])
}

func TestTrackProcess(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		call    bool
		want    int
		publish bool
	}{
		{name: "tracked", body: `{"pid":42}`, call: true, want: http.StatusCreated, publish: true},
		{name: "not found", body: `{"pid":42}`, err: fmt.Errorf("track pid 42: %w", domain.ErrProcessNotFound), call: true, want: http.StatusNotFound},
		{name: "sampling", body: `{"pid":42}`, err: &domain.SamplingError{Op: "processes", Err: errors.New("boom")}, call: true, want: http.StatusServiceUnavailable},
		{name: "other", body: `{"pid":42}`, err: errors.New("odd"), call: true, want: http.StatusInternalServerError},
		{name: "zero pid", body: `{"pid":0}`, want: http.StatusUnprocessableEntity},
		{name: "bad json", body: `{`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, false)
			if tt.call {
				f.machine.On("TrackProcess", int32(42)).Return(tt.err).Once()
			}

			rec := f.do(http.MethodPost, "/processes", tt.body)
			assert.Equal(t, tt.want, rec.Code)

			if tt.publish {
				assert.Equal(t, []string{domain.EventProcessTracked}, f.bus.events)
				assert.Equal(t, domain.ProcessTrackingChanged{MachineID: f.machineID, PID: 42}, f.bus.last)
			} else {
				assert.Empty(t, f.bus.events)
			}
		})
	}
}

func TestUntrackProcess(t *testing.T) {
	f := newFixture(t, nil, false)
	f.machine.On("UntrackProcess", int32(42)).Once()

	rec := f.do(http.MethodDelete, "/processes/42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{domain.EventProcessUntracked}, f.bus.events)

	rec = f.do(http.MethodDelete, "/processes/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcesses(t *testing.T) {
	f := newFixture(t, nil, false)
	f.machine.On("TrackedProcesses").Return([]int32{1, 5}).Once()

	rec := f.do(http.MethodGet, "/processes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{float64(1), float64(5)}, decodeBody(t, rec)["data"])
}

func TestHistory(t *testing.T) {
	f := newFixture(t, nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/machine/history", "").Code)

	f = newFixture(t, nil, true)
	f.stream.On("Recent", f.machineID, int64(defaultHistoryLimit)).
		Return([]domain.UsageReport{{MachineID: f.machineID}}, nil).Once()
	f.stream.On("Recent", f.machineID, int64(maxHistoryLimit)).
		Return(nil, domain.ErrUsageNotFound).Once()
	f.stream.On("Recent", f.machineID, int64(5)).
		Return(nil, errors.New("redis down")).Once()

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/machine/history", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/machine/history?limit=5000", "").Code)
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/machine/history?limit=5", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/machine/history?limit=-1", "").Code)
}
