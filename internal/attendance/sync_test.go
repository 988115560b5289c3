package attendance

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/campuscore/campuscore/testing"
)

type fakeGateway struct {
	devices []Device
	pending map[string][]DeviceRecord
	listErr error
	failFor map[string]error
}

func (f *fakeGateway) ListOfflineDevices(context.Context) ([]Device, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.devices, nil
}

func (f *fakeGateway) GetPendingRecords(_ context.Context, deviceID string) ([]DeviceRecord, error) {
	if err := f.failFor[deviceID]; err != nil {
		return nil, err
	}
	return f.pending[deviceID], nil
}

func scanAt(hour int) time.Time {
	return time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
}

func TestSyncUpsertsStudentScans(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	gateway := &fakeGateway{
		devices: []Device{{ID: "GATE-1", Name: "Main Gate"}},
		pending: map[string][]DeviceRecord{
			"GATE-1": {
				{SubjectType: SubjectStudent, SubjectID: 1, DeviceID: "GATE-1", CapturedAt: scanAt(7)},
				{SubjectType: SubjectStudent, SubjectID: 2, DeviceID: "GATE-1", CapturedAt: scanAt(10)},
			},
		},
	}
	sync := NewSyncService(gateway, svc, slog.Default(), nil)

	require.NoError(t, sync.Sync(context.Background()))

	early, err := svc.Get(context.Background(), 1, scanAt(7))
	require.NoError(t, err)
	require.Equal(t, StatusPresent, early.Status)
	require.Equal(t, SourceDevice, early.Source)

	// Scanned after the 08:00 cutoff.
	late, err := svc.Get(context.Background(), 2, scanAt(10))
	require.NoError(t, err)
	require.Equal(t, StatusLate, late.Status)
}

func TestSyncEmployeeScanBecomesClockEvent(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	gateway := &fakeGateway{
		devices: []Device{{ID: "STAFF-1"}},
		pending: map[string][]DeviceRecord{
			"STAFF-1": {{SubjectType: SubjectEmployee, SubjectID: 9, DeviceID: "STAFF-1", CapturedAt: scanAt(8)}},
		},
	}
	sync := NewSyncService(gateway, svc, slog.Default(), nil)

	require.NoError(t, sync.Sync(context.Background()))

	events, err := svc.ListClockEvents(context.Background(), 9, scanAt(0), scanAt(23))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, DirectionIn, events[0].Direction)
}

func TestSyncIsolatesRecordFailures(t *testing.T) {
	repo := newMockRepository()
	repo.failStudentID = 1
	svc := newTestService(repo)
	gateway := &fakeGateway{
		devices: []Device{{ID: "GATE-1"}},
		pending: map[string][]DeviceRecord{
			"GATE-1": {
				{SubjectType: SubjectStudent, SubjectID: 1, DeviceID: "GATE-1", CapturedAt: scanAt(7)},
				{SubjectType: "visitor", SubjectID: 3, DeviceID: "GATE-1", CapturedAt: scanAt(7)},
				{SubjectType: SubjectStudent, SubjectID: 2, DeviceID: "GATE-1", CapturedAt: scanAt(7)},
			},
		},
	}
	sync := NewSyncService(gateway, svc, slog.Default(), nil)

	require.NoError(t, sync.Sync(context.Background()))

	// The good record landed despite its neighbours failing.
	record, err := svc.Get(context.Background(), 2, scanAt(7))
	require.NoError(t, err)
	require.Equal(t, StatusPresent, record.Status)

	_, err = svc.Get(context.Background(), 1, scanAt(7))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSyncIsolatesDeviceFailures(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	gateway := &fakeGateway{
		devices: []Device{{ID: "GATE-1"}, {ID: "GATE-2"}},
		pending: map[string][]DeviceRecord{
			"GATE-2": {{SubjectType: SubjectStudent, SubjectID: 4, DeviceID: "GATE-2", CapturedAt: scanAt(7)}},
		},
		failFor: map[string]error{"GATE-1": errors.New("bridge timeout")},
	}
	sync := NewSyncService(gateway, svc, slog.Default(), nil)

	require.NoError(t, sync.Sync(context.Background()))

	record, err := svc.Get(context.Background(), 4, scanAt(7))
	require.NoError(t, err)
	require.Equal(t, SourceDevice, record.Source)
}

func TestSyncPropagatesFleetError(t *testing.T) {
	svc := newTestService(newMockRepository())
	gateway := &fakeGateway{listErr: errors.New("registry down")}
	sync := NewSyncService(gateway, svc, slog.Default(), nil)

	require.Error(t, sync.Sync(context.Background()))
}
