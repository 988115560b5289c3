package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	jobmetrics "github.com/campuscore/campuscore/internal/jobs"
)

// Device is a biometric terminal that buffers records while offline.
type Device struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// Subject types carried in device records.
const (
	SubjectStudent  = "student"
	SubjectEmployee = "employee"
)

// DeviceRecord is one buffered scan pulled from a device.
type DeviceRecord struct {
	SubjectType string
	SubjectID   int64
	DeviceID    string
	Direction   string
	CapturedAt  time.Time
}

// DeviceGateway abstracts the fleet of biometric terminals. Implementations
// talk to the vendor bridge; tests substitute fakes.
type DeviceGateway interface {
	ListOfflineDevices(ctx context.Context) ([]Device, error)
	GetPendingRecords(ctx context.Context, deviceID string) ([]DeviceRecord, error)
}

// SyncService pulls buffered records off devices and folds them into
// attendance. A student scan before the late cutoff marks present, after it
// late. Employee scans become clock events.
type SyncService struct {
	gateway  DeviceGateway
	service  *Service
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
	cutoffHr int
	cutoffMn int
}

// NewSyncService builds a sync service. The late cutoff is 08:00 local time
// on the scan's day.
func NewSyncService(gateway DeviceGateway, service *Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{gateway: gateway, service: service, logger: logger, metrics: metrics, cutoffHr: 8}
}

// Sync drains every offline device. A record that fails to apply is logged
// and skipped; a device that fails to enumerate is logged and skipped. Sync
// only returns an error when the device fleet itself cannot be listed.
func (s *SyncService) Sync(ctx context.Context) error {
	devices, err := s.gateway.ListOfflineDevices(ctx)
	if err != nil {
		return err
	}
	for _, device := range devices {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		records, err := s.gateway.GetPendingRecords(ctx, device.ID)
		if err != nil {
			s.logger.Warn("fetch pending records",
				slog.String("device", device.ID), slog.Any("error", err))
			continue
		}
		synced := 0
		for _, record := range records {
			if err := s.apply(ctx, record); err != nil {
				s.logger.Warn("apply device record",
					slog.String("device", device.ID),
					slog.String("subject", record.SubjectType),
					slog.Int64("subjectId", record.SubjectID),
					slog.Any("error", err))
				continue
			}
			synced++
		}
		s.metrics.AddSyncedRecords(device.ID, synced)
		s.logger.Info("device synced",
			slog.String("device", device.ID),
			slog.Int("pending", len(records)), slog.Int("applied", synced))
	}
	return nil
}

func (s *SyncService) apply(ctx context.Context, record DeviceRecord) error {
	switch record.SubjectType {
	case SubjectStudent:
		status := StatusPresent
		if s.isLate(record.CapturedAt) {
			status = StatusLate
		}
		_, err := s.service.repo.Upsert(ctx, &Record{
			StudentID: record.SubjectID,
			Date:      record.CapturedAt,
			Status:    status,
			Source:    SourceDevice,
			DeviceID:  record.DeviceID,
		})
		return err
	case SubjectEmployee:
		direction := record.Direction
		if direction == "" {
			direction = DirectionIn
		}
		_, err := s.service.RecordClock(ctx, record.SubjectID, record.DeviceID, direction, record.CapturedAt)
		return err
	default:
		return fmt.Errorf("%w: unknown subject type %q", ErrInvalid, record.SubjectType)
	}
}

func (s *SyncService) isLate(at time.Time) bool {
	cutoff := time.Date(at.Year(), at.Month(), at.Day(), s.cutoffHr, s.cutoffMn, 0, 0, at.Location())
	return at.After(cutoff)
}
