package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"communityevents/internal/domain"
)

const meterName = "communityevents"

type attendanceMetrics struct {
	registrations metric.Int64Counter
	checkins      metric.Int64Counter
	rejections    metric.Int64Counter
}

// NewAttendanceMetrics creates attendance counters on the global meter provider.
func NewAttendanceMetrics() (domain.AttendanceMetrics, error) {
	return NewAttendanceMetricsWithMeter(otel.Meter(meterName))
}

// NewAttendanceMetricsWithMeter creates attendance counters on the given meter.
func NewAttendanceMetricsWithMeter(meter metric.Meter) (domain.AttendanceMetrics, error) {
	registrations, err := meter.Int64Counter("events.registrations",
		metric.WithDescription("Confirmed event registrations"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return nil, fmt.Errorf("registrations counter: %w", err)
	}
	checkins, err := meter.Int64Counter("events.checkins",
		metric.WithDescription("Successful attendee check-ins"),
		metric.WithUnit("{checkin}"),
	)
	if err != nil {
		return nil, fmt.Errorf("checkins counter: %w", err)
	}
	rejections, err := meter.Int64Counter("events.checkin_rejections",
		metric.WithDescription("Rejected check-in attempts by reason"),
		metric.WithUnit("{checkin}"),
	)
	if err != nil {
		return nil, fmt.Errorf("checkin rejections counter: %w", err)
	}
	return &attendanceMetrics{
		registrations: registrations,
		checkins:      checkins,
		rejections:    rejections,
	}, nil
}

func (m *attendanceMetrics) Registered(ctx context.Context, eventID string) {
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("event_id", eventID)))
}

func (m *attendanceMetrics) CheckedIn(ctx context.Context, eventID string) {
	m.checkins.Add(ctx, 1, metric.WithAttributes(attribute.String("event_id", eventID)))
}

func (m *attendanceMetrics) CheckinRejected(ctx context.Context, eventID, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_id", eventID),
		attribute.String("reason", reason),
	))
}
