package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrReplayTrigger = attribute.Key("trigger")
	AttrOutcome       = attribute.Key("outcome")
)

// ReplayDurationBuckets are bucket boundaries for schedule replays (milliseconds)
var ReplayDurationBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// FinancingMetrics records payment and schedule activity.
// A nil *FinancingMetrics is valid and records nothing.
type FinancingMetrics struct {
	paymentsRegistered *Counter
	paymentAmount      *Counter
	overpaymentDropped *Counter
	replays            *Counter
	replayDuration     *Histogram
}

// NewFinancingMetrics registers the financing instruments on meter
func NewFinancingMetrics(meter metric.Meter) (*FinancingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	fm := &FinancingMetrics{}
	var err error

	if fm.paymentsRegistered, err = NewCounter(meter,
		"financing_payments_registered_total",
		"Total number of payments registered against orders",
		"{payments}",
	); err != nil {
		return nil, err
	}
	if fm.paymentAmount, err = NewCounter(meter,
		"financing_payment_amount_cents_total",
		"Total amount of registered payments in minor units",
		"{cents}",
	); err != nil {
		return nil, err
	}
	if fm.overpaymentDropped, err = NewCounter(meter,
		"financing_overpayment_dropped_cents_total",
		"Payment amount not consumed by any instalment",
		"{cents}",
	); err != nil {
		return nil, err
	}
	if fm.replays, err = NewCounter(meter,
		"financing_schedule_replays_total",
		"Total number of schedule replays",
		"{replays}",
	); err != nil {
		return nil, err
	}
	if fm.replayDuration, err = NewHistogram(meter,
		"financing_schedule_replay_duration_ms",
		"Duration of schedule replays",
		"ms",
		ReplayDurationBuckets...,
	); err != nil {
		return nil, err
	}

	return fm, nil
}

// RecordPayment counts a registered payment
func (m *FinancingMetrics) RecordPayment(ctx context.Context, method string, amount int64) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(method)}
	m.paymentsRegistered.Inc(ctx, attrs...)
	m.paymentAmount.Add(ctx, amount, attrs...)
}

// RecordDropped counts payment amount that no instalment consumed
func (m *FinancingMetrics) RecordDropped(ctx context.Context, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.overpaymentDropped.Add(ctx, amount)
}

// RecordReplay counts a replay and its duration
func (m *FinancingMetrics) RecordReplay(ctx context.Context, trigger string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := []attribute.KeyValue{AttrReplayTrigger.String(trigger), AttrOutcome.String(outcome)}
	m.replays.Inc(ctx, attrs...)
	m.replayDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs...)
}
