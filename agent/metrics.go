package agent

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/Deadjed/blank-bot/macro"
	"github.com/Deadjed/blank-bot/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Deadjed/blank-bot/agent"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics are shared by every session of the process.
// Uses the global OTel meter, a no-op unless a provider is installed.
type Metrics struct {
	ticks             metric.Int64Counter
	commands          metric.Int64Counter
	transitions       metric.Int64Counter
	placementFailures metric.Int64Counter
	sessions          metric.Int64ObservableGauge

	active atomic.Int64
}

func NewMetrics() (*Metrics, error) {
	m := meter()
	mt := &Metrics{}

	var err error
	mt.ticks, err = m.Int64Counter(
		"agent.ticks",
		metric.WithDescription("Observations processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	mt.commands, err = m.Int64Counter(
		"agent.commands",
		metric.WithDescription("Unit commands issued"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating commands counter: %w", err)
	}

	mt.transitions, err = m.Int64Counter(
		"agent.mode.transitions",
		metric.WithDescription("Macro mode changes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transitions counter: %w", err)
	}

	mt.placementFailures, err = m.Int64Counter(
		"placement.failures",
		metric.WithDescription("Placement searches that found no legal site"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating placement failure counter: %w", err)
	}

	mt.sessions, err = m.Int64ObservableGauge(
		"agent.sessions.active",
		metric.WithDescription("Connected game sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions gauge: %w", err)
	}
	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.sessions, mt.active.Load())
			return nil
		},
		mt.sessions,
	)
	if err != nil {
		return nil, fmt.Errorf("registering sessions callback: %w", err)
	}

	return mt, nil
}

func (m *Metrics) sessionOpened() { m.active.Add(1) }
func (m *Metrics) sessionClosed() { m.active.Add(-1) }

func (m *Metrics) tick(ctx context.Context, cmds []model.Command) {
	m.ticks.Add(ctx, 1)
	for _, c := range cmds {
		m.commands.Add(ctx, 1, metric.WithAttributes(
			attribute.String("ability", strconv.FormatUint(uint64(c.Ability), 10))))
	}
}

func (m *Metrics) transition(from, to macro.Mode) {
	m.transitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String())))
}

func (m *Metrics) placementFailed(structure string) {
	m.placementFailures.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("structure", structure)))
}
