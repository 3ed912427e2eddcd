package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/metrics"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// #region runner
// Runner executes composed plans: steps in order, the outputs of a step in
// parallel.
type Runner struct {
	// Pools resolves outputs that carry only a device name, e.g. plans
	// read back from JSON.
	Pools   device.Pools
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// OnImageShown is called after an image output of a step referencing
	// a world object succeeded.
	OnImageShown func(objectID string)
}

// Run executes steps. It stops at the first failing step; the report covers
// every step started.
func (r *Runner) Run(ctx context.Context, steps []plan.Step) (Report, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var report Report
	for _, step := range steps {
		sr, err := r.runStep(ctx, step)
		report.Steps = append(report.Steps, sr)
		if err != nil {
			log.Warn("step failed", zap.Int("element", step.ElementIndex), zap.Error(err))
			return report, fmt.Errorf("step %d: %w", step.ElementIndex, err)
		}
	}
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, step plan.Step) (StepReport, error) {
	sr := StepReport{ElementIndex: step.ElementIndex, Outputs: make([]OutputReport, len(step.Outputs))}
	g, gctx := errgroup.WithContext(ctx)
	for i, out := range step.Outputs {
		g.Go(func() error {
			start := time.Now()
			err := r.execute(gctx, out)
			sr.Outputs[i] = OutputReport{
				Modality: string(out.Modality),
				Device:   out.DeviceName,
				Took:     time.Since(start),
			}
			if err != nil {
				sr.Outputs[i].Error = err.Error()
			}
			r.Metrics.ObserveExecution(string(out.Modality), err)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return sr, err
	}

	if r.OnImageShown != nil && step.ObjectID != "" {
		for _, out := range step.Outputs {
			if out.Modality == modality.Image {
				r.OnImageShown(step.ObjectID)
				break
			}
		}
	}
	return sr, nil
}

func (r *Runner) execute(ctx context.Context, out plan.Output) error {
	d := out.Device
	if d == nil {
		found, ok := r.Pools.Find(out.DeviceName)
		if !ok {
			return fmt.Errorf("%s %q: %w", out.Modality, out.DeviceName, ErrNoDevice)
		}
		d = found
	}
	return d.Execute(ctx, out.Content)
}

// #endregion runner
