package train

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/data"
	"github.com/born-ml/minigrad/internal/nn"
	"github.com/born-ml/minigrad/internal/optim"
)

// EpochStats summarizes one epoch.
//
// Loss and Accuracy are averaged over the training batches, weighted by batch
// size. The Eval fields are only set when an evaluation set was given.
type EpochStats struct {
	Epoch        int
	Loss         float32
	Accuracy     float32
	EvalLoss     float32
	EvalAccuracy float32
	HasEval      bool
	Duration     time.Duration
}

// Trainer fits models with SGD.
type Trainer struct {
	config    Config
	optimizer *optim.SGD

	// OnEpoch, if set, is called after every epoch with its stats.
	OnEpoch func(EpochStats)
}

// New creates a Trainer after applying defaults to config and validating it.
func New(config Config) (*Trainer, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{config: config}, nil
}

// Config returns the effective configuration, defaults included.
func (t *Trainer) Config() Config {
	return t.config
}

// Optimizer returns the optimizer created by the last Fit, or nil.
func (t *Trainer) Optimizer() *optim.SGD {
	return t.optimizer
}

// Fit trains model on trainSet for the configured number of epochs and returns
// the per-epoch history. evalSet may be nil.
//
// Cancellation of ctx is checked between batches; Fit then returns the
// history of the completed epochs together with the context error.
func (t *Trainer) Fit(ctx context.Context, model nn.Module, loss nn.Loss, trainSet, evalSet *data.Dataset) ([]EpochStats, error) {
	optimizer, err := optim.NewSGD(model.Parameters(), t.config.sgdConfig())
	if err != nil {
		return nil, err
	}
	t.optimizer = optimizer
	rng := rand.New(rand.NewSource(t.config.Seed)) //nolint:gosec // G404: shuffling, not security sensitive

	klog.V(1).Infof("Training %d parameter tensors on %d examples: epochs=%d, batch=%d, lr=%g, momentum=%g",
		len(model.Parameters()), trainSet.Len(), t.config.Epochs, t.config.BatchSize, t.config.LR, t.config.Momentum)

	history := make([]EpochStats, 0, t.config.Epochs)
	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		stats, err := t.runEpoch(ctx, epoch, model, loss, trainSet, rng)
		if err != nil {
			return history, err
		}
		if evalSet != nil {
			stats.EvalLoss, stats.EvalAccuracy, err = Evaluate(model, loss, evalSet)
			if err != nil {
				return history, errors.WithMessagef(err, "epoch %d evaluation", epoch)
			}
			stats.HasEval = true
			klog.Infof("  Epoch #%d: loss=%.4g, accuracy=%.2f%%, eval loss=%.4g, eval accuracy=%.2f%%",
				epoch, stats.Loss, 100*stats.Accuracy, stats.EvalLoss, 100*stats.EvalAccuracy)
		} else {
			klog.Infof("  Epoch #%d: loss=%.4g, accuracy=%.2f%%", epoch, stats.Loss, 100*stats.Accuracy)
		}

		history = append(history, stats)
		if t.OnEpoch != nil {
			t.OnEpoch(stats)
		}
	}
	return history, nil
}

// runEpoch performs one pass over trainSet.
func (t *Trainer) runEpoch(ctx context.Context, epoch int, model nn.Module, loss nn.Loss,
	trainSet *data.Dataset, rng *rand.Rand) (EpochStats, error) {
	start := time.Now()
	batches, err := trainSet.Batches(t.config.BatchSize, rng)
	if err != nil {
		return EpochStats{}, err
	}

	var totalLoss, totalCorrect float32
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return EpochStats{}, errors.Wrapf(err, "epoch %d interrupted at batch %d", epoch, i)
		}

		batchLoss, correct, err := t.step(model, loss, batch)
		if err != nil {
			return EpochStats{}, errors.WithMessagef(err, "epoch %d, batch %d", epoch, i)
		}
		totalLoss += batchLoss * float32(batch.Size())
		totalCorrect += float32(correct)

		if t.config.LogEvery > 0 && (i+1)%t.config.LogEvery == 0 {
			klog.V(1).Infof("Epoch #%d batch %d/%d: loss=%.4g", epoch, i+1, len(batches), batchLoss)
		}
	}

	n := float32(trainSet.Len())
	return EpochStats{
		Epoch:    epoch,
		Loss:     totalLoss / n,
		Accuracy: totalCorrect / n,
		Duration: time.Since(start),
	}, nil
}

// step runs zero_grad, forward, loss, backward and the optimizer update for one
// batch, returning the batch loss and the number of correct predictions.
func (t *Trainer) step(model nn.Module, loss nn.Loss, batch data.Batch) (float32, int, error) {
	t.optimizer.ZeroGrad()

	output, err := model.Forward(batch.Inputs)
	if err != nil {
		return 0, 0, err
	}
	lossTensor, err := loss.Forward(output, batch.Labels)
	if err != nil {
		return 0, 0, err
	}
	lossValue, err := lossTensor.Item()
	if err != nil {
		return 0, 0, err
	}
	if err := autodiff.Backward(lossTensor); err != nil {
		return 0, 0, err
	}
	if err := t.optimizer.Step(); err != nil {
		return 0, 0, err
	}
	return lossValue, CountCorrect(output, batch.Labels), nil
}

// Evaluate computes the loss and accuracy of model over the whole dataset with
// gradient tracking disabled, so no graph is recorded.
func Evaluate(model nn.Module, loss nn.Loss, ds *data.Dataset) (lossValue, accuracy float32, err error) {
	err = autodiff.WithNoGrad(func() error {
		batch, err := ds.All()
		if err != nil {
			return err
		}
		output, err := model.Forward(batch.Inputs)
		if err != nil {
			return err
		}
		lossTensor, err := loss.Forward(output, batch.Labels)
		if err != nil {
			return err
		}
		if lossValue, err = lossTensor.Item(); err != nil {
			return err
		}
		accuracy = float32(CountCorrect(output, batch.Labels)) / float32(batch.Size())
		return nil
	})
	return lossValue, accuracy, err
}

// CountCorrect returns how many rows of a (batch, classes) score tensor have
// their maximum at the labeled class. Ties resolve to the lowest class index.
func CountCorrect(scores *autodiff.Tensor, labels []int) int {
	classes := scores.Shape()[1]
	values := scores.Data()
	correct := 0
	for row, label := range labels {
		best := 0
		for c := 1; c < classes; c++ {
			if values[row*classes+c] > values[row*classes+best] {
				best = c
			}
		}
		if best == label {
			correct++
		}
	}
	return correct
}
