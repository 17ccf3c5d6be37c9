package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/minigrad/internal/data"
	"github.com/born-ml/minigrad/internal/nn"
	"github.com/born-ml/minigrad/internal/serialization"
	"github.com/born-ml/minigrad/internal/train"
)

// trainFlags holds the parsed flags of the train command.
type trainFlags struct {
	train    train.Config
	blobs    data.BlobsConfig
	hidden   int
	evalFrac float64
	loss     string
	load     string
	save     string
}

func parseTrainFlags(args []string) (*trainFlags, error) {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	klog.InitFlags(fs)

	var (
		f        trainFlags
		lr       = fs.Float64("lr", 0.1, "SGD learning rate.")
		momentum = fs.Float64("momentum", 0, "SGD momentum, in [0, 1).")
		spread   = fs.Float64("spread", 0.5, "Standard deviation of each synthetic cluster.")
	)
	fs.IntVar(&f.train.Epochs, "epochs", 20, "Number of passes over the training set.")
	fs.IntVar(&f.train.BatchSize, "batch", 32, "Mini-batch size.")
	fs.IntVar(&f.train.LogEvery, "log_every", 0, "If > 0, log the batch loss every this many batches at -v=1.")
	fs.IntVar(&f.hidden, "hidden", 16, "Width of the hidden layer.")
	fs.IntVar(&f.blobs.Classes, "classes", 3, "Number of classes (clusters).")
	fs.IntVar(&f.blobs.Features, "features", 4, "Number of input features.")
	fs.IntVar(&f.blobs.Samples, "samples", 600, "Number of generated examples, split between training and evaluation.")
	fs.Int64Var(&f.train.Seed, "seed", 42, "Random seed for data, initialization and shuffling.")
	fs.Float64Var(&f.evalFrac, "eval_fraction", 0.2, "Fraction of the examples held out for evaluation.")
	fs.StringVar(&f.loss, "loss", "cross_entropy", "Loss: \"cross_entropy\" on logits, or \"nll\" with a LogSoftmax output layer.")
	fs.StringVar(&f.load, "load", "", "Checkpoint to initialize the model from.")
	fs.StringVar(&f.save, "save", "", "If set, write the trained model to this checkpoint `file`.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errors.Errorf("unexpected arguments %q", fs.Args())
	}

	f.train.LR = float32(*lr)
	f.train.Momentum = float32(*momentum)
	f.blobs.Spread = float32(*spread)
	f.blobs.Seed = f.train.Seed
	if f.hidden <= 0 {
		return nil, errors.Errorf("-hidden must be positive, got %d", f.hidden)
	}
	if f.loss != "cross_entropy" && f.loss != "nll" {
		return nil, errors.Errorf("-loss must be \"cross_entropy\" or \"nll\", got %q", f.loss)
	}
	return &f, nil
}

// buildModel creates Linear(features, hidden) -> ReLU -> Linear(hidden, classes),
// plus a LogSoftmax output layer for the NLL loss.
func buildModel(f *trainFlags, rng *rand.Rand) (*nn.Sequential, nn.Loss) {
	model := nn.NewSequential(
		nn.NewLinear(f.blobs.Features, f.hidden, rng),
		nn.NewReLU(),
		nn.NewLinear(f.hidden, f.blobs.Classes, rng),
	)
	if f.loss == "nll" {
		model.Add(nn.NewLogSoftmax(1))
		return model, nn.NewNLLLoss()
	}
	return model, nn.NewCrossEntropyLoss()
}

func runTrain(ctx context.Context, args []string) {
	f, err := parseTrainFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		os.Exit(2)
	}

	dataset := must.M1(data.Blobs(f.blobs))
	rng := rand.New(rand.NewSource(f.train.Seed)) //nolint:gosec // G404: not security sensitive
	trainSet, evalSet := must.M2(dataset.Split(1-f.evalFrac, rng))
	klog.V(1).Infof("Generated %d examples: %d for training, %d for evaluation", dataset.Len(), trainSet.Len(), evalSet.Len())

	model, loss := buildModel(f, rng)
	if f.load != "" {
		stateDict, metadata := must.M2(serialization.Load(f.load))
		must.M(model.LoadStateDict(stateDict))
		klog.Infof("Loaded %s (trained for %s epochs)", f.load, metadata["epochs"])
	}

	trainer := must.M1(train.New(f.train))
	progress := newProgress(os.Stdout, trainer.Config().Epochs)
	trainer.OnEpoch = progress.Update

	history, err := trainer.Fit(ctx, model, loss, trainSet, evalSet)
	progress.Done()
	if err != nil && !errors.Is(err, context.Canceled) {
		must.M(err)
	}
	if err != nil {
		klog.Warningf("Training interrupted after %d epochs", len(history))
	}

	fmt.Println(renderReport(model, f, history))

	if f.save != "" && len(history) > 0 {
		must.M(serialization.Save(f.save, model.StateDict(), map[string]string{
			"model":  model.String(),
			"epochs": strconv.Itoa(len(history)),
			"loss":   f.loss,
		}))
		fmt.Printf("Saved model to %s\n", f.save)
	}
}
