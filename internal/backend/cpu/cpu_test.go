package cpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/minigrad/internal/parallel"
	"github.com/born-ml/minigrad/internal/tensor"
)

func raw(t *testing.T, data []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(data, shape)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func assertClose(t *testing.T, name string, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d values, want %d", name, len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-5 {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

func TestAddAndScale(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3}, 3)
	b := raw(t, []float32{10, 20, 30}, 3)

	assertClose(t, "add", backend.Add(a, b).Data(), []float32{11, 22, 33})
	assertClose(t, "scale", backend.Scale(a, -2).Data(), []float32{-2, -4, -6})

	backend.AddScaledInto(a, b, 0.5)
	assertClose(t, "add_scaled_into", a.Data(), []float32{6, 12, 18})
	backend.AddInto(a, b)
	assertClose(t, "add_into", a.Data(), []float32{16, 32, 48})
}

func TestAdd_ShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on shape mismatch")
		}
	}()
	New().Add(raw(t, []float32{1, 2}, 2), raw(t, []float32{1, 2}, 1, 2))
}

func TestMatMulVariants(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)    // (2, 3)
	b := raw(t, []float32{7, 8, 9, 10, 11, 12}, 3, 2) // (3, 2)
	want := []float32{58, 64, 139, 154}               // a @ b
	bT := backend.Transpose2D(b)                      // (2, 3)
	aT := backend.Transpose2D(a)                      // (3, 2)

	assertClose(t, "matmul", backend.MatMul(a, b).Data(), want)
	assertClose(t, "matmul_trans_b", backend.MatMulTransB(a, bT).Data(), want)
	assertClose(t, "matmul_trans_a", backend.MatMulTransA(aT, b).Data(), want)
	assertClose(t, "transpose", bT.Data(), []float32{7, 9, 11, 8, 10, 12})

	if got := backend.MatMul(a, b).Shape(); !got.Equal(tensor.Shape{2, 2}) {
		t.Errorf("matmul shape = %v, want (2, 2)", got)
	}
}

// TestMatMul_ParallelMatchesSequential checks that splitting rows across
// goroutines gives bit-identical results.
func TestMatMul_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	random := func(shape ...int) *tensor.RawTensor {
		r := tensor.MustNewRaw(shape)
		for i := range r.Data() {
			r.Data()[i] = rng.Float32()*2 - 1
		}
		return r
	}
	a, b, c := random(128, 64), random(64, 48), random(48, 64)

	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8})
	seq := NewWithConfig(parallel.Sequential())

	for _, p := range []struct {
		name     string
		got, seq *tensor.RawTensor
	}{
		{"matmul", par.MatMul(a, b), seq.MatMul(a, b)},
		{"matmul_trans_b", par.MatMulTransB(a, c), seq.MatMulTransB(a, c)},
	} {
		for i, v := range p.seq.Data() {
			if p.got.Data()[i] != v {
				t.Fatalf("%s: element %d differs: %v vs %v", p.name, i, p.got.Data()[i], v)
			}
		}
	}

	g := random(128, 32)
	parT, seqT := par.MatMulTransA(a, g), seq.MatMulTransA(a, g)
	for i, v := range seqT.Data() {
		if parT.Data()[i] != v {
			t.Fatalf("matmul_trans_a: element %d differs: %v vs %v", i, parT.Data()[i], v)
		}
	}
}

func TestReLU(t *testing.T) {
	backend := New()
	x := raw(t, []float32{-1, 0, 2, -0.5, 3}, 5)
	out, mask := backend.ReLU(x)
	assertClose(t, "relu", out.Data(), []float32{0, 0, 2, 0, 3})

	grad := backend.ReLUBackward(raw(t, []float32{1, 1, 1, 1, 1}, 5), mask)
	assertClose(t, "relu_backward", grad.Data(), []float32{0, 0, 1, 0, 1})
}

func TestPow(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4}, 4)

	tests := []struct {
		n        float32
		want     []float32
		wantGrad []float32
	}{
		{0, []float32{1, 1, 1, 1}, []float32{0, 0, 0, 0}},
		{1, []float32{1, 2, 3, 4}, []float32{1, 1, 1, 1}},
		{2, []float32{1, 4, 9, 16}, []float32{2, 4, 6, 8}},
		{3, []float32{1, 8, 27, 64}, []float32{3, 12, 27, 48}},
		{0.5, []float32{1, 1.4142135, 1.7320508, 2}, []float32{0.5, 0.35355338, 0.28867513, 0.25}},
	}
	ones := raw(t, []float32{1, 1, 1, 1}, 4)
	for _, tt := range tests {
		assertClose(t, "pow", backend.Pow(x, tt.n).Data(), tt.want)
		assertClose(t, "pow_backward", backend.PowBackward(ones, x, tt.n).Data(), tt.wantGrad)
	}
}

func TestReductions(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	sum := backend.Sum(x)
	if sum.Shape().Rank() != 0 || sum.Data()[0] != 21 {
		t.Errorf("sum = %v, want rank-0 21", sum)
	}
	if mean := backend.Mean(x).Data()[0]; mean != 3.5 {
		t.Errorf("mean = %v, want 3.5", mean)
	}

	assertClose(t, "broadcast", backend.Broadcast(raw(t, []float32{2}), tensor.Shape{2, 2}, 0.25).Data(),
		[]float32{0.5, 0.5, 0.5, 0.5})
	assertClose(t, "sum_columns", backend.SumColumns(x).Data(), []float32{5, 7, 9})

	backend.AddRowVectorInto(x, raw(t, []float32{10, 20, 30}, 3))
	assertClose(t, "add_row_vector", x.Data(), []float32{11, 22, 33, 14, 25, 36})
}

func TestLogSoftmax(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 1000, 1000, 1000}, 2, 3)
	logProbs, probs := backend.LogSoftmax(x, 1)

	// log(e^1 + e^2 + e^3) = 3.4076059
	assertClose(t, "log_softmax", logProbs.Data(), []float32{
		-2.4076059, -1.4076059, -0.4076059,
		-1.0986123, -1.0986123, -1.0986123,
	})
	for row := 0; row < 2; row++ {
		var sum float32
		for _, p := range probs.Data()[row*3 : row*3+3] {
			sum += p
		}
		if math.Abs(float64(sum-1)) > 1e-6 {
			t.Errorf("row %d probabilities sum to %v", row, sum)
		}
	}

	// A gradient that is constant along dim is absorbed entirely by the
	// normalization, since the softmax probabilities sum to one.
	grad := backend.LogSoftmaxBackward(raw(t, []float32{1, 1, 1, 1, 1, 1}, 2, 3), probs, 1)
	for i, v := range grad.Data() {
		if math.Abs(float64(v)) > 1e-6 {
			t.Errorf("grad[%d] = %v, want 0", i, v)
		}
	}
}

func TestLogSoftmax_Dim0(t *testing.T) {
	backend := New()
	x := raw(t, []float32{0, 5, 0, 5}, 2, 2)
	logProbs, _ := backend.LogSoftmax(x, 0)
	ln2 := float32(-0.6931472)
	assertClose(t, "log_softmax_dim0", logProbs.Data(), []float32{ln2, ln2, ln2, ln2})
}

func TestNLLLoss(t *testing.T) {
	backend := New()
	logProbs := raw(t, []float32{-0.5, -1, -2, -0.1}, 2, 2)
	loss := backend.NLLLoss(logProbs, []int{0, 1})
	if got := loss.Data()[0]; math.Abs(float64(got-0.3)) > 1e-6 {
		t.Errorf("nll = %v, want 0.3", got)
	}

	grad := backend.NLLLossBackward(raw(t, []float32{1}), logProbs.Shape(), []int{0, 1})
	assertClose(t, "nll_backward", grad.Data(), []float32{-0.5, 0, 0, -0.5})
}

func TestCrossEntropyBackward(t *testing.T) {
	backend := New()
	probs := raw(t, []float32{0.5, 0.5, 0.25, 0.75}, 2, 2)
	grad := backend.CrossEntropyBackward(raw(t, []float32{1}), probs, []int{1, 1})
	assertClose(t, "cross_entropy_backward", grad.Data(), []float32{0.25, -0.25, 0.125, -0.125})
}
