// Package policy provides controllers that map a flappy observation to an
// action: an evolvable feedforward network and a few fixed strategies.
package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/neuroflap/internal/flappy"
)

// NumInputs matches flappy.Observation.
const NumInputs = len(flappy.Observation{})

// ErrNonFinite is returned by Decide when the network output is NaN or infinite.
var ErrNonFinite = errors.New("policy: non-finite network output")

// Network is a two-layer feedforward network: NumInputs -> Hidden (tanh) -> 1 (tanh).
// The output lies in [-1, 1]; the simulation jumps above its action threshold.
type Network struct {
	W1 [][NumInputs]float64 // input -> hidden weights
	B1 []float64            // hidden biases
	W2 []float64            // hidden -> output weights
	B2 float64              // output bias
}

// NewNetwork creates a randomly initialized network with the given hidden width.
func NewNetwork(rng *rand.Rand, hidden int) *Network {
	nn := &Network{
		W1: make([][NumInputs]float64, hidden),
		B1: make([]float64, hidden),
		W2: make([]float64, hidden),
	}
	// He initialization, biases start at zero
	scale1 := math.Sqrt(2.0 / float64(NumInputs))
	scale2 := math.Sqrt(2.0 / float64(max(hidden, 1)))

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = rng.NormFloat64() * scale1
		}
		nn.W2[i] = rng.NormFloat64() * scale2
	}
	return nn
}

// Hidden returns the hidden layer width.
func (nn *Network) Hidden() int {
	return len(nn.W1)
}

// Forward computes the network output for the given inputs.
func (nn *Network) Forward(in flappy.Observation) float64 {
	out := nn.B2
	for i := range nn.W1 {
		sum := nn.B1[i]
		for j := 0; j < NumInputs; j++ {
			sum += nn.W1[i][j] * in[j]
		}
		out += nn.W2[i] * math.Tanh(sum)
	}
	return math.Tanh(out)
}

// Decide implements flappy.Controller.
func (nn *Network) Decide(obs flappy.Observation) (float64, error) {
	out := nn.Forward(obs)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, ErrNonFinite
	}
	return out, nil
}

// Mutate perturbs each weight and bias with probability rate by Gaussian
// noise of the given sigma. It returns how many parameters changed.
func (nn *Network) Mutate(rng *rand.Rand, rate, sigma float64) int {
	changed := 0
	perturb := func(w *float64) {
		if rng.Float64() < rate {
			*w += rng.NormFloat64() * sigma
			changed++
		}
	}

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			perturb(&nn.W1[i][j])
		}
		perturb(&nn.B1[i])
		perturb(&nn.W2[i])
	}
	perturb(&nn.B2)

	return changed
}

// Clone creates a deep copy of the network.
func (nn *Network) Clone() *Network {
	return &Network{
		W1: append([][NumInputs]float64(nil), nn.W1...),
		B1: append([]float64(nil), nn.B1...),
		W2: append([]float64(nil), nn.W2...),
		B2: nn.B2,
	}
}

// Weights holds flattened network weights for serialization.
type Weights struct {
	Hidden int       `json:"hidden"`
	W1     []float64 `json:"w1"` // [Hidden * NumInputs]
	B1     []float64 `json:"b1"` // [Hidden]
	W2     []float64 `json:"w2"` // [Hidden]
	B2     float64   `json:"b2"`
}

// MarshalWeights flattens the network weights.
func (nn *Network) MarshalWeights() Weights {
	h := nn.Hidden()
	w := Weights{
		Hidden: h,
		W1:     make([]float64, 0, h*NumInputs),
		B1:     append([]float64(nil), nn.B1...),
		W2:     append([]float64(nil), nn.W2...),
		B2:     nn.B2,
	}
	for i := range nn.W1 {
		w.W1 = append(w.W1, nn.W1[i][:]...)
	}
	return w
}

// FromWeights rebuilds a network, checking every slice against Hidden.
func FromWeights(w Weights) (*Network, error) {
	h := w.Hidden
	if h < 0 || len(w.W1) != h*NumInputs || len(w.B1) != h || len(w.W2) != h {
		return nil, fmt.Errorf("policy: weights do not describe a %d-hidden network", h)
	}
	nn := &Network{
		W1: make([][NumInputs]float64, h),
		B1: append([]float64(nil), w.B1...),
		W2: append([]float64(nil), w.W2...),
		B2: w.B2,
	}
	for i := range nn.W1 {
		copy(nn.W1[i][:], w.W1[i*NumInputs:(i+1)*NumInputs])
	}
	return nn, nil
}

// MarshalJSON encodes the network as its flattened weights.
func (nn *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(nn.MarshalWeights())
}

// UnmarshalJSON decodes flattened weights into nn.
func (nn *Network) UnmarshalJSON(data []byte) error {
	var w Weights
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := FromWeights(w)
	if err != nil {
		return err
	}
	*nn = *decoded
	return nil
}
