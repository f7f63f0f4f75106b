package moodmodel

// TensorSpec declares one named tensor in the model artifact. A shape
// dimension of -1 marks the batch axis.
type TensorSpec struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
	DType string `json:"dtype"`
}

// LayerSpec is one dense layer of the exported classifier. Weights are laid
// out [inputs][outputs].
type LayerSpec struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"` // "relu", "linear" or "softmax"
}

// Artifact is the on-disk groove mood model: tensor declarations plus the
// dense layers exported by the training pipeline. The loader enforces
// exactly one input tensor of shape [batch, 5] and one output tensor of
// shape [batch, 10]; the declarations exist so a retrained artifact with a
// different contract is rejected at load time rather than misread at
// inference time.
type Artifact struct {
	Name    string       `json:"name"`
	Version string       `json:"version,omitempty"`
	Inputs  []TensorSpec `json:"inputs"`
	Outputs []TensorSpec `json:"outputs"`
	Layers  []LayerSpec  `json:"layers"`
}
