package tensor

// mockBackend is a no-compute backend used by tests in this package.
// Creation and accessor code only needs Device(); everything else panics.
type mockBackend struct{}

func (mockBackend) Name() string   { return "Mock" }
func (mockBackend) Device() Device { return CPU }

func (mockBackend) Add(a, b *RawTensor) *RawTensor { panic("mock: Add") }
func (mockBackend) Sub(a, b *RawTensor) *RawTensor { panic("mock: Sub") }
func (mockBackend) Mul(a, b *RawTensor) *RawTensor { panic("mock: Mul") }
func (mockBackend) Div(a, b *RawTensor) *RawTensor { panic("mock: Div") }

func (mockBackend) MatMul(a, b *RawTensor) *RawTensor { panic("mock: MatMul") }

func (mockBackend) Neg(x *RawTensor) *RawTensor     { panic("mock: Neg") }
func (mockBackend) Exp(x *RawTensor) *RawTensor     { panic("mock: Exp") }
func (mockBackend) Log(x *RawTensor) *RawTensor     { panic("mock: Log") }
func (mockBackend) Sqrt(x *RawTensor) *RawTensor    { panic("mock: Sqrt") }
func (mockBackend) Tanh(x *RawTensor) *RawTensor    { panic("mock: Tanh") }
func (mockBackend) Sigmoid(x *RawTensor) *RawTensor { panic("mock: Sigmoid") }
func (mockBackend) ReLU(x *RawTensor) *RawTensor    { panic("mock: ReLU") }

func (mockBackend) PowScalar(x *RawTensor, p float64) *RawTensor      { panic("mock: PowScalar") }
func (mockBackend) AddScalar(x *RawTensor, scalar float64) *RawTensor { panic("mock: AddScalar") }
func (mockBackend) MulScalar(x *RawTensor, scalar float64) *RawTensor { panic("mock: MulScalar") }

func (mockBackend) Sum(x *RawTensor) *RawTensor                           { panic("mock: Sum") }
func (mockBackend) SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor { panic("mock: SumDim") }
func (mockBackend) Mean(x *RawTensor) *RawTensor                          { panic("mock: Mean") }

func (mockBackend) Reshape(t *RawTensor, newShape Shape) *RawTensor  { panic("mock: Reshape") }
func (mockBackend) Transpose(t *RawTensor, axes ...int) *RawTensor   { panic("mock: Transpose") }
func (mockBackend) Cast(x *RawTensor, dtype DataType) *RawTensor     { panic("mock: Cast") }

var _ Backend = mockBackend{}
