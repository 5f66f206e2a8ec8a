package batchio

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ajroetker/go-batchqr/hwy/contrib/qr"
)

// reference is three vectors of five entries, vector-major.
var reference = []float64{
	-1, 0, 3, 1, 5,
	2, 5, 1, -1, 0,
	1, -5, 6, 3, 1,
}

func referenceDoc() *Document {
	return &Document{NumMatrices: 1, Height: 5, Width: 3, Data: append([]float64(nil), reference...)}
}

func TestDecodeJSON(t *testing.T) {
	in := `{"num_matrices": 1, "height": 5, "width": 3, "precision": "float64",
	        "data": [-1,0,3,1,5, 2,5,1,-1,0, 1,-5,6,3,1]}`
	doc, err := Decode(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	require.NoError(t, doc.Validate())
	assert.Equal(t, qr.Shape{NumMatrices: 1, Height: 5, Width: 3}, doc.Shape())
	assert.Equal(t, Float64, doc.Precision)
	assert.Equal(t, reference, doc.Data)
}

func TestDecodeYAML(t *testing.T) {
	in := `
num_matrices: 1
height: 2
width: 2
layout: row-major
data: [1, 2, 3, 4]
`
	doc, err := Decode(strings.NewReader(in), FormatYAML)
	require.NoError(t, err)
	require.NoError(t, doc.Validate())
	// Rows (1 2) and (3 4) become vectors (1 3) and (2 4).
	assert.Equal(t, []float64{1, 3, 2, 4}, doc.VectorMajor())
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"num_matrices":1,"heigth":2}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("num_matrices: 1\nextra: true\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("{}"), "xml")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestValidate(t *testing.T) {
	doc := referenceDoc()
	doc.Data = doc.Data[:14]
	assert.ErrorIs(t, doc.Validate(), ErrSize)

	doc = referenceDoc()
	doc.Layout = "column-major"
	assert.ErrorIs(t, doc.Validate(), ErrFormat)

	doc = referenceDoc()
	doc.Precision = "float16"
	assert.ErrorIs(t, doc.Validate(), ErrFormat)

	doc = referenceDoc()
	doc.Width = 0
	assert.ErrorIs(t, doc.Validate(), qr.ErrInvalidShape)
}

func TestRunReference(t *testing.T) {
	for _, precision := range []string{Float32, Float64} {
		t.Run(precision, func(t *testing.T) {
			res, err := Run(referenceDoc(), RunConfig{Precision: precision, Verify: true})
			require.NoError(t, err)

			assert.Equal(t, precision, res.Precision)
			assert.Equal(t, LayoutVectorMajor, res.Layout)
			assert.Len(t, res.Q, 15)
			assert.Len(t, res.R, 9)
			assert.InDelta(t, 6, res.R[0], 1e-5)
			assert.InDelta(t, 5.56776436, res.R[4], 1e-5)
			assert.InDelta(t, 6.46031447, res.R[8], 1e-5)
			assert.Empty(t, res.RankDeficient)
			require.Len(t, res.Reconstruction, 1)
			assert.Less(t, res.Reconstruction[0], 1e-4)
			assert.Less(t, res.Orthonormality[0], 1e-4)
			require.NotNil(t, res.Matrices[0].MinNorm)
			assert.InDelta(t, 5.56776436, *res.Matrices[0].MinNorm, 1e-5)
		})
	}
}

func TestRunRowMajorMatchesVectorMajor(t *testing.T) {
	vm, err := Run(referenceDoc(), RunConfig{Precision: Float64})
	require.NoError(t, err)

	// The same matrix written as five rows of three entries.
	rm := &Document{NumMatrices: 1, Height: 5, Width: 3, Layout: LayoutRowMajor, Precision: Float64,
		Data: transposeBlocks(reference, 1, 3, 5)}
	res, err := Run(rm, RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, LayoutRowMajor, res.Layout)

	assert.Equal(t, []float64(transposeBlocks(vm.Q, 1, 3, 5)), []float64(res.Q))
	assert.Equal(t, []float64(transposeBlocks(vm.R, 1, 3, 3)), []float64(res.R))
	// Row 0 of R is (R00, R01, R02).
	assert.InDelta(t, 6, res.R[0], 1e-12)
	assert.InDelta(t, 0, res.R[1], 1e-12)
	assert.InDelta(t, 25.0/6, res.R[2], 1e-12)
	assert.Zero(t, res.R[3], "strictly lower part stays zero")
}

func TestRunRankDeficient(t *testing.T) {
	doc := &Document{NumMatrices: 2, Height: 2, Width: 2, Precision: Float64,
		Data: []float64{1, 0, 0, 1, 0, 0, 1, 1}}
	res, err := Run(doc, RunConfig{Options: []qr.Option{qr.WithRankPolicy(qr.RankNaN)}})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.RankDeficient)
	assert.Nil(t, res.Matrices[1].MinNorm, "NaN min norm is omitted")
	assert.True(t, math.IsNaN(res.Q[4]))
	require.NotNil(t, res.Report)
	assert.ErrorIs(t, res.Report.Err(), qr.ErrRankDeficient)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, res))
	var decoded struct {
		Q        Values `json:"q"`
		Matrices []struct {
			Index   int      `json:"index"`
			MinNorm *float64 `json:"min_norm"`
		} `json:"matrices"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.True(t, math.IsNaN(decoded.Q[4]))
	assert.Equal(t, 1.0, decoded.Q[0])
	assert.Nil(t, decoded.Matrices[1].MinNorm)
}

func TestValuesJSON(t *testing.T) {
	b, err := json.Marshal(Values{1.5, math.NaN(), math.Inf(-1), -2})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,null,null,-2]`, string(b))

	b, err = json.Marshal(struct {
		V Values `json:"v"`
	}{})
	require.NoError(t, err)
	assert.Equal(t, `{"v":null}`, string(b))
}

func TestRawRoundTrip(t *testing.T) {
	shape := qr.Shape{NumMatrices: 1, Height: 5, Width: 3}
	for _, precision := range []string{Float32, Float64} {
		t.Run(precision, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRaw(&buf, reference, precision))
			size, _ := ElemSize(precision)
			assert.Equal(t, 15*size, buf.Len())

			doc, err := ReadRaw(&buf, shape, precision)
			require.NoError(t, err)
			assert.Equal(t, reference, doc.Data)
			assert.Equal(t, precision, doc.Precision)
		})
	}
}

func TestReadRawSize(t *testing.T) {
	shape := qr.Shape{NumMatrices: 1, Height: 5, Width: 3}
	_, err := ReadRaw(bytes.NewReader(make([]byte, 59)), shape, Float32)
	assert.ErrorIs(t, err, ErrSize)

	_, err = ReadRaw(bytes.NewReader(nil), qr.Shape{}, Float32)
	assert.ErrorIs(t, err, qr.ErrInvalidShape)
}

func TestEncodeRaw(t *testing.T) {
	res, err := Run(referenceDoc(), RunConfig{Precision: Float32})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatRaw, res))
	assert.Equal(t, (15+9)*4, buf.Len())
}

func TestEncodeYAML(t *testing.T) {
	res, err := Run(referenceDoc(), RunConfig{Precision: Float64})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, res))

	var decoded struct {
		Shape  qr.Shape  `yaml:"shape"`
		Kernel string    `yaml:"kernel"`
		R      []float64 `yaml:"r"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, res.Shape, decoded.Shape)
	assert.Equal(t, res.Kernel, decoded.Kernel)
	assert.Equal(t, []float64(res.R), decoded.R)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("batch.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("batch.YAML"))
	assert.Equal(t, FormatRaw, FormatFromPath("batch.f32"))
	assert.Equal(t, FormatJSON, FormatFromPath("batch.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("-"))
}
