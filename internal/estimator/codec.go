package estimator

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/cache"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/oracle"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/tensor"
)

// requestKey derives the stable content key for one estimation request:
// a hash over every oracle's describable inputs plus the call settings.
// Any changed input changes the key.
func (e *Estimator) requestKey(oracles []oracle.Descriptor) string {
	var buf bytes.Buffer
	for _, d := range oracles {
		buf.WriteByte(byte(d.Kind()))
		switch d.Kind() {
		case oracle.KindValue:
			writeFloats(&buf, d.Tensor().Data())
		case oracle.KindDescribable:
			writeFloats(&buf, d.Preparation())
			for _, row := range d.Observable() {
				writeFloats(&buf, row)
			}
		}
	}

	var settings bytes.Buffer
	binary.Write(&settings, binary.LittleEndian, int64(e.opts.Shots))
	binary.Write(&settings, binary.LittleEndian, math.Float64bits(e.opts.Precision))
	settings.WriteString(e.opts.Mode)

	return cache.Key(buf.Bytes(), settings.Bytes())
}

func writeFloats(buf *bytes.Buffer, vals []float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(len(vals)))
	buf.Write(b[:])
	for _, v := range vals {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf.Write(b[:])
	}
}

// cacheEntry is the serialized form of an estimate sequence.
type cacheEntry struct {
	Shapes [][]int
	Data   [][]float64
}

// encodeEstimates serializes estimate tensors for cache storage.
func encodeEstimates(estimates []*tensor.Tensor) ([]byte, error) {
	entry := cacheEntry{
		Shapes: make([][]int, len(estimates)),
		Data:   make([][]float64, len(estimates)),
	}
	for i, t := range estimates {
		entry.Shapes[i] = t.Shape()
		entry.Data[i] = t.Data()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return nil, fmt.Errorf("encoding estimates: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeEstimates deserializes a cached estimate sequence.
func decodeEstimates(blob []byte) ([]*tensor.Tensor, error) {
	var entry cacheEntry
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&entry); err != nil {
		return nil, fmt.Errorf("decoding estimates: %w", err)
	}
	if len(entry.Shapes) != len(entry.Data) {
		return nil, fmt.Errorf("entry has %d shapes for %d tensors", len(entry.Shapes), len(entry.Data))
	}
	estimates := make([]*tensor.Tensor, len(entry.Data))
	for i := range entry.Data {
		shape := tensor.Shape(entry.Shapes[i])
		if shape.IsScalar() && len(entry.Data[i]) == 1 {
			estimates[i] = tensor.Scalar(entry.Data[i][0])
			continue
		}
		t, err := tensor.FromSlice(entry.Data[i], shape)
		if err != nil {
			return nil, err
		}
		estimates[i] = t
	}
	return estimates, nil
}
