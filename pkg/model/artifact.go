package model

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
)

const (
	// MagicNumber is "DIAMOND1" read as a little-endian uint64 prefix.
	MagicNumber     = 0x31444E4F4D414944
	ArtifactVersion = 1
)

var (
	ErrArtifactNotFound = errors.New("model: artifact not found")
	ErrInvalidArtifact  = errors.New("model: invalid artifact")
)

// Layout (little-endian):
//
//	magic uint64 | version uint32 | features uint32 | coef float64×features | intercept float64
func Encode(w io.Writer, lm *LinearModel) error {
	bw := bufio.NewWriter(w)
	header := []any{uint64(MagicNumber), uint32(ArtifactVersion), uint32(NumFeatures)}
	for _, v := range header {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, c := range lm.Coefficients {
		if err := binary.Write(bw, binary.LittleEndian, c); err != nil {
			return err
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, lm.Intercept); err != nil {
		return err
	}
	return bw.Flush()
}

func Decode(r io.Reader) (*LinearModel, error) {
	var (
		magic    uint64
		version  uint32
		features uint32
	)
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidArtifact, err)
	}
	if magic != MagicNumber {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrInvalidArtifact, magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidArtifact, err)
	}
	if version != ArtifactVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidArtifact, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &features); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidArtifact, err)
	}
	if features != NumFeatures {
		return nil, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidArtifact, NumFeatures, features)
	}

	var params [NumFeatures + 1]float64
	if err := binary.Read(r, binary.LittleEndian, &params); err != nil {
		return nil, fmt.Errorf("%w: params: %v", ErrInvalidArtifact, err)
	}
	for _, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: non-finite parameter", ErrInvalidArtifact)
		}
	}
	if n, _ := r.Read(make([]byte, 1)); n != 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidArtifact)
	}

	var coef Features
	copy(coef[:], params[:NumFeatures])
	return NewFromParams(coef, params[NumFeatures]), nil
}

// Save writes the model to path, creating parent directories.
func Save(path string, lm *LinearModel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, lm); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a model saved by Save. A missing file yields ErrArtifactNotFound.
func Load(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrArtifactNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}
