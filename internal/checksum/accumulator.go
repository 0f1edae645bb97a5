package checksum

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// Size is the size of a CRC-32 checksum in bytes.
const Size = 4

// marshaledMagic and marshaledSize match the hash/crc32 binary state format,
// so state moves freely between Accumulator and crc32.NewIEEE().
const (
	marshaledMagic = "crc\x01"
	marshaledSize  = len(marshaledMagic) + 4 + 4
)

var ieeeTableSum = tableSum(crc32.IEEETable)

func tableSum(t *crc32.Table) uint32 {
	b := make([]byte, 0, 4*len(t))
	for _, x := range t {
		b = binary.BigEndian.AppendUint32(b, x)
	}
	return crc32.ChecksumIEEE(b)
}

// State is an immutable snapshot of the accumulator register.
// The zero value is the state of an accumulator that has seen no bytes.
type State struct {
	register uint32
}

// FromRegister builds a State from a raw register value.
func FromRegister(register uint32) State {
	return State{register: register}
}

// Register returns the raw register value.
func (s State) Register() uint32 { return s.register }

// Update returns the state after feeding p. s is not modified.
func (s State) Update(p []byte) State {
	return State{register: crc32.Update(s.register, crc32.IEEETable, p)}
}

// Checksum returns the checksum of everything fed up to this state.
func (s State) Checksum() flywaysum.Checksum {
	return flywaysum.Checksum(s.register)
}

// Restore returns a fresh accumulator positioned at s.
func (s State) Restore() *Accumulator {
	return &Accumulator{crc: s.register}
}

// Accumulator is a streaming CRC-32 (IEEE) hash whose register can be
// exported and imported. It implements hash.Hash32, io.StringWriter and
// encoding.BinaryMarshaler/BinaryUnmarshaler.
// Not safe for concurrent use; restore one Accumulator per goroutine.
type Accumulator struct {
	crc uint32
}

// NewAccumulator returns an accumulator that has seen no bytes.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) Size() int      { return Size }
func (a *Accumulator) BlockSize() int { return 1 }
func (a *Accumulator) Reset()         { a.crc = 0 }

func (a *Accumulator) Write(p []byte) (int, error) {
	a.crc = crc32.Update(a.crc, crc32.IEEETable, p)
	return len(p), nil
}

func (a *Accumulator) WriteString(s string) (int, error) {
	return a.Write([]byte(s))
}

func (a *Accumulator) Sum32() uint32 { return a.crc }

func (a *Accumulator) Sum(in []byte) []byte {
	return binary.BigEndian.AppendUint32(in, a.crc)
}

// Checksum returns the current value as a Flyway checksum.
func (a *Accumulator) Checksum() flywaysum.Checksum {
	return flywaysum.Checksum(a.crc)
}

// Register exports the raw register.
func (a *Accumulator) Register() uint32 { return a.crc }

// SetRegister imports a raw register. Subsequent writes continue from it
// exactly as if the bytes that produced it had been written to a.
func (a *Accumulator) SetRegister(register uint32) { a.crc = register }

// Snapshot captures the current register.
func (a *Accumulator) Snapshot() State {
	return State{register: a.crc}
}

func (a *Accumulator) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, marshaledSize)
	b = append(b, marshaledMagic...)
	b = binary.BigEndian.AppendUint32(b, ieeeTableSum)
	b = binary.BigEndian.AppendUint32(b, a.crc)
	return b, nil
}

func (a *Accumulator) UnmarshalBinary(b []byte) error {
	s, err := decodeState(b)
	if err != nil {
		return err
	}
	a.crc = s.register
	return nil
}

func decodeState(b []byte) (State, error) {
	if len(b) != marshaledSize || string(b[:len(marshaledMagic)]) != marshaledMagic {
		return State{}, errors.New("checksum: invalid state encoding")
	}
	if binary.BigEndian.Uint32(b[4:8]) != ieeeTableSum {
		return State{}, errors.New("checksum: state was produced with a different polynomial")
	}
	return State{register: binary.BigEndian.Uint32(b[8:])}, nil
}

// Snapshot exports the register of any CRC-32 hash. h must be an
// *Accumulator or marshal its state in the hash/crc32 format with the IEEE
// table; otherwise the error wraps flywaysum.ErrEngineCapability.
func Snapshot(h hash.Hash32) (State, error) {
	switch v := h.(type) {
	case *Accumulator:
		return v.Snapshot(), nil
	case encoding.BinaryMarshaler:
		b, err := v.MarshalBinary()
		if err != nil {
			return State{}, fmt.Errorf("%w: %v", flywaysum.ErrEngineCapability, err)
		}
		s, err := decodeState(b)
		if err != nil {
			return State{}, fmt.Errorf("%w: %v", flywaysum.ErrEngineCapability, err)
		}
		return s, nil
	default:
		return State{}, fmt.Errorf("%w: %T does not export its register", flywaysum.ErrEngineCapability, h)
	}
}

// RestoreInto forces the register of h to s.
func RestoreInto(h hash.Hash32, s State) error {
	switch v := h.(type) {
	case *Accumulator:
		v.SetRegister(s.register)
		return nil
	case encoding.BinaryUnmarshaler:
		b, _ := s.Restore().MarshalBinary()
		if err := v.UnmarshalBinary(b); err != nil {
			return fmt.Errorf("%w: %v", flywaysum.ErrEngineCapability, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %T does not import a register", flywaysum.ErrEngineCapability, h)
	}
}

var (
	_ hash.Hash32                = (*Accumulator)(nil)
	_ encoding.BinaryMarshaler   = (*Accumulator)(nil)
	_ encoding.BinaryUnmarshaler = (*Accumulator)(nil)
)
