package server

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/ayusman/mudra/internal/morph"
)

// FrameHeaderSize is the byte length of the binary frame header:
// u32 count, f32 pointSize, f32 opacity, f32 rotX, f32 rotY, u32 rgb.
const FrameHeaderSize = 24

// ErrShortFrame is returned when decoding a truncated frame.
var ErrShortFrame = errors.New("short frame")

// EncodeFrame packs f little-endian: the header followed by count xyz
// float32 triples. An unparsable color is sent as white.
func EncodeFrame(f morph.Frame) []byte {
	buf := make([]byte, FrameHeaderSize+len(f.Positions)*12)

	rgb, err := morph.ParseColor(f.Display.Color)
	if err != nil {
		rgb = 0xFFFFFF
	}

	le := binary.LittleEndian
	le.PutUint32(buf[0:], uint32(len(f.Positions)))
	le.PutUint32(buf[4:], math.Float32bits(float32(f.Display.PointSize)))
	le.PutUint32(buf[8:], math.Float32bits(float32(f.Display.Opacity)))
	le.PutUint32(buf[12:], math.Float32bits(float32(f.Display.RotationX)))
	le.PutUint32(buf[16:], math.Float32bits(float32(f.Display.RotationY)))
	le.PutUint32(buf[20:], rgb)

	off := FrameHeaderSize
	for _, p := range f.Positions {
		le.PutUint32(buf[off:], math.Float32bits(float32(p.X)))
		le.PutUint32(buf[off+4:], math.Float32bits(float32(p.Y)))
		le.PutUint32(buf[off+8:], math.Float32bits(float32(p.Z)))
		off += 12
	}
	return buf
}

// FrameHeader is the decoded header of a binary frame.
type FrameHeader struct {
	Count     uint32
	PointSize float32
	Opacity   float32
	RotationX float32
	RotationY float32
	RGB       uint32
}

// DecodeFrame unpacks a frame produced by EncodeFrame.
func DecodeFrame(buf []byte) (FrameHeader, []float32, error) {
	var h FrameHeader
	if len(buf) < FrameHeaderSize {
		return h, nil, ErrShortFrame
	}

	le := binary.LittleEndian
	h.Count = le.Uint32(buf[0:])
	h.PointSize = math.Float32frombits(le.Uint32(buf[4:]))
	h.Opacity = math.Float32frombits(le.Uint32(buf[8:]))
	h.RotationX = math.Float32frombits(le.Uint32(buf[12:]))
	h.RotationY = math.Float32frombits(le.Uint32(buf[16:]))
	h.RGB = le.Uint32(buf[20:])

	n := int(h.Count) * 3
	if len(buf)-FrameHeaderSize < n*4 {
		return h, nil, ErrShortFrame
	}

	coords := make([]float32, n)
	for i := range coords {
		coords[i] = math.Float32frombits(le.Uint32(buf[FrameHeaderSize+i*4:]))
	}
	return h, coords, nil
}
