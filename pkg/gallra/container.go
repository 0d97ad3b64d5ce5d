package gallra

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	exifHeader = []byte("Exif\x00\x00")

	errNoContainer = errors.New("no EXIF container")
)

// maxIFDs bounds how many directories checkTIFF follows.
const maxIFDs = 64

// Sizes of TIFF field types 1-12 in bytes.
var typeSizes = [...]uint64{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// IFD pointer tags followed by the native parser: Exif, GPS and Interoperability.
var subIFDTags = map[uint16]bool{
	0x8769: true,
	0x8825: true,
	0xA005: true,
}

// locateTIFF returns the TIFF structure carrying EXIF in the image read from r:
// the whole file for TIFF, the APP1 payload for JPEG. It returns errNoContainer
// if there is none.
func locateTIFF(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoContainer
		}
		return nil, err
	}

	switch {
	case string(head) == "II*\x00", string(head) == "MM\x00*":
		return io.ReadAll(br)
	case string(head) == "Exif":
		bs, err := io.ReadAll(br)
		if err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(bs, exifHeader) {
			return nil, errNoContainer
		}
		return bs[len(exifHeader):], nil
	case head[0] == 0xFF && head[1] == 0xD8:
		return jpegEXIF(br)
	}
	return nil, errNoContainer
}

// jpegEXIF walks JPEG marker segments up to the first scan, returning the first Exif APP1 payload.
func jpegEXIF(br *bufio.Reader) ([]byte, error) {
	if _, err := br.Discard(2); err != nil {
		return nil, truncated(err)
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, truncated(err)
		}
		if b != 0xFF {
			return nil, errNoContainer
		}

		m := byte(0xFF)
		for m == 0xFF {
			if m, err = br.ReadByte(); err != nil {
				return nil, truncated(err)
			}
		}

		switch {
		case m == 0xD9, m == 0xDA:
			return nil, errNoContainer
		case m == 0x01, m >= 0xD0 && m <= 0xD7:
			continue
		}

		var lb [2]byte
		if _, err := io.ReadFull(br, lb[:]); err != nil {
			return nil, truncated(err)
		}
		n := int(binary.BigEndian.Uint16(lb[:]))
		if n < 2 {
			return nil, errNoContainer
		}

		seg := make([]byte, n-2)
		if _, err := io.ReadFull(br, seg); err != nil {
			return nil, truncated(err)
		}
		if m == 0xE1 && bytes.HasPrefix(seg, exifHeader) {
			return seg[len(exifHeader):], nil
		}
	}
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errNoContainer
	}
	return err
}

// checkTIFF verifies that every directory the native parser reads stays within b:
// entry tables, out-of-line values, and sub-directory pointers. It also rejects
// directory chains that loop.
func checkTIFF(b []byte) error {
	if len(b) < 8 {
		return fmt.Errorf("tiff header: %d bytes", len(b))
	}

	var order binary.ByteOrder
	switch string(b[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return fmt.Errorf("tiff byte order %q", b[:2])
	}

	seen := map[uint32]bool{}
	off := order.Uint32(b[4:])
	for off != 0 {
		if seen[off] {
			return fmt.Errorf("ifd chain loops at %d", off)
		}
		next, err := checkIFD(b, order, off, seen)
		if err != nil {
			return err
		}
		off = next
	}
	return nil
}

// checkIFD verifies the directory at off and the sub-directories it points to, returning the next directory offset.
func checkIFD(b []byte, order binary.ByteOrder, off uint32, seen map[uint32]bool) (uint32, error) {
	if len(seen) >= maxIFDs {
		return 0, fmt.Errorf("more than %d ifds", maxIFDs)
	}
	seen[off] = true

	size := uint64(len(b))
	start := uint64(off)
	if start+2 > size {
		return 0, fmt.Errorf("ifd at %d: out of bounds", off)
	}
	n := uint64(order.Uint16(b[start:]))
	end := start + 2 + n*12
	if end+4 > size {
		return 0, fmt.Errorf("ifd at %d: %d entries overrun %d bytes", off, n, size)
	}

	for i := uint64(0); i < n; i++ {
		e := b[start+2+i*12:]
		tag := order.Uint16(e)
		typ := order.Uint16(e[2:])
		count := uint64(order.Uint32(e[4:]))

		// Unknown types are bounded as one byte per value.
		width := uint64(1)
		if int(typ) < len(typeSizes) && typeSizes[typ] > 0 {
			width = typeSizes[typ]
		}

		if total := count * width; total > 4 {
			vo := uint64(order.Uint32(e[8:]))
			if vo+total > size {
				return 0, fmt.Errorf("tag %#04x: %d values of %d bytes at %d overrun %d bytes", tag, count, width, vo, size)
			}
		}

		if !subIFDTags[tag] || count == 0 {
			continue
		}
		var sub uint32
		switch typ {
		case 3:
			sub = uint32(order.Uint16(e[8:]))
		case 4, 13:
			sub = order.Uint32(e[8:])
		default:
			continue
		}
		if sub == 0 || seen[sub] {
			continue
		}
		// The parser reads a single directory at each pointer and ignores its chain.
		if _, err := checkIFD(b, order, sub, seen); err != nil {
			return 0, fmt.Errorf("tag %#04x: %w", tag, err)
		}
	}

	return order.Uint32(b[end:]), nil
}
