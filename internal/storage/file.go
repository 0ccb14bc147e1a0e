package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/status"
)

// ColumnFileHeader is the fixed-size prefix of every col_<index>.bin file.
// All multi-byte fields are little-endian (SPEC_FULL.md §9 resolves the
// original's unspecified endianness explicitly in favor of LittleEndian).
type ColumnFileHeader struct {
	Magic      uint32
	Version    uint32
	DataType   uint32
	RowCount   uint64
	DataOffset uint64
}

const (
	columnFileMagic   = 0x4D494E49 // "MINI"
	columnFileVersion = 1
	headerSize        = 28 // magic(4) + version(4) + data_type(4) + row_count(8) + data_offset(8)
)

func dataTypeCode(t ast.DataType) uint32 {
	switch t {
	case ast.TypeInt:
		return 0
	case ast.TypeString:
		return 1
	case ast.TypeBool:
		return 2
	case ast.TypeDecimal:
		return 3
	default:
		return 0xFFFFFFFF
	}
}

func dataTypeFromCode(code uint32) (ast.DataType, error) {
	switch code {
	case 0:
		return ast.TypeInt, nil
	case 1:
		return ast.TypeString, nil
	case 2:
		return ast.TypeBool, nil
	case 3:
		return ast.TypeDecimal, nil
	default:
		return 0, status.IOErrorf("column file has unknown data_type code %d", code)
	}
}

func writeHeader(w io.Writer, t ast.DataType, rowCount uint64) error {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], columnFileMagic)
	binary.LittleEndian.PutUint32(buf[4:8], columnFileVersion)
	binary.LittleEndian.PutUint32(buf[8:12], dataTypeCode(t))
	binary.LittleEndian.PutUint64(buf[12:20], rowCount)
	binary.LittleEndian.PutUint64(buf[20:28], headerSize)
	_, err := w.Write(buf[:])
	return err
}

func readHeader(r io.Reader) (ColumnFileHeader, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return ColumnFileHeader{}, status.IOErrorf("failed to read column file header: %v", err)
	}
	h := ColumnFileHeader{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		Version:    binary.LittleEndian.Uint32(buf[4:8]),
		DataType:   binary.LittleEndian.Uint32(buf[8:12]),
		RowCount:   binary.LittleEndian.Uint64(buf[12:20]),
		DataOffset: binary.LittleEndian.Uint64(buf[20:28]),
	}
	if h.Magic != columnFileMagic {
		return h, status.IOErrorf("column file has bad magic 0x%08X", h.Magic)
	}
	if h.Version != columnFileVersion {
		return h, status.IOErrorf("column file has unsupported version %d", h.Version)
	}
	return h, nil
}

// WriteColumnFile writes col entirely (header + payload) to path, via a
// temp-file-then-rename so a crash mid-write never leaves a half-written
// file at the real path (SPEC_FULL.md §9 resolves atomicity this way).
func WriteColumnFile(path string, col *ColumnVector) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return status.IOErrorf("failed to create %s: %v", tmp, err)
	}
	if err := writeColumnFile(f, col); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return status.IOErrorf("failed to close %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return status.IOErrorf("failed to rename %s to %s: %v", tmp, path, err)
	}
	return nil
}

func writeColumnFile(w io.Writer, col *ColumnVector) error {
	if err := writeHeader(w, col.Type, uint64(col.RowCount)); err != nil {
		return status.IOErrorf("failed to write column header: %v", err)
	}
	switch col.Type {
	case ast.TypeInt:
		buf := make([]byte, 4)
		for _, v := range col.Ints {
			binary.LittleEndian.PutUint32(buf, uint32(v))
			if _, err := w.Write(buf); err != nil {
				return status.IOErrorf("failed to write int column: %v", err)
			}
		}
	case ast.TypeString:
		lenBuf := make([]byte, 4)
		for _, s := range col.Strings {
			binary.LittleEndian.PutUint32(lenBuf, uint32(len(s)))
			if _, err := w.Write(lenBuf); err != nil {
				return status.IOErrorf("failed to write string column: %v", err)
			}
			if _, err := w.Write([]byte(s)); err != nil {
				return status.IOErrorf("failed to write string column: %v", err)
			}
		}
	case ast.TypeBool:
		for _, b := range col.Bools {
			v := byte(0)
			if b {
				v = 1
			}
			if _, err := w.Write([]byte{v}); err != nil {
				return status.IOErrorf("failed to write bool column: %v", err)
			}
		}
	case ast.TypeDecimal:
		buf := make([]byte, 8)
		for _, v := range col.Decimals {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			if _, err := w.Write(buf); err != nil {
				return status.IOErrorf("failed to write decimal column: %v", err)
			}
		}
	default:
		return status.InternalErrorf("cannot write column of unknown type")
	}
	return nil
}

// ReadColumnFile reads a complete column file from path.
func ReadColumnFile(path, name string) (ColumnVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return ColumnVector{}, status.IOErrorf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	h, err := readHeader(f)
	if err != nil {
		return ColumnVector{}, fmt.Errorf("%s: %w", path, err)
	}
	t, err := dataTypeFromCode(h.DataType)
	if err != nil {
		return ColumnVector{}, fmt.Errorf("%s: %w", path, err)
	}
	col := NewColumnVector(name, t)
	n := int(h.RowCount)

	switch t {
	case ast.TypeInt:
		buf := make([]byte, 4)
		col.Ints = make([]int32, 0, n)
		for i := 0; i < n; i++ {
			if _, err := io.ReadFull(f, buf); err != nil {
				return ColumnVector{}, status.IOErrorf("%s: truncated int column: %v", path, err)
			}
			col.Ints = append(col.Ints, int32(binary.LittleEndian.Uint32(buf)))
		}
	case ast.TypeString:
		lenBuf := make([]byte, 4)
		col.Strings = make([]string, 0, n)
		for i := 0; i < n; i++ {
			if _, err := io.ReadFull(f, lenBuf); err != nil {
				return ColumnVector{}, status.IOErrorf("%s: truncated string column: %v", path, err)
			}
			l := binary.LittleEndian.Uint32(lenBuf)
			sbuf := make([]byte, l)
			if _, err := io.ReadFull(f, sbuf); err != nil {
				return ColumnVector{}, status.IOErrorf("%s: truncated string column: %v", path, err)
			}
			col.Strings = append(col.Strings, string(sbuf))
		}
	case ast.TypeBool:
		buf := make([]byte, 1)
		col.Bools = make([]bool, 0, n)
		for i := 0; i < n; i++ {
			if _, err := io.ReadFull(f, buf); err != nil {
				return ColumnVector{}, status.IOErrorf("%s: truncated bool column: %v", path, err)
			}
			col.Bools = append(col.Bools, buf[0] != 0)
		}
	case ast.TypeDecimal:
		buf := make([]byte, 8)
		col.Decimals = make([]float64, 0, n)
		for i := 0; i < n; i++ {
			if _, err := io.ReadFull(f, buf); err != nil {
				return ColumnVector{}, status.IOErrorf("%s: truncated decimal column: %v", path, err)
			}
			col.Decimals = append(col.Decimals, math.Float64frombits(binary.LittleEndian.Uint64(buf)))
		}
	}
	col.RowCount = n
	return col, nil
}
