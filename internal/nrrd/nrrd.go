// Package nrrd reads and writes NRRD0004 arrays, either attached (.nrrd,
// header and data in one file) or detached (.nhdr plus a separate data
// file). Raw and gzip encodings are supported, little endian only. Header
// fields beyond the ones this tool interprets are preserved, so a reference
// header can carry orientation metadata through a conversion.
package nrrd

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kspace-tools/kspace/internal/dims"
)

const magic = "NRRD0004"

// Encoding selects how the sample payload is stored.
type Encoding string

const (
	EncodingRaw  Encoding = "raw"
	EncodingGzip Encoding = "gzip"
)

// Header models the fields this tool interprets plus a pass-through list of
// everything else, in original order.
type Header struct {
	Type     string
	Sizes    []int
	Encoding Encoding
	Endian   string
	DataFile string

	// Extra holds uninterpreted "field: value" lines in file order.
	Extra [][2]string
}

// WriteOptions tune Write.
type WriteOptions struct {
	// Reference contributes its pass-through fields; its sizes must agree
	// with the array being written.
	Reference *Header
	// Detached writes a .nhdr plus a sibling data file instead of a single
	// attached .nrrd.
	Detached bool
	// Encoding defaults to raw.
	Encoding Encoding
}

// Read loads an attached or detached NRRD as float32 data.
func Read(path string) ([]float32, dims.Dim, *Header, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the CLI
	if err != nil {
		return nil, dims.Dim{}, nil, fmt.Errorf("nrrd: %w", err)
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	h, err := readHeader(br)
	if err != nil {
		return nil, dims.Dim{}, nil, fmt.Errorf("nrrd: %s: %w", path, err)
	}

	var payload io.Reader
	if h.DataFile != "" {
		dataPath := h.DataFile
		if !filepath.IsAbs(dataPath) {
			dataPath = filepath.Join(filepath.Dir(path), dataPath)
		}
		df, err := os.Open(dataPath) //nolint:gosec // resolved from the header
		if err != nil {
			return nil, dims.Dim{}, nil, fmt.Errorf("nrrd: %w", err)
		}
		defer func() { _ = df.Close() }()
		payload = df
	} else {
		payload = br
	}

	if h.Encoding == EncodingGzip {
		gz, err := gzip.NewReader(payload)
		if err != nil {
			return nil, dims.Dim{}, nil, fmt.Errorf("nrrd: %s: %w", path, err)
		}
		defer func() { _ = gz.Close() }()
		payload = gz
	}

	d := dims.FromShape(h.Sizes)
	data, err := decodePayload(payload, h.Type, d.Numel())
	if err != nil {
		return nil, dims.Dim{}, nil, fmt.Errorf("nrrd: %s: %w", path, err)
	}
	return data, d, h, nil
}

// Write stores float32 data under path. A .nhdr extension or
// opts.Detached produces a detached pair; anything else is attached.
func Write(path string, data []float32, d dims.Dim, opts WriteOptions) error {
	if d.Numel() != len(data) {
		return fmt.Errorf("nrrd: buffer has %d samples but dimensions describe %d", len(data), d.Numel())
	}
	sizes := d.ShapeTrimmed()
	if opts.Reference != nil && !equalInts(opts.Reference.Sizes, sizes) {
		return fmt.Errorf("nrrd: reference header sizes %v do not match array shape %v", opts.Reference.Sizes, sizes)
	}

	enc := opts.Encoding
	if enc == "" {
		enc = EncodingRaw
	}
	if enc != EncodingRaw && enc != EncodingGzip {
		return fmt.Errorf("nrrd: unsupported encoding %q", enc)
	}
	detached := opts.Detached || strings.EqualFold(filepath.Ext(path), ".nhdr")

	h := Header{
		Type:     "float",
		Sizes:    sizes,
		Encoding: enc,
		Endian:   "little",
	}
	if opts.Reference != nil {
		h.Extra = opts.Reference.Extra
	}

	payload, err := encodePayload(data, enc)
	if err != nil {
		return err
	}

	if !detached {
		var buf bytes.Buffer
		writeHeader(&buf, h)
		buf.WriteByte('\n')
		buf.Write(payload)
		if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
			return fmt.Errorf("nrrd: %w", err)
		}
		return nil
	}

	dataName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".raw"
	if enc == EncodingGzip {
		dataName += ".gz"
	}
	h.DataFile = dataName

	var buf bytes.Buffer
	writeHeader(&buf, h)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("nrrd: %w", err)
	}
	dataPath := filepath.Join(filepath.Dir(path), dataName)
	if err := os.WriteFile(dataPath, payload, 0o600); err != nil {
		return fmt.Errorf("nrrd: %w", err)
	}
	return nil
}

func readHeader(br *bufio.Reader) (*Header, error) {
	first, err := br.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.TrimSpace(first), "NRRD") {
		return nil, fmt.Errorf("not a NRRD file")
	}

	h := &Header{Encoding: EncodingRaw, Endian: "little"}
	for {
		line, err := br.ReadString('\n')
		if err == io.EOF && strings.TrimSpace(line) == "" {
			// Detached headers may end without a blank line.
			break
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		text := strings.TrimRight(line, "\r\n")
		if text == "" {
			break // header/data separator
		}
		if strings.HasPrefix(text, "#") {
			continue
		}
		colon := strings.Index(text, ":")
		if colon < 0 {
			return nil, fmt.Errorf("malformed header line %q", text)
		}
		field := strings.TrimSpace(text[:colon])
		value := strings.TrimSpace(strings.TrimPrefix(text[colon+1:], "="))
		switch strings.ToLower(field) {
		case "type":
			h.Type = value
		case "dimension":
			// Redundant with sizes; validated below.
		case "sizes":
			for _, tok := range strings.Fields(value) {
				n, err := strconv.Atoi(tok)
				if err != nil || n <= 0 {
					return nil, fmt.Errorf("bad size %q", tok)
				}
				h.Sizes = append(h.Sizes, n)
			}
		case "encoding":
			switch value {
			case "raw":
				h.Encoding = EncodingRaw
			case "gzip", "gz":
				h.Encoding = EncodingGzip
			default:
				return nil, fmt.Errorf("unsupported encoding %q", value)
			}
		case "endian":
			if value != "little" {
				return nil, fmt.Errorf("unsupported endian %q", value)
			}
			h.Endian = value
		case "data file", "datafile":
			h.DataFile = value
		default:
			h.Extra = append(h.Extra, [2]string{field, value})
		}
		if err == io.EOF {
			break
		}
	}
	if len(h.Sizes) == 0 {
		return nil, fmt.Errorf("header has no sizes field")
	}
	if h.Type == "" {
		return nil, fmt.Errorf("header has no type field")
	}
	return h, nil
}

func writeHeader(w *bytes.Buffer, h Header) {
	fmt.Fprintln(w, magic)
	fmt.Fprintln(w, "# written by kspace")
	fmt.Fprintf(w, "type: %s\n", h.Type)
	fmt.Fprintf(w, "dimension: %d\n", len(h.Sizes))
	parts := make([]string, len(h.Sizes))
	for i, size := range h.Sizes {
		parts[i] = strconv.Itoa(size)
	}
	fmt.Fprintf(w, "sizes: %s\n", strings.Join(parts, " "))
	fmt.Fprintf(w, "endian: %s\n", h.Endian)
	fmt.Fprintf(w, "encoding: %s\n", h.Encoding)
	for _, kv := range h.Extra {
		fmt.Fprintf(w, "%s: %s\n", kv[0], kv[1])
	}
	if h.DataFile != "" {
		fmt.Fprintf(w, "data file: %s\n", h.DataFile)
	}
}

func encodePayload(data []float32, enc Encoding) ([]byte, error) {
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	if enc == EncodingRaw {
		return raw, nil
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return nil, fmt.Errorf("nrrd: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("nrrd: %w", err)
	}
	return buf.Bytes(), nil
}

func decodePayload(r io.Reader, typeName string, numel int) ([]float32, error) {
	elemBytes, decode, err := elementDecoder(typeName)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, elemBytes*numel)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("payload truncated: %w", err)
	}
	out := make([]float32, numel)
	for i := range out {
		out[i] = decode(raw[elemBytes*i:])
	}
	return out, nil
}

func elementDecoder(typeName string) (int, func([]byte) float32, error) {
	switch typeName {
	case "uchar", "uint8", "uint8_t", "unsigned char":
		return 1, func(b []byte) float32 { return float32(b[0]) }, nil
	case "char", "int8", "int8_t", "signed char":
		return 1, func(b []byte) float32 { return float32(int8(b[0])) }, nil
	case "short", "int16", "int16_t", "signed short":
		return 2, func(b []byte) float32 { return float32(int16(binary.LittleEndian.Uint16(b))) }, nil
	case "ushort", "uint16", "uint16_t", "unsigned short":
		return 2, func(b []byte) float32 { return float32(binary.LittleEndian.Uint16(b)) }, nil
	case "int", "int32", "int32_t", "signed int":
		return 4, func(b []byte) float32 { return float32(int32(binary.LittleEndian.Uint32(b))) }, nil
	case "uint", "uint32", "uint32_t", "unsigned int":
		return 4, func(b []byte) float32 { return float32(binary.LittleEndian.Uint32(b)) }, nil
	case "float":
		return 4, func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }, nil
	case "double":
		return 8, func(b []byte) float32 { return float32(math.Float64frombits(binary.LittleEndian.Uint64(b))) }, nil
	default:
		return 0, nil, fmt.Errorf("unsupported sample type %q", typeName)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
