package pcm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"descant/internal/services"
)

const (
	waveFormatPCM = 1
	riffHeaderLen = 12
)

// DecodeWAV parses a RIFF/WAVE stream containing 16-bit PCM samples.
// Other bit depths and compressed formats fail fast with a clear error
// rather than producing garbage sample data downstream.
func DecodeWAV(r io.Reader) (*Track, error) {
	header := make([]byte, riffHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode", "short RIFF header", err)
	}
	if !bytes.Equal(header[0:4], []byte("RIFF")) || !bytes.Equal(header[8:12], []byte("WAVE")) {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode", "not a RIFF/WAVE stream", nil)
	}

	var (
		format     uint16
		channels   uint16
		sampleRate uint32
		bitDepth   uint16
		sawFmt     bool
		data       []byte
	)

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(r, chunkHeader); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode", "truncated chunk header", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkLen := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkLen)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode", "truncated fmt chunk", err)
			}
			if chunkLen < 16 {
				return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode",
					fmt.Sprintf("fmt chunk too small (%d bytes)", chunkLen), nil)
			}
			format = binary.LittleEndian.Uint16(body[0:2])
			channels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bitDepth = binary.LittleEndian.Uint16(body[14:16])
			sawFmt = true
		case "data":
			body := make([]byte, chunkLen)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode", "truncated data chunk", err)
			}
			data = body
		default:
			// Skip LIST, fact, and other metadata chunks. Chunks are
			// word-aligned; odd sizes carry a pad byte.
			skip := int64(chunkLen)
			if chunkLen%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				break
			}
			continue
		}
		if chunkLen%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil {
				break
			}
		}
	}

	if !sawFmt {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode", "missing fmt chunk", nil)
	}
	if data == nil {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode", "missing data chunk", nil)
	}
	if format != waveFormatPCM {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode",
			fmt.Sprintf("unsupported WAVE format tag %d (only PCM is supported)", format), nil)
	}
	if bitDepth != 16 {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode",
			fmt.Sprintf("unsupported bit depth %d (only 16-bit PCM is supported)", bitDepth), nil)
	}
	if channels < 1 || channels > 2 {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "decode",
			fmt.Sprintf("unsupported channel count %d", channels), nil)
	}
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	track := &Track{
		Samples:    samples,
		SampleRate: int(sampleRate),
		Channels:   int(channels),
	}
	if err := track.Validate(); err != nil {
		return nil, err
	}
	return track, nil
}

// ReadWAVFile decodes a WAV file from disk.
func ReadWAVFile(path string) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "read", fmt.Sprintf("open %s", path), err)
	}
	defer file.Close()
	return DecodeWAV(file)
}

// EncodeWAV writes the track as a canonical RIFF/WAVE stream with 16-bit PCM
// samples.
func EncodeWAV(w io.Writer, track *Track) error {
	if err := track.Validate(); err != nil {
		return err
	}

	dataLen := len(track.Samples) * 2
	byteRate := track.SampleRate * track.Channels * 2
	blockAlign := track.Channels * 2

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(waveFormatPCM))
	binary.Write(&buf, binary.LittleEndian, uint16(track.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(track.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	raw := make([]byte, dataLen)
	for i, sample := range track.Samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(sample))
	}
	buf.Write(raw)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return services.Wrap(services.ErrExport, "pcm", "encode", "write WAVE stream", err)
	}
	return nil
}

// WriteWAVFile encodes the track to a temporary file in the destination
// directory and renames it into place, so an interrupted export never leaves
// a partial file at the final path.
func WriteWAVFile(path string, track *Track) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".descant-*.wav")
	if err != nil {
		return services.Wrap(services.ErrExport, "pcm", "write", "create temporary file", err)
	}
	tmpPath := tmp.Name()
	if err := EncodeWAV(tmp, track); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrExport, "pcm", "write", "close temporary file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrExport, "pcm", "write", fmt.Sprintf("rename into %s", path), err)
	}
	return nil
}
