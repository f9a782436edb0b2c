package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// wavFormat is the fmt chunk of a RIFF/WAVE file
type wavFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// readWAV returns the format and the PCM payload of a WAV file.
// Chunks other than "fmt " and "data" are skipped.
func readWAV(data []byte) (wavFormat, []byte, error) {
	var format wavFormat
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return format, nil, fmt.Errorf("invalid WAV file: missing RIFF/WAVE header")
	}

	r := bytes.NewReader(data[12:])
	haveFormat := false
	for {
		var id [4]byte
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			if err == io.EOF {
				return format, nil, fmt.Errorf("invalid WAV file: missing data chunk")
			}
			return format, nil, fmt.Errorf("failed to read chunk id: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return format, nil, fmt.Errorf("failed to read chunk size: %w", err)
		}

		switch string(id[:]) {
		case "fmt ":
			if size < 16 {
				return format, nil, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			if err := binary.Read(r, binary.LittleEndian, &format); err != nil {
				return format, nil, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			if _, err := r.Seek(int64(size-16), io.SeekCurrent); err != nil {
				return format, nil, err
			}
			haveFormat = true
		case "data":
			if !haveFormat {
				return format, nil, fmt.Errorf("invalid WAV file: data chunk before fmt chunk")
			}
			payload := make([]byte, size)
			n, err := io.ReadFull(r, payload)
			if err != nil && err != io.ErrUnexpectedEOF {
				return format, nil, fmt.Errorf("failed to read data chunk: %w", err)
			}
			return format, payload[:n], nil
		default:
			// Chunks are padded to an even size
			if _, err := r.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return format, nil, err
			}
		}
	}
}
