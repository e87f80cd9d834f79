package codec

import (
	"bytes"
	"io"
	"os"
)

// Sniff identifies a file's format from its leading bytes.
func Sniff(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	head := make([]byte, 64)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", &IOError{Path: path, Op: "read", Err: err}
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, []byte("ID3")):
		return FormatMP3, nil
	case bytes.HasPrefix(head, []byte("fLaC")):
		return FormatFLAC, nil
	case bytes.HasPrefix(head, []byte("OggS")):
		// Opus streams carry an OpusHead capture pattern in the first page.
		if bytes.Contains(head, []byte("OpusHead")) {
			return FormatOpus, nil
		}
		return FormatOGG, nil
	case len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")):
		return FormatM4A, nil
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		// Bare MPEG audio frame sync, no leading ID3 header.
		return FormatMP3, nil
	}
	return "", &UnsupportedFormatError{Path: path, Reason: "unrecognized file signature"}
}
