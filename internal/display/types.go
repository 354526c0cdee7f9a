package display

import (
	"github.com/autobrr/shabrr/internal/sha1"
)

// FileEntry is a file about to be hashed
type FileEntry struct {
	Path string
	Size int64
}

// PaddingInfo summarizes how a message was padded
type PaddingInfo struct {
	MessageLen int    `json:"message_len"`
	BitLen     uint64 `json:"bit_len"`
	ZeroBytes  int    `json:"zero_bytes"`
	PaddedLen  int    `json:"padded_len"`
	Blocks     int    `json:"blocks"`
}

// BlockState is the accumulator before and after one block
type BlockState struct {
	Index int        `json:"index"`
	In    sha1.State `json:"in"`
	Out   sha1.State `json:"out"`
}
