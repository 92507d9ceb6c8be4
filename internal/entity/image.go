package entity

import "strings"

// RawImage is an undecoded image payload. Filename is a hint for logging
// only; nothing downstream depends on it.
type RawImage struct {
	Bytes    []byte
	Filename string
}

// OcrText is the ordered sequence of non-empty text lines recognized from an
// image. Zero lines is a valid OCR outcome; callers decide whether that is
// an error.
type OcrText struct {
	Lines []string
}

// Join flattens the lines into a single newline-separated blob.
func (t OcrText) Join() string {
	return strings.Join(t.Lines, "\n")
}

// Empty reports whether the joined text carries no usable characters.
func (t OcrText) Empty() bool {
	return strings.TrimSpace(t.Join()) == ""
}
