package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ImageRecord is one embedded image. Src is an opaque reference: a URL or a
// data: URI. The record has no identity beyond its place in the collection.
type ImageRecord struct {
	Src      string   `json:"src"`
	Alt      string   `json:"alt"`
	Caption  string   `json:"caption"`
	Position Position `json:"position"`
}

// wireImage mirrors ImageRecord with pointer fields so that a missing key can
// be told apart from an empty value.
type wireImage struct {
	Src      *string `json:"src"`
	Alt      *string `json:"alt"`
	Caption  *string `json:"caption"`
	Position *string `json:"position"`
}

// EncodeImages serializes images to the persisted JSON array form. An empty
// collection encodes as "[]".
func EncodeImages(images []ImageRecord) (string, error) {
	if images == nil {
		images = []ImageRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(images); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeImages parses the persisted JSON array form. Empty or whitespace-only
// input is an empty collection. Unknown or repeated keys, a missing or invalid
// position, or an empty src fail the whole parse.
func DecodeImages(vocab Vocabulary, raw string) ([]ImageRecord, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))

	var items []json.RawMessage
	if err := dec.Decode(&items); err != nil {
		return nil, &ParseError{Item: -1, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Item: -1, Err: errors.New("trailing data after array")}
	}
	if items == nil {
		// JSON null
		return nil, &ParseError{Item: -1, Err: errors.New("expected array")}
	}

	images := make([]ImageRecord, 0, len(items))
	for i, item := range items {
		img, err := decodeImage(vocab, item)
		if err != nil {
			return nil, &ParseError{Item: i, Err: err}
		}
		images = append(images, img)
	}
	return images, nil
}

var imageKeys = map[string]bool{"src": true, "alt": true, "caption": true, "position": true}

// decodeImage decodes one array element. Keys must match the field names
// exactly and appear at most once; encoding/json on its own folds case and
// keeps the last of a repeated key.
func decodeImage(vocab Vocabulary, item json.RawMessage) (ImageRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(item))
	tok, err := dec.Token()
	if err != nil {
		return ImageRecord{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ImageRecord{}, errors.New("expected object")
	}
	seen := make(map[string]bool, len(imageKeys))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return ImageRecord{}, err
		}
		key, _ := tok.(string)
		switch {
		case !imageKeys[key]:
			return ImageRecord{}, fmt.Errorf("unknown field %q", key)
		case seen[key]:
			return ImageRecord{}, fmt.Errorf("duplicate field %q", key)
		}
		seen[key] = true
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return ImageRecord{}, err
		}
	}

	var w wireImage
	if err := json.Unmarshal(item, &w); err != nil {
		return ImageRecord{}, err
	}
	return w.record(vocab)
}

func (w wireImage) record(vocab Vocabulary) (ImageRecord, error) {
	if w.Position == nil {
		return ImageRecord{}, &ValidationError{Field: "position", Reason: "is required"}
	}
	pos, err := vocab.Parse(*w.Position)
	if err != nil {
		return ImageRecord{}, err
	}
	if w.Src == nil || strings.TrimSpace(*w.Src) == "" {
		return ImageRecord{}, &ValidationError{Field: "src", Reason: "is required"}
	}
	img := ImageRecord{Src: *w.Src, Position: pos}
	if w.Alt != nil {
		img.Alt = *w.Alt
	}
	if w.Caption != nil {
		img.Caption = *w.Caption
	}
	return img, nil
}
