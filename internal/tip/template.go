package tip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Separator divides the metadata block from the content block in a template
// document. It is matched as an exact substring and never stored.
const Separator = "----- TIP BELOW THIS LINE -----"

// Placeholder is the content offered when a tip is added without any input.
const Placeholder = "<replace me>"

const starterTag = "notag"

// metadataBlock is the editable YAML form of [Metadata]. Ids and timestamps
// are managed by the program and never appear in the editor.
type metadataBlock struct {
	Subject       *string   `yaml:"subject"`
	Tags          *[]string `yaml:"tags"`
	DataExtension string    `yaml:"data_extension,omitempty"`
}

// StarterMetadata is the metadata offered to the user when adding a tip.
func StarterMetadata() Metadata {
	return Metadata{Tags: []string{starterTag}}
}

// MarshalMetadata renders the editable fields of m as YAML, without a
// trailing newline.
func MarshalMetadata(m Metadata) (string, error) {
	subject := m.Subject
	tags := m.Tags
	block := metadataBlock{
		Subject:       &subject,
		Tags:          &tags,
		DataExtension: m.DataExtension,
	}

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(block); err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Compose joins a rendered metadata block and content into a template
// document: metadata, newline, separator, newline, content.
func Compose(metadata, content string) string {
	var builder strings.Builder

	builder.Grow(len(metadata) + len(Separator) + len(content) + 2)
	builder.WriteString(metadata)
	builder.WriteString("\n")
	builder.WriteString(Separator)
	builder.WriteString("\n")
	builder.WriteString(content)

	return builder.String()
}

// Encode renders m and content as a template document.
func Encode(m Metadata, content string) (string, error) {
	metadata, err := MarshalMetadata(m)
	if err != nil {
		return "", err
	}

	return Compose(metadata, content), nil
}

// Skeleton returns the template document for m with no content. A document
// that still starts with the skeleton of the starter metadata has not been
// filled in.
func Skeleton(m Metadata) (string, error) {
	return Encode(m, "")
}

// Decode splits a template document at the first separator. The metadata
// block is everything before it (minus the newline preceding the separator),
// the content is everything after it minus one line ending ("\n" or "\r\n").
//
// Returns ErrMalformedDocument if the separator is missing.
func Decode(document string) (string, string, error) {
	metadata, rest, found := strings.Cut(document, Separator)
	if !found {
		return "", "", fmt.Errorf("%w (%q)\n%s", ErrMalformedDocument, Separator, document)
	}

	metadata = strings.TrimSuffix(strings.TrimSuffix(metadata, "\n"), "\r")

	content, crlf := strings.CutPrefix(rest, "\r\n")
	if !crlf {
		content = strings.TrimPrefix(rest, "\n")
	}

	return metadata, content, nil
}

var (
	errMissingSubject = errors.New("missing field: subject")
	errMissingTags    = errors.New("missing field: tags")
)

// ParseMetadata parses an edited metadata block. Only subject, tags and
// data_extension are accepted. Subject and tags are required; an empty tag
// list (`tags: []`) is fine, a deleted or null one is not.
//
// Returns ErrInvalidMetadata wrapping the YAML error and echoing the raw
// block so the user can see what went wrong.
func ParseMetadata(raw string) (Metadata, error) {
	var block metadataBlock

	decoder := yaml.NewDecoder(strings.NewReader(raw))
	decoder.KnownFields(true)

	err := decoder.Decode(&block)
	if errors.Is(err, io.EOF) {
		err = errMissingSubject
	}

	if err == nil && block.Subject == nil {
		err = errMissingSubject
	}

	if err == nil && block.Tags == nil {
		err = errMissingTags
	}

	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w\n%s", ErrInvalidMetadata, err, raw)
	}

	return Metadata{
		Subject:       *block.Subject,
		Tags:          *block.Tags,
		DataExtension: block.DataExtension,
	}, nil
}
