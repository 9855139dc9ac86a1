package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the module in native markup to the writer. Parsing the
// output yields the same preamble and items.
func (m *Module) Format(_ context.Context, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(m.Preamble)

	for _, it := range m.Items {
		formatItem(&sb, it)
		sb.WriteByte('\n')
	}

	if rem := strings.TrimSpace(m.Remainder); rem != "" {
		sb.WriteString(rem)
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// String returns the native markup of the module.
func (m *Module) String() string {
	var sb strings.Builder

	_ = m.Format(context.Background(), &sb)

	return sb.String()
}

// FormatJSON writes the module as JSON to the writer.
func (m *Module) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(m, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(m)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the module as YAML to the writer.
func (m *Module) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, m.encode(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

func formatItem(sb *strings.Builder, it Item) {
	switch v := it.(type) {
	case *Question:
		sb.WriteByte('[')
		sb.WriteString(v.Header)
		sb.WriteByte(']')

		if v.Markdown != "" {
			sb.WriteByte(' ')
			sb.WriteString(v.Markdown)
		}

	case *Grid:
		formatGroup(sb, v.Tag, v.Markdown, closeGrid)

	case *Loop:
		formatGroup(sb, v.Tag, v.Markdown, closeLoop)
	}
}

func formatGroup(sb *strings.Builder, tag Tag, body, closing string) {
	sb.WriteByte('<')
	sb.WriteString(string(tag.Name))

	if tag.Params != "" {
		sb.WriteByte(' ')
		sb.WriteString(tag.Params)
	}

	sb.WriteString(">\n")

	if body != "" {
		sb.WriteString(body)
		sb.WriteByte('\n')
	}

	sb.WriteString(closing)
}
