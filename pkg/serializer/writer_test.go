package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testHost struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

type testInventory struct {
	Group []testHost `json:"group" yaml:"group"`
}

var sample = testInventory{Group: []testHost{
	{Name: "web01", Address: "10.0.0.5"},
	{Name: "web02", Address: "10.0.0.6"},
}}

func TestWriter_Serialize(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		decode func([]byte, any) error
	}{
		{"json", FormatJSON, json.Unmarshal},
		{"yaml", FormatYAML, yaml.Unmarshal},
		{"unknown falls back to json", Format("xml"), json.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(tt.format, &buf).Serialize(context.Background(), sample))

			var got testInventory
			require.NoError(t, tt.decode(buf.Bytes(), &got))
			assert.Equal(t, sample, got)
		})
	}
}

func TestWriter_SerializeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewWriter(FormatJSON, &buf).Serialize(ctx, sample)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestWriter_Table(t *testing.T) {
	t.Run("flattened keys", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), sample))

		out := buf.String()
		assert.Contains(t, out, "FIELD")
		assert.Contains(t, out, "VALUE")
		assert.Contains(t, out, "group[0].name")
		assert.Contains(t, out, "group[1].address")
		assert.Contains(t, out, "10.0.0.6")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), []testHost{}))
		assert.Contains(t, buf.String(), "<empty>")
	})

	t.Run("nil values", func(t *testing.T) {
		var buf bytes.Buffer
		data := map[string]any{"hostvars": nil}
		require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), data))
		assert.Contains(t, buf.String(), "<nil>")
	})
}

func TestWriter_CloseIsIdempotent(t *testing.T) {
	w := NewStdoutWriter(FormatJSON)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestNewFileWriterOrStdout(t *testing.T) {
	t.Run("stdout paths", func(t *testing.T) {
		for _, path := range []string{"", "  ", "\t", "-"} {
			w, err := NewFileWriterOrStdout(FormatJSON, path)
			require.NoError(t, err, path)
			_, ok := w.(*Writer)
			assert.True(t, ok, path)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "inventory.yaml")
		w, err := NewFileWriterOrStdout(FormatYAML, path)
		require.NoError(t, err)
		require.NoError(t, w.Serialize(context.Background(), sample))
		require.NoError(t, w.(Closer).Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var got testInventory
		require.NoError(t, yaml.Unmarshal(content, &got))
		assert.Equal(t, sample, got)
	})

	t.Run("missing directory", func(t *testing.T) {
		w, err := NewFileWriterOrStdout(FormatJSON, "/nonexistent/dir/inventory.json")
		require.Error(t, err)
		assert.Nil(t, w)
		assert.Contains(t, err.Error(), "failed to create output file")
	})

	t.Run("invalid ConfigMap URI", func(t *testing.T) {
		for _, uri := range []string{"cm://", "cm://namespace", "cm:///name", "cm://ns/a/b"} {
			w, err := NewFileWriterOrStdout(FormatJSON, uri)
			require.Error(t, err, uri)
			assert.Nil(t, w, uri)
			assert.True(t, strings.Contains(err.Error(), "invalid ConfigMap URI"), err.Error())
		}
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		format  Format
		unknown bool
		ext     string
	}{
		{FormatJSON, false, "json"},
		{FormatYAML, false, "yaml"},
		{FormatTable, false, "txt"},
		{Format(""), true, "json"},
		{Format("xml"), true, "json"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.unknown, tt.format.IsUnknown())
			assert.Equal(t, tt.ext, tt.format.Extension())
		})
	}

	assert.ElementsMatch(t, []string{"json", "yaml", "table"}, SupportedFormats())
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("hosts.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("HOSTS.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("hosts.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("hosts"))
}
