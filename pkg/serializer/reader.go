package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zarrenspry/vcd-inventory/pkg/k8s/client"
)

const defaultReadTimeout = 30 * time.Second

// Reader decodes a single document from a file, URL, or ConfigMap.
type Reader struct {
	format Format
	input  io.Reader
	closer io.Closer
}

// NewReader returns a Reader decoding input in the given format.
func NewReader(format Format, input io.Reader) *Reader {
	if format.IsUnknown() || format == FormatTable {
		format = FormatJSON
	}
	return &Reader{format: format, input: input}
}

// NewFileReader opens path for reading. http(s) URLs are fetched.
func NewFileReader(format Format, path string) (*Reader, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return newHTTPReader(format, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %q: %w", path, err)
	}
	r := NewReader(format, f)
	r.closer = f
	return r, nil
}

func newHTTPReader(format Format, url string) (*Reader, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultReadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %q: %w", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %q: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", url, err)
	}
	return NewReader(format, bytes.NewReader(body)), nil
}

// Deserialize decodes the input into v.
func (r *Reader) Deserialize(v any) error {
	switch r.format {
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode json: %w", err)
		}
	}
	return nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// FromFile loads a T from a file path or http(s) URL, choosing the format
// from the extension.
func FromFile[T any](path string) (*T, error) {
	return FromFileWithKubeconfig[T](path, "")
}

// FromFileWithKubeconfig is FromFile that also accepts cm://namespace/name
// sources, using kubeconfig to reach the cluster.
func FromFileWithKubeconfig[T any](path, kubeconfig string) (*T, error) {
	if strings.HasPrefix(path, ConfigMapURIScheme) {
		return fromConfigMap[T](path, kubeconfig)
	}

	format := FormatFromPath(path)
	slog.Debug("loading document", slog.String("path", path), slog.String("format", string(format)))

	r, err := NewFileReader(format, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			slog.Warn("failed to close reader", "error", closeErr)
		}
	}()

	var out T
	if err := r.Deserialize(&out); err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", path, err)
	}
	return &out, nil
}

func fromConfigMap[T any](uri, kubeconfig string) (*T, error) {
	namespace, name, err := parseConfigMapURI(uri)
	if err != nil {
		return nil, err
	}
	cs, _, err := client.BuildKubeClient(kubeconfig)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultReadTimeout)
	defer cancel()

	format, data, err := readConfigMap(ctx, cs, namespace, name)
	if err != nil {
		return nil, err
	}
	var out T
	if err := NewReader(format, strings.NewReader(data)).Deserialize(&out); err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", uri, err)
	}
	return &out, nil
}
