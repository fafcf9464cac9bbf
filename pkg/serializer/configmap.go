package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/zarrenspry/vcd-inventory/pkg/k8s/client"
)

// ConfigMapDataKeyPrefix prefixes the data key holding the document, the
// format extension completes it (inventory.json, inventory.yaml).
const ConfigMapDataKeyPrefix = "inventory."

// ConfigMapWriter stores serialized documents in a ConfigMap, creating it
// when missing.
type ConfigMapWriter struct {
	client    kubernetes.Interface
	namespace string
	name      string
	format    Format
}

// NewConfigMapWriter returns a writer for namespace/name.
func NewConfigMapWriter(cs kubernetes.Interface, namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() || format == FormatTable {
		format = FormatJSON
	}
	return &ConfigMapWriter{client: cs, namespace: namespace, name: name, format: format}
}

// NewConfigMapWriterFromURI parses cm://namespace/name and connects using
// kubeconfig (empty for default discovery).
func NewConfigMapWriterFromURI(format Format, uri, kubeconfig string) (*ConfigMapWriter, error) {
	namespace, name, err := parseConfigMapURI(uri)
	if err != nil {
		return nil, err
	}
	var cs kubernetes.Interface
	if kubeconfig == "" {
		c, _, kerr := client.GetKubeClient()
		cs, err = c, kerr
	} else {
		c, _, kerr := client.BuildKubeClient(kubeconfig)
		cs, err = c, kerr
	}
	if err != nil {
		return nil, err
	}
	return NewConfigMapWriter(cs, namespace, name, format), nil
}

// DataKey returns the ConfigMap data key used for the writer's format.
func (w *ConfigMapWriter) DataKey() string {
	return ConfigMapDataKeyPrefix + w.format.Extension()
}

// Serialize encodes v and writes it into the ConfigMap.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	b, err := Encode(w.format, v)
	if err != nil {
		return err
	}

	cms := w.client.CoreV1().ConfigMaps(w.namespace)
	existing, err := cms.Get(ctx, w.name, metav1.GetOptions{})
	switch {
	case apierrors.IsNotFound(err):
		cm := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      w.name,
				Namespace: w.namespace,
				Labels:    map[string]string{ManagedByLabel: ManagedByValue},
			},
			Data: map[string]string{w.DataKey(): string(b)},
		}
		if _, err := cms.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create ConfigMap %s/%s: %w", w.namespace, w.name, err)
		}
		slog.Debug("created ConfigMap", slog.String("namespace", w.namespace), slog.String("name", w.name))
		return nil
	case err != nil:
		return fmt.Errorf("failed to get ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}

	updated := existing.DeepCopy()
	if updated.Data == nil {
		updated.Data = map[string]string{}
	}
	if updated.Labels == nil {
		updated.Labels = map[string]string{}
	}
	updated.Labels[ManagedByLabel] = ManagedByValue
	updated.Data[w.DataKey()] = string(b)
	if _, err := cms.Update(ctx, updated, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	slog.Debug("updated ConfigMap", slog.String("namespace", w.namespace), slog.String("name", w.name))
	return nil
}

// readConfigMap returns the first inventory document found in the ConfigMap,
// preferring JSON.
func readConfigMap(ctx context.Context, cs kubernetes.Interface, namespace, name string) (Format, string, error) {
	cm, err := cs.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", "", fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}
	for _, f := range []Format{FormatJSON, FormatYAML} {
		if data, ok := cm.Data[ConfigMapDataKeyPrefix+f.Extension()]; ok {
			return f, data, nil
		}
	}
	return "", "", fmt.Errorf("ConfigMap %s/%s has no inventory data", namespace, name)
}

func parseConfigMapURI(uri string) (namespace, name string, err error) {
	rest, ok := strings.CutPrefix(uri, ConfigMapURIScheme)
	if !ok {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	namespace, name, ok = strings.Cut(rest, "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	return namespace, name, nil
}
