package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	"github.com/zarrenspry/vcd-inventory/pkg/filter"
	"github.com/zarrenspry/vcd-inventory/pkg/host"
	"github.com/zarrenspry/vcd-inventory/pkg/hostvars"
	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
	"github.com/zarrenspry/vcd-inventory/pkg/source"
)

func web1() host.Record {
	return host.Record{
		ID:      "vm-1",
		Name:    "web_1",
		Address: "192.168.1.10",
		Metadata: map[string]metadata.Value{
			"env":  metadata.Scalar("Development"),
			"type": metadata.List("web", "frontend"),
		},
		PowerState: "Powered on",
		OSType:     "ubuntu64Guest",
	}
}

func TestAssemble_ScenarioA_ListFanOut(t *testing.T) {
	a := New(
		WithGroupKeys([]string{"type"}),
		WithFilters(filter.Spec{"env": "Development"}),
	)

	res, err := a.Assemble(context.Background(), []host.Record{web1()})
	require.NoError(t, err)

	assert.Equal(t, []string{"web_1"}, res.Groups["web"])
	assert.Equal(t, []string{"web_1"}, res.Groups["frontend"])
	assert.Len(t, res.Groups, 2)
	assert.Equal(t, []string{"web_1"}, res.Discovered)

	vars, ok := res.Host("web_1")
	require.True(t, ok)
	assert.Equal(t, "192.168.1.10", vars[hostvars.KeyAnsibleHost])
}

func TestAssemble_ScenarioB_FilteredOut(t *testing.T) {
	a := New(
		WithGroupKeys([]string{"type"}),
		WithFilters(filter.Spec{"env": "Production"}),
	)

	res, err := a.Assemble(context.Background(), []host.Record{web1()})
	require.NoError(t, err)

	assert.Empty(t, res.Groups)
	assert.Empty(t, res.Discovered)
	assert.Empty(t, res.HostVars)
	_, ok := res.Host("web_1")
	assert.False(t, ok)
}

func TestAssemble_ScenarioC_NoGroupValue(t *testing.T) {
	rec := web1()
	a := New(WithGroupKeys([]string{"owner"}))

	res, err := a.Assemble(context.Background(), []host.Record{rec})
	require.NoError(t, err)

	assert.Empty(t, res.Groups)
	assert.Equal(t, []string{"web_1"}, res.Discovered)
	assert.Contains(t, res.HostVars, "web_1")
}

func TestAssemble_ScenarioD_UnresolvedAddress(t *testing.T) {
	rec := web1()
	rec.Address = ""
	a := New(WithGroupKeys([]string{"type"}))

	res, err := a.Assemble(context.Background(), []host.Record{rec})
	require.NoError(t, err)

	vars := res.HostVars["web_1"]
	assert.NotContains(t, vars, hostvars.KeyAnsibleHost)
	assert.Equal(t, "ubuntu64Guest", vars[hostvars.KeyOSType])
	assert.Equal(t, "Powered on", vars[hostvars.KeyPowerState])
	assert.Equal(t, []string{"web_1"}, res.Groups["web"])
	assert.Equal(t, []string{"web_1"}, res.Discovered)
}

func TestAssemble_EmptyInputs(t *testing.T) {
	res, err := New().Assemble(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, res.Groups)
	assert.NotNil(t, res.Discovered)
	assert.NotNil(t, res.HostVars)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_meta":{"hostvars":{}},"discovered":{"hosts":[]}}`, string(b))
}

func TestAssemble_NoGroupKeysStillDiscovers(t *testing.T) {
	res, err := New().Assemble(context.Background(), []host.Record{web1()})
	require.NoError(t, err)

	assert.Empty(t, res.Groups)
	assert.Equal(t, []string{"web_1"}, res.Discovered)
	assert.Len(t, res.HostVars, 1)
}

func TestAssemble_OrderFollowsInput(t *testing.T) {
	var records []host.Record
	for i := 0; i < 50; i++ {
		records = append(records, host.Record{
			Name:     fmt.Sprintf("host_%02d", i),
			Metadata: map[string]metadata.Value{"role": metadata.List("all-hosts", fmt.Sprintf("shard-%d", i%3))},
		})
	}
	a := New(WithGroupKeys([]string{"role"}), WithConcurrency(8))

	res, err := a.Assemble(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, res.Discovered, 50)
	for i, name := range res.Discovered {
		assert.Equal(t, records[i].Name, name)
	}
	assert.Equal(t, res.Discovered, res.Groups["all-hosts"])
	assert.Equal(t, []string{"host_00", "host_03", "host_06"}, res.Groups["shard-0"][:3])
}

func TestAssemble_Idempotent(t *testing.T) {
	records := []host.Record{
		web1(),
		{
			Name:       "db_1",
			Metadata:   map[string]metadata.Value{"env": metadata.Scalar("Development"), "type": metadata.Scalar("db")},
			OSType:     "centos64Guest",
			PowerState: "Powered off",
			Hardware:   host.Hardware{HardwareVersion: ptr.To("vmx-14")},
		},
	}
	a := New(WithGroupKeys([]string{"type", "env"}), WithFilters(filter.Spec{"env": "Development"}))

	first, err := a.Assemble(context.Background(), records)
	require.NoError(t, err)
	second, err := a.Assemble(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestAssemble_ReservedGroupNames(t *testing.T) {
	rec := web1()
	rec.Metadata["type"] = metadata.List("web", "_meta", "discovered")
	a := New(WithGroupKeys([]string{"type"}))

	res, err := a.Assemble(context.Background(), []host.Record{rec})
	require.NoError(t, err)

	assert.Equal(t, []string{"web"}, res.GroupNames())

	var doc map[string]json.RawMessage
	b, err := json.Marshal(res)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.JSONEq(t, `{"hosts":["web_1"]}`, string(doc["discovered"]))
	assert.Contains(t, string(doc["_meta"]), "hostvars")
}

func TestAssemble_CustomRootGroup(t *testing.T) {
	rec := web1()
	rec.Metadata["type"] = metadata.List("web", "vcloud")
	a := New(WithGroupKeys([]string{"type"}), WithRootGroup("vcloud"))

	res, err := a.Assemble(context.Background(), []host.Record{rec})
	require.NoError(t, err)

	assert.Equal(t, []string{"web"}, res.GroupNames())
	doc := res.Document()
	assert.Contains(t, doc, "vcloud")
	assert.NotContains(t, doc, DefaultRootGroup)
}

func TestAssemble_SkipsMalformedAndDuplicates(t *testing.T) {
	dup := web1()
	dup.ID = "vm-2"
	dup.Address = "192.168.1.99"
	records := []host.Record{
		{ID: "vm-0"},
		web1(),
		dup,
	}

	res, err := New(WithGroupKeys([]string{"type"})).Assemble(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, []string{"web_1"}, res.Discovered)
	assert.Equal(t, "192.168.1.10", res.HostVars["web_1"][hostvars.KeyAnsibleHost])
	assert.Equal(t, []string{"web_1"}, res.Groups["web"])
}

func TestAssemble_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New().Assemble(ctx, []host.Record{web1()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestResult_JSONShape(t *testing.T) {
	a := New(WithGroupKeys([]string{"type"}))
	res, err := a.Assemble(context.Background(), []host.Record{web1()})
	require.NoError(t, err)

	b, err := json.Marshal(res)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"web":      {"hosts": ["web_1"]},
		"frontend": {"hosts": ["web_1"]},
		"_meta": {"hostvars": {"web_1": {
			"ansible_host": "192.168.1.10",
			"os_type": "ubuntu64Guest",
			"power_state": "Powered on"
		}}},
		"discovered": {"hosts": ["web_1"]}
	}`, string(b))
}

func TestResult_YAMLShape(t *testing.T) {
	a := New(WithGroupKeys([]string{"type"}))
	res, err := a.Assemble(context.Background(), []host.Record{web1()})
	require.NoError(t, err)

	b, err := yaml.Marshal(res)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(b, &doc))
	assert.Equal(t, []any{"web_1"}, doc["web"]["hosts"])
	assert.Contains(t, doc["_meta"], "hostvars")
}

func TestGenerate(t *testing.T) {
	a := New(WithGroupKeys([]string{"type"}))

	res, err := a.Generate(context.Background(), source.Static{web1()})
	require.NoError(t, err)
	assert.Equal(t, []string{"web_1"}, res.Discovered)

	boom := source.Func(func(context.Context) ([]host.Record, error) {
		return nil, fmt.Errorf("director down")
	})
	_, err = a.Generate(context.Background(), boom)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "director down")
}
