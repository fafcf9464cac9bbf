package vcd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
	"k8s.io/utils/ptr"

	"github.com/zarrenspry/vcd-inventory/pkg/host"
	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
)

// Fetch lists the VMs of the configured VDC and returns one record per VM in
// query order. It logs in first when no session is open. Any failed request
// fails the whole fetch.
func (c *Client) Fetch(ctx context.Context) ([]host.Record, error) {
	start := time.Now()
	if !c.loggedIn() {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}

	vms, err := c.listVMs(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]host.Record, len(vms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, rec := range vms {
		g.Go(func() error {
			r, err := c.loadVM(gctx, rec)
			if err != nil {
				return fmt.Errorf("load vm %q: %w", rec.Name, err)
			}
			records[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vmsFetched.Set(float64(len(records)))
	slog.Info("fetched vms from vCloud Director",
		slog.String("vdc", c.vdc),
		slog.Int("vms", len(records)),
		slog.Duration("duration", time.Since(start)))
	return records, nil
}

// listVMs pages through the records query.
func (c *Client) listVMs(ctx context.Context) ([]vmRecord, error) {
	filter := "isVAppTemplate==false"
	if c.vdc != "" {
		filter = "(vdcName==" + c.vdc + ";" + filter + ")"
	}

	var out []vmRecord
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("type", "vm")
		q.Set("format", "records")
		q.Set("page", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(c.pageSize))
		q.Set("filter", filter)
		q.Set("sortAsc", "name")

		var res queryRecords
		if err := c.getJSON(ctx, "query", c.resolve("/api/query?"+q.Encode()), &res); err != nil {
			return nil, err
		}
		for _, r := range res.Record {
			if !r.IsVAppTemplate {
				out = append(out, r)
			}
		}

		pageSize := res.PageSize
		if pageSize <= 0 {
			pageSize = c.pageSize
		}
		if len(res.Record) == 0 || page*pageSize >= res.Total {
			break
		}
	}
	slog.Debug("listed vms", slog.String("vdc", c.vdc), slog.Int("count", len(out)))
	return out, nil
}

// loadVM reads the VM document and its metadata into a record.
func (c *Client) loadVM(ctx context.Context, rec vmRecord) (host.Record, error) {
	var doc vm
	if err := c.getJSON(ctx, "vm", c.resolve(rec.Href), &doc); err != nil {
		return host.Record{}, err
	}
	var md metadataDoc
	if err := c.getJSON(ctx, "metadata", c.resolve(strings.TrimRight(rec.Href, "/")+"/metadata"), &md); err != nil {
		return host.Record{}, err
	}

	name := doc.Name
	if name == "" {
		name = rec.Name
	}
	status := doc.Status
	if status == "" {
		status = rec.Status
	}
	id := doc.ID
	if id == "" {
		id = rec.Href
	}

	r := host.Record{
		ID:         id,
		Name:       HostName(name),
		Metadata:   c.metadata(md),
		PowerState: status.PowerState(),
	}

	var addresses []string
	for _, s := range doc.Section {
		switch s.Type {
		case sectionNetworkConnection:
			for _, nc := range s.NetworkConnection {
				addresses = append(addresses, nc.IPAddress)
			}
		case sectionOperatingSystem:
			if r.OSType == "" {
				r.OSType = s.OSType
			}
		case sectionRuntimeInfo:
			if s.VMwareTools != nil && s.VMwareTools.Version != "" {
				r.Hardware.ToolsVersion = ptr.To(s.VMwareTools.Version)
			}
		}
	}
	if addr, ok := c.resolver.Resolve(addresses...); ok {
		r.Address = addr
	} else {
		slog.Debug("no address in range", slog.String("vm", r.Name), slog.String("cidr", c.resolver.String()))
	}

	if spec := doc.VMSpecSection; spec != nil {
		if spec.OSType != "" {
			r.OSType = spec.OSType
		}
		if spec.HardwareVersion != nil && spec.HardwareVersion.Value != "" {
			r.Hardware.HardwareVersion = ptr.To(spec.HardwareVersion.Value)
		}
	}
	if caps := doc.VMCapabilities; caps != nil {
		r.Hardware.CPUHotAddEnabled = caps.CPUHotAddEnabled
		r.Hardware.MemoryHotAddEnabled = caps.MemoryHotAddEnabled
	}
	if doc.StorageProfile != nil && doc.StorageProfile.Name != "" {
		r.Hardware.StorageProfile = ptr.To(doc.StorageProfile.Name)
	}
	return r, nil
}

// metadata converts metadata entries to raw values. Typed values that are
// not strings keep their JSON text.
func (c *Client) metadata(doc metadataDoc) map[string]metadata.Value {
	if len(doc.MetadataEntry) == 0 {
		return nil
	}
	out := make(map[string]metadata.Value, len(doc.MetadataEntry))
	for _, e := range doc.MetadataEntry {
		var v metadata.Value
		if len(e.TypedValue.Value) == 0 {
			v = metadata.Scalar("")
		} else if err := json.Unmarshal(e.TypedValue.Value, &v); err != nil {
			v = metadata.Scalar(string(e.TypedValue.Value))
		}
		if c.separator != "" {
			v = v.Split(c.separator)
		}
		out[e.Key] = v
	}
	return out
}

// HostName turns a VM name into an inventory hostname: Unicode NFC form
// with "-" replaced by "_".
func HostName(name string) string {
	return strings.ReplaceAll(norm.NFC.String(strings.TrimSpace(name)), "-", "_")
}
