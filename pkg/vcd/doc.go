// Package vcd fetches virtual machine records from the VMware Cloud Director
// REST API.
//
// A Client logs in with basic credentials, lists the VMs of one virtual data
// center through the records query service, then loads each VM document and
// its metadata in parallel. Requests are paced by a token bucket so large
// VDCs do not trip the API throttling.
//
// Example:
//
//	c, err := vcd.New("https://vcd.example.com", vcd.Credentials{User: "svc", Org: "acme", Password: pw}, "prod",
//		vcd.WithConcurrency(8),
//		vcd.WithRateLimit(20),
//	)
//	records, err := c.Fetch(ctx)
package vcd
