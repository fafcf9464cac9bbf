// Package cli implements the vcdinv command-line interface.
//
// # Overview
//
// vcdinv is a dynamic inventory for vCloud Director. It discovers the virtual
// machines of one VDC, filters them on their metadata, groups them by
// metadata values and prints the result in the document shape expected by
// Ansible inventory scripts.
//
// # Ansible Script Contract
//
//	vcdinv --list [--config vcdinv.yml]
//	vcdinv --host web_1
//
// --list prints the full inventory and is the default when neither flag is
// given. --host prints the variables of one host, or {} when the host is not
// in the inventory.
//
// # Commands
//
// list - Print the inventory:
//
//	vcdinv list --format yaml
//	vcdinv list --output inventory.json
//	vcdinv list --output cm://ansible/vcd-inventory  # ConfigMap output
//
// host - Print the variables of one host:
//
//	vcdinv host web_1
//
// serve - Serve the inventory over HTTP:
//
//	vcdinv serve --port 8080
//
// Every request regenerates the inventory. Routes: GET /v1/inventory,
// GET /v1/inventory/hosts/{name}, /health, /ready and /metrics.
//
// cache purge - Remove every cached inventory:
//
//	vcdinv cache purge
//
// # Global Flags
//
//	--config, -c   Inventory source file (default: vcdinv.yml)
//	--refresh      Bypass the cache and overwrite it with a live fetch
//	--output, -o   Output file path or ConfigMap URI (default: stdout)
//	--format, -t   Output format: json, yaml, table (default: json)
//	--debug        Enable debug logging
//	--log-json     Output logs in JSON format
//
// Logs always go to stderr so stdout carries only the inventory.
//
// # Environment Variables
//
//	LOG_LEVEL      Set logging verbosity (debug, info, warn, error)
//	VCD_HOST       Override the host of the source file
//	VCD_USER       Override the user of the source file
//	VCD_PASSWORD   Override the password of the source file
//	VCD_ORG        Override the organization of the source file
//	KUBECONFIG     Path to kubeconfig file for ConfigMap output
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//	2  Context canceled or timeout
package cli
