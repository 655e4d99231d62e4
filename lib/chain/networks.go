// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed networks.jsonc
var builtinNetworks []byte

// Network is one row of the network table: a symbolic name, its chain
// id, the default RPC endpoints tried in order, and the ENS registry
// deployed on that network (zero address when the network has no ENS).
type Network struct {
	// Name is the symbolic selector ("mainnet", "sepolia"). Lowercase,
	// unique within a table.
	Name string

	// ChainID is the EIP-155 chain id, unique within a table.
	ChainID uint64

	// RPC lists default endpoint URLs in dial order. The registry
	// tries them in order when constructing an endpoint.
	RPC []string

	// ENSRegistry is the ENS registry contract address, or the zero
	// address when the network has no ENS deployment.
	ENSRegistry common.Address

	// Root marks the fallback network for name resolution. Exactly one
	// row per table carries it.
	Root bool
}

// SupportsENS reports whether the network has an ENS registry.
func (n *Network) SupportsENS() bool {
	return n.ENSRegistry != (common.Address{})
}

// Table is an indexed set of networks. Immutable after construction.
type Table struct {
	networks []Network
	byName   map[string]*Network
	byChain  map[uint64]*Network
	root     *Network
}

// networkRow is the serialized form of a Network, shared by the
// embedded JSONC table and YAML override files.
type networkRow struct {
	Name        string   `json:"name" yaml:"name"`
	ChainID     uint64   `json:"chainId" yaml:"chainId"`
	RPC         []string `json:"rpc" yaml:"rpc"`
	ENSRegistry string   `json:"ensRegistry" yaml:"ensRegistry"`
	Root        bool     `json:"root" yaml:"root"`
}

func (row networkRow) network() (Network, error) {
	name := strings.ToLower(strings.TrimSpace(row.Name))
	if name == "" {
		return Network{}, fmt.Errorf("network row has no name")
	}
	if row.ChainID == 0 {
		return Network{}, fmt.Errorf("network %q: chainId is required", name)
	}
	if len(row.RPC) == 0 {
		return Network{}, fmt.Errorf("network %q: at least one rpc URL is required", name)
	}
	for _, url := range row.RPC {
		if !isEndpointURL(url) {
			return Network{}, fmt.Errorf("network %q: rpc %q is not an http(s) or ws(s) URL", name, url)
		}
	}

	var registry common.Address
	if row.ENSRegistry != "" {
		if !common.IsHexAddress(row.ENSRegistry) {
			return Network{}, fmt.Errorf("network %q: ensRegistry %q is not a hex address", name, row.ENSRegistry)
		}
		registry = common.HexToAddress(row.ENSRegistry)
	}

	return Network{
		Name:        name,
		ChainID:     row.ChainID,
		RPC:         row.RPC,
		ENSRegistry: registry,
		Root:        row.Root,
	}, nil
}

// NewTable builds an indexed table from rows. Names and chain ids must
// be unique and exactly one row must be the root network.
func NewTable(networks []Network) (*Table, error) {
	table := &Table{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		byChain:  make(map[uint64]*Network, len(networks)),
	}

	for i := range networks {
		network := &table.networks[i]
		if _, exists := table.byName[network.Name]; exists {
			return nil, fmt.Errorf("duplicate network name %q", network.Name)
		}
		if _, exists := table.byChain[network.ChainID]; exists {
			return nil, fmt.Errorf("duplicate chain id %d", network.ChainID)
		}
		table.byName[network.Name] = network
		table.byChain[network.ChainID] = network
		if network.Root {
			if table.root != nil {
				return nil, fmt.Errorf("networks %q and %q both marked root", table.root.Name, network.Name)
			}
			table.root = network
		}
	}

	if table.root == nil {
		return nil, fmt.Errorf("no network marked root")
	}
	return table, nil
}

// BuiltinTable returns the table compiled in from networks.jsonc. A
// parse or validation failure is a bug in the embedded content and
// panics.
func BuiltinTable() *Table {
	table, err := parseJSONCTable(builtinNetworks)
	if err != nil {
		panic("chain: embedded network table invalid: " + err.Error())
	}
	return table
}

func parseJSONCTable(data []byte) (*Table, error) {
	var file struct {
		Networks []networkRow `json:"networks"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
		return nil, fmt.Errorf("parsing network table: %w", err)
	}

	networks := make([]Network, 0, len(file.Networks))
	for _, row := range file.Networks {
		network, err := row.network()
		if err != nil {
			return nil, err
		}
		networks = append(networks, network)
	}
	return NewTable(networks)
}

// LoadOverrides reads a YAML file of network rows and merges it over
// the base table: rows replace base rows with the same name, new rows
// are appended. The merged table is re-validated, so overrides can
// move the root flag but never duplicate it.
func LoadOverrides(path string, base *Table) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network overrides: %w", err)
	}

	var file struct {
		Networks []networkRow `yaml:"networks"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing network overrides %s: %w", path, err)
	}

	merged := slices.Clone(base.networks)
	for _, row := range file.Networks {
		network, err := row.network()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		replaced := false
		for i := range merged {
			if merged[i].Name == network.Name {
				merged[i] = network
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, network)
		}
	}

	table, err := NewTable(merged)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Lookup returns the network with the given symbolic name.
func (t *Table) Lookup(name string) (*Network, bool) {
	network, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return network, ok
}

// ByChainID returns the network with the given chain id.
func (t *Table) ByChainID(id uint64) (*Network, bool) {
	network, ok := t.byChain[id]
	return network, ok
}

// Root returns the root network (the name-resolution fallback).
func (t *Table) Root() *Network {
	return t.root
}

// Names returns the symbolic names in the table, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.networks))
	for i := range t.networks {
		names = append(names, t.networks[i].Name)
	}
	slices.Sort(names)
	return names
}

// All returns the table rows in their original order.
func (t *Table) All() []Network {
	return slices.Clone(t.networks)
}

// Target is a resolved network selector: the cache key plus the
// candidate URLs for endpoint construction.
type Target struct {
	// Key is the endpoint cache key: the network name for symbolic and
	// numeric selectors, the URL itself for literal URL selectors.
	Key string

	// URLs are the candidate endpoint URLs in dial order.
	URLs []string

	// Network is the matched table row, nil for literal URL selectors.
	Network *Network
}

// Resolve normalizes a network selector. A literal URL is its own
// target; a numeric selector (chain id) or symbolic name is looked up
// in the table.
func (t *Table) Resolve(selector string) (Target, error) {
	trimmed := strings.TrimSpace(selector)
	if trimmed == "" {
		return Target{}, &UnsupportedNetworkError{Selector: selector, Supported: t.Names()}
	}

	if isEndpointURL(trimmed) {
		return Target{Key: trimmed, URLs: []string{trimmed}}, nil
	}

	if chainID, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		network, ok := t.byChain[chainID]
		if !ok {
			return Target{}, &UnsupportedNetworkError{Selector: selector, Supported: t.Names()}
		}
		return Target{Key: network.Name, URLs: network.RPC, Network: network}, nil
	}

	network, ok := t.Lookup(trimmed)
	if !ok {
		return Target{}, &UnsupportedNetworkError{Selector: selector, Supported: t.Names()}
	}
	return Target{Key: network.Name, URLs: network.RPC, Network: network}, nil
}

func isEndpointURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "ws://") ||
		strings.HasPrefix(lower, "wss://")
}
