package model

import "github.com/t77yq/bamcfg/internal/datastore"

// Node is a monitoring engine instance (poller) that receives its own
// generated configuration set
type Node struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Central bool   `json:"central"`
	Default bool   `json:"default"`
	Active  bool   `json:"active"`
	Address string `json:"address"`
}

// NodeFromRow parses a nagios_server row
func NodeFromRow(r datastore.Row) Node {
	return Node{
		ID:      r.Int("id"),
		Name:    r.String("name"),
		Central: r.Bool("localhost"),
		Default: r.Bool("is_default"),
		Active:  r.Bool("ns_activate"),
		Address: r.String("ns_ip_address"),
	}
}

// PrimaryNode picks the central node anchoring virtual host naming: the
// first active central node flagged as default, otherwise the first active
// central node. Nodes are expected in id order.
func PrimaryNode(nodes []Node) (Node, bool) {
	var fallback *Node
	for i := range nodes {
		n := nodes[i]
		if !n.Active || !n.Central {
			continue
		}
		if n.Default {
			return n, true
		}
		if fallback == nil {
			fallback = &nodes[i]
		}
	}
	if fallback == nil {
		return Node{}, false
	}
	return *fallback, true
}
