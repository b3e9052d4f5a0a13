// ABOUTME: Complete graph combining campaigns, strategies, clients and follow-ups
// ABOUTME: Clients are grouped under the product of their follow-up record
package viz

import (
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"

	"github.com/sustentalski/salescrm/models"
)

func (g *GraphGenerator) buildComplete(graph *cgraph.Graph) error {
	strategyNodes, err := g.campaignNodes(graph)
	if err != nil {
		return err
	}
	graph.SetLabel("Sustentalski CRM")

	productNodes := make(map[models.Product]*cgraph.Node)
	productNode := func(p models.Product) (*cgraph.Node, error) {
		if n, ok := productNodes[p]; ok {
			return n, nil
		}
		label := string(p)
		if label == "" {
			label = "Sem produto"
		}
		n, err := graph.CreateNodeByName("product:" + label)
		if err != nil {
			return nil, fmt.Errorf("failed to create product node: %w", err)
		}
		n.SetLabel(label)
		n.SetShape("hexagon")
		n.SetStyle("filled")
		n.SetFillColor("orange")
		productNodes[p] = n
		return n, nil
	}

	for _, f := range g.state.Followups() {
		node, err := graph.CreateNodeByName(f.ID)
		if err != nil {
			return fmt.Errorf("failed to create follow-up node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", f.ClientName, StageOf(f)))
		node.SetShape("ellipse")
		if f.Closed() {
			node.SetStyle("filled")
			node.SetFillColor("palegreen")
		}

		pn, err := productNode(f.AccountType)
		if err != nil {
			return err
		}
		if _, err := graph.CreateEdgeByName("product", pn, node); err != nil {
			return fmt.Errorf("failed to create edge: %w", err)
		}
	}

	// Strategies point at the products they push.
	for _, st := range g.state.Strategies() {
		if st.Product == "" {
			continue
		}
		sn, ok := strategyNodes[st.ID]
		if !ok {
			continue
		}
		pn, err := productNode(st.Product)
		if err != nil {
			return err
		}
		edge, err := graph.CreateEdgeByName("pushes", sn, pn)
		if err != nil {
			return fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("bold")
	}
	return nil
}
