// ABOUTME: Graphviz rendering of campaigns, strategies, clients and the sales funnel
// ABOUTME: Builds cgraph graphs from crm.State and renders them as DOT or SVG
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

// Graph kinds understood by Generate.
const (
	GraphCampaigns = "campaigns"
	GraphPipeline  = "pipeline"
	GraphClient    = "client"
	GraphComplete  = "complete"
)

// GraphKinds lists every kind in menu order.
var GraphKinds = []string{GraphCampaigns, GraphPipeline, GraphClient, GraphComplete}

// GraphGenerator draws views of the CRM state.
type GraphGenerator struct {
	state  *crm.State
	logger *log.Logger
}

// NewGraphGenerator creates a generator over state.
func NewGraphGenerator(state *crm.State, logger *log.Logger) *GraphGenerator {
	if logger == nil {
		logger = log.Default()
	}
	return &GraphGenerator{state: state, logger: logger}
}

type buildFunc func(graph *cgraph.Graph) error

// Generate renders the graph of the given kind as DOT. entityID selects the
// client for GraphClient and is ignored otherwise.
func (g *GraphGenerator) Generate(kind, entityID string) (string, error) {
	return g.generate(kind, entityID, graphviz.XDOT)
}

// GenerateSVG renders the graph of the given kind as SVG.
func (g *GraphGenerator) GenerateSVG(kind, entityID string) (string, error) {
	return g.generate(kind, entityID, graphviz.SVG)
}

func (g *GraphGenerator) generate(kind, entityID string, format graphviz.Format) (string, error) {
	var build buildFunc
	switch kind {
	case GraphCampaigns:
		build = g.buildCampaigns
	case GraphPipeline:
		build = g.buildPipeline
	case GraphClient:
		if entityID == "" {
			return "", fmt.Errorf("client graph needs a client id")
		}
		build = func(graph *cgraph.Graph) error { return g.buildClient(graph, entityID) }
	case GraphComplete:
		build = g.buildComplete
	default:
		return "", fmt.Errorf("unknown graph type %q", kind)
	}
	return g.render(build, format)
}

func (g *GraphGenerator) render(build buildFunc, format graphviz.Format) (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			g.logger.Warn("failed to close graphviz", "err", err)
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			g.logger.Warn("failed to close graph", "err", err)
		}
	}()

	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

// buildCampaigns links each campaign to its strategies and each strategy to
// its active channels. Strategies whose campaign is gone hang off a node
// carrying the stored campaign name.
func (g *GraphGenerator) buildCampaigns(graph *cgraph.Graph) error {
	_, err := g.campaignNodes(graph)
	return err
}

// campaignNodes draws the campaign view and returns the strategy nodes by id.
func (g *GraphGenerator) campaignNodes(graph *cgraph.Graph) (map[string]*cgraph.Node, error) {
	graph.SetLabel("Campanhas e estratégias")
	graph.SetRankDir(cgraph.LRRank)

	campaignNodes := make(map[string]*cgraph.Node)
	for _, c := range g.state.Campaigns() {
		node, err := graph.CreateNodeByName(c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create campaign node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%s)", c.Name, c.Status))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		campaignNodes[c.ID] = node
	}

	channelNodes := make(map[string]*cgraph.Node)
	strategyNodes := make(map[string]*cgraph.Node)
	for _, st := range g.state.Strategies() {
		node, err := graph.CreateNodeByName(st.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create strategy node: %w", err)
		}
		strategyNodes[st.ID] = node
		node.SetLabel(fmt.Sprintf("%s\n%s", st.WeekRange, st.Group))
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("lightgreen")

		parent, ok := campaignNodes[st.CampaignID]
		if !ok && st.Campaign != "" {
			name := "campaign:" + st.Campaign
			parent, ok = campaignNodes[name]
			if !ok {
				parent, err = graph.CreateNodeByName(name)
				if err != nil {
					return nil, fmt.Errorf("failed to create campaign node: %w", err)
				}
				parent.SetLabel(st.Campaign)
				parent.SetShape("box")
				parent.SetStyle("dashed")
				campaignNodes[name] = parent
				ok = true
			}
		}
		if ok {
			if _, err := graph.CreateEdgeByName("plans", parent, node); err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
		}

		for _, ch := range st.Channels.Active() {
			chNode, exists := channelNodes[string(ch)]
			if !exists {
				chNode, err = graph.CreateNodeByName("channel:" + string(ch))
				if err != nil {
					return nil, fmt.Errorf("failed to create channel node: %w", err)
				}
				chNode.SetLabel(models.ChannelLabel(ch))
				chNode.SetShape("note")
				channelNodes[string(ch)] = chNode
			}
			edge, err := graph.CreateEdgeByName("uses", node, chNode)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dotted")
		}
	}
	return strategyNodes, nil
}

// buildPipeline draws the funnel stages as a chain labelled with counts.
func (g *GraphGenerator) buildPipeline(graph *cgraph.Graph) error {
	m := g.state.Metrics()
	graph.SetLabel(fmt.Sprintf("Funil: %d indicações, %s de conversão", m.TotalIndications, crm.FormatPercent(m.ConversionRate)))
	graph.SetRankDir(cgraph.LRRank)

	var prev *cgraph.Node
	for _, stage := range FunnelStages(m) {
		node, err := graph.CreateNodeByName(stage.Key)
		if err != nil {
			return fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%d", stage.Label, stage.Count))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightyellow")
		if prev != nil {
			if _, err := graph.CreateEdgeByName("next", prev, node); err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
		}
		prev = node
	}
	return nil
}

// buildClient shows one client with its follow-up stage and agenda items.
func (g *GraphGenerator) buildClient(graph *cgraph.Graph, clientID string) error {
	c, err := g.state.GetClient(clientID)
	if err != nil {
		return err
	}
	graph.SetLabel(c.Name)

	clientNode, err := graph.CreateNodeByName(c.ID)
	if err != nil {
		return fmt.Errorf("failed to create client node: %w", err)
	}
	clientNode.SetLabel(fmt.Sprintf("%s\n%s", c.Name, c.Company))
	clientNode.SetShape("box")
	clientNode.SetStyle("filled")
	clientNode.SetFillColor("lightblue")

	if f, err := g.state.FollowupForClient(c.ID); err == nil {
		node, err := graph.CreateNodeByName(f.ID)
		if err != nil {
			return fmt.Errorf("failed to create follow-up node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", StageOf(f), crm.FormatBRL(f.EstimatedValue.Float())))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor("lightyellow")
		if _, err := graph.CreateEdgeByName("follow-up", clientNode, node); err != nil {
			return fmt.Errorf("failed to create edge: %w", err)
		}
	}

	for _, h := range g.state.ClientHistory(c.Name) {
		if h.Kind != crm.HistoryAgenda {
			continue
		}
		node, err := graph.CreateNodeByName(h.RefID)
		if err != nil {
			return fmt.Errorf("failed to create agenda node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", h.Date.Format("02/01/2006 15:04"), h.Description))
		node.SetShape("ellipse")
		edge, err := graph.CreateEdgeByName("agenda", clientNode, node)
		if err != nil {
			return fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("dashed")
	}
	return nil
}
