// Package hierarchy assembles the two-level theme/code tree out of labeled
// clusters or brand candidates, and scores how well the tree covers the
// underlying answers.
package hierarchy

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"codeframe-be/internal/entity"
)

// FallbackTheme collects codes the labeling step could not place under any
// proposed theme.
const FallbackTheme = "Other"

// CodeLabel is the LLM-proposed name and confidence for one cluster.
type CodeLabel struct {
	ClusterId  uuid.UUID
	Name       string
	Confidence float64
}

// BrandCode is one validated brand candidate turned into a code node.
type BrandCode struct {
	Name       string
	Mention    string
	Confidence float64
}

// Builder turns labels into persisted hierarchy nodes. ReviewThreshold
// marks codes below it as needing human review.
type Builder struct {
	ReviewThreshold float64
}

func NewBuilder(reviewThreshold float64) *Builder {
	return &Builder{ReviewThreshold: reviewThreshold}
}

// FromClusters builds theme and code nodes for a clustering-mode job.
// themes maps a theme name to the code names it groups; labeled codes that
// appear under no theme land under the fallback theme. Noise clusters get
// no node. Returns nodes with themes first, then codes, both in
// deterministic order.
func (b *Builder) FromClusters(jobId uuid.UUID, clusters []*entity.Cluster, labels []CodeLabel, themes map[string][]string) ([]*entity.HierarchyNode, error) {
	labelByCluster := make(map[uuid.UUID]CodeLabel, len(labels))
	for _, l := range labels {
		labelByCluster[l.ClusterId] = l
	}

	themeByCode := make(map[string]string)
	for theme, codes := range themes {
		for _, code := range codes {
			themeByCode[code] = theme
		}
	}

	// Resolve which themes are actually used, in stable order.
	themeNames := map[string]bool{}
	type pendingCode struct {
		label   CodeLabel
		cluster *entity.Cluster
		theme   string
	}
	var pending []pendingCode
	for _, cluster := range clusters {
		if cluster.Noise {
			continue
		}
		label, ok := labelByCluster[cluster.Id]
		if !ok {
			return nil, fmt.Errorf("cluster %s has no label", cluster.Id)
		}
		theme := themeByCode[label.Name]
		if theme == "" {
			theme = FallbackTheme
		}
		themeNames[theme] = true
		pending = append(pending, pendingCode{label: label, cluster: cluster, theme: theme})
	}

	sortedThemes := make([]string, 0, len(themeNames))
	for name := range themeNames {
		sortedThemes = append(sortedThemes, name)
	}
	sort.Strings(sortedThemes)

	var nodes []*entity.HierarchyNode
	themeIds := make(map[string]uuid.UUID, len(sortedThemes))
	for _, name := range sortedThemes {
		id := uuid.New()
		themeIds[name] = id
		nodes = append(nodes, &entity.HierarchyNode{
			Id:         id,
			JobId:      jobId,
			Name:       name,
			Kind:       entity.NodeKindTheme,
			Confidence: 1,
		})
	}

	for _, p := range pending {
		parentId := themeIds[p.theme]
		clusterId := p.cluster.Id
		nodes = append(nodes, &entity.HierarchyNode{
			Id:              uuid.New(),
			JobId:           jobId,
			ParentId:        &parentId,
			Name:            p.label.Name,
			Kind:            entity.NodeKindCode,
			Confidence:      p.label.Confidence,
			NeedsReview:     p.label.Confidence < b.ReviewThreshold,
			SourceClusterId: &clusterId,
		})
	}

	if err := Validate(nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// FromBrands builds the flat brand codeframe: one "Brands" theme with one
// code per candidate. Codes below the review threshold are flagged; none
// are verified until a human confirms them.
func (b *Builder) FromBrands(jobId uuid.UUID, codes []BrandCode) ([]*entity.HierarchyNode, error) {
	themeId := uuid.New()
	nodes := []*entity.HierarchyNode{{
		Id:         themeId,
		JobId:      jobId,
		Name:       "Brands",
		Kind:       entity.NodeKindTheme,
		Confidence: 1,
	}}

	for _, code := range codes {
		parentId := themeId
		nodes = append(nodes, &entity.HierarchyNode{
			Id:                 uuid.New(),
			JobId:              jobId,
			ParentId:           &parentId,
			Name:               code.Name,
			Kind:               entity.NodeKindCode,
			Confidence:         code.Confidence,
			NeedsReview:        code.Confidence < b.ReviewThreshold,
			SourceBrandMention: code.Mention,
		})
	}

	if err := Validate(nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Validate enforces the tree invariants: themes are roots, codes hang off
// exactly one existing theme, and no node points at a missing parent.
func Validate(nodes []*entity.HierarchyNode) error {
	byId := make(map[uuid.UUID]*entity.HierarchyNode, len(nodes))
	for _, node := range nodes {
		if _, dup := byId[node.Id]; dup {
			return fmt.Errorf("duplicate node id %s", node.Id)
		}
		byId[node.Id] = node
	}

	for _, node := range nodes {
		switch node.Kind {
		case entity.NodeKindTheme:
			if node.ParentId != nil {
				return fmt.Errorf("theme %q must not have a parent", node.Name)
			}
		case entity.NodeKindCode:
			if node.ParentId == nil {
				return fmt.Errorf("code %q has no parent theme", node.Name)
			}
			parent, ok := byId[*node.ParentId]
			if !ok {
				return fmt.Errorf("code %q points at missing parent %s", node.Name, *node.ParentId)
			}
			if parent.Kind != entity.NodeKindTheme {
				return fmt.Errorf("code %q has non-theme parent %q", node.Name, parent.Name)
			}
		default:
			return fmt.Errorf("unknown node kind %q", node.Kind)
		}
	}
	return nil
}
