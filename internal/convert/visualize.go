package convert

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VisualizationFormat is an output format of VisualizePipeline.
type VisualizationFormat string

const (
	FormatText    VisualizationFormat = "text"
	FormatMermaid VisualizationFormat = "mermaid"
	FormatDOT     VisualizationFormat = "dot"
	FormatJSON    VisualizationFormat = "json"
)

// SupportedFormats lists the accepted visualization formats.
func SupportedFormats() []VisualizationFormat {
	return []VisualizationFormat{FormatText, FormatMermaid, FormatDOT, FormatJSON}
}

// VisualizePipeline renders transforms, already in execution order, in the
// given format.
func VisualizePipeline(transforms []Transformer, format VisualizationFormat) (string, error) {
	switch format {
	case FormatText:
		return visualizeText(transforms), nil
	case FormatMermaid:
		return visualizeMermaid(transforms), nil
	case FormatDOT:
		return visualizeDOT(transforms), nil
	case FormatJSON:
		return visualizeJSON(transforms)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func groupByStage(transforms []Transformer) map[TransformStage][]Transformer {
	byStage := make(map[TransformStage][]Transformer)
	for _, t := range transforms {
		byStage[t.Stage()] = append(byStage[t.Stage()], t)
	}
	return byStage
}

func visualizeText(transforms []Transformer) string {
	var sb strings.Builder
	sb.WriteString("Conversion Pipeline\n")
	sb.WriteString("===================\n\n")

	byStage := groupByStage(transforms)
	for i, stage := range StageOrder {
		group := byStage[stage]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "┌─ Stage %d: %s\n│\n", i+1, stage)
		for j, t := range group {
			last := j == len(group)-1
			prefix, connector := "├──", "│   "
			if last {
				prefix, connector = "└──", "    "
			}
			fmt.Fprintf(&sb, "│ %s [%s]\n", prefix, t.Name())
			deps := t.Dependencies()
			if len(deps.MustRunAfter) > 0 {
				fmt.Fprintf(&sb, "│ %s   ⤷ after: %s\n", connector, strings.Join(deps.MustRunAfter, ", "))
			}
			if len(deps.MustRunBefore) > 0 {
				fmt.Fprintf(&sb, "│ %s   ⤶ before: %s\n", connector, strings.Join(deps.MustRunBefore, ", "))
			}
		}
		sb.WriteString("│\n")
		if i < len(StageOrder)-1 {
			sb.WriteString("↓\n")
		}
	}
	fmt.Fprintf(&sb, "\nTotal: %d transforms across %d stages\n", len(transforms), len(byStage))
	return sb.String()
}

// mermaidID strips characters Mermaid does not accept in node ids.
func mermaidID(name string) string {
	return strings.NewReplacer("_", "", "-", "").Replace(name)
}

func visualizeMermaid(transforms []Transformer) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TD\n")

	byStage := groupByStage(transforms)
	for _, stage := range StageOrder {
		if len(byStage[stage]) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    subgraph %s[\"Stage: %s\"]\n", stage, stage)
		for _, t := range byStage[stage] {
			fmt.Fprintf(&sb, "        %s[\"%s\"]\n", mermaidID(t.Name()), t.Name())
		}
		sb.WriteString("    end\n")
	}
	sb.WriteString("\n")

	for _, t := range transforms {
		deps := t.Dependencies()
		for _, dep := range deps.MustRunAfter {
			fmt.Fprintf(&sb, "    %s --> %s\n", mermaidID(dep), mermaidID(t.Name()))
		}
		for _, before := range deps.MustRunBefore {
			fmt.Fprintf(&sb, "    %s --> %s\n", mermaidID(t.Name()), mermaidID(before))
		}
	}
	sb.WriteString("```\n")
	return sb.String()
}

func visualizeDOT(transforms []Transformer) string {
	var sb strings.Builder
	sb.WriteString("digraph ConversionPipeline {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n\n")

	byStage := groupByStage(transforms)
	for i, stage := range StageOrder {
		if len(byStage[stage]) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    subgraph cluster_%d {\n", i)
		fmt.Fprintf(&sb, "        label=\"Stage: %s\";\n", stage)
		sb.WriteString("        style=filled;\n        color=lightgrey;\n\n")
		for _, t := range byStage[stage] {
			fmt.Fprintf(&sb, "        %q;\n", t.Name())
		}
		sb.WriteString("    }\n\n")
	}

	for _, t := range transforms {
		deps := t.Dependencies()
		for _, dep := range deps.MustRunAfter {
			fmt.Fprintf(&sb, "    %q -> %q;\n", dep, t.Name())
		}
		for _, before := range deps.MustRunBefore {
			fmt.Fprintf(&sb, "    %q -> %q;\n", t.Name(), before)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

type transformJSON struct {
	Name                 string   `json:"name"`
	Stage                string   `json:"stage"`
	Order                int      `json:"order"`
	MustRunAfter         []string `json:"mustRunAfter"`
	MustRunBefore        []string `json:"mustRunBefore"`
	ProducesPlaceholders bool     `json:"producesPlaceholders,omitempty"`
	RequiresResolver     bool     `json:"requiresResolver,omitempty"`
}

func visualizeJSON(transforms []Transformer) (string, error) {
	doc := struct {
		Transforms      []transformJSON `json:"transforms"`
		TotalTransforms int             `json:"totalTransforms"`
		TotalStages     int             `json:"totalStages"`
	}{
		Transforms:      make([]transformJSON, 0, len(transforms)),
		TotalTransforms: len(transforms),
		TotalStages:     len(groupByStage(transforms)),
	}
	for i, t := range transforms {
		deps := t.Dependencies()
		doc.Transforms = append(doc.Transforms, transformJSON{
			Name:                 t.Name(),
			Stage:                string(t.Stage()),
			Order:                i + 1,
			MustRunAfter:         nonNil(deps.MustRunAfter),
			MustRunBefore:        nonNil(deps.MustRunBefore),
			ProducesPlaceholders: deps.ProducesPlaceholders,
			RequiresResolver:     deps.RequiresResolver,
		})
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
