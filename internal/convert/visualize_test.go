package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visualTransforms() []Transformer {
	return []Transformer{
		mockTransformer{name: "code_blocks", stage: StageProtect, dependencies: TransformDependencies{MustRunBefore: []string{"inline_code"}}},
		mockTransformer{name: "inline_code", stage: StageProtect},
		mockTransformer{name: "bold", stage: StageInline, dependencies: TransformDependencies{MustRunAfter: []string{"hyperlinks"}}},
	}
}

func TestVisualizePipeline_Text(t *testing.T) {
	out, err := VisualizePipeline(visualTransforms(), FormatText)
	require.NoError(t, err)

	assert.Contains(t, out, "Stage 2: protect")
	assert.Contains(t, out, "[code_blocks]")
	assert.Contains(t, out, "before: inline_code")
	assert.Contains(t, out, "after: hyperlinks")
	assert.Contains(t, out, "Total: 3 transforms across 2 stages")
}

func TestVisualizePipeline_Mermaid(t *testing.T) {
	out, err := VisualizePipeline(visualTransforms(), FormatMermaid)
	require.NoError(t, err)

	assert.Contains(t, out, "```mermaid")
	assert.Contains(t, out, `codeblocks["code_blocks"]`)
	assert.Contains(t, out, "codeblocks --> inlinecode")
	assert.Contains(t, out, "hyperlinks --> bold")
}

func TestVisualizePipeline_DOT(t *testing.T) {
	out, err := VisualizePipeline(visualTransforms(), FormatDOT)
	require.NoError(t, err)

	assert.Contains(t, out, "digraph ConversionPipeline")
	assert.Contains(t, out, `"code_blocks" -> "inline_code";`)
}

func TestVisualizePipeline_JSON(t *testing.T) {
	out, err := VisualizePipeline(visualTransforms(), FormatJSON)
	require.NoError(t, err)

	var doc struct {
		Transforms []struct {
			Name          string   `json:"name"`
			Stage         string   `json:"stage"`
			Order         int      `json:"order"`
			MustRunAfter  []string `json:"mustRunAfter"`
			MustRunBefore []string `json:"mustRunBefore"`
		} `json:"transforms"`
		TotalTransforms int `json:"totalTransforms"`
		TotalStages     int `json:"totalStages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, 3, doc.TotalTransforms)
	assert.Equal(t, 2, doc.TotalStages)
	assert.Equal(t, "bold", doc.Transforms[2].Name)
	assert.Equal(t, 3, doc.Transforms[2].Order)
	assert.Equal(t, []string{"hyperlinks"}, doc.Transforms[2].MustRunAfter)
	assert.NotNil(t, doc.Transforms[1].MustRunBefore)
}

func TestVisualizePipeline_UnsupportedFormat(t *testing.T) {
	_, err := VisualizePipeline(visualTransforms(), "svg")
	assert.Error(t, err)
}

func TestVisualizePipeline_RealPipeline(t *testing.T) {
	p, err := NewPipeline(Options{})
	require.NoError(t, err)

	for _, format := range SupportedFormats() {
		out, err := VisualizePipeline(p.Transformers(), format)
		require.NoError(t, err, format)
		assert.Contains(t, out, "camel_case_links", format)
	}
}
