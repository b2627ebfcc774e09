package convert

// TransformStage represents a major phase in the conversion pipeline.
// Stages execute in the order defined by StageOrder.
type TransformStage string

const (
	// StagePreprocess normalizes raw page text and drops unsupported macros.
	StagePreprocess TransformStage = "preprocess"

	// StageProtect converts code and moves it, with other literal spans, into the vault.
	StageProtect TransformStage = "protect"

	// StageStructure rewrites line-level block constructs (headers, rules, tables, lists).
	StageStructure TransformStage = "structure"

	// StageResolve turns Trac references into links using the link resolver.
	StageResolve TransformStage = "resolve"

	// StageAttach rewrites image macros and attachment links and queues file copies.
	StageAttach TransformStage = "attach"

	// StageInline handles hyperlinks and emphasis.
	StageInline TransformStage = "inline"

	// StagePostprocess finishes table rows, repairs delimiter artifacts and
	// restores vaulted spans.
	StagePostprocess TransformStage = "postprocess"
)

// StageOrder defines the execution order of conversion stages.
var StageOrder = []TransformStage{
	StagePreprocess,
	StageProtect,
	StageStructure,
	StageResolve,
	StageAttach,
	StageInline,
	StagePostprocess,
}

// Transformer is one rewrite rule of the pipeline.
type Transformer interface {
	// Name returns the unique identifier for this transformer (lowercase snake_case)
	Name() string

	// Stage returns the pipeline stage where this transform executes
	Stage() TransformStage

	// Dependencies declares ordering constraints and capabilities
	Dependencies() TransformDependencies

	// Transform rewrites the document buffer in place
	Transform(d *Document) error
}

// TransformDependencies declares explicit ordering constraints and capabilities.
type TransformDependencies struct {
	// MustRunAfter lists transform names that must complete before this one.
	MustRunAfter []string

	// MustRunBefore lists transform names that must run after this one.
	MustRunBefore []string

	// ProducesPlaceholders marks transforms that move spans into the vault.
	ProducesPlaceholders bool

	// RequiresResolver marks transforms that need the link resolver.
	RequiresResolver bool

	// RequiresAttachments marks transforms that read the page's attachment list.
	RequiresAttachments bool
}

// StageIndex returns the numeric index of a stage in StageOrder, or -1.
func StageIndex(stage TransformStage) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// IsValidStage returns true if the stage is defined in StageOrder.
func IsValidStage(stage TransformStage) bool {
	return StageIndex(stage) >= 0
}

// funcTransform adapts a plain function to Transformer.
type funcTransform struct {
	name  string
	stage TransformStage
	deps  TransformDependencies
	fn    func(d *Document) error
}

func (t *funcTransform) Name() string                        { return t.name }
func (t *funcTransform) Stage() TransformStage               { return t.stage }
func (t *funcTransform) Dependencies() TransformDependencies { return t.deps }
func (t *funcTransform) Transform(d *Document) error         { return t.fn(d) }

// contentRewrite wraps a pure text rewrite that cannot fail.
func contentRewrite(fn func(string) string) func(d *Document) error {
	return func(d *Document) error {
		d.Content = fn(d.Content)
		return nil
	}
}
