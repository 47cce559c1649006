package render

// SimplePipeline runs a built Pipeline's stages over whole-image
// planes in one pass, the "correct reference behaviour" pipeline
// spec.md earmarks for tests and property checks. Each Stage.Run call
// is responsible for leaving ctx.Planes in a self-consistent state
// (replacing a channel's Plane outright when it changes size, as
// InOut/Extend stages do).
type SimplePipeline struct {
	pipeline *Pipeline
}

// NewSimplePipeline wraps an already-Build-validated Pipeline.
func NewSimplePipeline(p *Pipeline) *SimplePipeline {
	return &SimplePipeline{pipeline: p}
}

// Run executes every stage of the pipeline in order against ctx.
func (sp *SimplePipeline) Run(ctx *RunContext) error {
	for _, s := range sp.pipeline.stages {
		if err := s.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}
