package analysis

// ParentKey is the reserved schema key describing the output root itself.
// It is excluded from directory resolution.
const ParentKey = "_parent"

// Schema describes the expected layout of a pipeline output directory.
//
// OutputIndex maps the logical name of each analysis step to the filename
// patterns its directory is expected to contain. The logical name doubles as
// the directory search pattern: resolution looks for an immediate child of
// the output root matching the key. The per-step filename patterns are not
// used during discovery; they are carried for callers that look up specific
// step outputs.
//
// EmailRecipients and PipelineRepo are cross-cutting run settings with no
// role in discovery; they are passed through to downstream consumers
// unchanged.
type Schema struct {
	OutputIndex     map[string][]string `yaml:"analysis_output_index"`
	EmailRecipients string              `yaml:"email_recipients"`
	PipelineRepo    string              `yaml:"pipeline_repo"`
}

// StepNames returns the schema's logical step names, excluding the reserved
// parent key. Order is not specified.
func (s Schema) StepNames() []string {
	names := make([]string, 0, len(s.OutputIndex))
	for name := range s.OutputIndex {
		if name == ParentKey {
			continue
		}
		names = append(names, name)
	}
	return names
}
