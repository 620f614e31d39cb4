package template

type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by this package. They can be compared with errors.Is().
var (
	// ErrUnsupportedSchema indicates a schema_version outside SupportedSchema.
	ErrUnsupportedSchema = constError("unsupported template schema version")

	// ErrInvalidTemplate indicates a template that fails validation.
	ErrInvalidTemplate = constError("invalid template")

	// ErrTemplateExists indicates a sheet whose template partition already has rows.
	ErrTemplateExists = constError("template already seeded")

	// ErrInvalidLegacyFile indicates a legacy export that cannot be read.
	ErrInvalidLegacyFile = constError("invalid legacy template file")
)
