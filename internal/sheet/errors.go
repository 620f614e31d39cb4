package sheet

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors shared by the store, the engine and the CLI.
// They can be compared with errors.Is().
var (
	// ErrCellNotFound indicates that no row matches (sheet, name, owner).
	ErrCellNotFound = constError("cell not found")

	// ErrInvalidSheetName indicates a sheet name that is not a plain lowercase identifier.
	// Sheet names end up interpolated into SQL, so anything else is refused.
	ErrInvalidSheetName = constError("invalid sheet name")

	// ErrCyclicDependency indicates that formula references form a cycle.
	ErrCyclicDependency = constError("cyclic cell dependency")

	// ErrInvalidOption indicates a selection that is not one of the cell's options.
	ErrInvalidOption = constError("invalid selection option")

	// ErrNotEditable indicates a write to a cell whose type does not accept user input.
	ErrNotEditable = constError("cell is not editable")

	// ErrInvalidDate indicates text that is not a valid dd/mm/yyyy date.
	ErrInvalidDate = constError("invalid date")

	// ErrTemplateOwner indicates an attempt to mutate the template partition (owner 0).
	ErrTemplateOwner = constError("template rows are read-only")
)
