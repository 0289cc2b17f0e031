package tip

import "errors"

// Error variables for tip operations.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrPathEmpty          = errors.New("path cannot be empty")
	ErrHomeNotSet         = errors.New("cannot resolve paths: HOME is not set")
	ErrFlagRequiresArg    = errors.New("flag requires an argument")
	ErrUnknownFlag        = errors.New("unknown flag")

	ErrMalformedDocument = errors.New("separator not found in document")
	ErrInvalidMetadata   = errors.New("invalid metadata")
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrUnknownComponent  = errors.New("unknown component (must be subject|tags|content|all)")

	ErrTipNotFound        = errors.New("tip not found")
	ErrIDRequired         = errors.New("tip ID is required")
	ErrInvalidID          = errors.New("invalid tip ID")
	ErrDuplicateID        = errors.New("duplicate tip ID")
	ErrEmptyCollection    = errors.New("unable to get next id: collection is empty")
	ErrCollectionMissing  = errors.New("collection not found (run `tips init`)")
	ErrAlreadyInitialized = errors.New("collection already exists")

	ErrNoChanges = errors.New("aborting, contents no different from template")
	ErrAborted   = errors.New("aborted by user")
	ErrNoResults = errors.New("no tips found using pattern")

	ErrNoEditorFound = errors.New("no editor found (set config.editor, $EDITOR, or install vi/nano)")
	ErrEditorFailed  = errors.New("editor failed")
)

// IsUserAbort reports whether err ends a command without anything having
// failed. See ErrNoChanges, ErrAborted and ErrNoResults.
func IsUserAbort(err error) bool {
	return errors.Is(err, ErrNoChanges) || errors.Is(err, ErrAborted) || errors.Is(err, ErrNoResults)
}
