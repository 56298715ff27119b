package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code            ErrorCode
	Retryable       bool
	Description     string
	SuggestedAction string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrCodeNotFound: {
		Code:            ErrCodeNotFound,
		Retryable:       false,
		Description:     "Input path or file does not exist",
		SuggestedAction: "Check the input folder argument: contacts extract <input-folder>",
	},
	ErrCodeRead: {
		Code:            ErrCodeRead,
		Retryable:       true,
		Description:     "File could not be read",
		SuggestedAction: "Re-run with --read-retries, or use --on-read-error skip to continue past it",
	},
	ErrCodePermission: {
		Code:            ErrCodePermission,
		Retryable:       false,
		Description:     "File is not readable by the current user",
		SuggestedAction: "Fix the file permissions or exclude the file",
	},
	ErrCodeContentTooLarge: {
		Code:            ErrCodeContentTooLarge,
		Retryable:       false,
		Description:     "File exceeds the configured size limit",
		SuggestedAction: "Raise max_file_bytes in the config file or set it to 0 for no limit",
	},
	ErrCodeTagger: {
		Code:            ErrCodeTagger,
		Retryable:       false,
		Description:     "Entity tagger failed on the document",
		SuggestedAction: "Try the rules tagger: contacts extract --mode entities --tagger rules",
	},
	ErrCodeWrite: {
		Code:            ErrCodeWrite,
		Retryable:       false,
		Description:     "Output file could not be written",
		SuggestedAction: "Check that the output location is writable, or pass --out",
	},
	ErrCodeTimeout: {
		Code:            ErrCodeTimeout,
		Retryable:       true,
		Description:     "Operation exceeded time limit",
		SuggestedAction: "Re-run the extraction",
	},
	ErrCodeContextCancelled: {
		Code:            ErrCodeContextCancelled,
		Retryable:       false,
		Description:     "Run cancelled by user or system",
		SuggestedAction: "Re-run the extraction; no output was written",
	},
	ErrCodeProcessing: {
		Code:            ErrCodeProcessing,
		Retryable:       false,
		Description:     "Unclassified processing error",
		SuggestedAction: "Re-run with --debug and inspect the file: contacts inspect <file>",
	},
}

// IsRetryable returns true if the given error code represents a transient, retryable error.
func IsRetryable(code ErrorCode) bool {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Retryable
	}
	return false
}

// GetSuggestedAction returns the suggested action for the given error code.
func GetSuggestedAction(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.SuggestedAction
	}
	return "Re-run with --debug for more details"
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}
