package carteira

import "errors"

// Error taxonomy shared by the collaborators of the accounting engine.
// The engine itself never fails: these errors come from configuration,
// the market-data provider, the store and the import surface.
var (
	// ErrConfiguration means a required credential (the Gemini API key) is absent.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuth means the upstream service rejected the credential.
	ErrAuth = errors.New("authentication error")
	// ErrService means the upstream service is unreachable or overloaded. Retrying may help.
	ErrService = errors.New("service error")
	// ErrParsing means an upstream response does not match the expected structure.
	ErrParsing = errors.New("parsing error")
	// ErrMalformedImport means an import payload failed the structural sanity check.
	ErrMalformedImport = errors.New("malformed import")
	// ErrNotFound means a transaction id is not in the book.
	ErrNotFound = errors.New("not found")
)

// Retriable reports whether err is worth retrying without any change from the user.
func Retriable(err error) bool {
	return errors.Is(err, ErrService)
}
