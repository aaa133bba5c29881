package proxy

import (
	"errors"
	"net/http"

	"github.com/dgimmler/gemini-proxy/src/credentials"
	"github.com/dgimmler/gemini-proxy/src/gemini"
)

// RemoteFailureMessage is all a caller learns about a rejected Gemini call.
// The remote body is logged, not forwarded.
const RemoteFailureMessage = "Failed to fetch from Gemini API."

// ErrMalformedInput marks a body that is not JSON or has no prompt.
var ErrMalformedInput = errors.New("malformed request body")

// failureKind is one row of the dispatch table: which errors it covers and the
// status and message the caller gets for them.
type failureKind struct {
	name    string
	matches func(error) bool
	respond func(error) (int, string)
}

func internal(err error) (int, string) { return http.StatusInternalServerError, err.Error() }

// failureKinds is checked in order; the last row catches everything.
var failureKinds = []failureKind{
	{
		name:    "malformed-input",
		matches: func(err error) bool { return errors.Is(err, ErrMalformedInput) },
		respond: internal,
	},
	{
		name:    "missing-credential",
		matches: func(err error) bool { return errors.Is(err, credentials.ErrMissing) },
		respond: internal,
	},
	{
		name: "remote-rejection",
		matches: func(err error) bool {
			var remote *gemini.RemoteError
			return errors.As(err, &remote)
		},
		respond: func(err error) (int, string) {
			var remote *gemini.RemoteError
			errors.As(err, &remote)
			return remote.StatusCode, RemoteFailureMessage
		},
	},
	{
		name:    "unexpected",
		matches: func(error) bool { return true },
		respond: internal,
	},
}

func classify(err error) (kind string, status int, message string) {
	k := failureKinds[len(failureKinds)-1]
	for _, row := range failureKinds {
		if row.matches(err) {
			k = row
			break
		}
	}
	status, message = k.respond(err)
	return k.name, status, message
}

func remoteDetail(err error) any {
	var remote *gemini.RemoteError
	if errors.As(err, &remote) {
		return remote.Detail
	}
	return nil
}
