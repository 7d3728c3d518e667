package aggregator

import (
	"errors"

	"mcpd/internal/mcperr"
	"mcpd/internal/mcptypes"
)

// rpcError converts any error the Aggregator produces into the JSON-RPC
// error member spec §7 names, annotating BackendError's data with the
// originating backend name as spec §7 allows ("error data may be annotated
// with the backend name").
func rpcError(err error) *mcptypes.Error {
	var (
		unknownBackend  *mcperr.UnknownBackendError
		malformedTool   *mcperr.MalformedToolNameError
		invalidURI      *mcperr.InvalidResourceURIError
		spawnFailed     *mcperr.SpawnFailedError
		handshakeFailed *mcperr.HandshakeFailedError
		backendErr      *mcperr.BackendError
		backendTimeout  *mcperr.BackendTimeoutError
		unknownTool     *mcperr.UnknownToolError
		configErr       *mcperr.ConfigError
	)

	switch {
	case errors.As(err, &unknownBackend):
		return &mcptypes.Error{Code: mcptypes.CodeUnknownBackend, Message: err.Error()}
	case errors.As(err, &malformedTool):
		return &mcptypes.Error{Code: mcptypes.CodeMalformedToolName, Message: err.Error()}
	case errors.As(err, &invalidURI):
		return &mcptypes.Error{Code: mcptypes.CodeInvalidResourceURI, Message: err.Error()}
	case errors.As(err, &spawnFailed):
		return &mcptypes.Error{Code: mcptypes.CodeSpawnFailed, Message: err.Error()}
	case errors.As(err, &handshakeFailed):
		return &mcptypes.Error{Code: mcptypes.CodeHandshakeFailed, Message: err.Error()}
	case errors.As(err, &backendErr):
		return &mcptypes.Error{
			Code:    mcptypes.CodeBackendError,
			Message: backendErr.Err.Error(),
			Data:    map[string]string{"backend": backendErr.Backend},
		}
	case errors.As(err, &backendTimeout):
		return &mcptypes.Error{Code: mcptypes.CodeBackendTimeout, Message: err.Error()}
	case errors.As(err, &unknownTool):
		return &mcptypes.Error{Code: mcptypes.CodeUnknownTool, Message: err.Error()}
	case errors.As(err, &configErr):
		return &mcptypes.Error{Code: mcptypes.CodeConfigError, Message: err.Error()}
	default:
		return &mcptypes.Error{Code: mcptypes.CodeInternalError, Message: err.Error()}
	}
}
