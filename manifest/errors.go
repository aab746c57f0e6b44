package manifest

import "errors"

var (
	ErrInvalidManifest       = errors.New("manifest: invalid manifest")
	ErrUnknownSchema         = errors.New("manifest: unknown schema")
	ErrUnknownSecurityScheme = errors.New("manifest: unknown security scheme")
	ErrUnknownErrorSet       = errors.New("manifest: unknown error set")
	ErrUnknownKind           = errors.New("manifest: unknown response kind")
	ErrUnknownOperation      = errors.New("manifest: unknown operation")
)
