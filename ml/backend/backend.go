// backend.go - Registriert alle eingebauten Backends
package backend

import (
	_ "github.com/jakobhartmann/tensat/ml/backend/ref"
)
