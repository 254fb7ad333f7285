// Package qrbrand provides embedded assets for the qrbrand command.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The qrbrand command writes it out for -write-config.
package qrbrand

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
