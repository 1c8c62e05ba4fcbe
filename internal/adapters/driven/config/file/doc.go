// Package file provides the file-based ConfigStore.
// Configuration lives in a TOML file, by default ~/.tgindex/config.toml.
// Any key can be overridden from the environment: "telegram.api_hash" is
// read from TGINDEX_TELEGRAM_API_HASH when set.
package file
