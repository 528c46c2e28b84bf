// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/clonescan/config.cue (~/.config on
// Linux when unset, ~/Library/Application Support on macOS, %APPDATA% on Windows),
// or from an explicit file. The file is validated against the embedded #Config
// schema and merged over the defaults. CLONESCAN_* environment variables override
// both, e.g. CLONESCAN_OUTPUT_FORMAT=json.
package config
