package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// BashHook is sourced from ~/.bashrc and logs every command through `repty __capture__`.
//
//go:embed shell/bash.sh
var BashHook string

// ZshHook is the zsh counterpart of BashHook.
//
//go:embed shell/zsh.sh
var ZshHook string
