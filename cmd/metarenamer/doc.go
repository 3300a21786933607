// Command metarenamer files music into a library by its tags.
//
// Usage:
//
//	metarenamer rename <source> [library] [flags]
//	metarenamer list <path>
//	metarenamer runs
//	metarenamer undo <run-id>
//	metarenamer config init|show
//	metarenamer tui
//
// Settings come from a JSON, TOML or YAML file (--config), then from
// METARENAMER_* environment variables, optionally loaded from .env files,
// then from flags.
package main
