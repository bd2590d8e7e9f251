// Package confloader loads NoteChain configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Environment variables (NOTECHAIN_ prefix)
//  2. Configuration file (YAML)
//  3. Default values
//
// Watcher reports changes of the configuration file so selected settings,
// such as the log level, can be applied without a restart.
package confloader
