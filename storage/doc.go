// Package storage holds the staging area for audio artifacts.
//
// A Storage backend stores named objects. Scratch carves a per-run
// directory out of a backend and hands out Slots, the named locations a
// pipeline run writes its raw and converted audio to. Slots are
// overwritten on save and the whole scratch directory is released when
// the run ends.
//
// # Backends
//
//   - storage/local: local filesystem, the only backend the recognizer can
//     read from directly
//
// # Configuration
//
//	storage:
//	  provider: "local"
//	  base_path: "/tmp/voicescribe"
//	  sweep_on_start: true
package storage
