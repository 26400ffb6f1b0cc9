// Package voice runs the voice message pipeline: fetch the note, convert
// it remotely, recognize the converted audio and forward the text.
//
// One Process call handles one message and moves a Run through
// Idle, Fetching, Converting, Recognizing and then Done or Failed. Each
// run stages its files in its own scratch directory, released when the
// run ends however it ends.
package voice
