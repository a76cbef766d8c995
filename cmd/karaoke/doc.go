// Command karaoke is the command-line client for the karaoke daemon.
//
// Job commands (submit, show, list, status) talk to a running karaoked over
// its HTTP API. The health, subtitles and config commands work offline.
package main
