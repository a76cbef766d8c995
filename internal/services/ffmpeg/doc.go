// Package ffmpeg burns karaoke subtitles over a background and muxes the
// instrumental stem into the final video.
//
// DryRun satisfies the same contract without invoking ffmpeg; mock jobs use
// it so the chain completes on machines without an encoder.
package ffmpeg
