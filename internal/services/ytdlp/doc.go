// Package ytdlp fetches remote media through the yt-dlp CLI and extracts an
// audio track suitable for stem separation.
package ytdlp
